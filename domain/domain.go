package domain

// Member is a connection's membership record within a room. The first
// member in a room's roster is the nominal host, for display purposes
// only.
type Member struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
}

type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// SessionHandler receives the lifecycle of a connection: registration at
// accept, inbound frames, and teardown when the transport closes.
type SessionHandler interface {
	Connected(conn Connection)
	Handle(conn Connection, data []byte)
	Disconnected(conn Connection)
}
