package protocol

import (
	"encoding/json"

	"github.com/harrywhoo/youtube-party-server/domain"
)

// Client → server message types.
const (
	TypeCreateRoom     = "create-room"
	TypeJoinRoom       = "join-room"
	TypeLeaveRoom      = "leave-room"
	TypePlaybackSync   = "playback-sync"
	TypeNavigationSync = "navigation-sync"
	TypePing           = "ping"
)

// Server → client message types.
const (
	TypeRoomCreated            = "room-created"
	TypeRoomJoined             = "room-joined"
	TypeRoomLeft               = "room-left"
	TypeMemberJoined           = "member-joined"
	TypeMemberLeft             = "member-left"
	TypeRoomError              = "room-error"
	TypePlaybackSyncReceived   = "playback-sync-received"
	TypeNavigationSyncReceived = "navigation-sync-received"
	TypePong                   = "pong"
)

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CreateRoomRequest struct {
	DisplayName string `json:"displayName"`
}

type JoinRoomRequest struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

// PlaybackSync carries an opaque action+time tuple; actions are not
// interpreted by the relay.
type PlaybackSync struct {
	RoomID string  `json:"roomId"`
	Action string  `json:"action"`
	Time   float64 `json:"time"`
}

// NavigationSync signals that the group should follow the sender to a
// different piece of content.
type NavigationSync struct {
	RoomID  string `json:"roomId"`
	MediaID string `json:"mediaId"`
	Locator string `json:"locator"`
}

type Ping struct {
	Timestamp int64 `json:"timestamp"`
}

// RoomState acknowledges create-room and join-room with the resulting
// roster in join order.
type RoomState struct {
	RoomID  string          `json:"roomId"`
	Members []domain.Member `json:"members"`
}

type RoomLeft struct {
	RoomID string `json:"roomId"`
}

type MemberJoined struct {
	DisplayName string          `json:"displayName"`
	Members     []domain.Member `json:"members"`
}

type MemberLeft struct {
	Members []domain.Member `json:"members"`
}

type RoomError struct {
	Reason string `json:"reason"`
}

type PlaybackSyncReceived struct {
	RoomID      string  `json:"roomId"`
	Action      string  `json:"action"`
	Time        float64 `json:"time"`
	DisplayName string  `json:"displayName"`
}

type NavigationSyncReceived struct {
	RoomID      string `json:"roomId"`
	MediaID     string `json:"mediaId"`
	Locator     string `json:"locator"`
	DisplayName string `json:"displayName"`
}

type Pong struct {
	Timestamp int64  `json:"timestamp"`
	ClientID  string `json:"clientId"`
}

// Marshal wraps a payload in an Envelope of the given type.
func Marshal(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
