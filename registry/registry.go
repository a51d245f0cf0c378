package registry

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/harrywhoo/youtube-party-server/domain"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidRoomCode = errors.New("invalid room code")
)

// CodeSource yields candidate room codes. Satisfied by
// roomcode.Generator.
type CodeSource interface {
	New() string
}

type session struct {
	conn        domain.Connection
	roomID      string
	displayName string
}

type room struct {
	id      string
	members []*session
}

func (r *room) roster() []domain.Member {
	members := make([]domain.Member, 0, len(r.members))
	for _, s := range r.members {
		members = append(members, domain.Member{ConnectionID: s.conn.ID(), DisplayName: s.displayName})
	}
	return members
}

func (r *room) peersOf(sess *session) []domain.Connection {
	peers := make([]domain.Connection, 0, len(r.members))
	for _, s := range r.members {
		if s != sess {
			peers = append(peers, s.conn)
		}
	}
	return peers
}

// Departure describes the room a connection just left: its id and the
// roster that remains, so callers can notify the remaining members.
// Members and Peers are empty when the departure emptied the room.
type Departure struct {
	RoomID  string
	Members []domain.Member
	Peers   []domain.Connection
}

// Registry owns the room directory, each room's ordered membership, and
// the session index mapping every live connection to at most one room.
// All mutation goes through its methods under a single mutex; methods
// return snapshots so callers can do I/O without holding the lock.
type Registry struct {
	mu       sync.Mutex
	codes    CodeSource
	rooms    map[string]*room
	sessions map[string]*session
}

func New(codes CodeSource) *Registry {
	return &Registry{
		codes:    codes,
		rooms:    make(map[string]*room),
		sessions: make(map[string]*session),
	}
}

// Connect records a roomless session for a newly accepted connection.
func (g *Registry) Connect(conn domain.Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sessions[conn.ID()] = &session{conn: conn}
	slog.Info("client connected", "connectionId", conn.ID(), "clients", len(g.sessions))
}

// Disconnect runs the leave path and tears down the session. The
// returned Departure is nil when the connection was not in a room.
func (g *Registry) Disconnect(conn domain.Connection) *Departure {
	g.mu.Lock()
	defer g.mu.Unlock()

	var departed *Departure
	if sess, ok := g.sessions[conn.ID()]; ok {
		departed = g.leaveLocked(sess)
		delete(g.sessions, conn.ID())
	}
	slog.Info("client disconnected", "connectionId", conn.ID(), "clients", len(g.sessions))
	return departed
}

// CreateRoom generates a fresh code, creates the room, and joins the
// creator, leaving any prior room first. The departed result carries
// the leave side effects for that prior room, nil if there was none.
func (g *Registry) CreateRoom(conn domain.Connection, displayName string) (string, []domain.Member, *Departure) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sess := g.sessionFor(conn)
	departed := g.leaveLocked(sess)

	id := g.codes.New()
	for g.rooms[id] != nil {
		id = g.codes.New()
	}

	rm := &room{id: id}
	g.rooms[id] = rm
	g.joinLocked(sess, rm, displayName)

	slog.Info("room created", "roomId", id, "connectionId", conn.ID())
	return id, rm.roster(), departed
}

// JoinRoom adds the connection to an existing room, leaving any prior
// room first. It returns the destination roster and the connections of
// the pre-existing members. Nothing is mutated on error.
func (g *Registry) JoinRoom(conn domain.Connection, roomID, displayName string) ([]domain.Member, []domain.Connection, *Departure, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if strings.TrimSpace(roomID) == "" {
		return nil, nil, nil, ErrInvalidRoomCode
	}
	rm, ok := g.rooms[roomID]
	if !ok {
		return nil, nil, nil, ErrRoomNotFound
	}

	sess := g.sessionFor(conn)
	departed := g.leaveLocked(sess)
	if g.rooms[roomID] == nil {
		// rejoining one's own room as sole member empties it in the
		// leave step; keep the code live
		g.rooms[roomID] = rm
	}

	peers := rm.peersOf(sess)
	g.joinLocked(sess, rm, displayName)

	slog.Info("member joined", "roomId", roomID, "connectionId", conn.ID(), "members", len(rm.members))
	return rm.roster(), peers, departed, nil
}

// LeaveRoom removes the connection from its current room. Idempotent:
// returns nil when the connection is not in a room.
func (g *Registry) LeaveRoom(conn domain.Connection) *Departure {
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, ok := g.sessions[conn.ID()]
	if !ok {
		return nil
	}
	return g.leaveLocked(sess)
}

// Recipients validates a sync claim against the session index and
// returns the sender's display name plus the connections of every other
// member of its room. ok is false when the sender is roomless or its
// actual room differs from the claim.
func (g *Registry) Recipients(connectionID, claimedRoomID string) (string, []domain.Connection, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, ok := g.sessions[connectionID]
	if !ok || sess.roomID == "" || sess.roomID != claimedRoomID {
		return "", nil, false
	}
	rm := g.rooms[sess.roomID]
	if rm == nil {
		return "", nil, false
	}
	return sess.displayName, rm.peersOf(sess), true
}

func (g *Registry) RoomExists(roomID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rooms[roomID] != nil
}

// MembersOf returns a room's roster in join order, empty when the room
// does not exist. Use RoomExists where absent must be distinguished
// from empty.
func (g *Registry) MembersOf(roomID string) []domain.Member {
	g.mu.Lock()
	defer g.mu.Unlock()

	rm := g.rooms[roomID]
	if rm == nil {
		return []domain.Member{}
	}
	return rm.roster()
}

func (g *Registry) Stats() (rooms, clients int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.rooms), len(g.sessions)
}

func (g *Registry) sessionFor(conn domain.Connection) *session {
	sess, ok := g.sessions[conn.ID()]
	if !ok {
		sess = &session{conn: conn}
		g.sessions[conn.ID()] = sess
	}
	return sess
}

func (g *Registry) joinLocked(sess *session, rm *room, displayName string) {
	sess.roomID = rm.id
	sess.displayName = displayName
	rm.members = append(rm.members, sess)
}

func (g *Registry) leaveLocked(sess *session) *Departure {
	if sess.roomID == "" {
		return nil
	}

	departed := &Departure{RoomID: sess.roomID}
	if rm := g.rooms[sess.roomID]; rm != nil {
		for i, s := range rm.members {
			if s == sess {
				rm.members = append(rm.members[:i], rm.members[i+1:]...)
				break
			}
		}
		if len(rm.members) == 0 {
			delete(g.rooms, rm.id)
			slog.Info("room removed", "roomId", rm.id)
		} else {
			departed.Members = rm.roster()
			departed.Peers = rm.peersOf(nil)
		}
	}
	sess.roomID = ""
	return departed
}
