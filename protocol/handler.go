package protocol

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/harrywhoo/youtube-party-server/domain"
	"github.com/harrywhoo/youtube-party-server/registry"
)

// Handler dispatches inbound messages to the registry and writes the
// resulting acks, roster notifications, and relayed sync events back
// out. One instance serves all connections.
type Handler struct {
	reg      *registry.Registry
	dispatch map[string]func(domain.Connection, json.RawMessage)
}

func NewHandler(reg *registry.Registry) *Handler {
	h := &Handler{reg: reg}
	h.dispatch = map[string]func(domain.Connection, json.RawMessage){
		TypeCreateRoom:     h.createRoom,
		TypeJoinRoom:       h.joinRoom,
		TypeLeaveRoom:      h.leaveRoom,
		TypePlaybackSync:   h.playbackSync,
		TypeNavigationSync: h.navigationSync,
		TypePing:           h.ping,
	}
	return h
}

func (h *Handler) Connected(conn domain.Connection) {
	h.reg.Connect(conn)
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("invalid message", "connectionId", conn.ID(), "error", err)
		return
	}

	fn, ok := h.dispatch[env.Type]
	if !ok {
		slog.Warn("unknown message type", "connectionId", conn.ID(), "type", env.Type)
		return
	}
	fn(conn, env.Payload)
}

func (h *Handler) Disconnected(conn domain.Connection) {
	h.notifyDeparture(h.reg.Disconnect(conn))
}

func (h *Handler) createRoom(conn domain.Connection, payload json.RawMessage) {
	var req CreateRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(conn, "invalid create-room payload")
		return
	}

	roomID, members, departed := h.reg.CreateRoom(conn, req.DisplayName)
	h.notifyDeparture(departed)
	h.send(conn, TypeRoomCreated, RoomState{RoomID: roomID, Members: members})
}

func (h *Handler) joinRoom(conn domain.Connection, payload json.RawMessage) {
	var req JoinRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(conn, "invalid join-room payload")
		return
	}

	members, peers, departed, err := h.reg.JoinRoom(conn, req.RoomID, req.DisplayName)
	switch {
	case errors.Is(err, registry.ErrInvalidRoomCode):
		h.sendError(conn, "invalid room code")
		return
	case errors.Is(err, registry.ErrRoomNotFound):
		h.sendError(conn, "room not found")
		return
	}

	h.notifyDeparture(departed)
	h.send(conn, TypeRoomJoined, RoomState{RoomID: req.RoomID, Members: members})
	h.fanOut(peers, TypeMemberJoined, MemberJoined{DisplayName: req.DisplayName, Members: members})
}

func (h *Handler) leaveRoom(conn domain.Connection, _ json.RawMessage) {
	departed := h.reg.LeaveRoom(conn)
	if departed == nil {
		// not in a room; leaving is a no-op
		return
	}
	h.send(conn, TypeRoomLeft, RoomLeft{RoomID: departed.RoomID})
	h.notifyDeparture(departed)
}

func (h *Handler) playbackSync(conn domain.Connection, payload json.RawMessage) {
	var req PlaybackSync
	if err := json.Unmarshal(payload, &req); err != nil {
		slog.Warn("invalid playback-sync payload", "connectionId", conn.ID(), "error", err)
		return
	}

	displayName, peers, ok := h.reg.Recipients(conn.ID(), req.RoomID)
	if !ok {
		slog.Debug("sync dropped, sender not in claimed room", "connectionId", conn.ID(), "roomId", req.RoomID)
		return
	}
	h.fanOut(peers, TypePlaybackSyncReceived, PlaybackSyncReceived{
		RoomID:      req.RoomID,
		Action:      req.Action,
		Time:        req.Time,
		DisplayName: displayName,
	})
}

func (h *Handler) navigationSync(conn domain.Connection, payload json.RawMessage) {
	var req NavigationSync
	if err := json.Unmarshal(payload, &req); err != nil {
		slog.Warn("invalid navigation-sync payload", "connectionId", conn.ID(), "error", err)
		return
	}

	displayName, peers, ok := h.reg.Recipients(conn.ID(), req.RoomID)
	if !ok {
		slog.Debug("sync dropped, sender not in claimed room", "connectionId", conn.ID(), "roomId", req.RoomID)
		return
	}
	h.fanOut(peers, TypeNavigationSyncReceived, NavigationSyncReceived{
		RoomID:      req.RoomID,
		MediaID:     req.MediaID,
		Locator:     req.Locator,
		DisplayName: displayName,
	})
}

func (h *Handler) ping(conn domain.Connection, payload json.RawMessage) {
	var req Ping
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}
	h.send(conn, TypePong, Pong{Timestamp: req.Timestamp, ClientID: conn.ID()})
}

func (h *Handler) notifyDeparture(departed *registry.Departure) {
	if departed == nil {
		return
	}
	h.fanOut(departed.Peers, TypeMemberLeft, MemberLeft{Members: departed.Members})
}

func (h *Handler) send(conn domain.Connection, msgType string, payload any) {
	data, err := Marshal(msgType, payload)
	if err != nil {
		slog.Warn("marshal error", "type", msgType, "error", err)
		return
	}
	if err := conn.Send(data); err != nil {
		slog.Warn("send failed", "connectionId", conn.ID(), "type", msgType, "error", err)
	}
}

func (h *Handler) sendError(conn domain.Connection, reason string) {
	h.send(conn, TypeRoomError, RoomError{Reason: reason})
}

// fanOut delivers one message to each peer, fire-and-forget: a failed
// send is logged and does not stop delivery to the rest.
func (h *Handler) fanOut(peers []domain.Connection, msgType string, payload any) {
	if len(peers) == 0 {
		return
	}
	data, err := Marshal(msgType, payload)
	if err != nil {
		slog.Warn("marshal error", "type", msgType, "error", err)
		return
	}
	for _, peer := range peers {
		if err := peer.Send(data); err != nil {
			slog.Warn("peer delivery failed", "connectionId", peer.ID(), "type", msgType, "error", err)
		}
	}
}
