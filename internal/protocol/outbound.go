package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"relay/internal/domain"
)

// Outbound message types.
const (
	TypeJoined     = "joined"
	TypePeerJoined = "peer-joined"
	TypeLeft       = "left"
	TypePeerLeft   = "peer-left"
	TypeBroadcast  = "broadcast"
	TypeError      = "error"
)

// Reply texts for routing failures.
const (
	TextInvalidFormat  = "Invalid message format"
	TextRoomRequired   = "Room ID is required"
	TextRoomNotFound   = "Room not found or not joined"
	TextTargetNotFound = "Target peer not found or disconnected"
)

// Joined confirms a successful join to the joining client.
type Joined struct {
	Type    string        `json:"type"`
	Room    domain.RoomID `json:"room"`
	Count   int           `json:"count"`
	Roles   []string      `json:"roles"`
	PeerID  domain.PeerID `json:"peerId"`
	Message string        `json:"message"`
	Status  domain.Status `json:"status"`
}

// PeerJoined tells existing members about a new one.
type PeerJoined struct {
	Type      string        `json:"type"`
	Room      domain.RoomID `json:"room"`
	Count     int           `json:"count"`
	Roles     []string      `json:"roles"`
	NewPeerID domain.PeerID `json:"newPeerId"`
	Message   string        `json:"message"`
}

// Left confirms a departure to the leaving client.
type Left struct {
	Type    string        `json:"type"`
	Room    domain.RoomID `json:"room"`
	PeerID  domain.PeerID `json:"peerId"`
	Message string        `json:"message"`
}

// PeerLeft tells remaining members about a departure or disconnect.
type PeerLeft struct {
	Type       string        `json:"type"`
	Room       domain.RoomID `json:"room"`
	Count      int           `json:"count"`
	Roles      []string      `json:"roles"`
	LeftPeerID domain.PeerID `json:"leftPeerId"`
	Message    string        `json:"message"`
	Status     domain.Status `json:"status"`
}

// Broadcast wraps a free-form room payload.
type Broadcast struct {
	Type      string          `json:"type"`
	Room      domain.RoomID   `json:"room"`
	Message   json.RawMessage `json:"message"`
	Timestamp string          `json:"timestamp"`
}

// Error is the per-connection failure reply.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewJoined(room domain.RoomID, count int, roles []string, peerID domain.PeerID) Joined {
	return Joined{
		Type:    TypeJoined,
		Room:    room,
		Count:   count,
		Roles:   roles,
		PeerID:  peerID,
		Message: fmt.Sprintf("Successfully joined room %s", room),
		Status:  domain.StatusFor(count),
	}
}

func NewPeerJoined(room domain.RoomID, count int, roles []string, newPeer domain.PeerID) PeerJoined {
	return PeerJoined{
		Type:      TypePeerJoined,
		Room:      room,
		Count:     count,
		Roles:     roles,
		NewPeerID: newPeer,
		Message:   "A new peer has joined the room",
	}
}

func NewLeft(room domain.RoomID, peerID domain.PeerID) Left {
	return Left{
		Type:    TypeLeft,
		Room:    room,
		PeerID:  peerID,
		Message: fmt.Sprintf("Successfully left room %s", room),
	}
}

func NewPeerLeft(room domain.RoomID, count int, roles []string, leftPeer domain.PeerID, disconnected bool) PeerLeft {
	msg := "A peer has left the room"
	if disconnected {
		msg = "A peer has disconnected"
	}
	return PeerLeft{
		Type:       TypePeerLeft,
		Room:       room,
		Count:      count,
		Roles:      roles,
		LeftPeerID: leftPeer,
		Message:    msg,
		Status:     domain.StatusFor(count),
	}
}

func NewBroadcast(room domain.RoomID, message json.RawMessage, at time.Time) Broadcast {
	return Broadcast{
		Type:      TypeBroadcast,
		Room:      room,
		Message:   message,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}

func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}

// NewSignalRelay rebuilds a signaling frame for delivery: the original
// fields verbatim, plus the routing envelope with the sender injected.
func NewSignalRelay(sig Signal, from domain.PeerID) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(sig.Fields)+3)
	for k, v := range sig.Fields {
		out[k] = v
	}
	out["type"] = mustRaw(sig.Kind)
	out["room"] = mustRaw(string(sig.Room))
	out["fromPeer"] = mustRaw(string(from))
	return out
}

func mustRaw(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// Encode marshals an outbound message to a wire frame.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
