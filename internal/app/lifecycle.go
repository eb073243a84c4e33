package app

import (
	"github.com/rs/zerolog/log"

	"relay/internal/core"
	"relay/internal/domain"
	"relay/internal/protocol"
)

// Lifecycle mutates room membership: join, leave and close-triggered
// cleanup. Each operation runs atomically under the registry lock.
type Lifecycle struct {
	reg *Registry
}

func NewLifecycle(reg *Registry) *Lifecycle {
	return &Lifecycle{reg: reg}
}

// Join adds the connection to a room, creating it if needed, assigns a
// peer id on the connection's first join, and announces the new member.
// A connection already in a different room is moved: the old room gets a
// peer-left, no left confirmation is sent to the mover, and the peer id
// is kept.
func (l *Lifecycle) Join(c *core.Conn, roomID domain.RoomID) {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()

	if c.RoomID != "" && c.RoomID != roomID {
		l.autoLeaveLocked(c)
	}

	if c.PeerID == "" {
		c.PeerID = domain.NewPeerID()
	}

	ms := l.reg.ensureLocked(roomID)
	ms[c] = struct{}{}
	c.RoomID = roomID

	count := len(ms)
	roles := rolesOf(ms)
	log.Info().Str("module", "app.lifecycle").
		Str("peer", string(c.PeerID)).Str("room", string(roomID)).Int("count", count).
		Msg("peer joined")

	send(c, protocol.NewJoined(roomID, count, roles, c.PeerID))
	fanout(ms, c, protocol.NewPeerJoined(roomID, count, roles, c.PeerID))
}

// Leave removes the connection from the named room and confirms to the
// leaver. Membership work is skipped when the room does not exist, but
// the room binding is cleared and the departure confirmed regardless.
// The peer id survives: it is stable for the connection's lifetime.
func (l *Lifecycle) Leave(c *core.Conn, roomID domain.RoomID) {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()

	if ms, ok := l.reg.rooms[roomID]; ok {
		delete(ms, c)
		remaining := len(ms)
		log.Info().Str("module", "app.lifecycle").
			Str("peer", string(c.PeerID)).Str("room", string(roomID)).Int("remaining", remaining).
			Msg("peer left")
		if remaining > 0 {
			fanout(ms, nil, protocol.NewPeerLeft(roomID, remaining, rolesOf(ms), c.PeerID, false))
		} else {
			l.reg.deleteIfEmptyLocked(roomID)
		}
	}

	c.RoomID = ""
	send(c, protocol.NewLeft(roomID, c.PeerID))
}

// Disconnect is the close-event cleanup path. It is a no-op when the
// connection never joined or already left, so it is safe to call after an
// explicit Leave. No confirmation is sent: the connection is gone.
func (l *Lifecycle) Disconnect(c *core.Conn) {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()

	if c.RoomID == "" {
		return
	}

	roomID := c.RoomID
	if ms, ok := l.reg.rooms[roomID]; ok {
		delete(ms, c)
		remaining := len(ms)
		log.Info().Str("module", "app.lifecycle").
			Str("peer", string(c.PeerID)).Str("room", string(roomID)).Int("remaining", remaining).
			Msg("peer disconnected")
		if remaining > 0 {
			fanout(ms, nil, protocol.NewPeerLeft(roomID, remaining, rolesOf(ms), c.PeerID, true))
		} else {
			l.reg.deleteIfEmptyLocked(roomID)
		}
	}
	c.RoomID = ""
}

// autoLeaveLocked moves the connection out of its current room before a
// join to another one. Remaining members are notified exactly as for an
// explicit leave. Caller must hold mu.
func (l *Lifecycle) autoLeaveLocked(c *core.Conn) {
	prev := c.RoomID
	ms, ok := l.reg.rooms[prev]
	if !ok {
		c.RoomID = ""
		return
	}
	delete(ms, c)
	remaining := len(ms)
	log.Info().Str("module", "app.lifecycle").
		Str("peer", string(c.PeerID)).Str("room", string(prev)).Int("remaining", remaining).
		Msg("peer moved out of previous room")
	if remaining > 0 {
		fanout(ms, nil, protocol.NewPeerLeft(prev, remaining, rolesOf(ms), c.PeerID, false))
	} else {
		l.reg.deleteIfEmptyLocked(prev)
	}
	c.RoomID = ""
}
