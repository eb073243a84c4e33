// Package app implements the relay core: the room registry, the peer
// lifecycle and the message router. The registry mutex is the single
// synchronization point; lifecycle and router run their whole operation
// under it, including snapshotting membership and enqueueing outbound
// frames, so no member can observe two room events out of order. Actual
// socket writes happen in adapter write pumps, never under the lock.
package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"relay/internal/core"
	"relay/internal/domain"
	"relay/internal/protocol"
)

type members map[*core.Conn]struct{}

// Registry owns the room table. A room exists iff it has at least one
// member; the last departure deletes the entry.
type Registry struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]members
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]members)}
}

// ensureLocked returns the member set for id, creating the room if absent.
// Caller must hold mu.
func (r *Registry) ensureLocked(id domain.RoomID) members {
	ms, ok := r.rooms[id]
	if !ok {
		ms = make(members)
		r.rooms[id] = ms
		log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room created")
	}
	return ms
}

// deleteIfEmptyLocked drops the room entry once its member set is empty.
// Caller must hold mu.
func (r *Registry) deleteIfEmptyLocked(id domain.RoomID) {
	if ms, ok := r.rooms[id]; ok && len(ms) == 0 {
		delete(r.rooms, id)
		log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("empty room cleaned up")
	}
}

// rolesOf lists the peer ids of a member set. A member that somehow has no
// id yet appears as "unknown".
func rolesOf(ms members) []string {
	roles := make([]string, 0, len(ms))
	for c := range ms {
		if c.PeerID == "" {
			roles = append(roles, "unknown")
			continue
		}
		roles = append(roles, string(c.PeerID))
	}
	return roles
}

// send encodes v and enqueues it for one connection. Closed or saturated
// connections are skipped; delivery is best-effort by contract.
func send(c *core.Conn, v any) {
	if !c.Open() {
		return
	}
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Msg("encode outbound")
		return
	}
	if err := c.TrySend(core.Frame(frame)); err != nil {
		log.Debug().Err(err).Str("module", "app.registry").Str("conn", c.ID).Msg("send dropped")
	}
}

// fanout enqueues v for every open member except the excluded one.
// Must run under mu so the open-check matches the membership snapshot.
func fanout(ms members, except *core.Conn, v any) {
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Msg("encode outbound")
		return
	}
	for c := range ms {
		if c == except || !c.Open() {
			continue
		}
		if err := c.TrySend(core.Frame(frame)); err != nil {
			log.Debug().Err(err).Str("module", "app.registry").Str("conn", c.ID).Msg("send dropped")
		}
	}
}

// HasRoom reports whether a room currently exists.
func (r *Registry) HasRoom(id domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[id]
	return ok
}

// MemberCount returns a room's current size, zero if it does not exist.
func (r *Registry) MemberCount(id domain.RoomID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[id])
}

// RoomCount returns the number of live rooms.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// RoomInfo is the read-only view served over HTTP.
type RoomInfo struct {
	Exists    bool   `json:"exists"`
	PeerCount int    `json:"peerCount"`
	Status    string `json:"status"`
}

// Info snapshots one room for the HTTP surface.
func (r *Registry) Info(id domain.RoomID) RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.rooms[id]
	if !ok {
		return RoomInfo{Status: "room_not_found"}
	}
	return RoomInfo{
		Exists:    true,
		PeerCount: len(ms),
		Status:    string(domain.StatusFor(len(ms))),
	}
}
