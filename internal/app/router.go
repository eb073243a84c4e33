package app

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"relay/internal/core"
	"relay/internal/domain"
	"relay/internal/protocol"
)

// Router delivers payloads to room members. It reads the registry but
// never mutates it.
type Router struct {
	reg *Registry
}

func NewRouter(reg *Registry) *Router {
	return &Router{reg: reg}
}

// Broadcast wraps a free-form payload and enqueues it for every open
// member of the room, sender included. An unknown room is a logged no-op:
// there is no reply channel at this call site.
func (rt *Router) Broadcast(roomID domain.RoomID, payload json.RawMessage) {
	rt.reg.mu.Lock()
	defer rt.reg.mu.Unlock()

	ms, ok := rt.reg.rooms[roomID]
	if !ok {
		log.Warn().Str("module", "app.router").Str("room", string(roomID)).Msg("broadcast to unknown room")
		return
	}

	fanout(ms, nil, protocol.NewBroadcast(roomID, payload, time.Now()))
	log.Debug().Str("module", "app.router").Str("room", string(roomID)).Int("members", len(ms)).Msg("broadcast delivered")
}

// RelaySignal routes an offer/answer/candidate. With a target peer id it
// is a unicast keyed strictly on the assigned peer id; without one it
// fans out to every other open member. Routing misses are reported back
// to the sender.
func (rt *Router) RelaySignal(c *core.Conn, sig protocol.Signal) {
	rt.reg.mu.Lock()
	defer rt.reg.mu.Unlock()

	ms, ok := rt.reg.rooms[sig.Room]
	if sig.Room == "" || !ok {
		send(c, protocol.NewError(protocol.TextRoomNotFound))
		return
	}

	envelope := protocol.NewSignalRelay(sig, c.PeerID)

	if sig.TargetPeer != "" {
		var target *core.Conn
		for m := range ms {
			if m.PeerID == sig.TargetPeer {
				target = m
				break
			}
		}
		if target == nil || !target.Open() {
			send(c, protocol.NewError(protocol.TextTargetNotFound))
			return
		}
		send(target, envelope)
		log.Debug().Str("module", "app.router").
			Str("kind", sig.Kind).Str("from", string(c.PeerID)).Str("to", string(sig.TargetPeer)).
			Str("room", string(sig.Room)).Msg("signal relayed")
		return
	}

	fanout(ms, c, envelope)
	log.Debug().Str("module", "app.router").
		Str("kind", sig.Kind).Str("from", string(c.PeerID)).Str("room", string(sig.Room)).
		Msg("signal broadcast")
}
