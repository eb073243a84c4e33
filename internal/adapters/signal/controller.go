// Package signal adapts websocket transport to the relay core: it owns
// the per-connection pump goroutines and dispatches inbound frames to the
// lifecycle manager or the message router.
package signal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"relay/internal/app"
	"relay/internal/config"
	"relay/internal/core"
	"relay/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	cfg       *config.Config
	lifecycle *app.Lifecycle
	router    *app.Router
}

func NewController(cfg *config.Config, lc *app.Lifecycle, rt *app.Router) *Controller {
	return &Controller{cfg: cfg, lifecycle: lc, router: rt}
}

// HandleWS upgrades the request and starts the connection's pumps.
func (ctl *Controller) HandleWS(c *gin.Context) {
	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("ws upgrade")
		return
	}

	sc := newWSConn(raw, ctl.cfg.SendBuffer)
	conn := core.NewConn(uuid.NewString()[:8], sc)
	log.Info().Str("module", "adapters.signal").Str("conn", conn.ID).Msg("connection established")

	go ctl.writePump(sc)
	go ctl.readPump(conn, sc)
}

// dispatch decodes one frame and routes it. Malformed input earns an
// error reply and the connection lives on; an unrecognized type is logged
// and ignored.
func (ctl *Controller) dispatch(conn *core.Conn, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownType) {
			log.Warn().Err(err).Str("module", "adapters.signal").Str("conn", conn.ID).Msg("ignoring frame")
			return
		}
		log.Error().Err(err).Str("module", "adapters.signal").Str("conn", conn.ID).Msg("bad frame")
		ctl.reply(conn, protocol.NewError(protocol.TextInvalidFormat))
		return
	}

	switch m := msg.(type) {
	case protocol.Join:
		if err := protocol.Validate(m); err != nil {
			ctl.reply(conn, protocol.NewError(protocol.TextRoomRequired))
			return
		}
		log.Debug().Str("module", "adapters.signal").Str("conn", conn.ID).Str("room", string(m.Room)).Msg("join")
		ctl.lifecycle.Join(conn, m.Room)
	case protocol.Leave:
		log.Debug().Str("module", "adapters.signal").Str("conn", conn.ID).Str("room", string(m.Room)).Msg("leave")
		ctl.lifecycle.Leave(conn, m.Room)
	case protocol.Chat:
		log.Debug().Str("module", "adapters.signal").Str("conn", conn.ID).Str("room", string(m.Room)).Msg("message")
		ctl.router.Broadcast(m.Room, m.Message)
	case protocol.Signal:
		log.Debug().Str("module", "adapters.signal").Str("conn", conn.ID).Str("room", string(m.Room)).Str("kind", m.Kind).Msg("signal")
		ctl.router.RelaySignal(conn, m)
	}
}

func (ctl *Controller) reply(conn *core.Conn, v any) {
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("encode reply")
		return
	}
	if err := conn.TrySend(core.Frame(frame)); err != nil {
		log.Debug().Err(err).Str("module", "adapters.signal").Str("conn", conn.ID).Msg("reply dropped")
	}
}
