package signal

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"relay/internal/core"
)

// readPump owns all reads on the connection. When it returns the
// connection is gone: membership is cleaned up and the sender closed.
func (ctl *Controller) readPump(conn *core.Conn, c *wsConn) {
	defer func() {
		ctl.lifecycle.Disconnect(conn)
		c.Close()
		log.Info().Str("module", "adapters.signal").Str("conn", conn.ID).Msg("connection closed")
	}()

	c.raw.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.raw.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.raw.SetPongHandler(func(string) error {
		return c.raw.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		_, data, err := c.raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "adapters.signal").Str("conn", conn.ID).Msg("read error")
			}
			return
		}
		ctl.dispatch(conn, data)
	}
}

// writePump owns all writes: queued frames and keepalive pings.
func (ctl *Controller) writePump(c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.raw.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.raw.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait))
			if !ok {
				_ = c.raw.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.raw.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Str("module", "adapters.signal").Msg("write error")
				return
			}
		case <-ticker.C:
			_ = c.raw.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait))
			if err := c.raw.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
