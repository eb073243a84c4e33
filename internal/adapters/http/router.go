// Package http wires the gin surface: the websocket endpoint, the health
// probe and the room-info read path.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"relay/internal/adapters/signal"
	"relay/internal/app"
	"relay/internal/config"
	"relay/internal/domain"
)

func SetupRouter(cfg *config.Config, ctl *signal.Controller, reg *app.Registry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	r.GET("/rooms/:room", func(c *gin.Context) {
		info := reg.Info(domain.RoomID(c.Param("room")))
		c.JSON(http.StatusOK, info)
	})

	r.GET("/ws", ctl.HandleWS)

	return r
}
