package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast/internal/chat"
	"github.com/roomcast/roomcast/internal/config"
)

// NewServer builds the HTTP server: health probe, room API, WebSocket ingress.
func NewServer(room *chat.Room, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/healthz", healthHandler)

	roomHandlers := NewRoomHandlers(room, logger)
	api := router.Group("/api")
	{
		api.GET("/room", roomHandlers.Overview)
		api.GET("/room/members", roomHandlers.Members)
	}

	router.GET("/ws", NewWSHandler(room, logger).Handle)

	return &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
