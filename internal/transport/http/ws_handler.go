package http

import (
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast/internal/chat"
)

// WSHandler upgrades HTTP connections and runs a chat session over each one.
type WSHandler struct {
	room *chat.Room
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(room *chat.Room, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{room: room, log: logger}
}

// Handle upgrades the request, starts a session on the shared room, and
// blocks until that session ends.
// GET /ws
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	sess := chat.NewSession(h.room, newWSConn(conn, c.Request.RemoteAddr), h.log)
	sess.Start()
	<-sess.Done()
}
