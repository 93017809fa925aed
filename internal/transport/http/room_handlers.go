package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast/internal/chat"
)

// RoomHandlers provides HTTP handlers for room introspection endpoints.
type RoomHandlers struct {
	room *chat.Room
	log  *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(room *chat.Room, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		room: room,
		log:  logger,
	}
}

// RoomResponse represents the room snapshot in API responses.
type RoomResponse struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
	History int    `json:"history"`
}

// MembersResponse lists the display names of current members.
type MembersResponse struct {
	Members []string `json:"members"`
}

// Overview reports the room name, member count, and buffered history size.
// GET /api/room
func (h *RoomHandlers) Overview(c *gin.Context) {
	c.JSON(http.StatusOK, RoomResponse{
		Name:    h.room.Name(),
		Members: h.room.MemberCount(),
		History: len(h.room.History()),
	})
}

// Members lists the display names of everyone currently in the room.
// GET /api/room/members
func (h *RoomHandlers) Members(c *gin.Context) {
	c.JSON(http.StatusOK, MembersResponse{Members: h.room.MemberNames()})
}
