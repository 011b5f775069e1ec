package http

import (
	"net/http"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/ports"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	roomService ports.RoomService
}

func NewRoomHandler(roomService ports.RoomService) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
	}
}

func (h *RoomHandler) SetupRoutes(api *gin.RouterGroup) {
	api.POST("/rooms", h.EnsureRoom)
	api.GET("/rooms/:id", h.GetRoom)
}

// EnsureRoom upserts a room. An omitted or empty room_id asks the
// registry to generate one.
func (h *RoomHandler) EnsureRoom(c *gin.Context) {
	var req struct {
		RoomID domain.RoomID `json:"room_id"`
	}
	// An empty body is a valid create-with-generated-id request.
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
	}

	room, err := h.roomService.Ensure(c.Request.Context(), req.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"room": room,
	})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.Get(c.Request.Context(), domain.RoomID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"room": room,
	})
}
