package http

import (
	"net/http"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/ports"
	apperrors "peerlink/pkg/errors"

	"github.com/gin-gonic/gin"
)

// RelayHandler exposes the six signaling operations. Absence of a
// pending payload is a 200 with a null payload, never an error; the
// mode field tells clients which backend served them.
type RelayHandler struct {
	relayService ports.RelayService
}

func NewRelayHandler(relayService ports.RelayService) *RelayHandler {
	return &RelayHandler{
		relayService: relayService,
	}
}

func (h *RelayHandler) SetupRoutes(api *gin.RouterGroup) {
	api.POST("/rooms/:id/offer", h.PublishOffer)
	api.GET("/rooms/:id/offer", h.ConsumeOffer)
	api.POST("/rooms/:id/answer", h.PublishAnswer)
	api.GET("/rooms/:id/answer", h.ConsumeAnswer)
	api.POST("/rooms/:id/candidates", h.PublishCandidate)
	api.GET("/rooms/:id/candidates", h.ConsumeCandidates)
}

func respondError(c *gin.Context, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		c.JSON(appErr.HTTPStatus, gin.H{
			"ok":    false,
			"error": appErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"ok":    false,
		"error": err.Error(),
	})
}

func (h *RelayHandler) PublishOffer(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))

	var req struct {
		HostID      domain.AgentID            `json:"host_id"`
		Description domain.SessionDescription `json:"description"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	mode, err := h.relayService.PublishOffer(c.Request.Context(), room, req.HostID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"mode": mode,
	})
}

func (h *RelayHandler) ConsumeOffer(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))

	offer, mode, err := h.relayService.ConsumeOffer(c.Request.Context(), room)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"mode":  mode,
		"offer": offer,
	})
}

func (h *RelayHandler) PublishAnswer(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))

	var req struct {
		HostID      domain.AgentID            `json:"host_id"`
		Description domain.SessionDescription `json:"description"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	mode, err := h.relayService.PublishAnswer(c.Request.Context(), room, req.HostID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"mode": mode,
	})
}

func (h *RelayHandler) ConsumeAnswer(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))
	host := domain.AgentID(c.Query("host_id"))

	answer, mode, err := h.relayService.ConsumeAnswer(c.Request.Context(), room, host)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"mode":   mode,
		"answer": answer,
	})
}

func (h *RelayHandler) PublishCandidate(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))

	var req struct {
		Role      domain.Role      `json:"role"`
		Candidate domain.Candidate `json:"candidate"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	mode, err := h.relayService.PublishCandidate(c.Request.Context(), room, req.Role, req.Candidate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"mode": mode,
	})
}

func (h *RelayHandler) ConsumeCandidates(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))
	role := domain.Role(c.Query("role"))

	candidates, mode, err := h.relayService.ConsumeCandidates(c.Request.Context(), room, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"mode":       mode,
		"candidates": candidates,
	})
}
