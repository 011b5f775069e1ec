package http

import (
	"net/http"

	"peerlink/internal/core/domain"
	"peerlink/internal/core/services"
	"peerlink/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler issues agent tokens for deployments that run with auth
// enabled. Routes are public; the rest of the API requires the token.
type AuthHandler struct {
	tokens services.TokenService
}

func NewAuthHandler(tokens services.TokenService) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	router.POST("/auth/token", h.IssueToken)
}

// IssueToken mints a token for an agent. An omitted agent_id gets a
// generated one; the role must be host or viewer.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req struct {
		AgentID domain.AgentID `json:"agent_id"`
		Role    domain.Role    `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "role must be host or viewer"})
		return
	}
	if req.AgentID == "" {
		req.AgentID = domain.AgentID(utils.GenerateAgentID())
	}

	token, err := h.tokens.Issue(req.AgentID, req.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"token":    token,
		"agent_id": req.AgentID,
		"role":     req.Role,
	})
}
