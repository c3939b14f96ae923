package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/promoagente/promoagente-backend/internal/models"
	"github.com/promoagente/promoagente-backend/internal/services"
)

// ChatHandler handles HTTP requests for conversation turns
type ChatHandler struct {
	orchestrator *services.Orchestrator
}

// NewChatHandler creates a new ChatHandler instance
func NewChatHandler(orchestrator *services.Orchestrator) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator}
}

// HandleChat handles POST /api/v1/chat
// @Summary Process a conversation turn
// @Description Send a user message and receive the assistant response plus promotion progress
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "User message and optional session id"
// @Success 200 {object} map[string]interface{} "success: true, data: turn result"
// @Failure 400 {object} map[string]interface{} "success: false, error: error message"
// @Failure 503 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/chat [post]
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	result, err := h.orchestrator.HandleMessage(c.Request.Context(), req.Message, sessionID)
	if err != nil {
		logrus.Errorf("Turn failed for session %s: %v", sessionID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Sistema temporariamente indisponível. Tente novamente em instantes.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
