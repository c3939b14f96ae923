package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promoagente/promoagente-backend/internal/database/repository"
	"github.com/promoagente/promoagente-backend/internal/services"
)

// SessionHandler handles HTTP requests for session state and archived promotions
type SessionHandler struct {
	memory     services.SessionStore
	promotions *repository.PromotionRepository
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(memory services.SessionStore, promotions *repository.PromotionRepository) *SessionHandler {
	return &SessionHandler{memory: memory, promotions: promotions}
}

// GetSession handles GET /api/v1/sessions/:sessionid
// @Summary Get session state
// @Description Retrieve the current promotion state for a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionid path string true "Session ID"
// @Success 200 {object} map[string]interface{} "success: true, data: promotion state"
// @Failure 404 {object} map[string]interface{} "success: false, error: error message"
// @Failure 503 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/sessions/{sessionid} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("sessionid")

	state, err := h.memory.Load(sessionID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Failed to load session",
		})
		return
	}
	if state == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Session not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    state,
	})
}

// DeleteSession handles DELETE /api/v1/sessions/:sessionid
// @Summary Delete a session
// @Description Discard the stored promotion state for a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionid path string true "Session ID"
// @Success 200 {object} map[string]interface{} "success: true"
// @Failure 503 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/sessions/{sessionid} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("sessionid")

	if err := h.memory.Delete(sessionID); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Failed to delete session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Session deleted",
	})
}

// GetPromotions handles GET /api/v1/promotions
// @Summary List archived promotions
// @Description Retrieve all finalized promotions, newest first
// @Tags promotions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "success: true, data: promotions"
// @Failure 500 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/promotions [get]
func (h *SessionHandler) GetPromotions(c *gin.Context) {
	promos, err := h.promotions.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch promotions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    promos,
		"count":   len(promos),
	})
}
