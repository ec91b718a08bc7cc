package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/middleware"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/service"
)

// AdminHandler serves the moderation queue and review decisions. All
// routes are registered behind the ADMIN role middleware.
type AdminHandler struct {
	Moderation *service.ModerationService
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/listings/pending", h.GetPendingQueue)
	rg.PUT("/admin/listings/:id/review", h.Review)
}

// GET /api/admin/listings/pending?limit=20&offset=0
//
// Ranked by trust score descending across the whole pending set, so a
// high-score submission never hides behind a page boundary.
func (h *AdminHandler) GetPendingQueue(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	queue, err := h.Moderation.PendingQueue(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

// ReviewDTO carries an admin decision.
type ReviewDTO struct {
	Decision string  `json:"decision" binding:"required"`
	Notes    *string `json:"notes"`
}

// PUT /api/admin/listings/:id/review
func (h *AdminHandler) Review(c *gin.Context) {
	var req ReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	listing, err := h.Moderation.Review(c.Request.Context(), c.Param("id"),
		req.Decision, middleware.UserID(c), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "listing " + listing.Status, "listing": listing})
}
