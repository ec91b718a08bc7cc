package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/middleware"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/service"
)

type DashboardHandler struct {
	Service *service.DashboardService
}

func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/stats", h.GetStats)
	rg.GET("/dashboard/activity", h.GetRecentActivity)
}

// GET /api/dashboard/stats
//
// The caller's first matching role decides which statistics they get.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	role := ""
	for _, r := range []string{model.RoleAdmin, model.RoleFarmer, model.RoleBuyer} {
		if middleware.HasRole(c, r) {
			role = r
			break
		}
	}

	stats, err := h.Service.ComputeStats(c.Request.Context(), role, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/dashboard/activity?limit=10
func (h *DashboardHandler) GetRecentActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	feed, err := h.Service.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}
