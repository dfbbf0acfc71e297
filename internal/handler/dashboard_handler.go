package handler

import (
	"net/http"

	"github.com/examina/examina-backend/internal/response"
	"github.com/examina/examina-backend/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Counts godoc
// GET /api/v1/supervisor/dashboard
func (h *DashboardHandler) Counts(c *gin.Context) {
	counts, err := h.dashboardService.GetCounts(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"counts": counts})
}
