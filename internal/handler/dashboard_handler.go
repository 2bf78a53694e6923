package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhrubajit-says/FormForge/internal/response"
	"github.com/Dhrubajit-says/FormForge/internal/service"
)

// DashboardHandler handles dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/v1/stats/dashboard
// Returns the caller's stat cards and latest submissions.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	data, err := h.dashboardService.GetDashboardData(c.Request.Context(), a)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}
