package handler

import (
	"github.com/gin-gonic/gin"

	"headta/backend/internal/service"
	"headta/backend/pkg/response"
)

// DashboardHandler 管理员概览 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// GetDashboard GET /api/v1/dashboard?semester=Fall%202024
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	term, ok := OptionalSemester(c)
	if !ok {
		return
	}

	result, err := h.dashboardSvc.Get(c.Request.Context(), term)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
