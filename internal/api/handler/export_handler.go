package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"headta/backend/internal/service"
	"headta/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAssignments 导出学期分配表
// GET /api/v1/export/assignments?semester=Fall%202024
func (h *ExportHandler) ExportAssignments(c *gin.Context) {
	term, ok := OptionalSemester(c)
	if !ok {
		return
	}
	if term == nil {
		response.BadRequest(c, 10001, "semester is required")
		return
	}

	buf, filename, err := h.exportSvc.ExportAssignments(c.Request.Context(), *term)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoAssignments):
		response.NotFound(c, 30004, "no head TA assignments in this semester")
	default:
		response.InternalError(c)
	}
}
