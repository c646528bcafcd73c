package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"headta/backend/internal/dto"
	"headta/backend/internal/service"
	"headta/backend/pkg/response"
)

// SemesterHandler 学期日历 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// GetCurrentSemester 当前学期与下一学期
// GET /api/v1/semesters/current
func (h *SemesterHandler) GetCurrentSemester(c *gin.Context) {
	response.OK(c, h.semesterSvc.Overview())
}

// ParseSemester 校验并规范化学期文本
// GET /api/v1/semesters/parse?text=fall%202024
func (h *SemesterHandler) ParseSemester(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		response.BadRequest(c, 10001, "text is required")
		return
	}

	result, err := h.semesterSvc.Parse(text)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}
	response.OK(c, result)
}

// ListSemesters 学期区间
// GET /api/v1/semesters?from=Fall%202024&to=Fall%202026&summer=true
func (h *SemesterHandler) ListSemesters(c *gin.Context) {
	var q dto.SemesterRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, err := h.semesterSvc.Range(&q)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// CalendarICS 学期日历订阅源
// GET /api/v1/semesters/calendar.ics
func (h *SemesterHandler) CalendarICS(c *gin.Context) {
	var q dto.SemesterRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	data, err := h.semesterSvc.CalendarICS(&q)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="semesters.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (h *SemesterHandler) handleSemesterError(c *gin.Context, err error) {
	if writeSemesterError(c, err) {
		return
	}
	response.InternalError(c)
}
