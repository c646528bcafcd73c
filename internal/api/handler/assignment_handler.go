package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"headta/backend/internal/dto"
	"headta/backend/internal/service"
	pkgerrors "headta/backend/pkg/errors"
	"headta/backend/pkg/response"
)

// AssignmentHandler Head TA 分配 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// ListForOffering 开课的全部分配
// GET /api/v1/offerings/:id/assignments
func (h *AssignmentHandler) ListForOffering(c *gin.Context) {
	list, err := h.assignmentSvc.ListForOffering(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// Assign 为开课分配 Head TA
// POST /api/v1/offerings/:id/assignments
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.Assign(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.Created(c, a)
}

// UpdateHours 修改每周工时
// PUT /api/v1/assignments/:id/hours
func (h *AssignmentHandler) UpdateHours(c *gin.Context) {
	var req dto.UpdateHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.UpdateHours(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, a)
}

// Unassign 取消分配
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.assignmentSvc.Unassign(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleAssignmentError 统一处理分配模块业务错误
func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	var eligErr *service.EligibilityError
	switch {
	case errors.As(err, &eligErr):
		response.ErrorWithData(c, http.StatusConflict, 30002, "head TA is not eligible for this assignment", eligErr.Verdict)
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 30001, "assignment not found")
	case errors.Is(err, service.ErrOfferingNotFound):
		response.NotFound(c, 20301, "course offering not found")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "user not found")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 30003, "assignment was modified concurrently, reload and retry")
	default:
		response.InternalError(c)
	}
}
