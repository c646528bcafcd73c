package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"headta/backend/internal/dto"
	"headta/backend/internal/service"
	"headta/backend/pkg/response"
)

// InvitationHandler 邀请 HTTP 处理器
type InvitationHandler struct {
	invitationSvc service.InvitationService
}

// NewInvitationHandler 创建 InvitationHandler
func NewInvitationHandler(invitationSvc service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationSvc: invitationSvc}
}

// CreateInvitation POST /api/v1/invitations
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	var req dto.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	inv, err := h.invitationSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleInvitationError(c, err)
		return
	}
	response.Created(c, inv)
}

// ListPending GET /api/v1/invitations
func (h *InvitationHandler) ListPending(c *gin.Context) {
	list, err := h.invitationSvc.ListPending(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// RevokeInvitation DELETE /api/v1/invitations/:id
func (h *InvitationHandler) RevokeInvitation(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.invitationSvc.Revoke(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleInvitationError(c, err)
		return
	}
	response.OK(c, nil)
}

// ValidateInvitation 公开接口，无效邀请也返回 200 + valid=false
// GET /api/v1/invitations/:code/validate
func (h *InvitationHandler) ValidateInvitation(c *gin.Context) {
	result, err := h.invitationSvc.Validate(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// AcceptInvitation 公开接口，按邀请创建账号
// POST /api/v1/invitations/:code/accept
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	var req dto.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	user, err := h.invitationSvc.Accept(c.Request.Context(), c.Param("code"), &req)
	if err != nil {
		h.handleInvitationError(c, err)
		return
	}
	response.Created(c, user)
}

// handleInvitationError 统一处理邀请模块业务错误
func (h *InvitationHandler) handleInvitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvitationNotFound):
		response.NotFound(c, 40001, "invitation not found")
	case errors.Is(err, service.ErrInvitationExpired):
		response.Error(c, http.StatusGone, 40002, "invitation has expired")
	case errors.Is(err, service.ErrInvitationUsed):
		response.Conflict(c, 40003, "invitation has already been used")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 20002, "email is already registered")
	default:
		response.InternalError(c)
	}
}
