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

// maxImportFileSize 花名册文件大小上限
const maxImportFileSize = 5 << 20

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc       service.UserService
	workloadSvc   service.WorkloadService
	assignmentSvc service.AssignmentService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService, workloadSvc service.WorkloadService, assignmentSvc service.AssignmentService) *UserHandler {
	return &UserHandler{userSvc: userSvc, workloadSvc: workloadSvc, assignmentSvc: assignmentSvc}
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// ListUsers 用户列表
// GET /api/v1/users?role=head_ta&keyword=&page=&page_size=
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// CreateUser 创建用户
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.Created(c, user)
}

// UpdateUser 更新用户
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// DeleteUser 删除用户
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

// ImportUsers 导入 Head TA 花名册
// POST /api/v1/users/import  multipart/form-data, field="file"
func (h *UserHandler) ImportUsers(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 20008, "please upload an .xlsx file in field \"file\"")
		return
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		response.Error(c, http.StatusRequestEntityTooLarge, 20009, "file must not exceed 5MB")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rows, err := h.userSvc.ParseImportFile(file)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	result, err := h.userSvc.ImportUsers(c.Request.Context(), rows, callerID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// GetWorkload Head TA 工作量
// GET /api/v1/users/:id/workload?semester=Fall%202024
func (h *UserHandler) GetWorkload(c *gin.Context) {
	term, ok := OptionalSemester(c)
	if !ok {
		return
	}

	summary, err := h.workloadSvc.CalculateWorkload(c.Request.Context(), c.Param("id"), term)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, summary)
}

// ListAssignments Head TA 的分配历史（过去/当前/未来）
// GET /api/v1/users/:id/assignments
func (h *UserHandler) ListAssignments(c *gin.Context) {
	history, err := h.assignmentSvc.ListForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, history)
}

// handleUserError 统一处理用户模块业务错误
func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "user not found")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 20002, "email is already registered")
	case errors.Is(err, service.ErrUserSelfDelete):
		response.Forbidden(c, 20003, "cannot delete yourself")
	case errors.Is(err, service.ErrUserSelfRole):
		response.Forbidden(c, 20004, "cannot change your own role")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 20010, "user was modified concurrently, reload and retry")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 20005, err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 20006, err.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 20007, err.Error())
	case errors.Is(err, service.ErrImportUnreadable):
		response.BadRequest(c, 20008, err.Error())
	default:
		response.InternalError(c)
	}
}
