package handler

import (
	"github.com/gin-gonic/gin"

	"headta/backend/internal/dto"
	"headta/backend/internal/service"
	"headta/backend/pkg/response"
)

// OfferingHandler 开课 HTTP 处理器，包含资格校验与推荐两个只读查询
type OfferingHandler struct {
	courseSvc      service.CourseService
	eligibilitySvc service.EligibilityService
	suggestionSvc  service.SuggestionService
}

// NewOfferingHandler 创建 OfferingHandler
func NewOfferingHandler(courseSvc service.CourseService, eligibilitySvc service.EligibilityService, suggestionSvc service.SuggestionService) *OfferingHandler {
	return &OfferingHandler{courseSvc: courseSvc, eligibilitySvc: eligibilitySvc, suggestionSvc: suggestionSvc}
}

// ListOfferings 开课列表，可按学期过滤
// GET /api/v1/offerings?semester=Fall%202024
func (h *OfferingHandler) ListOfferings(c *gin.Context) {
	term, ok := OptionalSemester(c)
	if !ok {
		return
	}

	list, err := h.courseSvc.ListOfferings(c.Request.Context(), term)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetOffering GET /api/v1/offerings/:id
func (h *OfferingHandler) GetOffering(c *gin.Context) {
	o, err := h.courseSvc.GetOffering(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OK(c, o)
}

// CreateOffering POST /api/v1/offerings
func (h *OfferingHandler) CreateOffering(c *gin.Context) {
	var req dto.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	o, err := h.courseSvc.CreateOffering(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.Created(c, o)
}

// DeleteOffering DELETE /api/v1/offerings/:id
func (h *OfferingHandler) DeleteOffering(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.courseSvc.DeleteOffering(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OK(c, nil)
}

// CheckEligibility 资格校验，拒绝原因在 verdict 中返回
// GET /api/v1/offerings/:id/eligibility?user_id=&hours=
func (h *OfferingHandler) CheckEligibility(c *gin.Context) {
	var q dto.EligibilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "user_id and hours are required")
		return
	}

	verdict, err := h.eligibilitySvc.CanAssignTA(c.Request.Context(), q.UserID, c.Param("id"), q.Hours)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, verdict)
}

// ListSuggestions 推荐的 Head TA 候选人
// GET /api/v1/offerings/:id/suggestions?limit=5
func (h *OfferingHandler) ListSuggestions(c *gin.Context) {
	var q dto.SuggestionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, err := h.suggestionSvc.SuggestAssignments(c.Request.Context(), c.Param("id"), q.Limit)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}
