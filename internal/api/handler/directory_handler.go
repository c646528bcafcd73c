package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"headta/backend/internal/dto"
	"headta/backend/internal/service"
	"headta/backend/pkg/response"
)

// ────────────────────── Professor ──────────────────────

// ProfessorHandler 教授目录 HTTP 处理器
type ProfessorHandler struct {
	professorSvc service.ProfessorService
}

// NewProfessorHandler 创建 ProfessorHandler
func NewProfessorHandler(professorSvc service.ProfessorService) *ProfessorHandler {
	return &ProfessorHandler{professorSvc: professorSvc}
}

// ListProfessors GET /api/v1/professors
func (h *ProfessorHandler) ListProfessors(c *gin.Context) {
	list, err := h.professorSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetProfessor GET /api/v1/professors/:id
func (h *ProfessorHandler) GetProfessor(c *gin.Context) {
	p, err := h.professorSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OK(c, p)
}

// CreateProfessor POST /api/v1/professors
func (h *ProfessorHandler) CreateProfessor(c *gin.Context) {
	var req dto.CreateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	p, err := h.professorSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.Created(c, p)
}

// ────────────────────── Course ──────────────────────

// CourseHandler 课程目录 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	list, err := h.courseSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetCourse GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OK(c, course)
}

// CreateCourse POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.Created(c, course)
}

// handleDirectoryError 教授/课程/开课共用的错误映射
func handleDirectoryError(c *gin.Context, err error) {
	if writeSemesterError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrProfessorNotFound):
		response.NotFound(c, 20101, "professor not found")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20201, "course not found")
	case errors.Is(err, service.ErrCourseNumberExists):
		response.Conflict(c, 20202, "course number already exists")
	case errors.Is(err, service.ErrOfferingNotFound):
		response.NotFound(c, 20301, "course offering not found")
	case errors.Is(err, service.ErrOfferingExists):
		response.Conflict(c, 20302, "course is already offered in this semester")
	default:
		response.InternalError(c)
	}
}
