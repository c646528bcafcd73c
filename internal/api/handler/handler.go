package handler

import "headta/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Semester   *SemesterHandler
	User       *UserHandler
	Professor  *ProfessorHandler
	Course     *CourseHandler
	Offering   *OfferingHandler
	Assignment *AssignmentHandler
	Invitation *InvitationHandler
	Dashboard  *DashboardHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Semester:   NewSemesterHandler(svc.Semester),
		User:       NewUserHandler(svc.User, svc.Workload, svc.Assignment),
		Professor:  NewProfessorHandler(svc.Professor),
		Course:     NewCourseHandler(svc.Course),
		Offering:   NewOfferingHandler(svc.Course, svc.Eligibility, svc.Suggestion),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Invitation: NewInvitationHandler(svc.Invitation),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
		Export:     NewExportHandler(svc.Export),
	}
}
