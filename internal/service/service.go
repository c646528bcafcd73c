package service

import (
	"go.uber.org/zap"

	"headta/backend/config"
	"headta/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Semester    SemesterService
	Workload    WorkloadService
	Eligibility EligibilityService
	Suggestion  SuggestionService
	Assignment  AssignmentService
	User        UserService
	Professor   ProfessorService
	Course      CourseService
	Invitation  InvitationService
	Dashboard   DashboardService
	Export      ExportService
}

// NewService 创建 Service 聚合。cache 为 nil 时推荐结果不缓存
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache SuggestionCache,
	logger *zap.Logger,
) *Service {
	rules := cfg.Assignment

	var suggestion SuggestionService = NewSuggestionService(repo, rules, logger)
	if cache != nil {
		suggestion = NewCachedSuggestionService(suggestion, cache, cfg.Cache.SuggestionTTL, rules.SuggestionLimit, logger)
	}

	return &Service{
		Semester:    NewSemesterService(logger),
		Workload:    NewWorkloadService(repo, rules, logger),
		Eligibility: NewEligibilityService(repo, rules, logger),
		Suggestion:  suggestion,
		Assignment:  NewAssignmentService(repo, rules, cache, logger),
		User:        NewUserService(repo, cache, logger),
		Professor:   NewProfessorService(repo, logger),
		Course:      NewCourseService(repo, cache, logger),
		Invitation:  NewInvitationService(cfg, repo, cache, logger),
		Dashboard:   NewDashboardService(repo, rules, logger),
		Export:      NewExportService(repo, rules, logger),
	}
}
