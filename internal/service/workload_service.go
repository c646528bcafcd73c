package service

import (
	"context"

	"go.uber.org/zap"

	"headta/backend/config"
	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	"headta/backend/internal/repository"
	"headta/backend/pkg/semester"
)

// WorkloadService Head TA 工作量计算
type WorkloadService interface {
	// CalculateWorkload term 为 nil 时统计全部学期。
	// 没有任何分配时返回零值汇总而不是错误；只有数据访问失败才返回 error。
	CalculateWorkload(ctx context.Context, userID string, term *semester.Semester) (*dto.WorkloadSummary, error)
}

type workloadService struct {
	repo   *repository.Repository
	rules  config.AssignmentConfig
	logger *zap.Logger
}

// NewWorkloadService 创建 WorkloadService 实例
func NewWorkloadService(repo *repository.Repository, rules config.AssignmentConfig, logger *zap.Logger) WorkloadService {
	return &workloadService{repo: repo, rules: rules, logger: logger}
}

func (s *workloadService) CalculateWorkload(ctx context.Context, userID string, term *semester.Semester) (*dto.WorkloadSummary, error) {
	var filter *repository.SemesterFilter
	if term != nil {
		filter = &repository.SemesterFilter{Year: term.Year, Season: string(term.Season)}
	}
	summary, err := calculateWorkload(ctx, s.repo, s.rules, userID, filter)
	if err != nil {
		s.logger.Error("计算工作量失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return summary, nil
}

// calculateWorkload 供资格校验与事务内复核共用，repo 可以是事务绑定的 Repository
func calculateWorkload(ctx context.Context, repo *repository.Repository, rules config.AssignmentConfig, userID string, filter *repository.SemesterFilter) (*dto.WorkloadSummary, error) {
	records, err := repo.TAAssignment.ListRecordsByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.TAAssignmentRecord{}
	}

	total := 0
	for i := range records {
		total += hoursOrDefault(records[i].HoursPerWeek, rules.DefaultHoursPerWeek)
	}

	return &dto.WorkloadSummary{
		UserID:            userID,
		TotalHoursPerWeek: total,
		Assignments:       records,
	}, nil
}

// hoursOrDefault NULL 工时按默认值计
func hoursOrDefault(h *int, def int) int {
	if h == nil {
		return def
	}
	return *h
}
