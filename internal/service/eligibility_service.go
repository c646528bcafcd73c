package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"headta/backend/config"
	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	"headta/backend/internal/repository"
)

// 资格校验拒绝原因
const (
	ReasonUserNotFound     = "User not found"
	ReasonNotHeadTA        = "User is not a head TA"
	ReasonOfferingNotFound = "Course offering not found"
	ReasonAlreadyAssigned  = "TA is already assigned to this course"
)

// ErrNotEligible 分配未通过资格校验，具体原因见 EligibilityError.Verdict
var ErrNotEligible = errors.New("assignment is not eligible")

// EligibilityError 携带被拒绝的校验结果
type EligibilityError struct {
	Verdict *dto.EligibilityVerdict
}

func (e *EligibilityError) Error() string {
	return "not eligible: " + strings.Join(e.Verdict.Reasons, "; ")
}

func (e *EligibilityError) Unwrap() error { return ErrNotEligible }

// EligibilityService 分配资格校验
type EligibilityService interface {
	// CanAssignTA 业务规则不满足时通过 verdict 表达，不返回 error
	CanAssignTA(ctx context.Context, userID, courseOfferingID string, proposedHours int) (*dto.EligibilityVerdict, error)
}

type eligibilityService struct {
	repo   *repository.Repository
	rules  config.AssignmentConfig
	logger *zap.Logger
}

// NewEligibilityService 创建 EligibilityService 实例
func NewEligibilityService(repo *repository.Repository, rules config.AssignmentConfig, logger *zap.Logger) EligibilityService {
	return &eligibilityService{repo: repo, rules: rules, logger: logger}
}

func (s *eligibilityService) CanAssignTA(ctx context.Context, userID, courseOfferingID string, proposedHours int) (*dto.EligibilityVerdict, error) {
	verdict, err := checkEligibility(ctx, s.repo, s.rules, userID, courseOfferingID, proposedHours)
	if err != nil {
		s.logger.Error("资格校验失败",
			zap.String("user_id", userID),
			zap.String("course_offering_id", courseOfferingID),
			zap.Error(err))
		return nil, err
	}
	if !verdict.CanAssign {
		s.logger.Debug("资格校验未通过",
			zap.String("user_id", userID),
			zap.String("course_offering_id", courseOfferingID),
			zap.Strings("reasons", verdict.Reasons))
	}
	return verdict, nil
}

// checkEligibility 按固定顺序执行校验：
//
//	1~4 为结构性检查，不满足时立即返回
//	5~6 为容量检查，全部执行并累积原因
func checkEligibility(ctx context.Context, repo *repository.Repository, rules config.AssignmentConfig, userID, courseOfferingID string, proposedHours int) (*dto.EligibilityVerdict, error) {
	verdict := &dto.EligibilityVerdict{
		CanAssign: false,
		Reasons:   []string{},
		MaxHours:  rules.MaxHoursPerWeek,
	}
	reject := func(reason string) (*dto.EligibilityVerdict, error) {
		verdict.Reasons = append(verdict.Reasons, reason)
		return verdict, nil
	}

	// 1. 用户
	user, err := repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reject(ReasonUserNotFound)
		}
		return nil, err
	}

	// 2. 角色
	if user.Role != model.RoleHeadTA {
		return reject(ReasonNotHeadTA)
	}

	// 3. 开课
	offering, err := repo.CourseOffering.GetByID(ctx, courseOfferingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reject(ReasonOfferingNotFound)
		}
		return nil, err
	}

	// 4. 重复分配
	if _, err := repo.TAAssignment.GetByUserAndOffering(ctx, userID, courseOfferingID); err == nil {
		return reject(ReasonAlreadyAssigned)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 5. 学期内工时上限
	summary, err := calculateWorkload(ctx, repo, rules, userID, &repository.SemesterFilter{
		Year:   offering.Year,
		Season: offering.Season,
	})
	if err != nil {
		return nil, err
	}
	verdict.CurrentHours = summary.TotalHoursPerWeek

	if summary.TotalHoursPerWeek+proposedHours > rules.MaxHoursPerWeek {
		verdict.Reasons = append(verdict.Reasons, exceedHoursReason(proposedHours, rules.MaxHoursPerWeek))
	}

	// 6. 学期内课程数上限
	if n := countDistinctOfferings(summary.Assignments); n >= rules.MaxCoursesPerSemester {
		verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("TA already has %d course assignments this semester", n))
	}

	verdict.CanAssign = len(verdict.Reasons) == 0
	return verdict, nil
}

func exceedHoursReason(proposedHours, maxHours int) string {
	return fmt.Sprintf("Adding %d hours would exceed maximum of %d hours per week", proposedHours, maxHours)
}

func countDistinctOfferings(records []model.TAAssignmentRecord) int {
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		seen[records[i].CourseOfferingID] = struct{}{}
	}
	return len(seen)
}
