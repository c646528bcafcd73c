package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"headta/backend/config"
	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	"headta/backend/internal/repository"
	pkgerrors "headta/backend/pkg/errors"
	"headta/backend/pkg/semester"
)

// ── 分配模块业务错误 ──

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrOfferingNotFound   = errors.New("course offering not found")
)

// AssignmentService Head TA 分配写操作
type AssignmentService interface {
	// Assign 在同一事务内锁定候选人、复核资格并写入；未通过时返回 *EligibilityError
	Assign(ctx context.Context, courseOfferingID string, req *dto.AssignRequest, callerID string) (*dto.AssignmentResponse, error)
	Unassign(ctx context.Context, assignmentID string, callerID string) error
	UpdateHours(ctx context.Context, assignmentID string, req *dto.UpdateHoursRequest, callerID string) (*dto.AssignmentResponse, error)
	ListForOffering(ctx context.Context, courseOfferingID string) ([]dto.AssignmentResponse, error)
	ListForUser(ctx context.Context, userID string) (*dto.AssignmentHistory, error)
}

type assignmentService struct {
	repo   *repository.Repository
	rules  config.AssignmentConfig
	cache  SuggestionCache
	now    func() time.Time
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例，cache 可为 nil
func NewAssignmentService(repo *repository.Repository, rules config.AssignmentConfig, cache SuggestionCache, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, rules: rules, cache: cache, now: time.Now, logger: logger}
}

// ────────────────────── Assign ──────────────────────

func (s *assignmentService) Assign(ctx context.Context, courseOfferingID string, req *dto.AssignRequest, callerID string) (*dto.AssignmentResponse, error) {
	proposed := hoursOrDefault(req.HoursPerWeek, s.rules.DefaultHoursPerWeek)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	txRepo := s.repo.WithTx(tx)

	// 锁定候选人行，串行化同一候选人的并发分配；用户不存在时交给资格校验给出原因
	if _, err := txRepo.User.GetByIDForUpdate(ctx, req.UserID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		rollback()
		s.logger.Error("锁定用户失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	verdict, err := checkEligibility(ctx, txRepo, s.rules, req.UserID, courseOfferingID, proposed)
	if err != nil {
		rollback()
		s.logger.Error("事务内资格校验失败", zap.Error(err))
		return nil, err
	}
	if !verdict.CanAssign {
		rollback()
		return nil, &EligibilityError{Verdict: verdict}
	}

	a := &model.TAAssignment{
		UserID:           req.UserID,
		CourseOfferingID: courseOfferingID,
		HoursPerWeek:     req.HoursPerWeek,
	}
	a.CreatedByUser(callerID)

	if err := txRepo.TAAssignment.Create(ctx, a); err != nil {
		rollback()
		s.logger.Error("创建分配失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("Head TA 分配成功",
		zap.String("assignment_id", a.AssignmentID),
		zap.String("user_id", a.UserID),
		zap.String("course_offering_id", courseOfferingID),
		zap.Int("hours_per_week", proposed))
	invalidateSuggestions(ctx, s.cache, s.logger)

	return toAssignmentResponse(a), nil
}

// ────────────────────── Unassign ──────────────────────

func (s *assignmentService) Unassign(ctx context.Context, assignmentID string, callerID string) error {
	if _, err := s.repo.TAAssignment.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("查询分配失败", zap.String("id", assignmentID), zap.Error(err))
		return err
	}

	if err := s.repo.TAAssignment.Delete(ctx, assignmentID, callerID); err != nil {
		s.logger.Error("删除分配失败", zap.String("id", assignmentID), zap.Error(err))
		return err
	}

	invalidateSuggestions(ctx, s.cache, s.logger)
	return nil
}

// ────────────────────── UpdateHours ──────────────────────

func (s *assignmentService) UpdateHours(ctx context.Context, assignmentID string, req *dto.UpdateHoursRequest, callerID string) (*dto.AssignmentResponse, error) {
	a, err := s.repo.TAAssignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询分配失败", zap.String("id", assignmentID), zap.Error(err))
		return nil, err
	}
	if a.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	offering, err := s.repo.CourseOffering.GetByID(ctx, a.CourseOfferingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferingNotFound
		}
		return nil, err
	}

	summary, err := calculateWorkload(ctx, s.repo, s.rules, a.UserID, &repository.SemesterFilter{
		Year:   offering.Year,
		Season: offering.Season,
	})
	if err != nil {
		s.logger.Error("计算工作量失败", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, err
	}

	// 扣除本条记录原工时后再校验上限
	others := summary.TotalHoursPerWeek - hoursOrDefault(a.HoursPerWeek, s.rules.DefaultHoursPerWeek)
	proposed := hoursOrDefault(req.HoursPerWeek, s.rules.DefaultHoursPerWeek)
	if others+proposed > s.rules.MaxHoursPerWeek {
		return nil, &EligibilityError{Verdict: &dto.EligibilityVerdict{
			CanAssign:    false,
			Reasons:      []string{exceedHoursReason(proposed, s.rules.MaxHoursPerWeek)},
			CurrentHours: others,
			MaxHours:     s.rules.MaxHoursPerWeek,
		}}
	}

	a.HoursPerWeek = req.HoursPerWeek
	a.UpdatedByUser(callerID)
	if err := s.repo.TAAssignment.UpdateHours(ctx, a); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新工时失败", zap.String("id", assignmentID), zap.Error(err))
		}
		return nil, err
	}

	invalidateSuggestions(ctx, s.cache, s.logger)
	return toAssignmentResponse(a), nil
}

// ────────────────────── ListForOffering ──────────────────────

func (s *assignmentService) ListForOffering(ctx context.Context, courseOfferingID string) ([]dto.AssignmentResponse, error) {
	if _, err := s.repo.CourseOffering.GetByID(ctx, courseOfferingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferingNotFound
		}
		return nil, err
	}

	list, err := s.repo.TAAssignment.ListByCourseOffering(ctx, courseOfferingID)
	if err != nil {
		s.logger.Error("列出开课分配失败", zap.String("course_offering_id", courseOfferingID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toAssignmentResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── ListForUser ──────────────────────

func (s *assignmentService) ListForUser(ctx context.Context, userID string) (*dto.AssignmentHistory, error) {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	records, err := s.repo.TAAssignment.ListRecordsByUser(ctx, userID, nil)
	if err != nil {
		s.logger.Error("列出用户分配失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	history := &dto.AssignmentHistory{
		Past:    []model.TAAssignmentRecord{},
		Current: []model.TAAssignmentRecord{},
		Future:  []model.TAAssignmentRecord{},
	}
	now := s.now()
	for _, rec := range records {
		term := semester.New(rec.Year, semester.Season(rec.Season))
		switch {
		case semester.IsPast(term, now):
			history.Past = append(history.Past, rec)
		case semester.IsFuture(term, now):
			history.Future = append(history.Future, rec)
		default:
			history.Current = append(history.Current, rec)
		}
	}
	return history, nil
}

// ── 内部辅助方法 ──

func toAssignmentResponse(a *model.TAAssignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:               a.AssignmentID,
		UserID:           a.UserID,
		CourseOfferingID: a.CourseOfferingID,
		HoursPerWeek:     a.HoursPerWeek,
		Version:          a.Version,
	}
	if a.User != nil {
		resp.User = toUserResponse(a.User)
	}
	return resp
}
