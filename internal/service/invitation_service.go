package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"headta/backend/config"
	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	"headta/backend/internal/repository"
)

// ── 邀请模块业务错误 ──

var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrInvitationUsed     = errors.New("invitation has already been used")
)

// InvitationService 邀请业务接口（邮件投递由外部系统完成）
type InvitationService interface {
	Create(ctx context.Context, req *dto.CreateInvitationRequest, callerID string) (*dto.InvitationResponse, error)
	Validate(ctx context.Context, code string) (*dto.InvitationValidateResponse, error)
	ListPending(ctx context.Context) ([]dto.InvitationResponse, error)
	// Accept 按邀请创建用户并标记邀请已使用，同一邀请并发接受时只有一个成功
	Accept(ctx context.Context, code string, req *dto.AcceptInvitationRequest) (*dto.UserResponse, error)
	Revoke(ctx context.Context, id string, callerID string) error
}

type invitationService struct {
	repo    *repository.Repository
	cache   SuggestionCache
	ttl     time.Duration
	baseURL string
	now     func() time.Time
	logger  *zap.Logger
}

// NewInvitationService 创建 InvitationService 实例
func NewInvitationService(cfg *config.Config, repo *repository.Repository, cache SuggestionCache, logger *zap.Logger) InvitationService {
	return &invitationService{
		repo:    repo,
		cache:   cache,
		ttl:     cfg.Invitation.TTL,
		baseURL: strings.TrimRight(cfg.Server.BaseURL, "/"),
		now:     time.Now,
		logger:  logger,
	}
}

func (s *invitationService) Create(ctx context.Context, req *dto.CreateInvitationRequest, callerID string) (*dto.InvitationResponse, error) {
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ttl := s.ttl
	if req.ExpiresHours > 0 {
		ttl = time.Duration(req.ExpiresHours) * time.Hour
	}
	role := req.Role
	if role == "" {
		role = model.RoleHeadTA
	}

	inv := &model.Invitation{
		Code:      newInvitationCode(),
		Email:     strings.TrimSpace(req.Email),
		Role:      role,
		ExpiresAt: s.now().Add(ttl),
	}
	inv.CreatedByUser(callerID)

	if err := s.repo.Invitation.Create(ctx, inv); err != nil {
		s.logger.Error("创建邀请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("已创建邀请", zap.String("invitation_id", inv.InvitationID), zap.String("role", role))
	return s.toResponse(inv), nil
}

func (s *invitationService) Validate(ctx context.Context, code string) (*dto.InvitationValidateResponse, error) {
	inv, err := s.repo.Invitation.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.InvitationValidateResponse{Valid: false}, nil
		}
		s.logger.Error("查询邀请失败", zap.Error(err))
		return nil, err
	}
	if inv.UsedAt != nil || !s.now().Before(inv.ExpiresAt) {
		return &dto.InvitationValidateResponse{Valid: false}, nil
	}
	return &dto.InvitationValidateResponse{
		Valid:     true,
		Email:     inv.Email,
		ExpiresAt: inv.ExpiresAt.Format(time.RFC3339),
	}, nil
}

func (s *invitationService) ListPending(ctx context.Context) ([]dto.InvitationResponse, error) {
	list, err := s.repo.Invitation.ListPending(ctx, s.now())
	if err != nil {
		s.logger.Error("列出邀请失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.InvitationResponse, 0, len(list))
	for i := range list {
		result = append(result, *s.toResponse(&list[i]))
	}
	return result, nil
}

func (s *invitationService) Accept(ctx context.Context, code string, req *dto.AcceptInvitationRequest) (*dto.UserResponse, error) {
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

	inv, err := txRepo.Invitation.GetByCodeForUpdate(ctx, code)
	if err != nil {
		rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	if inv.UsedAt != nil {
		rollback()
		return nil, ErrInvitationUsed
	}
	if !s.now().Before(inv.ExpiresAt) {
		rollback()
		return nil, ErrInvitationExpired
	}

	if _, err := txRepo.User.GetByEmail(ctx, inv.Email); err == nil {
		rollback()
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		rollback()
		return nil, err
	}

	user := &model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     inv.Email,
		Role:      inv.Role,
		GradYear:  req.GradYear,
	}
	user.CreatedBy = inv.CreatedBy
	if err := txRepo.User.Create(ctx, user); err != nil {
		rollback()
		s.logger.Error("按邀请创建用户失败", zap.Error(err))
		return nil, err
	}

	if err := txRepo.Invitation.MarkUsed(ctx, inv.InvitationID, user.UserID); err != nil {
		rollback()
		s.logger.Error("标记邀请已使用失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	// 新账号可能是 Head TA，需要进入推荐候选
	invalidateSuggestions(ctx, s.cache, s.logger)

	s.logger.Info("邀请已接受", zap.String("invitation_id", inv.InvitationID), zap.String("user_id", user.UserID))
	return toUserResponse(user), nil
}

func (s *invitationService) Revoke(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Invitation.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvitationNotFound
		}
		return err
	}
	if err := s.repo.Invitation.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("撤销邀请失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// newInvitationCode 去掉连字符的 UUIDv4，32 位十六进制
func newInvitationCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *invitationService) toResponse(inv *model.Invitation) *dto.InvitationResponse {
	return &dto.InvitationResponse{
		ID:        inv.InvitationID,
		Code:      inv.Code,
		Email:     inv.Email,
		Role:      inv.Role,
		InviteURL: fmt.Sprintf("%s/invite/%s", s.baseURL, inv.Code),
		ExpiresAt: inv.ExpiresAt.Format(time.RFC3339),
	}
}
