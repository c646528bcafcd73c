package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"headta/backend/internal/model"
)

// InvitationRepository 邀请数据访问接口
type InvitationRepository interface {
	Create(ctx context.Context, inv *model.Invitation) error
	GetByID(ctx context.Context, id string) (*model.Invitation, error)
	GetByCode(ctx context.Context, code string) (*model.Invitation, error)
	// GetByCodeForUpdate 使用 SELECT ... FOR UPDATE 行级锁查询，防止同一邀请被并发使用
	GetByCodeForUpdate(ctx context.Context, code string) (*model.Invitation, error)
	// ListPending 未使用且未过期的邀请
	ListPending(ctx context.Context, now time.Time) ([]model.Invitation, error)
	MarkUsed(ctx context.Context, invitationID, userID string) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type invitationRepo struct {
	db *gorm.DB
}

// NewInvitationRepo 创建 InvitationRepository 实例
func NewInvitationRepo(db *gorm.DB) InvitationRepository {
	return &invitationRepo{db: db}
}

func (r *invitationRepo) Create(ctx context.Context, inv *model.Invitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invitationRepo) GetByID(ctx context.Context, id string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.db.WithContext(ctx).
		Where("invitation_id = ?", id).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByCode 仅返回未软删除（未撤销）的记录
func (r *invitationRepo) GetByCode(ctx context.Context, code string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByCodeForUpdate 必须在已有事务的 *gorm.DB 上调用（通过 Repository.WithTx 注入事务连接）
func (r *invitationRepo) GetByCodeForUpdate(ctx context.Context, code string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.db.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("code = ?", code).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepo) ListPending(ctx context.Context, now time.Time) ([]model.Invitation, error) {
	var list []model.Invitation
	err := r.db.WithContext(ctx).
		Where("used_at IS NULL AND expires_at > ?", now).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// MarkUsed 标记邀请为已使用
func (r *invitationRepo) MarkUsed(ctx context.Context, invitationID, userID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.Invitation{}).
		Where("invitation_id = ?", invitationID).
		Updates(map[string]interface{}{
			"used_at":    now,
			"used_by":    userID,
			"updated_at": now,
			"updated_by": userID,
		}).Error
}

func (r *invitationRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Invitation{}).
		Where("invitation_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
