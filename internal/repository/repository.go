package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User           UserRepository
	Professor      ProfessorRepository
	Course         CourseRepository
	CourseOffering CourseOfferingRepository
	TAAssignment   TAAssignmentRepository
	Invitation     InvitationRepository
}

// SemesterFilter 按学期过滤（Year + Season 同时给出才生效）
type SemesterFilter struct {
	Year   int
	Season string
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		User:           NewUserRepo(db),
		Professor:      NewProfessorRepo(db),
		Course:         NewCourseRepo(db),
		CourseOffering: NewCourseOfferingRepo(db),
		TAAssignment:   NewTAAssignmentRepo(db),
		Invitation:     NewInvitationRepo(db),
	}
}

// BeginTx 开启事务。
// 单元测试中以 mock 组装的 Repository 没有 db，此时返回 (nil, nil)，
// 调用方需对 tx 判空后再 Commit/Rollback。
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
