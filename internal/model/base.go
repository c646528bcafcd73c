package model

import (
	"time"

	"gorm.io/gorm"
)

// VersionedModel 目录表共用的审计、软删除与乐观锁字段
//
//	Version 每次受控更新 +1，仓储层以 WHERE version = ? 检测并发修改
type VersionedModel struct {
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string        `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string        `gorm:"type:uuid"                          json:"updated_by,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index"                              json:"-"`
	DeletedBy *string        `gorm:"type:uuid"                          json:"-"`
	Version   int            `gorm:"not null;default:1"                 json:"version"`
}

// CreatedByUser 记录创建人（同时作为首个更新人）
func (m *VersionedModel) CreatedByUser(userID string) {
	m.CreatedBy = &userID
	m.UpdatedBy = &userID
}

// UpdatedByUser 记录最近一次更新人
func (m *VersionedModel) UpdatedByUser(userID string) {
	m.UpdatedBy = &userID
}
