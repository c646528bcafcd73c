package model

import "time"

// Invitation 邀请表，对应 invitations（邮件投递由外部系统负责）
type Invitation struct {
	InvitationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invitation_id"`
	Code         string     `gorm:"type:varchar(50);not null"                      json:"code"`
	Email        string     `gorm:"type:varchar(255);not null"                     json:"email"`
	Role         string     `gorm:"type:varchar(20);not null;default:'head_ta'"    json:"role"`
	ExpiresAt    time.Time  `gorm:"not null"                                       json:"expires_at"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	UsedBy       *string    `gorm:"type:uuid"                                      json:"used_by,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Invitation) TableName() string { return "invitations" }
