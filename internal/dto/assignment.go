package dto

import "headta/backend/internal/model"

// ── 工作量 ──

// WorkloadSummary 某个 Head TA 的工作量汇总
type WorkloadSummary struct {
	UserID            string                     `json:"user_id"`
	TotalHoursPerWeek int                        `json:"total_hours_per_week"`
	Assignments       []model.TAAssignmentRecord `json:"assignments"`
}

// ── 资格校验 ──

// EligibilityVerdict 资格校验结果，Reasons 为空切片（而非 nil）表示无拒绝原因
type EligibilityVerdict struct {
	CanAssign    bool     `json:"can_assign"`
	Reasons      []string `json:"reasons"`
	CurrentHours int      `json:"current_hours"`
	MaxHours     int      `json:"max_hours"`
}

// EligibilityQuery GET /offerings/:id/eligibility?user_id=&hours=
type EligibilityQuery struct {
	UserID string `form:"user_id" binding:"required,uuid"`
	Hours  int    `form:"hours"   binding:"required,min=1,max=168"`
}

// ── 推荐 ──

// Suggestion 排序后的候选 Head TA
type Suggestion struct {
	UserID         string   `json:"user_id"`
	UserName       string   `json:"user_name"`
	Score          int      `json:"score"`
	Reasons        []string `json:"reasons"`
	SuggestedHours int      `json:"suggested_hours"`
	CurrentHours   int      `json:"current_hours"`
	MaxHours       int      `json:"max_hours"`
}

// SuggestionQuery GET /offerings/:id/suggestions?limit=
type SuggestionQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// ── 分配 ──

// AssignRequest 创建分配请求，hours_per_week 为空时按默认工时计
type AssignRequest struct {
	UserID       string `json:"user_id"        binding:"required,uuid"`
	HoursPerWeek *int   `json:"hours_per_week" binding:"omitempty,min=1,max=168"`
}

// UpdateHoursRequest 修改分配工时请求
type UpdateHoursRequest struct {
	HoursPerWeek *int `json:"hours_per_week" binding:"omitempty,min=1,max=168"`
	Version      int  `json:"version"        binding:"required,min=1"`
}

// AssignmentResponse 分配记录响应
type AssignmentResponse struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	CourseOfferingID string        `json:"course_offering_id"`
	HoursPerWeek     *int          `json:"hours_per_week"`
	Version          int           `json:"version"`
	User             *UserResponse `json:"user,omitempty"`
}

// AssignmentHistory 用户分配记录按学期时态分组
type AssignmentHistory struct {
	Past    []model.TAAssignmentRecord `json:"past"`
	Current []model.TAAssignmentRecord `json:"current"`
	Future  []model.TAAssignmentRecord `json:"future"`
}
