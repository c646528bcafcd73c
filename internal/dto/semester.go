package dto

import "headta/backend/pkg/semester"

// ── 学期日历 DTO ──

// SemesterRangeQuery GET /semesters?from=Fall%202023&to=Spring%202025&summer=true
type SemesterRangeQuery struct {
	From          string `form:"from"   binding:"omitempty,max=20"`
	To            string `form:"to"     binding:"omitempty,max=20"`
	IncludeSummer bool   `form:"summer"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	semester.Semester
	Status string `json:"status"` // past | current | future
}

// SemesterOverview 当前学期与下一学期
type SemesterOverview struct {
	Current SemesterResponse `json:"current"`
	Next    SemesterResponse `json:"next"`
}
