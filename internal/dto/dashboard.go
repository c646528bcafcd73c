package dto

// DashboardResponse 学期概览
type DashboardResponse struct {
	Semester           string             `json:"semester"`
	NextSemester       string             `json:"next_semester"`
	TotalOfferings     int                `json:"total_offerings"`
	StaffedOfferings   int                `json:"staffed_offerings"`
	UnstaffedOfferings []OfferingResponse `json:"unstaffed_offerings"`
	HeadTACount        int                `json:"head_ta_count"`
	OverloadedTAs      []TALoad           `json:"overloaded_tas"`
	AvailableTAs       int                `json:"available_tas"`
}

// TALoad 单个 Head TA 在学期内的负载
type TALoad struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	CourseCount  int    `json:"course_count"`
	HoursPerWeek int    `json:"hours_per_week"`
}
