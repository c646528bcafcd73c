package model

// TAAssignment Head TA 分配表，对应 ta_assignments
type TAAssignment struct {
	AssignmentID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	UserID           string `gorm:"type:uuid;not null"                             json:"user_id"`
	CourseOfferingID string `gorm:"type:uuid;not null"                             json:"course_offering_id"`
	HoursPerWeek     *int   `json:"hours_per_week,omitempty"` // NULL 视为默认工时
	VersionedModel

	// 关联
	User           *User           `gorm:"foreignKey:UserID;references:UserID"                     json:"user,omitempty"`
	CourseOffering *CourseOffering `gorm:"foreignKey:CourseOfferingID;references:CourseOfferingID" json:"course_offering,omitempty"`
}

// TableName 指定表名
func (TAAssignment) TableName() string { return "ta_assignments" }

// TAAssignmentRecord 分配记录查询投影（ta_assignments ⋈ course_offerings ⋈ courses）
type TAAssignmentRecord struct {
	AssignmentID     string `gorm:"column:assignment_id"      json:"assignment_id"`
	UserID           string `gorm:"column:user_id"            json:"user_id"`
	CourseOfferingID string `gorm:"column:course_offering_id" json:"course_offering_id"`
	CourseID         string `gorm:"column:course_id"          json:"course_id"`
	HoursPerWeek     *int   `gorm:"column:hours_per_week"     json:"hours_per_week"`
	CourseNumber     string `gorm:"column:course_number"      json:"course_number"`
	CourseTitle      string `gorm:"column:course_title"       json:"course_title"`
	Semester         string `gorm:"column:semester"           json:"semester"`
	Year             int    `gorm:"column:year"               json:"year"`
	Season           string `gorm:"column:season"             json:"season"`
}
