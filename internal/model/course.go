package model

// Course 课程表，对应 courses
type Course struct {
	CourseID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	CourseNumber string `gorm:"type:varchar(20);not null"                      json:"course_number"` // "CS 101"
	Title        string `gorm:"type:varchar(200);not null"                     json:"title"`
	VersionedModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
