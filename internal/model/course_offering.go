package model

// CourseOffering 开课表，对应 course_offerings，一门课在某一学期的一次开设
type CourseOffering struct {
	CourseOfferingID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_offering_id"`
	CourseID         string  `gorm:"type:uuid;not null"                             json:"course_id"`
	ProfessorID      *string `gorm:"type:uuid"                                      json:"professor_id,omitempty"`
	Semester         string  `gorm:"type:varchar(20);not null"                      json:"semester"` // "Fall 2024"
	Year             int     `gorm:"not null"                                       json:"year"`
	Season           string  `gorm:"type:varchar(10);not null"                      json:"season"` // spring | summer | fall
	VersionedModel

	// 关联
	Course    *Course    `gorm:"foreignKey:CourseID;references:CourseID"       json:"course,omitempty"`
	Professor *Professor `gorm:"foreignKey:ProfessorID;references:ProfessorID" json:"professor,omitempty"`
}

// TableName 指定表名
func (CourseOffering) TableName() string { return "course_offerings" }

// CourseNumber 关联课程的编号，未预加载时为空
func (o *CourseOffering) CourseNumber() string {
	if o.Course == nil {
		return ""
	}
	return o.Course.CourseNumber
}
