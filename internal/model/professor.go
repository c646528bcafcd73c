package model

// Professor 教授表，对应 professors
type Professor struct {
	ProfessorID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"professor_id"`
	FirstName   string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName    string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Email       string `gorm:"type:varchar(255);not null"                     json:"email"`
	Department  string `gorm:"type:varchar(100)"                              json:"department"`
	VersionedModel
}

// TableName 指定表名
func (Professor) TableName() string { return "professors" }
