package model

// 用户角色
const (
	RoleHeadTA = "head_ta"
	RoleAdmin  = "admin"
)

// User 用户表，对应 users（Head TA 与管理员）
type User struct {
	UserID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	FirstName string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Email     string `gorm:"type:varchar(255);not null"                     json:"email"`
	Role      string `gorm:"type:varchar(20);not null;default:'head_ta'"    json:"role"`
	GradYear  *int   `json:"grad_year,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName "First Last"
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
