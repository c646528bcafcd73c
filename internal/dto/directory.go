package dto

// ── 教授 ──

// CreateProfessorRequest 创建教授请求
type CreateProfessorRequest struct {
	FirstName  string `json:"first_name" binding:"required,min=1,max=100"`
	LastName   string `json:"last_name"  binding:"required,min=1,max=100"`
	Email      string `json:"email"      binding:"required,email"`
	Department string `json:"department" binding:"omitempty,max=100"`
}

// ProfessorResponse 教授信息响应
type ProfessorResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

// ── 课程 ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	CourseNumber string `json:"course_number" binding:"required,min=2,max=20"`
	Title        string `json:"title"         binding:"required,min=1,max=200"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID           string `json:"id"`
	CourseNumber string `json:"course_number"`
	Title        string `json:"title"`
}

// ── 开课 ──

// CreateOfferingRequest 创建开课请求，semester 形如 "Fall 2024"
type CreateOfferingRequest struct {
	CourseID    string  `json:"course_id"    binding:"required,uuid"`
	ProfessorID *string `json:"professor_id" binding:"omitempty,uuid"`
	Semester    string  `json:"semester"     binding:"required,max=20"`
}

// OfferingResponse 开课信息响应
type OfferingResponse struct {
	ID        string             `json:"id"`
	Semester  string             `json:"semester"`
	Year      int                `json:"year"`
	Season    string             `json:"season"`
	Course    *CourseResponse    `json:"course,omitempty"`
	Professor *ProfessorResponse `json:"professor,omitempty"`
}
