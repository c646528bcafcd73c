package dto

// CreateInvitationRequest 创建邀请请求
type CreateInvitationRequest struct {
	Email        string `json:"email"          binding:"required,email"`
	Role         string `json:"role"           binding:"omitempty,oneof=head_ta admin"`
	ExpiresHours int    `json:"expires_hours"  binding:"omitempty,min=1,max=720"`
}

// InvitationResponse 邀请响应
type InvitationResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	InviteURL string `json:"invite_url"`
	ExpiresAt string `json:"expires_at"`
}

// InvitationValidateResponse 邀请验证响应
type InvitationValidateResponse struct {
	Valid     bool   `json:"valid"`
	Email     string `json:"email,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// AcceptInvitationRequest 接受邀请请求，邮箱与角色取自邀请本身
type AcceptInvitationRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name"  binding:"required,min=1,max=100"`
	GradYear  *int   `json:"grad_year"  binding:"omitempty,min=1900,max=2100"`
}
