package dto

// ── 成员模块 DTO ──

// CreateMemberRequest 创建成员请求
type CreateMemberRequest struct {
	Name  string `json:"name"  binding:"required,min=2,max=100"`
	Phone string `json:"phone" binding:"omitempty,max=30"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UpdateMemberRequest 更新成员请求
// 成员被排班引用后仅联系方式可改；姓名修改由 Service 层校验
type UpdateMemberRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" binding:"omitempty,max=30"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// MemberListRequest 成员列表查询参数
type MemberListRequest struct {
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
	PaginationRequest
}

// MemberResponse 成员响应
type MemberResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
