package dto

// ── 部门模块 DTO ──

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	Name     string  `json:"name"      binding:"required,min=2,max=100"`
	Color    string  `json:"color"     binding:"omitempty,hexcolor"`
	LeaderID *string `json:"leader_id" binding:"omitempty,uuid"`
}

// UpdateDepartmentRequest 更新部门请求
type UpdateDepartmentRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=100"`
	Color    *string `json:"color"     binding:"omitempty,hexcolor"`
	LeaderID *string `json:"leader_id" binding:"omitempty,uuid"`
	IsActive *bool   `json:"is_active"`
}

// DepartmentListRequest 部门列表查询参数
type DepartmentListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// DepartmentResponse 部门响应
type DepartmentResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Leader    *UserBrief `json:"leader,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

// UserBrief 用户简要信息
type UserBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
