package dto

// ── 岗位模块 DTO ──

// CreatePositionRequest 创建岗位请求
type CreatePositionRequest struct {
	DepartmentID string `json:"department_id" binding:"required,uuid"`
	Name         string `json:"name"          binding:"required,min=2,max=100"`
	Description  string `json:"description"   binding:"omitempty,max=500"`
}

// UpdatePositionRequest 更新岗位请求
type UpdatePositionRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// PositionListRequest 岗位列表查询参数
type PositionListRequest struct {
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
}

// PositionResponse 岗位响应
type PositionResponse struct {
	ID          string           `json:"id"`
	Department  *DepartmentBrief `json:"department,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   string           `json:"created_at"`
}
