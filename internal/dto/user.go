package dto

// ── 用户模块请求 ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	ApprovalStatus string `form:"approval_status" binding:"omitempty,oneof=pending approved rejected"`
	Role           string `form:"role"            binding:"omitempty,oneof=member leader admin"`
	PaginationRequest
}

// ApproveUserRequest 审批用户请求
// decision 只允许 approved / rejected；pending 状态不可逆向恢复
type ApproveUserRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
}

// AssignRoleRequest 角色指派请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=member leader admin"`
}

// SetLedDepartmentsRequest 设置负责部门请求
type SetLedDepartmentsRequest struct {
	DepartmentIDs []string `json:"department_ids" binding:"required,dive,uuid"`
}

// LinkMemberRequest 关联成员档案请求
type LinkMemberRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
}
