package dto

// ── 排班模块 DTO ──

// CreateScheduleRequest 创建排班请求
type CreateScheduleRequest struct {
	MemberID     string `json:"member_id"     binding:"required,uuid"`
	DepartmentID string `json:"department_id" binding:"required,uuid"`
	PositionID   string `json:"position_id"   binding:"required,uuid"`
	DutyDate     string `json:"duty_date"     binding:"required,datetime=2006-01-02"`
	Notes        string `json:"notes"         binding:"omitempty,max=500"`
}

// UpdateScheduleRequest 更新排班请求
type UpdateScheduleRequest struct {
	MemberID   *string `json:"member_id"   binding:"omitempty,uuid"`
	PositionID *string `json:"position_id" binding:"omitempty,uuid"`
	DutyDate   *string `json:"duty_date"   binding:"omitempty,datetime=2006-01-02"`
	Notes      *string `json:"notes"       binding:"omitempty,max=500"`
}

// ScheduleListRequest 排班列表查询参数
type ScheduleListRequest struct {
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	MemberID     string `form:"member_id"     binding:"omitempty,uuid"`
	DateFrom     string `form:"date_from"     binding:"omitempty,datetime=2006-01-02"`
	DateTo       string `form:"date_to"       binding:"omitempty,datetime=2006-01-02"`
	PaginationRequest
}

// ScheduleResponse 排班响应
type ScheduleResponse struct {
	ID         string           `json:"id"`
	Member     *MemberBrief     `json:"member,omitempty"`
	Department *DepartmentBrief `json:"department,omitempty"`
	Position   *PositionBrief   `json:"position,omitempty"`
	DutyDate   string           `json:"duty_date"`
	Notes      string           `json:"notes,omitempty"`
	Checkin    *CheckinResponse `json:"checkin,omitempty"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  string           `json:"updated_at"`
}

// ConflictResponse 排班冲突详情
// 冲突时返回给调用方，指明已占用该日期的部门
type ConflictResponse struct {
	Conflict       bool             `json:"conflict"`
	DepartmentName string           `json:"department_name,omitempty"`
	Department     *DepartmentBrief `json:"department,omitempty"`
}
