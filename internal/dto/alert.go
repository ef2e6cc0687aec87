package dto

// ── 提醒模块 DTO ──

// AlertListRequest 提醒列表查询参数
type AlertListRequest struct {
	UnreadOnly bool `form:"unread_only"`
	PaginationRequest
}

// AlertResponse 提醒响应
type AlertResponse struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Member     *MemberBrief     `json:"member,omitempty"`
	Department *DepartmentBrief `json:"department,omitempty"`
	DutyDate   string           `json:"duty_date"`
	Message    string           `json:"message"`
	IsRead     bool             `json:"is_read"`
	CreatedAt  string           `json:"created_at"`
}
