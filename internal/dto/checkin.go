package dto

// ── 签到模块 DTO ──

// CheckinRequest 签到请求
// 坐标由客户端定位解析成功后上报；定位失败属于客户端错误流程，不会发起此请求
// recorded_at 供离线补报场景携带实际打卡时刻，缺省取服务端当前时间
type CheckinRequest struct {
	ScheduleID string  `json:"schedule_id" binding:"required,uuid"`
	Latitude   float64 `json:"latitude"    binding:"required,min=-90,max=90"`
	Longitude  float64 `json:"longitude"   binding:"required,min=-180,max=180"`
	RecordedAt *string `json:"recorded_at" binding:"omitempty"` // RFC3339
}

// CheckinResponse 签到响应
type CheckinResponse struct {
	ID            string   `json:"id"`
	ScheduleID    string   `json:"schedule_id"`
	DutyDate      string   `json:"duty_date"`
	Status        string   `json:"status"`
	StatusLabel   string   `json:"status_label"`
	StatusColor   string   `json:"status_color"`
	CheckinTime   *string  `json:"checkin_time,omitempty"`
	DistanceM     *float64 `json:"distance_m,omitempty"`
	LocationValid *bool    `json:"location_valid,omitempty"`
}

// CheckinDayRequest 部门当日签到概览查询参数
type CheckinDayRequest struct {
	DepartmentID string `form:"department_id" binding:"required,uuid"`
	Date         string `form:"date"          binding:"required,datetime=2006-01-02"`
}

// CheckinOverviewItem 当日签到概览条目
type CheckinOverviewItem struct {
	ScheduleID  string       `json:"schedule_id"`
	Member      *MemberBrief `json:"member,omitempty"`
	Position    *PositionBrief `json:"position,omitempty"`
	Status      string       `json:"status"`
	StatusLabel string       `json:"status_label"`
	StatusColor string       `json:"status_color"`
	CheckinTime *string      `json:"checkin_time,omitempty"`
}
