package model

import "time"

// ── 提醒类型 ──

const (
	AlertMissingCheckin = "missing_checkin"
)

// Alert 提醒表 — 对应 alerts
// 仅由后台清扫任务创建；user_id 为空表示面向部门负责人与管理员的广播
// (member_id, duty_date, type) 唯一，保证同一缺签事件只产生一条提醒
type Alert struct {
	AlertID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"alert_id"`
	UserID       *string   `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	Type         string    `gorm:"type:varchar(50);not null"                      json:"type"`
	MemberID     string    `gorm:"type:uuid;not null"                             json:"member_id"`
	DepartmentID string    `gorm:"type:uuid;not null"                             json:"department_id"`
	DutyDate     time.Time `gorm:"type:date;not null"                             json:"duty_date"`
	Message      string    `gorm:"type:text;not null"                             json:"message"`
	IsRead       bool      `gorm:"not null;default:false"                         json:"is_read"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Alert) TableName() string { return "alerts" }
