package model

// Position 岗位表 — 对应 positions
// 每个岗位严格归属一个部门
type Position struct {
	PositionID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"position_id"`
	DepartmentID string `gorm:"type:uuid;not null"                             json:"department_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description  string `gorm:"type:text"                                      json:"description,omitempty"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Position) TableName() string { return "positions" }
