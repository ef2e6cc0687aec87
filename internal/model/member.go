package model

// Member 服侍成员表 — 对应 members
// 被排班引用后除联系方式外不可变更
type Member struct {
	MemberID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"member_id"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	Phone    string `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	Email    string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Member) TableName() string { return "members" }
