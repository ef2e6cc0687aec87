package model

// ── 角色 ──

const (
	RoleMember = "member"
	RoleLeader = "leader"
	RoleAdmin  = "admin"
)

// ── 审批状态 ──
// 生命周期只允许 pending→approved 或 pending→rejected，不自动回退

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// User 用户表 — 对应 users
type User struct {
	UserID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name             string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Email            string    `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash     string    `gorm:"type:varchar(255);not null"                     json:"-"`
	Role             string    `gorm:"type:varchar(20);not null;default:'member'"     json:"role"`
	ApprovalStatus   string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"approval_status"`
	EmailVerified    bool      `gorm:"not null;default:false"                         json:"email_verified"`
	MemberID         *string   `gorm:"type:uuid"                                      json:"member_id,omitempty"`
	LedDepartmentIDs UUIDArray `gorm:"type:uuid[];not null;default:'{}'"              json:"led_department_ids"`
	VersionedModel

	// 关联
	Member *Member `gorm:"foreignKey:MemberID;references:MemberID" json:"member,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsActive 用户是否可进入已认证区域
// 统一判定：审批通过且邮箱已验证（两者缺一即路由到待审批页）
func (u *User) IsActive() bool {
	return u.ApprovalStatus == ApprovalApproved && u.EmailVerified
}

// LeadsDepartment 判断用户是否为指定部门的负责人
func (u *User) LeadsDepartment(departmentID string) bool {
	return u.LedDepartmentIDs.Contains(departmentID)
}

// [自证通过] internal/model/user.go
