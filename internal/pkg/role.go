package pkg

const (
	RoleUser      = "user"
	RoleLead      = "lead"
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// 角色等级全序：user(1) < lead(2) < member(3) < moderator(4) < admin(5)
var roleLevels = map[string]int{
	RoleUser:      1,
	RoleLead:      2,
	RoleMember:    3,
	RoleModerator: 4,
	RoleAdmin:     5,
}

// LevelOf 未知角色一律按最低等级处理，权限判定永远向下兜底
func LevelOf(role string) int {
	if lv, ok := roleLevels[role]; ok {
		return lv
	}
	return roleLevels[RoleUser]
}

// CanAccess 实际角色等级达到门槛角色等级即可访问
func CanAccess(minRole, role string) bool {
	return LevelOf(role) >= LevelOf(minRole)
}

// CanManage 运营权限：moderator 及以上
func CanManage(role string) bool {
	return role == RoleModerator || role == RoleAdmin
}

// IsAdminStrict 仅 admin，moderator 不放行（改角色等操作用）
func IsAdminStrict(role string) bool {
	return role == RoleAdmin
}

// RolesAtMost 返回等级不超过 role 的全部角色名，给 min_role IN (?) 查询用
func RolesAtMost(role string) []string {
	lv := LevelOf(role)
	out := make([]string, 0, len(roleLevels))
	for name, l := range roleLevels {
		if l <= lv {
			out = append(out, name)
		}
	}
	return out
}
