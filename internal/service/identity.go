package service

import (
	"context"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"
)

// EffectiveIdentity 本次请求实际生效的身份。
// 预览模式下它和真实登录身份不同：IsPreview=true 时 Role 固定为 user，
// 预览的语义是“以普通成员视角看站点”，不是借用目标账号的真实权限。
type EffectiveIdentity struct {
	ID        uint64
	Email     string
	Role      string
	IsPreview bool
}

type identityProfileStore interface {
	FindByID(ctx context.Context, id uint64) (*model.Profile, error)
}

type IdentityService struct {
	profiles identityProfileStore
}

func NewIdentityService(profiles identityProfileStore) *IdentityService {
	return &IdentityService{profiles: profiles}
}

// ResolveEffectiveIdentity 每个请求重新解析一次，结果不跨请求缓存。
// realUserID 为 0 表示未登录，返回 nil（匿名）。
//
// 任何查库失败都降级为“按真实身份处理”，鉴权路径不允许因为一次
// 瞬时读失败而崩溃或放大权限。
func (s *IdentityService) ResolveEffectiveIdentity(ctx context.Context, realUserID uint64, previewOn bool, targetID uint64) *EffectiveIdentity {
	if realUserID == 0 {
		return nil
	}

	// 直接查真实账号的角色，不走任何依赖有效身份的路径，避免递归解析
	real, err := s.profiles.FindByID(ctx, realUserID)
	if err != nil {
		// 查不到真实资料时保留登录身份，角色按最低档兜底
		return &EffectiveIdentity{ID: realUserID, Role: pkg.RoleUser}
	}

	self := &EffectiveIdentity{ID: real.ID, Email: real.Email, Role: real.Role}

	// 预览是显式开关，关着就原样返回真实身份，preview_as 残留无效
	if !previewOn {
		return self
	}

	// 无运营权限的账号开预览：静默回退真实身份，不报错
	if !pkg.CanManage(real.Role) {
		return self
	}

	if targetID > 0 {
		target, err := s.profiles.FindByID(ctx, targetID)
		if err == nil {
			return &EffectiveIdentity{
				ID:        target.ID,
				Email:     target.Email,
				Role:      pkg.RoleUser, // 固定基线角色，不查目标的真实角色
				IsPreview: true,
			}
		}
	}

	// 目标缺失或查询失败：退回不落库的“通用访客”哨兵身份
	return &EffectiveIdentity{Role: pkg.RoleUser, IsPreview: true}
}
