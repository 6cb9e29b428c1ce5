package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"

	"gorm.io/gorm"
)

type eventStore interface {
	Create(ctx context.Context, event *model.Event) error
	FindByID(ctx context.Context, id uint64) (*model.Event, error)
	ListVisible(ctx context.Context, roles []string, offset, limit int) ([]model.Event, error)
	Update(ctx context.Context, id uint64, fields map[string]any) (int64, error)
}

type eventViewCache interface {
	GetEventList(ctx context.Context, role string) ([]byte, bool, error)
	SetEventList(ctx context.Context, role string, payload []byte) error
	InvalidateEvent(ctx context.Context, eventID uint64, roles []string) error
}

type EventService struct {
	repo  eventStore
	cache eventViewCache
}

func NewEventService(repo eventStore, cache eventViewCache) *EventService {
	return &EventService{repo: repo, cache: cache}
}

// effectiveRole 匿名访问按最低角色过滤
func effectiveRole(ident *EffectiveIdentity) string {
	if ident == nil {
		return pkg.RoleUser
	}
	return ident.Role
}

// ListEvents 读路径可见性过滤：只返回有效角色够得着的活动。
// 预览身份的角色固定是 user，预览者看到的列表就是普通成员的列表。
func (s *EventService) ListEvents(ctx context.Context, ident *EffectiveIdentity, page, size int) ([]model.Event, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	role := effectiveRole(ident)

	if page == 1 {
		if payload, ok, err := s.cache.GetEventList(ctx, role); err == nil && ok {
			var list []model.Event
			if json.Unmarshal(payload, &list) == nil {
				return list, nil
			}
		}
	}

	list, err := s.repo.ListVisible(ctx, pkg.RolesAtMost(role), (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	if page == 1 {
		if payload, err := json.Marshal(list); err == nil {
			if err := s.cache.SetEventList(ctx, role, payload); err != nil {
				log.Printf("event cache: set list err: %v", err)
			}
		}
	}
	return list, nil
}

func (s *EventService) GetEvent(ctx context.Context, ident *EffectiveIdentity, id uint64) (*model.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !pkg.CanAccess(event.MinRole, effectiveRole(ident)) {
		return nil, ErrUnauthorized
	}
	return event, nil
}

// CreateEvent 运营操作。预览身份的基线角色过不了 CanManage，
// 预览模式天然无法发布活动。
func (s *EventService) CreateEvent(ctx context.Context, ident *EffectiveIdentity, event *model.Event) error {
	if ident == nil {
		return ErrUnauthenticated
	}
	if !pkg.CanManage(ident.Role) {
		return ErrUnauthorized
	}
	if event.Title == "" {
		return errors.New("title required")
	}
	if pkg.LevelOf(event.MinRole) == pkg.LevelOf(pkg.RoleUser) && event.MinRole != pkg.RoleUser {
		// 未知角色名落库前归一化，避免可见性过滤出现永远匹配不上的值
		event.MinRole = pkg.RoleUser
	}
	event.CreatedBy = ident.ID
	if err := s.repo.Create(ctx, event); err != nil {
		return err
	}
	s.invalidate(ctx, event.ID)
	return nil
}

func (s *EventService) UpdateEvent(ctx context.Context, ident *EffectiveIdentity, id uint64, fields map[string]any) error {
	if ident == nil {
		return ErrUnauthenticated
	}
	if !pkg.CanManage(ident.Role) {
		return ErrUnauthorized
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	// 值未变化时 MySQL 报 0 行，行数不做存在性判断
	if _, err := s.repo.Update(ctx, id, fields); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *EventService) invalidate(ctx context.Context, eventID uint64) {
	if err := s.cache.InvalidateEvent(ctx, eventID, pkg.RolesAtMost(pkg.RoleAdmin)); err != nil {
		log.Printf("event cache: invalidate err: %v", err)
	}
}
