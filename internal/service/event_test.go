package service

import (
	"context"
	"errors"
	"testing"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"
)

func newEventFixture(events ...*model.Event) (*EventService, *fakeEventStore, *fakeViewCache) {
	store := newFakeEventStore(events...)
	cache := &fakeViewCache{}
	return NewEventService(store, cache), store, cache
}

func TestListEventsFiltersByRole(t *testing.T) {
	svc, _, _ := newEventFixture(
		&model.Event{ID: 1, Title: "公开活动", MinRole: pkg.RoleUser},
		&model.Event{ID: 2, Title: "会员活动", MinRole: pkg.RoleMember},
		&model.Event{ID: 3, Title: "内部会议", MinRole: pkg.RoleModerator},
	)

	// member 看不到 moderator 门槛的活动
	list, err := svc.ListEvents(context.Background(), &EffectiveIdentity{ID: 5, Role: pkg.RoleMember}, 1, 20)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("member sees %d events, want 2", len(list))
	}
	for _, e := range list {
		if e.MinRole == pkg.RoleModerator {
			t.Errorf("member should not see %q", e.Title)
		}
	}

	// admin 全量可见
	list, err = svc.ListEvents(context.Background(), &EffectiveIdentity{ID: 9, Role: pkg.RoleAdmin}, 1, 20)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(list) != 3 {
		t.Errorf("admin sees %d events, want 3", len(list))
	}

	// 匿名按最低角色过滤
	list, err = svc.ListEvents(context.Background(), nil, 1, 20)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("anonymous sees %d events, want 1", len(list))
	}
}

func TestGetEventVisibility(t *testing.T) {
	svc, _, _ := newEventFixture(&model.Event{ID: 3, Title: "内部会议", MinRole: pkg.RoleModerator})

	if _, err := svc.GetEvent(context.Background(), &EffectiveIdentity{ID: 5, Role: pkg.RoleMember}, 3); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("member err = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.GetEvent(context.Background(), &EffectiveIdentity{ID: 9, Role: pkg.RoleAdmin}, 3); err != nil {
		t.Fatalf("admin err = %v", err)
	}
	if _, err := svc.GetEvent(context.Background(), nil, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing event err = %v, want ErrNotFound", err)
	}
}

func TestCreateEventRequiresManager(t *testing.T) {
	svc, store, _ := newEventFixture()

	err := svc.CreateEvent(context.Background(), &EffectiveIdentity{ID: 5, Role: pkg.RoleMember},
		&model.Event{Title: "读书会"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("member create err = %v, want ErrUnauthorized", err)
	}

	// 预览身份角色固定 user，同样被挡
	err = svc.CreateEvent(context.Background(), &EffectiveIdentity{ID: 5, Role: pkg.RoleUser, IsPreview: true},
		&model.Event{Title: "读书会"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("preview create err = %v, want ErrUnauthorized", err)
	}
	if len(store.rows) != 0 {
		t.Errorf("events = %d, want 0", len(store.rows))
	}
}

func TestCreateEventNormalizesUnknownMinRole(t *testing.T) {
	svc, store, cache := newEventFixture()

	event := &model.Event{Title: "读书会", MinRole: "vip"}
	if err := svc.CreateEvent(context.Background(), &EffectiveIdentity{ID: 9, Role: pkg.RoleModerator}, event); err != nil {
		t.Fatalf("err = %v", err)
	}
	saved, _ := store.FindByID(context.Background(), event.ID)
	if saved.MinRole != pkg.RoleUser {
		t.Errorf("min_role = %q, unknown role should normalize to %q", saved.MinRole, pkg.RoleUser)
	}
	if saved.CreatedBy != 9 {
		t.Errorf("created_by = %d, want 9", saved.CreatedBy)
	}
	if len(cache.invalidatedEvents) == 0 {
		t.Error("create should invalidate event views")
	}
}

func TestUpdateEventMissing(t *testing.T) {
	svc, _, _ := newEventFixture()
	err := svc.UpdateEvent(context.Background(), &EffectiveIdentity{ID: 9, Role: pkg.RoleAdmin}, 42,
		map[string]any{"title": "新标题"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateEventUnchangedValues(t *testing.T) {
	svc, _, _ := newEventFixture(&model.Event{ID: 1, Title: "读书会", MinRole: pkg.RoleUser})

	// 提交和现值相同的字段也算成功，不误报 not found
	err := svc.UpdateEvent(context.Background(), &EffectiveIdentity{ID: 9, Role: pkg.RoleAdmin}, 1,
		map[string]any{"title": "读书会"})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
}
