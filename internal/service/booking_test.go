package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"
)

type bookingFixture struct {
	svc      *BookingService
	bookings *fakeBookingStore
	events   *fakeEventStore
	messages *fakeMessageStore
	profiles *fakeProfileStore
	cache    *fakeViewCache
}

func newBookingFixture(events ...*model.Event) *bookingFixture {
	f := &bookingFixture{
		bookings: newFakeBookingStore(),
		events:   newFakeEventStore(events...),
		messages: &fakeMessageStore{},
		profiles: newFakeProfileStore(
			&model.Profile{ID: 10, Username: "admin", Role: pkg.RoleAdmin, CreatedAt: time.Unix(100, 0)},
			&model.Profile{ID: 11, Username: "mod", Role: pkg.RoleModerator, CreatedAt: time.Unix(200, 0)},
		),
		cache: &fakeViewCache{},
	}
	f.svc = NewBookingService(f.bookings, f.events, f.messages, NewSupportService(f.profiles), f.cache)
	return f
}

func member(id uint64) *EffectiveIdentity {
	return &EffectiveIdentity{ID: id, Role: pkg.RoleMember}
}

func TestCreateBookingUnauthenticated(t *testing.T) {
	f := newBookingFixture(&model.Event{ID: 1, Title: "读书会", MinRole: pkg.RoleUser})
	if _, err := f.svc.CreateBooking(context.Background(), nil, 1, "", false); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestCreateBookingEventMissing(t *testing.T) {
	f := newBookingFixture()
	if _, err := f.svc.CreateBooking(context.Background(), member(5), 99, "", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateBookingRoleBelowMinRole(t *testing.T) {
	f := newBookingFixture(&model.Event{ID: 1, Title: "内部会议", MinRole: pkg.RoleModerator})
	if _, err := f.svc.CreateBooking(context.Background(), member(5), 1, "", false); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if got := f.bookings.countFor(1, 5); got != 0 {
		t.Errorf("booking rows = %d, want 0", got)
	}
}

func TestCreateBookingDuplicate(t *testing.T) {
	f := newBookingFixture(&model.Event{ID: 1, Title: "读书会", MinRole: pkg.RoleUser, StartTime: time.Unix(1e9, 0)})

	if _, err := f.svc.CreateBooking(context.Background(), member(5), 1, "bus", true); err != nil {
		t.Fatalf("first booking err = %v", err)
	}
	// 同一 (event, user) 再订一次：唯一键顶回来，翻译成业务错误
	if _, err := f.svc.CreateBooking(context.Background(), member(5), 1, "car", false); !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("err = %v, want ErrDuplicateBooking", err)
	}
	if got := f.bookings.countFor(1, 5); got != 1 {
		t.Errorf("booking rows = %d, want exactly 1", got)
	}
}

func TestCreateBookingNotifies(t *testing.T) {
	f := newBookingFixture(&model.Event{ID: 1, Title: "读书会", MinRole: pkg.RoleUser, StartTime: time.Unix(1e9, 0)})

	if _, err := f.svc.CreateBooking(context.Background(), member(5), 1, "", false); err != nil {
		t.Fatalf("booking err = %v", err)
	}

	if len(f.messages.rows) != 1 {
		t.Fatalf("messages = %d, want exactly 1", len(f.messages.rows))
	}
	msg := f.messages.rows[0]
	if msg.ReceiverID != 5 {
		t.Errorf("receiver = %d, want booker 5", msg.ReceiverID)
	}
	// 发件人是建号最早的特权账号
	if msg.SenderID != 10 {
		t.Errorf("sender = %d, want earliest privileged profile 10", msg.SenderID)
	}
	if msg.IsRead {
		t.Error("notification should start unread")
	}
	if len(f.cache.invalidatedEvents) == 0 || len(f.cache.invalidatedBookings) == 0 {
		t.Error("booking create should invalidate event and bookings views")
	}
}

func TestCreateBookingSurvivesNotifyFailure(t *testing.T) {
	f := newBookingFixture(&model.Event{ID: 1, Title: "读书会", MinRole: pkg.RoleUser})
	f.messages.err = errors.New("insert failed")

	// 通知失败不影响预订结果
	if _, err := f.svc.CreateBooking(context.Background(), member(5), 1, "", false); err != nil {
		t.Fatalf("booking err = %v, notify failure must not surface", err)
	}
	if got := f.bookings.countFor(1, 5); got != 1 {
		t.Errorf("booking rows = %d, want 1", got)
	}
}

func TestCreateBookingSurvivesMissingSupportContact(t *testing.T) {
	f := newBookingFixture(&model.Event{ID: 1, Title: "读书会", MinRole: pkg.RoleUser})
	f.profiles.profiles = map[uint64]*model.Profile{} // 没有任何特权账号

	if _, err := f.svc.CreateBooking(context.Background(), member(5), 1, "", false); err != nil {
		t.Fatalf("booking err = %v, missing support contact must not surface", err)
	}
	if len(f.messages.rows) != 0 {
		t.Errorf("messages = %d, want 0 when no support contact", len(f.messages.rows))
	}
}

func TestCancelBookingNotOwner(t *testing.T) {
	f := newBookingFixture(&model.Event{ID: 1, Title: "读书会", MinRole: pkg.RoleUser})
	booking, err := f.svc.CreateBooking(context.Background(), member(5), 1, "", false)
	if err != nil {
		t.Fatalf("setup booking err = %v", err)
	}

	// 归属校验在查询谓词里：别人的预订等同不存在
	if err := f.svc.CancelBooking(context.Background(), member(6), booking.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got := f.bookings.countFor(1, 5); got != 1 {
		t.Errorf("booking rows = %d, row must stay intact", got)
	}
}

func TestCancelBookingSuccess(t *testing.T) {
	f := newBookingFixture(&model.Event{ID: 1, Title: "读书会", MinRole: pkg.RoleUser, StartTime: time.Unix(1e9, 0)})
	booking, err := f.svc.CreateBooking(context.Background(), member(5), 1, "", false)
	if err != nil {
		t.Fatalf("setup booking err = %v", err)
	}

	if err := f.svc.CancelBooking(context.Background(), member(5), booking.ID); err != nil {
		t.Fatalf("cancel err = %v", err)
	}
	if got := f.bookings.countFor(1, 5); got != 0 {
		t.Errorf("booking rows = %d, want 0 after cancel", got)
	}
	// 预订和取消各一条通知，活动本身不动
	if len(f.messages.rows) != 2 {
		t.Errorf("messages = %d, want 2", len(f.messages.rows))
	}
	if _, err := f.events.FindByID(context.Background(), 1); err != nil {
		t.Errorf("event should survive booking cancel: %v", err)
	}

	// 再取消一次：已经没有这行了
	if err := f.svc.CancelBooking(context.Background(), member(5), booking.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second cancel err = %v, want ErrNotFound", err)
	}
}

func TestListMyBookings(t *testing.T) {
	f := newBookingFixture(
		&model.Event{ID: 1, Title: "读书会", MinRole: pkg.RoleUser},
		&model.Event{ID: 2, Title: "徒步", MinRole: pkg.RoleUser},
	)
	if _, err := f.svc.CreateBooking(context.Background(), member(5), 1, "", false); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CreateBooking(context.Background(), member(5), 2, "", false); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CreateBooking(context.Background(), member(6), 1, "", false); err != nil {
		t.Fatal(err)
	}

	list, err := f.svc.ListMyBookings(context.Background(), member(5), 1, 20)
	if err != nil {
		t.Fatalf("list err = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d rows, want 2", len(list))
	}
	for _, b := range list {
		if b.UserID != 5 {
			t.Errorf("list contains foreign booking %+v", b)
		}
	}
}
