package service

import (
	"context"
	"sort"
	"time"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"

	"gorm.io/gorm"
)

// 内存版仓储，行为对齐 mysql 仓储的查询谓词和错误约定

type fakeProfileStore struct {
	profiles map[uint64]*model.Profile
	findErr  error
}

func newFakeProfileStore(profiles ...*model.Profile) *fakeProfileStore {
	m := make(map[uint64]*model.Profile)
	for _, p := range profiles {
		m[p.ID] = p
	}
	return &fakeProfileStore{profiles: m}
}

func (f *fakeProfileStore) FindByID(ctx context.Context, id uint64) (*model.Profile, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if p, ok := f.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProfileStore) FindSupportContact(ctx context.Context) (*model.Profile, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var candidates []*model.Profile
	for _, p := range f.profiles {
		if p.Role == pkg.RoleAdmin || p.Role == pkg.RoleModerator {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})
	cp := *candidates[0]
	return &cp, nil
}

type fakeBookingStore struct {
	nextID uint64
	rows   map[uint64]*model.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{rows: make(map[uint64]*model.Booking)}
}

func (f *fakeBookingStore) Create(ctx context.Context, booking *model.Booking) error {
	for _, b := range f.rows {
		if b.EventID == booking.EventID && b.UserID == booking.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	booking.ID = f.nextID
	booking.CreatedAt = time.Now()
	cp := *booking
	f.rows[booking.ID] = &cp
	return nil
}

func (f *fakeBookingStore) FindOwned(ctx context.Context, id, userID uint64) (*model.Booking, error) {
	if b, ok := f.rows[id]; ok && b.UserID == userID {
		cp := *b
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBookingStore) DeleteOwned(ctx context.Context, id, userID uint64) (int64, error) {
	if b, ok := f.rows[id]; ok && b.UserID == userID {
		delete(f.rows, id)
		return 1, nil
	}
	return 0, gorm.ErrRecordNotFound
}

func (f *fakeBookingStore) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Booking, error) {
	var list []model.Booking
	for _, b := range f.rows {
		if b.UserID == userID {
			list = append(list, *b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeBookingStore) countFor(eventID, userID uint64) int {
	n := 0
	for _, b := range f.rows {
		if b.EventID == eventID && b.UserID == userID {
			n++
		}
	}
	return n
}

type fakeEventStore struct {
	nextID uint64
	rows   map[uint64]*model.Event
}

func newFakeEventStore(events ...*model.Event) *fakeEventStore {
	f := &fakeEventStore{rows: make(map[uint64]*model.Event)}
	for _, e := range events {
		if e.ID > f.nextID {
			f.nextID = e.ID
		}
		f.rows[e.ID] = e
	}
	return f
}

func (f *fakeEventStore) Create(ctx context.Context, event *model.Event) error {
	f.nextID++
	event.ID = f.nextID
	cp := *event
	f.rows[event.ID] = &cp
	return nil
}

func (f *fakeEventStore) FindByID(ctx context.Context, id uint64) (*model.Event, error) {
	if e, ok := f.rows[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEventStore) ListVisible(ctx context.Context, roles []string, offset, limit int) ([]model.Event, error) {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	var list []model.Event
	for _, e := range f.rows {
		if allowed[e.MinRole] {
			list = append(list, *e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeEventStore) Update(ctx context.Context, id uint64, fields map[string]any) (int64, error) {
	e, ok := f.rows[id]
	if !ok {
		return 0, nil
	}
	if v, ok := fields["title"]; ok {
		e.Title = v.(string)
	}
	if v, ok := fields["min_role"]; ok {
		e.MinRole = v.(string)
	}
	return 1, nil
}

type fakeMessageStore struct {
	nextID uint64
	rows   []model.Message
	err    error
}

func (f *fakeMessageStore) Create(ctx context.Context, msg *model.Message) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	msg.ID = f.nextID
	msg.CreatedAt = time.Now()
	f.rows = append(f.rows, *msg)
	return nil
}

func (f *fakeMessageStore) ListConversation(ctx context.Context, userID, peerID uint64, limit int) ([]model.Message, error) {
	var list []model.Message
	for _, m := range f.rows {
		if (m.SenderID == userID && m.ReceiverID == peerID) || (m.SenderID == peerID && m.ReceiverID == userID) {
			list = append(list, m)
		}
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeMessageStore) ListTouching(ctx context.Context, userID uint64, limit int) ([]model.Message, error) {
	var list []model.Message
	for i := len(f.rows) - 1; i >= 0; i-- { // 时间倒序
		m := f.rows[i]
		if m.SenderID == userID || m.ReceiverID == userID {
			list = append(list, m)
		}
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeMessageStore) MarkRead(ctx context.Context, id, receiverID uint64) (int64, error) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].ReceiverID == receiverID && !f.rows[i].IsRead {
			f.rows[i].IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeMessageStore) CountUnread(ctx context.Context, receiverID uint64) (int64, error) {
	var n int64
	for _, m := range f.rows {
		if m.ReceiverID == receiverID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

// fakeViewCache 永远 miss，只记录删键动作
type fakeViewCache struct {
	invalidatedEvents   []uint64
	invalidatedBookings []uint64
	invalidatedMessages []uint64
}

func (f *fakeViewCache) GetEventList(ctx context.Context, role string) ([]byte, bool, error) {
	return nil, false, nil
}

func (f *fakeViewCache) SetEventList(ctx context.Context, role string, payload []byte) error {
	return nil
}

func (f *fakeViewCache) GetUserBookings(ctx context.Context, userID uint64) ([]byte, bool, error) {
	return nil, false, nil
}

func (f *fakeViewCache) SetUserBookings(ctx context.Context, userID uint64, payload []byte) error {
	return nil
}

func (f *fakeViewCache) InvalidateEvent(ctx context.Context, eventID uint64, roles []string) error {
	f.invalidatedEvents = append(f.invalidatedEvents, eventID)
	return nil
}

func (f *fakeViewCache) InvalidateUserBookings(ctx context.Context, userID uint64, delay ...time.Duration) error {
	f.invalidatedBookings = append(f.invalidatedBookings, userID)
	return nil
}

func (f *fakeViewCache) InvalidateUserMessages(ctx context.Context, userID uint64, delay ...time.Duration) error {
	f.invalidatedMessages = append(f.invalidatedMessages, userID)
	return nil
}
