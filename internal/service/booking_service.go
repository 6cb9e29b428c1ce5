package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"

	"gorm.io/gorm"
)

type bookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindOwned(ctx context.Context, id, userID uint64) (*model.Booking, error)
	DeleteOwned(ctx context.Context, id, userID uint64) (int64, error)
	ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Booking, error)
}

type bookingEventStore interface {
	FindByID(ctx context.Context, id uint64) (*model.Event, error)
}

type bookingMessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
}

type bookingViewCache interface {
	InvalidateEvent(ctx context.Context, eventID uint64, roles []string) error
	InvalidateUserBookings(ctx context.Context, userID uint64, delay ...time.Duration) error
	InvalidateUserMessages(ctx context.Context, userID uint64, delay ...time.Duration) error
	GetUserBookings(ctx context.Context, userID uint64) ([]byte, bool, error)
	SetUserBookings(ctx context.Context, userID uint64, payload []byte) error
}

type BookingService struct {
	bookings bookingStore
	events   bookingEventStore
	messages bookingMessageStore
	support  *SupportService
	cache    bookingViewCache
}

func NewBookingService(bookings bookingStore, events bookingEventStore, messages bookingMessageStore, support *SupportService, cache bookingViewCache) *BookingService {
	return &BookingService{
		bookings: bookings,
		events:   events,
		messages: messages,
		support:  support,
		cache:    cache,
	}
}

// CreateBooking 预订状态机的 create 边：{未预订} -> {已预订}。
// (event_id, user_id) 唯一键是唯一的跨请求串行化手段，并发抢同一对
// 时输家收到 ErrDuplicateBooking，调用方要能把“已预订”和瞬时失败区分开。
func (s *BookingService) CreateBooking(ctx context.Context, ident *EffectiveIdentity, eventID uint64, transportation string, pickupNeeded bool) (*model.Booking, error) {
	if ident == nil {
		return nil, ErrUnauthenticated
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !pkg.CanAccess(event.MinRole, ident.Role) {
		return nil, ErrUnauthorized
	}

	booking := &model.Booking{
		EventID:        eventID,
		UserID:         ident.ID,
		Transportation: transportation,
		PickupNeeded:   pickupNeeded,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}

	// 预订已落库，下面全部是尽力而为：通知失败、删缓存失败都只记日志，
	// 不回滚也不改变本次预订的结果
	s.notify(ctx, ident.ID, fmt.Sprintf("您已成功预订「%s」，活动时间：%s。",
		event.Title, event.StartTime.Format("2006-01-02 15:04")))
	s.invalidateViews(ctx, eventID, ident.ID)

	return booking, nil
}

// CancelBooking 取消自己的预订。
// 归属校验做在查询谓词里：别人的预订和不存在的预订一样返回 ErrNotFound。
// 删除命中 0 行（已取消/错误归属/乱传 id）同样报 ErrNotFound，
// 不静默当成成功。
func (s *BookingService) CancelBooking(ctx context.Context, ident *EffectiveIdentity, bookingID uint64) error {
	if ident == nil {
		return ErrUnauthenticated
	}

	booking, err := s.bookings.FindOwned(ctx, bookingID, ident.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	// 先取活动信息：删完预订后就查不到关联了。
	// 读和删之间没有事务包裹，并发修改会让通知内容描述过期数据，
	// 通知只是提示性的，可以接受
	var eventTitle string
	var eventStart time.Time
	if event, err := s.events.FindByID(ctx, booking.EventID); err == nil {
		eventTitle = event.Title
		eventStart = event.StartTime
	}

	affected, err := s.bookings.DeleteOwned(ctx, bookingID, ident.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if eventTitle != "" {
		s.notify(ctx, ident.ID, fmt.Sprintf("您已取消预订「%s」（原定 %s）。",
			eventTitle, eventStart.Format("2006-01-02 15:04")))
	}
	s.invalidateViews(ctx, booking.EventID, ident.ID)

	return nil
}

// ListMyBookings “我的预订”，带视图缓存
func (s *BookingService) ListMyBookings(ctx context.Context, ident *EffectiveIdentity, page, size int) ([]model.Booking, error) {
	if ident == nil {
		return nil, ErrUnauthenticated
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}

	// 只有第一页走缓存，翻页直接回源
	if page == 1 {
		if payload, ok, err := s.cache.GetUserBookings(ctx, ident.ID); err == nil && ok {
			var list []model.Booking
			if json.Unmarshal(payload, &list) == nil {
				return list, nil
			}
		}
	}

	list, err := s.bookings.ListByUser(ctx, ident.ID, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	if page == 1 {
		if payload, err := json.Marshal(list); err == nil {
			_ = s.cache.SetUserBookings(ctx, ident.ID, payload)
		}
	}
	return list, nil
}

// notify 预订流程的系统通知：发件人是客服账号，收件人是预订者。
// 客服账号缺失、写消息失败都吞掉并记日志，预订结果不受影响。
func (s *BookingService) notify(ctx context.Context, bookerID uint64, content string) {
	contact, err := s.support.ResolveSupportContact(ctx)
	if err != nil {
		log.Printf("booking notify: resolve support contact err: %v", err)
		return
	}
	msg := &model.Message{
		SenderID:   contact.ID,
		ReceiverID: bookerID,
		Content:    content,
		IsRead:     false,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		log.Printf("booking notify: write message err: %v", err)
	}
}

// invalidateViews 预订写入后相关视图已经过期：该活动、我的预订、我的消息
func (s *BookingService) invalidateViews(ctx context.Context, eventID, userID uint64) {
	if err := s.cache.InvalidateEvent(ctx, eventID, pkg.RolesAtMost(pkg.RoleAdmin)); err != nil {
		log.Printf("booking cache: invalidate event err: %v", err)
	}
	if err := s.cache.InvalidateUserBookings(ctx, userID, 500*time.Millisecond); err != nil {
		log.Printf("booking cache: invalidate bookings err: %v", err)
	}
	if err := s.cache.InvalidateUserMessages(ctx, userID); err != nil {
		log.Printf("booking cache: invalidate messages err: %v", err)
	}
}
