package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ViewCacheTTL          = 10 * time.Minute
	EventViewKeyPrefix    = "view:event"         // 单个活动详情
	EventListKeyPrefix    = "view:events:role"   // 按可见角色缓存的活动列表
	UserBookingsKeyPrefix = "view:bookings:user" // “我的预订”
	UserMessagesKeyPrefix = "view:messages:user" // “我的消息”
)

// ViewCacheRepository 读路径视图缓存。
// 写路径只负责删键，读侧miss后回源重建。
type ViewCacheRepository struct {
	ttl time.Duration
}

func NewViewCacheRepository() *ViewCacheRepository {
	return &ViewCacheRepository{ttl: ViewCacheTTL}
}

func (r *ViewCacheRepository) eventKey(eventID uint64) string {
	return fmt.Sprintf("%s:%d", EventViewKeyPrefix, eventID)
}
func (r *ViewCacheRepository) eventListKey(role string) string {
	return fmt.Sprintf("%s:%s", EventListKeyPrefix, role)
}
func (r *ViewCacheRepository) bookingsKey(userID uint64) string {
	return fmt.Sprintf("%s:%d", UserBookingsKeyPrefix, userID)
}
func (r *ViewCacheRepository) messagesKey(userID uint64) string {
	return fmt.Sprintf("%s:%d", UserMessagesKeyPrefix, userID)
}

func (r *ViewCacheRepository) get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *ViewCacheRepository) GetEventList(ctx context.Context, role string) ([]byte, bool, error) {
	return r.get(ctx, r.eventListKey(role))
}

func (r *ViewCacheRepository) SetEventList(ctx context.Context, role string, payload []byte) error {
	return Client.Set(ctx, r.eventListKey(role), payload, r.ttl).Err()
}

func (r *ViewCacheRepository) GetUserBookings(ctx context.Context, userID uint64) ([]byte, bool, error) {
	return r.get(ctx, r.bookingsKey(userID))
}

func (r *ViewCacheRepository) SetUserBookings(ctx context.Context, userID uint64, payload []byte) error {
	return Client.Set(ctx, r.bookingsKey(userID), payload, r.ttl).Err()
}

// InvalidateEvent 活动相关写入后删除详情键和全部角色的列表键
func (r *ViewCacheRepository) InvalidateEvent(ctx context.Context, eventID uint64, roles []string) error {
	keys := make([]string, 0, len(roles)+1)
	keys = append(keys, r.eventKey(eventID))
	for _, role := range roles {
		keys = append(keys, r.eventListKey(role))
	}
	if err := Client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// InvalidateUserBookings 支持可选延迟二删，减少并发回填窗口的脏数据
func (r *ViewCacheRepository) InvalidateUserBookings(ctx context.Context, userID uint64, delay ...time.Duration) error {
	return r.deleteWithOptionalDelay(ctx, r.bookingsKey(userID), delay...)
}

func (r *ViewCacheRepository) InvalidateUserMessages(ctx context.Context, userID uint64, delay ...time.Duration) error {
	return r.deleteWithOptionalDelay(ctx, r.messagesKey(userID), delay...)
}

func (r *ViewCacheRepository) deleteWithOptionalDelay(ctx context.Context, key string, delay ...time.Duration) error {
	if err := Client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(delay) > 0 && delay[0] > 0 {
		d := delay[0]
		// 轻量异步：后台再删一次，抵消并发回填窗口
		go func() {
			t := time.NewTimer(d)
			defer t.Stop()
			<-t.C
			_ = Client.Del(context.Background(), key).Err()
		}()
	}
	return nil
}
