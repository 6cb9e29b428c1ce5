package mysql

import (
	"context"
	"encoding/json"
	"time"

	"Gather_Events/internal/model"

	"gorm.io/gorm"
)

type BookingRepository struct {
	DB *gorm.DB
}

// Create 同一事务内写预订和 outbox 事件。
// (event_id, user_id) 唯一键是并发去重的唯一手段：两个请求抢同一对时，
// 库里只会留下一条，输家拿到 gorm.ErrDuplicatedKey。
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		return insertOutbox(tx, "booking_created", booking)
	})
}

// FindOwned 按 (id, user_id) 双条件查询：别人的预订和不存在的预订对调用方不可区分
func (r *BookingRepository) FindOwned(ctx context.Context, id, userID uint64) (*model.Booking, error) {
	var booking model.Booking
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&booking).Error
	return &booking, err
}

// DeleteOwned 按同样的 (id, user_id) 谓词删除，返回命中的行数
func (r *BookingRepository) DeleteOwned(ctx context.Context, id, userID uint64) (int64, error) {
	var affected int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking model.Booking
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&booking).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Booking{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}
		return insertOutbox(tx, "booking_cancelled", &booking)
	})
	return affected, err
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Booking, error) {
	var list []model.Booking
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *BookingRepository) CountByEvent(ctx context.Context, eventID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Booking{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

// 写outbox事件表
func insertOutbox(tx *gorm.DB, event string, booking *model.Booking) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"booking_id": booking.ID,
		"event_id":   booking.EventID,
		"user_id":    booking.UserID,
	})
	ob := &model.BookingOutbox{
		EventType: event,
		BookingID: booking.ID,
		EventID:   booking.EventID,
		UserID:    booking.UserID,
		Payload:   string(payload),
		Status:    0,
	}
	return tx.Create(ob).Error
}
