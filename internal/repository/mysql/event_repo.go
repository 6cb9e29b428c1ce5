package mysql

import (
	"context"

	"Gather_Events/internal/model"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.DB.WithContext(ctx).Create(event).Error
}

func (r *EventRepository) FindByID(ctx context.Context, id uint64) (*model.Event, error) {
	var event model.Event
	err := r.DB.WithContext(ctx).First(&event, id).Error
	return &event, err
}

// ListVisible 只返回 min_role 落在可见角色集合里的活动
func (r *EventRepository) ListVisible(ctx context.Context, roles []string, offset, limit int) ([]model.Event, error) {
	var list []model.Event
	err := r.DB.WithContext(ctx).
		Where("min_role IN ?", roles).
		Order("start_time ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *EventRepository) Update(ctx context.Context, id uint64, fields map[string]any) (int64, error) {
	tx := r.DB.WithContext(ctx).Model(&model.Event{}).
		Where("id = ?", id).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}
