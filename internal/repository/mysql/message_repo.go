package mysql

import (
	"context"

	"Gather_Events/internal/model"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.DB.WithContext(ctx).Create(msg).Error
}

// ListConversation 两个账号之间的完整往来，按时间升序
func (r *MessageRepository) ListConversation(ctx context.Context, userID, peerID uint64, limit int) ([]model.Message, error) {
	var list []model.Message
	err := r.DB.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, peerID, peerID, userID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ListTouching 指定账号收发的全部消息，客服收件箱按对端分组时用
func (r *MessageRepository) ListTouching(ctx context.Context, userID uint64, limit int) ([]model.Message, error) {
	var list []model.Message
	err := r.DB.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// MarkRead 只允许收件人标记已读
func (r *MessageRepository) MarkRead(ctx context.Context, id, receiverID uint64) (int64, error) {
	tx := r.DB.WithContext(ctx).Model(&model.Message{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Update("is_read", true)
	return tx.RowsAffected, tx.Error
}

func (r *MessageRepository) CountUnread(ctx context.Context, receiverID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Message{}).
		Where("receiver_id = ? AND is_read = false", receiverID).
		Count(&count).Error
	return count, err
}
