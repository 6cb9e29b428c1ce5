package model

import "time"

type Message struct {
	ID         uint64 `gorm:"primaryKey"`
	SenderID   uint64 `gorm:"not null;index:idx_sender_id"`
	ReceiverID uint64 `gorm:"not null;index:idx_receiver_id"`
	Content    string `gorm:"type:text;not null"`
	IsRead     bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
}

func (Message) TableName() string { return "messages" }
