package model

import "time"

type Booking struct {
	ID             uint64 `gorm:"primaryKey"`
	EventID        uint64 `gorm:"not null;index;uniqueIndex:uk_event_user"`
	UserID         uint64 `gorm:"not null;index;uniqueIndex:uk_event_user"`
	Transportation string `gorm:"size:32"`
	PickupNeeded   bool   `gorm:"not null;default:false"`
	CreatedAt      time.Time
}

func (Booking) TableName() string { return "bookings" }

// BookingOutbox 预订事件监控表
type BookingOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:32;not null"` // booking_created / booking_cancelled
	BookingID uint64 `gorm:"not null"`
	EventID   uint64 `gorm:"not null"`
	UserID    uint64 `gorm:"not null"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BookingOutbox) TableName() string { return "booking_outbox" }
