package model

import "time"

type Event struct {
	ID          uint64 `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	Location    string `gorm:"size:255"`
	StartTime   time.Time
	MinRole     string `gorm:"size:16;not null;default:user;index"` // 可见/可预订的最低角色
	CreatedBy   uint64 `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Event) TableName() string { return "events" }
