package model

import "time"

type Profile struct {
	ID         uint64  `gorm:"primaryKey"`
	Username   string  `gorm:"uniqueIndex;size:32;not null"`
	Password   string  `gorm:"size:255;not null"`
	Email      string  `gorm:"uniqueIndex;size:64;not null"`
	Role       string  `gorm:"size:16;not null;default:user;index"` // user/lead/member/moderator/admin
	ReferredBy *uint64 `gorm:"index"`                               // 推荐人，可为空
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Profile) TableName() string { return "profiles" }
