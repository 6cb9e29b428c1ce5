package service

import (
	"context"
	"errors"

	"Gather_Events/internal/model"

	"gorm.io/gorm"
)

type supportContactStore interface {
	FindSupportContact(ctx context.Context) (*model.Profile, error)
}

// SupportService 定位唯一的“客服收件人”账号：
// 全站用户都和同一个特权账号互发消息，该账号的收件箱再按对端分组
// 还原出 N 条独立会话。
type SupportService struct {
	profiles supportContactStore
}

func NewSupportService(profiles supportContactStore) *SupportService {
	return &SupportService{profiles: profiles}
}

func (s *SupportService) ResolveSupportContact(ctx context.Context) (*model.Profile, error) {
	contact, err := s.profiles.FindSupportContact(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contact, nil
}
