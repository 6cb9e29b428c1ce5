package service

import (
	"context"
	"errors"
	"log"
	"time"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"
)

type messageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	ListConversation(ctx context.Context, userID, peerID uint64, limit int) ([]model.Message, error)
	ListTouching(ctx context.Context, userID uint64, limit int) ([]model.Message, error)
	MarkRead(ctx context.Context, id, receiverID uint64) (int64, error)
	CountUnread(ctx context.Context, receiverID uint64) (int64, error)
}

type messageViewCache interface {
	InvalidateUserMessages(ctx context.Context, userID uint64, delay ...time.Duration) error
}

// Conversation 客服收件箱里的一条会话：按对端账号聚合
type Conversation struct {
	PeerID      uint64          `json:"peer_id"`
	Unread      int             `json:"unread"`
	LastMessage *model.Message  `json:"last_message"`
	Messages    []model.Message `json:"-"`
}

type MessageService struct {
	repo    messageStore
	support *SupportService
	cache   messageViewCache
}

func NewMessageService(repo messageStore, support *SupportService, cache messageViewCache) *MessageService {
	return &MessageService{repo: repo, support: support, cache: cache}
}

// SendToSupport 普通用户发消息不选收件人，一律路由到客服账号
func (s *MessageService) SendToSupport(ctx context.Context, ident *EffectiveIdentity, content string) error {
	if ident == nil {
		return ErrUnauthenticated
	}
	if content == "" {
		return errors.New("content required")
	}

	contact, err := s.support.ResolveSupportContact(ctx)
	if err != nil {
		return err
	}

	msg := &model.Message{
		SenderID:   ident.ID,
		ReceiverID: contact.ID,
		Content:    content,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return err
	}
	s.invalidate(ctx, ident.ID, contact.ID)
	return nil
}

// ReplyToUser 客服侧回复，需要运营权限
func (s *MessageService) ReplyToUser(ctx context.Context, ident *EffectiveIdentity, userID uint64, content string) error {
	if ident == nil {
		return ErrUnauthenticated
	}
	if !pkg.CanManage(ident.Role) {
		return ErrUnauthorized
	}
	if content == "" {
		return errors.New("content required")
	}

	msg := &model.Message{
		SenderID:   ident.ID,
		ReceiverID: userID,
		Content:    content,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return err
	}
	s.invalidate(ctx, ident.ID, userID)
	return nil
}

// MyConversation 用户视角：和客服账号的完整往来
func (s *MessageService) MyConversation(ctx context.Context, ident *EffectiveIdentity, limit int) ([]model.Message, error) {
	if ident == nil {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	contact, err := s.support.ResolveSupportContact(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []model.Message{}, nil
		}
		return nil, err
	}
	return s.repo.ListConversation(ctx, ident.ID, contact.ID, limit)
}

// Inbox 客服收件箱：拉出该账号收发的全部消息，按对端分组还原会话。
// 消息本身只有 sender/receiver 两端，没有会话表。
func (s *MessageService) Inbox(ctx context.Context, ident *EffectiveIdentity, limit int) ([]Conversation, error) {
	if ident == nil {
		return nil, ErrUnauthenticated
	}
	if !pkg.CanManage(ident.Role) {
		return nil, ErrUnauthorized
	}
	if limit <= 0 || limit > 1000 {
		limit = 500
	}

	msgs, err := s.repo.ListTouching(ctx, ident.ID, limit)
	if err != nil {
		return nil, err
	}

	// msgs 按时间倒序，首次遇到的对端即该会话的最新消息
	index := make(map[uint64]int)
	var convs []Conversation
	for i := range msgs {
		m := msgs[i]
		peer := m.SenderID
		if peer == ident.ID {
			peer = m.ReceiverID
		}
		pos, ok := index[peer]
		if !ok {
			pos = len(convs)
			index[peer] = pos
			convs = append(convs, Conversation{PeerID: peer, LastMessage: &msgs[i]})
		}
		convs[pos].Messages = append(convs[pos].Messages, m)
		if m.ReceiverID == ident.ID && !m.IsRead {
			convs[pos].Unread++
		}
	}
	return convs, nil
}

// MarkRead 标记已读，幂等：重复标记不报错
func (s *MessageService) MarkRead(ctx context.Context, ident *EffectiveIdentity, messageID uint64) error {
	if ident == nil {
		return ErrUnauthenticated
	}
	_, err := s.repo.MarkRead(ctx, messageID, ident.ID)
	return err
}

func (s *MessageService) UnreadCount(ctx context.Context, ident *EffectiveIdentity) (int64, error) {
	if ident == nil {
		return 0, ErrUnauthenticated
	}
	return s.repo.CountUnread(ctx, ident.ID)
}

func (s *MessageService) invalidate(ctx context.Context, a, b uint64) {
	if err := s.cache.InvalidateUserMessages(ctx, a); err != nil {
		log.Printf("message cache: invalidate err: %v", err)
	}
	if err := s.cache.InvalidateUserMessages(ctx, b); err != nil {
		log.Printf("message cache: invalidate err: %v", err)
	}
}
