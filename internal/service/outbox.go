package service

import (
	"context"
	"log"
	"time"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"
	"Gather_Events/internal/repository/mysql"
)

type Sender func(ctx context.Context, ob *model.BookingOutbox) error

// OutboxRelayer 把预订事件从 outbox 表异步搬运到下游。
// 预订写入和 outbox 行在同一事务里，搬运失败只改状态等下一轮，
// 主流程完全不感知。
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(repo *mysql.OutboxRepository, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      repo,
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		log.Printf("outbox query err: %v", err)
		return
	}
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			_ = r.repo.RetryUpdate(ctx, ob.ID)
			continue
		}
		_ = r.repo.SuccessUpdate(ctx, ob.ID)
	}
}

// KafkaSender 以活动 id 为分区键投递预订事件
func KafkaSender(producer *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.BookingOutbox) error {
		return producer.Send(ctx, pkg.MakeKeyFromID(ob.EventID), []byte(ob.Payload))
	}
}

// LogSender 默认 sender：没配 Kafka 时先打印
func LogSender(ctx context.Context, ob *model.BookingOutbox) error {
	log.Printf("OUTBOX SEND type=%s booking=%d event=%d user=%d payload=%s",
		ob.EventType, ob.BookingID, ob.EventID, ob.UserID, ob.Payload)
	return nil
}
