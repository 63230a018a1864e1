package service

import (
	"context"
	"log/slog"
	"time"

	"DrinkBuddy/internal/model"
	"DrinkBuddy/internal/pkg"
	"DrinkBuddy/internal/repository/db"

	"gorm.io/gorm"
)

type Sender func(ctx context.Context, ob *model.MeetupOutbox) error

// OutboxRelayer 定时从 meetup_outbox 读取事件交给 sender 投递
type OutboxRelayer struct {
	repo      *db.OutboxRepository
	batchSize int
	maxRetry  int
	interval  time.Duration
	sender    Sender
	log       *slog.Logger
}

type RelayerConfig struct {
	BatchSize int
	MaxRetry  int
	Interval  time.Duration
}

func NewOutboxRelayer(gdb *gorm.DB, sender Sender, cfg RelayerConfig, logger *slog.Logger) *OutboxRelayer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.MaxRetry <= 0 {
		cfg.MaxRetry = 5
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxRelayer{
		repo:      &db.OutboxRepository{DB: gdb},
		batchSize: cfg.BatchSize,
		maxRetry:  cfg.MaxRetry,
		interval:  cfg.Interval,
		sender:    sender,
		log:       logger.With("component", "outbox"),
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
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 投递一批，返回成功条数
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.ListPending(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		r.log.Error("outbox query failed", "err", err)
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			r.log.Warn("outbox send failed", "id", ob.ID, "event", ob.EventType, "retry", ob.Retry+1, "err", err)
			if uerr := r.repo.RetryUpdate(ctx, ob.ID); uerr != nil {
				r.log.Error("outbox retry update failed", "id", ob.ID, "err", uerr)
			}
			continue
		}
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			r.log.Error("outbox success update failed", "id", ob.ID, "err", err)
			continue
		}
		sent++
	}
	return sent
}

// LogSender 没有配置 kafka 时只写日志
func LogSender(logger *slog.Logger) Sender {
	return func(ctx context.Context, ob *model.MeetupOutbox) error {
		logger.InfoContext(ctx, "meetup event",
			"type", ob.EventType,
			"meetup_id", ob.MeetupID,
			"actor_id", ob.ActorID,
			"target_id", ob.TargetID,
			"payload", ob.Payload,
		)
		return nil
	}
}

// KafkaSender 以聚会 id 为 key，保证同一聚会的事件有序
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.MeetupOutbox) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ob.MeetupID), []byte(ob.Payload), map[string]string{
			"event_type": ob.EventType,
			"outbox_id":  pkg.MakeKeyFromID(ob.ID),
		})
	}
}
