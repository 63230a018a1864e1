package db

import (
	"context"
	"encoding/json"
	"time"

	"DrinkBuddy/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// Insert 写 outbox 事件，必须和业务写入在同一个事务里调用
func (r *OutboxRepository) Insert(ctx context.Context, event string, meetupID, actorID, targetID uint64, extra map[string]any) error {
	body := map[string]any{
		"event":      event,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"meetup_id":  meetupID,
		"actor_id":   actorID,
	}
	if targetID != 0 {
		body["target_id"] = targetID
	}
	for k, v := range extra {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	ob := &model.MeetupOutbox{
		EventType: event,
		MeetupID:  meetupID,
		ActorID:   actorID,
		TargetID:  targetID,
		Payload:   string(payload),
		Status:    model.OutboxPending,
	}
	return r.DB.WithContext(ctx).Create(ob).Error
}

// ListPending 待投递和可重试的失败记录，按 id 正序
func (r *OutboxRepository) ListPending(ctx context.Context, batchSize, maxRetry int) ([]model.MeetupOutbox, error) {
	var list []model.MeetupOutbox
	err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error
	return list, err
}

// RetryUpdate 投递失败，重试次数+1
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.MeetupOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate 投递成功
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.MeetupOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
