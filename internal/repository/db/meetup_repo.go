package db

import (
	"context"
	"fmt"
	"time"

	"DrinkBuddy/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MeetupRepository struct {
	DB *gorm.DB
}

func (r *MeetupRepository) Create(ctx context.Context, m *model.Meetup) error {
	return r.DB.WithContext(ctx).Omit("Host").Create(m).Error
}

func (r *MeetupRepository) FindByID(ctx context.Context, id uint64) (*model.Meetup, error) {
	var m model.Meetup
	err := r.DB.WithContext(ctx).First(&m, id).Error
	return &m, err
}

// FindByIDForUpdate 事务内加行锁，sqlite 方言会忽略锁子句
func (r *MeetupRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*model.Meetup, error) {
	var m model.Meetup
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	return &m, err
}

// HostID 只查发起人，鉴权时不用加载整行
func (r *MeetupRepository) HostID(ctx context.Context, id uint64) (uint64, error) {
	var m model.Meetup
	err := r.DB.WithContext(ctx).Select("id", "host_id").First(&m, id).Error
	return m.HostID, err
}

// Transition 条件更新：只有 open 状态才会被改写，返回是否命中
func (r *MeetupRepository) Transition(ctx context.Context, id uint64, to model.MeetupStatus, at time.Time) (bool, error) {
	if !to.Valid() || !to.Terminal() {
		return false, fmt.Errorf("invalid target status %q", to)
	}
	updates := map[string]any{"status": to}
	switch to {
	case model.MeetupClosed:
		updates["closed_at"] = at
	case model.MeetupCanceled:
		updates["canceled_at"] = at
	}
	tx := r.DB.WithContext(ctx).Model(&model.Meetup{}).
		Where("id = ? AND status = ?", id, model.MeetupOpen).
		Updates(updates)
	return tx.RowsAffected == 1, tx.Error
}

// ListNewest 按 id 倒序，带上发起人
func (r *MeetupRepository) ListNewest(ctx context.Context) ([]model.Meetup, error) {
	var list []model.Meetup
	err := r.DB.WithContext(ctx).Preload("Host").Order("id desc").Find(&list).Error
	return list, err
}

func (r *MeetupRepository) FindWithHost(ctx context.Context, id uint64) (*model.Meetup, error) {
	var m model.Meetup
	err := r.DB.WithContext(ctx).Preload("Host").First(&m, id).Error
	return &m, err
}

func (r *MeetupRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Meetup{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
