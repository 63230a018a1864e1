package db

import (
	"context"

	"DrinkBuddy/internal/model"

	"gorm.io/gorm"
)

type ParticipantRepository struct {
	DB *gorm.DB
}

// Insert 唯一索引 (meetup_id, user_id) 兜底并发重复加入
func (r *ParticipantRepository) Insert(ctx context.Context, p *model.Participant) error {
	err := r.DB.WithContext(ctx).Omit("User").Create(p).Error
	if IsDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// Delete 返回删除行数，0 表示本来就不是参与者
func (r *ParticipantRepository) Delete(ctx context.Context, meetupID, userID uint64) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Where("meetup_id = ? AND user_id = ?", meetupID, userID).
		Delete(&model.Participant{})
	return tx.RowsAffected, tx.Error
}

func (r *ParticipantRepository) Count(ctx context.Context, meetupID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Participant{}).
		Where("meetup_id = ?", meetupID).
		Count(&count).Error
	return count, err
}

func (r *ParticipantRepository) IsMember(ctx context.Context, meetupID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Participant{}).
		Where("meetup_id = ? AND user_id = ?", meetupID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListByMeetup 按加入时间正序
func (r *ParticipantRepository) ListByMeetup(ctx context.Context, meetupID uint64) ([]model.Participant, error) {
	var list []model.Participant
	err := r.DB.WithContext(ctx).Preload("User").
		Where("meetup_id = ?", meetupID).
		Order("joined_at asc, id asc").
		Find(&list).Error
	return list, err
}

type meetupCount struct {
	MeetupID uint64
	Total    int64
}

// CountByMeetups 批量统计人数，每次请求实时计算
func (r *ParticipantRepository) CountByMeetups(ctx context.Context, meetupIDs []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(meetupIDs))
	if len(meetupIDs) == 0 {
		return out, nil
	}
	var rows []meetupCount
	err := r.DB.WithContext(ctx).Model(&model.Participant{}).
		Select("meetup_id, COUNT(*) AS total").
		Where("meetup_id IN ?", meetupIDs).
		Group("meetup_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.MeetupID] = row.Total
	}
	return out, nil
}

// JoinedSet 某用户在给定聚会中已加入的集合
func (r *ParticipantRepository) JoinedSet(ctx context.Context, userID uint64, meetupIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool)
	if userID == 0 || len(meetupIDs) == 0 {
		return out, nil
	}
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.Participant{}).
		Where("user_id = ? AND meetup_id IN ?", userID, meetupIDs).
		Pluck("meetup_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
