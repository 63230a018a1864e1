package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DrinkBuddy/internal/model"
	"DrinkBuddy/internal/repository/db"

	"gorm.io/gorm"
)

// ParticipantService 参与名单：容量、唯一、发起人不能参加、发起人踢人
type ParticipantService struct {
	db  *gorm.DB
	now func() time.Time
}

type JoinResult struct {
	JoinedCount   int64
	AlreadyJoined bool
}

type KickResult struct {
	KickedUserID uint64
	JoinedCount  int64
}

type ParticipantView struct {
	UserID   uint64    `json:"user_id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

func NewParticipantService(gdb *gorm.DB) *ParticipantService {
	return &ParticipantService{db: gdb, now: time.Now}
}

// Join 整个“计数-比较-插入”在一个事务里，并锁住聚会行。
// 重复加入返回 AlreadyJoined=true 且 err 为 nil。
func (s *ParticipantService) Join(ctx context.Context, meetupID, userID uint64) (*JoinResult, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parts := &db.ParticipantRepository{DB: tx}

		m, err := loadMeetup(ctx, &db.MeetupRepository{DB: tx}, meetupID, true)
		if err != nil {
			return err
		}
		if !m.Status.Joinable() {
			return statusError(m.Status)
		}
		if m.IsHost(userID) {
			return ErrHostCannotJoin
		}

		member, err := parts.IsMember(ctx, meetupID, userID)
		if err != nil {
			return fmt.Errorf("check member: %w", err)
		}
		if member {
			return ErrAlreadyJoined
		}

		current, err := parts.Count(ctx, meetupID)
		if err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		if current >= m.Capacity() {
			return ErrMeetupFull
		}

		err = parts.Insert(ctx, &model.Participant{
			MeetupID: meetupID,
			UserID:   userID,
			JoinedAt: s.now().UTC(),
		})
		if err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return ErrAlreadyJoined
			}
			return fmt.Errorf("insert participant: %w", err)
		}

		if err := (&db.OutboxRepository{DB: tx}).Insert(ctx, model.EventJoined, meetupID, userID, 0, nil); err != nil {
			return fmt.Errorf("write outbox: %w", err)
		}

		count, err = parts.Count(ctx, meetupID)
		return err
	})
	if errors.Is(err, ErrAlreadyJoined) {
		// 幂等：对调用方等同于成功
		count, cerr := (&db.ParticipantRepository{DB: s.db}).Count(ctx, meetupID)
		if cerr != nil {
			return nil, fmt.Errorf("count participants: %w", cerr)
		}
		return &JoinResult{JoinedCount: count, AlreadyJoined: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &JoinResult{JoinedCount: count}, nil
}

// Leave 幂等；canceled 的聚会不允许退出，closed 可以
func (s *ParticipantService) Leave(ctx context.Context, meetupID, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parts := &db.ParticipantRepository{DB: tx}

		m, err := loadMeetup(ctx, &db.MeetupRepository{DB: tx}, meetupID, true)
		if err != nil {
			return err
		}
		if !m.Status.Leavable() {
			return statusError(m.Status)
		}

		removed, err := parts.Delete(ctx, meetupID, userID)
		if err != nil {
			return fmt.Errorf("delete participant: %w", err)
		}
		if removed > 0 {
			if err := (&db.OutboxRepository{DB: tx}).Insert(ctx, model.EventLeft, meetupID, userID, 0, nil); err != nil {
				return fmt.Errorf("write outbox: %w", err)
			}
		}

		count, err = parts.Count(ctx, meetupID)
		return err
	})
	return count, err
}

// Kick 发起人移除参与者。
// TODO: 目前不检查 status，closed/canceled 的聚会也能踢人，等产品确认是否只允许 open。
func (s *ParticipantService) Kick(ctx context.Context, meetupID, callerID, targetUserID uint64) (*KickResult, error) {
	if targetUserID == 0 {
		return nil, ErrInvalidID
	}
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parts := &db.ParticipantRepository{DB: tx}

		m, err := loadAsHost(ctx, &db.MeetupRepository{DB: tx}, meetupID, callerID, true)
		if err != nil {
			return err
		}
		// 正常流程里发起人不会在名单中，这里防伪造请求
		if m.IsHost(targetUserID) {
			return ErrHostNotRemovable
		}

		removed, err := parts.Delete(ctx, meetupID, targetUserID)
		if err != nil {
			return fmt.Errorf("delete participant: %w", err)
		}
		if removed == 0 {
			return ErrParticipantNotFound
		}

		if err := (&db.OutboxRepository{DB: tx}).Insert(ctx, model.EventKicked, meetupID, callerID, targetUserID, nil); err != nil {
			return fmt.Errorf("write outbox: %w", err)
		}

		count, err = parts.Count(ctx, meetupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &KickResult{KickedUserID: targetUserID, JoinedCount: count}, nil
}

// ListParticipants 按加入时间正序，不需要登录
func (s *ParticipantService) ListParticipants(ctx context.Context, meetupID uint64) ([]ParticipantView, error) {
	if _, err := loadMeetup(ctx, &db.MeetupRepository{DB: s.db}, meetupID, false); err != nil {
		return nil, err
	}
	rows, err := (&db.ParticipantRepository{DB: s.db}).ListByMeetup(ctx, meetupID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	out := make([]ParticipantView, 0, len(rows))
	for _, p := range rows {
		out = append(out, ParticipantView{
			UserID:   p.UserID,
			Username: p.User.Username,
			JoinedAt: p.JoinedAt,
		})
	}
	return out, nil
}
