package service

import (
	"context"
	"fmt"
	"time"

	"DrinkBuddy/internal/model"
	"DrinkBuddy/internal/repository/db"

	"gorm.io/gorm"
)

// FeedService 聚会列表：每次请求实时统计人数和“我是否已加入”，不做计数缓存
type FeedService struct {
	db *gorm.DB
}

type MeetupView struct {
	ID          uint64             `json:"id"`
	HostID      uint64             `json:"hostId"`
	Author      string             `json:"author"`
	City        string             `json:"city"`
	Drink       string             `json:"drink"`
	TimeLabel   string             `json:"timeLabel"`
	People      int                `json:"people"`
	Text        string             `json:"text"`
	Status      model.MeetupStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	ClosedAt    *time.Time         `json:"closed_at,omitempty"`
	CanceledAt  *time.Time         `json:"canceled_at,omitempty"`
	JoinedCount int64              `json:"joinedCount"`
	IsJoined    bool               `json:"isJoined"`
}

func NewFeedService(gdb *gorm.DB) *FeedService {
	return &FeedService{db: gdb}
}

// ListMeetups 按 id 倒序；caller 为 nil 表示匿名
func (s *FeedService) ListMeetups(ctx context.Context, caller *Identity) ([]MeetupView, error) {
	list, err := (&db.MeetupRepository{DB: s.db}).ListNewest(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meetups: %w", err)
	}
	return s.compose(ctx, list, caller)
}

// GetMeetup 单个聚会，聚合字段与列表一致
func (s *FeedService) GetMeetup(ctx context.Context, meetupID uint64, caller *Identity) (*MeetupView, error) {
	if meetupID == 0 {
		return nil, ErrInvalidID
	}
	m, err := (&db.MeetupRepository{DB: s.db}).FindWithHost(ctx, meetupID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrMeetupNotFound
		}
		return nil, fmt.Errorf("load meetup: %w", err)
	}
	views, err := s.compose(ctx, []model.Meetup{*m}, caller)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *FeedService) compose(ctx context.Context, list []model.Meetup, caller *Identity) ([]MeetupView, error) {
	ids := make([]uint64, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.ID)
	}

	parts := &db.ParticipantRepository{DB: s.db}
	counts, err := parts.CountByMeetups(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	joined := map[uint64]bool{}
	if caller != nil {
		if joined, err = parts.JoinedSet(ctx, caller.ID, ids); err != nil {
			return nil, fmt.Errorf("joined set: %w", err)
		}
	}

	out := make([]MeetupView, 0, len(list))
	for _, m := range list {
		out = append(out, MeetupView{
			ID:          m.ID,
			HostID:      m.HostID,
			Author:      m.Host.Username,
			City:        m.City,
			Drink:       m.Drink,
			TimeLabel:   m.TimeLabel,
			People:      m.People,
			Text:        m.Description,
			Status:      m.Status,
			CreatedAt:   m.CreatedAt,
			ClosedAt:    m.ClosedAt,
			CanceledAt:  m.CanceledAt,
			JoinedCount: counts[m.ID],
			IsJoined:    joined[m.ID],
		})
	}
	return out, nil
}
