package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"DrinkBuddy/internal/model"
	"DrinkBuddy/internal/repository/db"

	"gorm.io/gorm"
)

// MeetupService 聚会创建与状态流转：open -> closed | canceled
type MeetupService struct {
	db  *gorm.DB
	now func() time.Time
}

type CreateMeetupInput struct {
	City        string
	Drink       string
	TimeLabel   string
	People      float64
	Description string
}

func NewMeetupService(gdb *gorm.DB) *MeetupService {
	return &MeetupService{db: gdb, now: time.Now}
}

// Create 创建者即发起人，初始为 open
func (s *MeetupService) Create(ctx context.Context, hostID uint64, in CreateMeetupInput) (*model.Meetup, error) {
	in.City = strings.TrimSpace(in.City)
	in.Drink = strings.TrimSpace(in.Drink)
	in.TimeLabel = strings.TrimSpace(in.TimeLabel)
	in.Description = strings.TrimSpace(in.Description)
	if in.City == "" || in.Drink == "" || in.TimeLabel == "" || in.Description == "" {
		return nil, ErrMissingFields
	}

	m := &model.Meetup{
		HostID:      hostID,
		City:        in.City,
		Drink:       in.Drink,
		TimeLabel:   in.TimeLabel,
		People:      model.NormalizeCapacity(in.People),
		Description: in.Description,
		Status:      model.MeetupOpen,
		CreatedAt:   s.now().UTC(),
	}
	if err := (&db.MeetupRepository{DB: s.db}).Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create meetup: %w", err)
	}
	return m, nil
}

func (s *MeetupService) Close(ctx context.Context, meetupID, callerID uint64) (*model.Meetup, error) {
	return s.transition(ctx, meetupID, callerID, model.MeetupClosed)
}

func (s *MeetupService) Cancel(ctx context.Context, meetupID, callerID uint64) (*model.Meetup, error) {
	return s.transition(ctx, meetupID, callerID, model.MeetupCanceled)
}

func (s *MeetupService) transition(ctx context.Context, meetupID, callerID uint64, to model.MeetupStatus) (*model.Meetup, error) {
	var out *model.Meetup
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meetups := &db.MeetupRepository{DB: tx}

		m, err := loadAsHost(ctx, meetups, meetupID, callerID, true)
		if err != nil {
			return err
		}
		if !m.Status.CanTransition(to) {
			return ErrMeetupNotOpen
		}

		// 条件更新再确认一次 status = open
		ok, err := meetups.Transition(ctx, meetupID, to, s.now().UTC())
		if err != nil {
			return fmt.Errorf("transition meetup: %w", err)
		}
		if !ok {
			return ErrMeetupNotOpen
		}

		event := model.EventClosed
		if to == model.MeetupCanceled {
			event = model.EventCanceled
		}
		if err := (&db.OutboxRepository{DB: tx}).Insert(ctx, event, meetupID, callerID, 0, nil); err != nil {
			return fmt.Errorf("write outbox: %w", err)
		}

		out, err = meetups.FindByID(ctx, meetupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
