package model

import "time"

type Participant struct {
	ID       uint64    `gorm:"primaryKey"`
	MeetupID uint64    `gorm:"not null;index;uniqueIndex:uk_meetup_user"`
	UserID   uint64    `gorm:"not null;index;uniqueIndex:uk_meetup_user"`
	User     User      `gorm:"foreignKey:UserID"`
	JoinedAt time.Time `gorm:"not null;index"`
}

func (Participant) TableName() string {
	return "meetup_participants"
}
