package model

import "time"

const (
	EventJoined         = "joined"
	EventLeft           = "left"
	EventKicked         = "kicked"
	EventClosed         = "closed"
	EventCanceled       = "canceled"
	EventCommentCreated = "comment_created"
	EventCommentEdited  = "comment_edited"
	EventCommentDeleted = "comment_deleted"
)

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// MeetupOutbox 聚会事件投递表，与业务写入同一事务
type MeetupOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:32;not null"`
	MeetupID  uint64 `gorm:"not null;index"`
	ActorID   uint64 `gorm:"not null"`
	TargetID  uint64 `gorm:"not null;default:0"` // 被踢用户或评论 id
	Payload   string `gorm:"type:text;not null"`
	Status    int8   `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MeetupOutbox) TableName() string { return "meetup_outbox" }
