package model

import (
	"math"
	"time"
)

type MeetupStatus string

const (
	MeetupOpen     MeetupStatus = "open"
	MeetupClosed   MeetupStatus = "closed"
	MeetupCanceled MeetupStatus = "canceled"
)

type Meetup struct {
	ID          uint64       `gorm:"primaryKey"`
	HostID      uint64       `gorm:"not null;index"`
	Host        User         `gorm:"foreignKey:HostID"`
	City        string       `gorm:"size:64;not null"`
	Drink       string       `gorm:"size:64;not null"`
	TimeLabel   string       `gorm:"size:64;not null"`
	People      int          `gorm:"not null;default:1"` // 容量，不含发起人
	Description string       `gorm:"type:text"`
	Status      MeetupStatus `gorm:"size:16;not null;default:open;index"`
	CreatedAt   time.Time
	ClosedAt    *time.Time
	CanceledAt  *time.Time
}

// Capacity 兜底读取，历史数据里的 0 或负数按 1 处理
func (m *Meetup) Capacity() int64 {
	if m.People < 1 {
		return 1
	}
	return int64(m.People)
}

// IsHost 判断是否发起人
func (m *Meetup) IsHost(userID uint64) bool {
	return m.HostID == userID
}

// Terminal closed/canceled 均为终态，不能回到 open
func (s MeetupStatus) Terminal() bool {
	return s == MeetupClosed || s == MeetupCanceled
}

// Joinable 只有 open 状态能加入
func (s MeetupStatus) Joinable() bool {
	return s == MeetupOpen
}

// Leavable open 和 closed 可以退出，canceled 不行
func (s MeetupStatus) Leavable() bool {
	return s == MeetupOpen || s == MeetupClosed
}

// CanTransition 状态机：open -> closed | canceled
func (s MeetupStatus) CanTransition(to MeetupStatus) bool {
	return s == MeetupOpen && to.Terminal()
}

func (s MeetupStatus) Valid() bool {
	switch s {
	case MeetupOpen, MeetupClosed, MeetupCanceled:
		return true
	}
	return false
}

// NormalizeCapacity 创建时修正人数：非有限值或小于 1 一律记为 1，小数向下取整
func NormalizeCapacity(people float64) int {
	if math.IsNaN(people) || math.IsInf(people, 0) {
		return 1
	}
	n := math.Floor(people)
	if n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}
