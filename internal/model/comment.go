package model

import "time"

// EditedThreshold 更新时间与创建时间相差超过该值才显示“已编辑”
const EditedThreshold = time.Second

type Comment struct {
	ID        uint64     `gorm:"primaryKey"`
	MeetupID  uint64     `gorm:"not null;index:idx_meetup_time,priority:1"`
	AuthorID  uint64     `gorm:"not null;index"`
	Author    User       `gorm:"foreignKey:AuthorID"`
	Content   string     `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"index:idx_meetup_time,priority:2"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`
}

// Edited 只看时间差，不单独存标记
func (c *Comment) Edited() bool {
	if c.UpdatedAt == nil {
		return false
	}
	return c.UpdatedAt.Sub(c.CreatedAt) > EditedThreshold
}
