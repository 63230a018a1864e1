package model

import (
	"strings"
	"time"
)

type User struct {
	ID            uint64 `gorm:"primaryKey"`
	Username      string `gorm:"size:32;not null"`
	UsernameLower string `gorm:"uniqueIndex;size:32;not null"` // 大小写不敏感唯一
	PasswordHash  string `gorm:"size:255;not null"`
	CreatedAt     time.Time
}

// NormalizeUsername 去掉首尾空白
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// UsernameKey 用户名唯一键，登录和注册都用它比较
func UsernameKey(username string) string {
	return strings.ToLower(NormalizeUsername(username))
}
