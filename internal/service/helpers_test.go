package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"DrinkBuddy/internal/model"
	"DrinkBuddy/internal/repository/db"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, UsernameLower: model.UsernameKey(name), PasswordHash: "x"}
	if err := (&db.UserRepository{DB: gdb}).Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func createMeetup(t *testing.T, gdb *gorm.DB, hostID uint64, people float64) *model.Meetup {
	t.Helper()
	m, err := NewMeetupService(gdb).Create(context.Background(), hostID, CreateMeetupInput{
		City:        "Berlin",
		Drink:       "beer",
		TimeLabel:   "Fri 20:00",
		People:      people,
		Description: "after work",
	})
	if err != nil {
		t.Fatalf("create meetup: %v", err)
	}
	return m
}

// fakeClock 测试里手动推进时间
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// insertBeforeCreate 在下一次写入 table 之前，用同一连接先插入一行，
// 模拟另一个写入者刚好抢在前面（越过了服务层的存在性检查）
func insertBeforeCreate(t *testing.T, gdb *gorm.DB, table, query string, args ...any) {
	t.Helper()
	var once sync.Once
	err := gdb.Callback().Create().Before("gorm:create").Register("test:insert_before_create", func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		once.Do(func() {
			if err := tx.Session(&gorm.Session{NewDB: true}).Exec(query, args...).Error; err != nil {
				_ = tx.AddError(err)
			}
		})
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func countOutbox(t *testing.T, gdb *gorm.DB, event string) int64 {
	t.Helper()
	var n int64
	if err := gdb.Model(&model.MeetupOutbox{}).Where("event_type = ?", event).Count(&n).Error; err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	return n
}

func wantErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func wantKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if got := KindOf(err); got != want {
		t.Fatalf("kind = %v (err %v), want %v", got, err, want)
	}
}

func name(prefix string, i int) string {
	return fmt.Sprintf("%s%d", prefix, i)
}
