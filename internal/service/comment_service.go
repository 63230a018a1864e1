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

// CommentService 评论只能由作者本人修改/删除，发起人没有特权
type CommentService struct {
	db  *gorm.DB
	now func() time.Time
}

type CommentView struct {
	ID        uint64     `json:"id"`
	MeetupID  uint64     `json:"meetup_id"`
	UserID    uint64     `json:"user_id"`
	Username  string     `json:"username"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Edited    bool       `json:"edited"`
}

func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb, now: time.Now}
}

func toCommentView(c *model.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		MeetupID:  c.MeetupID,
		UserID:    c.AuthorID,
		Username:  c.Author.Username,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Edited:    c.Edited(),
	}
}

// Create 不校验聚会状态，closed/canceled 也能评论
func (s *CommentService) Create(ctx context.Context, meetupID, authorID uint64, content string) (*CommentView, error) {
	if meetupID == 0 {
		return nil, ErrInvalidID
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}

	var id uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := (&db.MeetupRepository{DB: tx}).Exists(ctx, meetupID)
		if err != nil {
			return fmt.Errorf("check meetup: %w", err)
		}
		if !exists {
			return ErrMeetupNotFound
		}

		c := &model.Comment{
			MeetupID:  meetupID,
			AuthorID:  authorID,
			Content:   content,
			CreatedAt: s.now().UTC(),
		}
		if err := (&db.CommentRepository{DB: tx}).Create(ctx, c); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		id = c.ID
		return (&db.OutboxRepository{DB: tx}).Insert(ctx, model.EventCommentCreated, meetupID, authorID, c.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Edit 先带作者条件更新，未命中再查是否存在，区分 404 / 403
func (s *CommentService) Edit(ctx context.Context, commentID, callerID uint64, content string) (*CommentView, error) {
	if commentID == 0 {
		return nil, ErrInvalidID
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := &db.CommentRepository{DB: tx}
		affected, err := comments.UpdateOwned(ctx, commentID, callerID, content, s.now().UTC())
		if err != nil {
			return fmt.Errorf("update comment: %w", err)
		}
		if affected == 0 {
			return s.missOrForbidden(ctx, comments, commentID)
		}
		c, err := comments.FindByID(ctx, commentID)
		if err != nil {
			return err
		}
		return (&db.OutboxRepository{DB: tx}).Insert(ctx, model.EventCommentEdited, c.MeetupID, callerID, commentID, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, commentID)
}

// Delete 同 Edit 的“条件删除再区分”
func (s *CommentService) Delete(ctx context.Context, commentID, callerID uint64) (uint64, error) {
	if commentID == 0 {
		return 0, ErrInvalidID
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := &db.CommentRepository{DB: tx}
		// 删除前取 meetup_id 给事件用；不存在时交给下面的条件删除处理
		var meetupID uint64
		if c, err := comments.FindByID(ctx, commentID); err == nil {
			meetupID = c.MeetupID
		}
		affected, err := comments.DeleteOwned(ctx, commentID, callerID)
		if err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		if affected == 0 {
			return s.missOrForbidden(ctx, comments, commentID)
		}
		return (&db.OutboxRepository{DB: tx}).Insert(ctx, model.EventCommentDeleted, meetupID, callerID, commentID, nil)
	})
	if err != nil {
		return 0, err
	}
	return commentID, nil
}

func (s *CommentService) missOrForbidden(ctx context.Context, comments *db.CommentRepository, commentID uint64) error {
	exists, err := comments.Exists(ctx, commentID)
	if err != nil {
		return fmt.Errorf("check comment: %w", err)
	}
	if !exists {
		return ErrCommentNotFound
	}
	return ErrNotCommentAuthor
}

// List 按创建时间正序，不需要登录
func (s *CommentService) List(ctx context.Context, meetupID uint64) ([]CommentView, error) {
	if meetupID == 0 {
		return nil, ErrInvalidID
	}
	rows, err := (&db.CommentRepository{DB: s.db}).ListByMeetup(ctx, meetupID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]CommentView, 0, len(rows))
	for i := range rows {
		out = append(out, toCommentView(&rows[i]))
	}
	return out, nil
}

func (s *CommentService) get(ctx context.Context, id uint64) (*CommentView, error) {
	c, err := (&db.CommentRepository{DB: s.db}).FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("load comment: %w", err)
	}
	v := toCommentView(c)
	return &v, nil
}
