package db

import (
	"context"
	"time"

	"DrinkBuddy/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	DB *gorm.DB
}

func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.DB.WithContext(ctx).Omit("Author").Create(c).Error
}

func (r *CommentRepository) FindByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var c model.Comment
	err := r.DB.WithContext(ctx).Preload("Author").First(&c, id).Error
	return &c, err
}

func (r *CommentRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpdateOwned 带作者条件的一步更新，affected=0 时由调用方区分不存在/无权限
func (r *CommentRepository) UpdateOwned(ctx context.Context, id, authorID uint64, content string, at time.Time) (int64, error) {
	tx := r.DB.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Updates(map[string]any{"content": content, "updated_at": at})
	return tx.RowsAffected, tx.Error
}

// DeleteOwned 同上，硬删除
func (r *CommentRepository) DeleteOwned(ctx context.Context, id, authorID uint64) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&model.Comment{})
	return tx.RowsAffected, tx.Error
}

// ListByMeetup 按创建时间正序
func (r *CommentRepository) ListByMeetup(ctx context.Context, meetupID uint64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.WithContext(ctx).Preload("Author").
		Where("meetup_id = ?", meetupID).
		Order("created_at asc, id asc").
		Find(&list).Error
	return list, err
}
