package repository

import (
	"context"

	"gorm.io/gorm"

	"picshare/internal/domain"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// GetByID returns a comment with its author preloaded.
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var c domain.Comment
	tx := r.db.WithContext(ctx).Preload("Author").First(&c, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &c, nil
}
