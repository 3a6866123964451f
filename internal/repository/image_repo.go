package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"picshare/internal/domain"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(ctx context.Context, img *domain.Image) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	var img domain.Image
	tx := r.db.WithContext(ctx).First(&img, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &img, nil
}

// matching scopes a query to images whose description or any attached
// comment matches the search term, case-insensitively.
func (r *ImageRepository) matching(ctx context.Context, search string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Image{})
	if search == "" {
		return q
	}
	pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
	return q.Where(
		"LOWER(description) LIKE ? ESCAPE '\\' OR EXISTS (SELECT 1 FROM comments WHERE comments.image_id = images.id AND LOWER(comments.text) LIKE ? ESCAPE '\\')",
		pattern, pattern,
	)
}

// escapeLike neutralizes LIKE wildcards so a search term always matches
// literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// CountMatching returns the total number of images the search term matches,
// before any file-existence filtering.
func (r *ImageRepository) CountMatching(ctx context.Context, search string) (int64, error) {
	var count int64
	tx := r.matching(ctx, search).Count(&count)
	return count, tx.Error
}

// ListMatching returns one page of matching images, most recent first, with
// comments (and their authors) and the uploader preloaded.
func (r *ImageRepository) ListMatching(ctx context.Context, search string, offset, limit int) ([]domain.Image, error) {
	var images []domain.Image
	tx := r.matching(ctx, search).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.Author").
		Preload("Uploader").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&images)
	return images, tx.Error
}

// IncrementLikes bumps the counter with a single atomic column update.
func (r *ImageRepository) IncrementLikes(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Model(&domain.Image{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementLikes floors the counter at zero inside the statement itself, so
// repeated unlikes can never drive the stored value negative.
func (r *ImageRepository) DecrementLikes(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Model(&domain.Image{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE likes END"))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the image row and its comments in one transaction. The
// cascade lives here rather than in a DB constraint so it holds on every
// backend we run against.
func (r *ImageRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Image{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
