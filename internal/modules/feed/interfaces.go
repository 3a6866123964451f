package feed

import (
	"context"
	"io"

	"picshare/internal/domain"
)

// ImageRepositoryInterface — only the methods the feed service uses.
type ImageRepositoryInterface interface {
	Create(ctx context.Context, img *domain.Image) error
	GetByID(ctx context.Context, id int64) (*domain.Image, error)
	CountMatching(ctx context.Context, search string) (int64, error)
	ListMatching(ctx context.Context, search string, offset, limit int) ([]domain.Image, error)
	IncrementLikes(ctx context.Context, id int64) error
	DecrementLikes(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type CommentRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
}

// MediaStore abstracts the flat uploads directory. Exists is the source of
// truth for whether an image record is still worth showing.
type MediaStore interface {
	Save(key string, r io.Reader) error
	Exists(key string) bool
	Remove(key string) error
}
