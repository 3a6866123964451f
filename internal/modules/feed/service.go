package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"picshare/internal/domain"
	"picshare/internal/metrics"
)

const (
	// MaxFileSize is the upload ceiling (5 MiB).
	MaxFileSize = 5 * 1024 * 1024

	DefaultPage  = 1
	DefaultLimit = 10
)

// AllowedMimeTypes defines which file types are accepted.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Service orchestrates the feed: upload intake, listing with search and
// pagination, like counters, comments and deletion with file cleanup.
type Service struct {
	images   ImageRepositoryInterface
	comments CommentRepositoryInterface
	media    MediaStore
	log      zerolog.Logger
}

func NewService(images ImageRepositoryInterface, comments CommentRepositoryInterface, media MediaStore, log zerolog.Logger) *Service {
	return &Service{images: images, comments: comments, media: media, log: log}
}

// Upload validates the file, writes it to the media store under a generated
// key, then persists the record. Validation happens before any disk write.
// If the record cannot be persisted the freshly written file is removed, so
// the store does not accumulate orphans on the common failure path.
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader, description string, uploaderID int64) (*domain.Image, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Sniff the MIME type from content rather than trusting the client.
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	// The storage key never derives from user input; only the extension
	// survives, lowercased.
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = mimeToExt(mimeType)
	}
	filename := uuid.New().String() + ext

	if err := s.media.Save(filename, file); err != nil {
		return nil, err
	}

	img := &domain.Image{
		Filename:     filename,
		OriginalName: fileHeader.Filename,
		URL:          "/uploads/" + filename,
		Description:  strings.TrimSpace(description),
		UploaderID:   uploaderID,
	}
	if err := s.images.Create(ctx, img); err != nil {
		_ = s.media.Remove(filename)
		return nil, fmt.Errorf("failed to save image record: %w", err)
	}

	metrics.ImagesUploadedTotal.Inc()
	return img, nil
}

// List returns one page of the feed, most recent first. The search term
// matches an image when its description or at least one of its comments
// contains it, case-insensitively. Pagination totals are computed before
// images with missing backing files are dropped from the page; an
// under-filled page with hasNext=true is intended behavior, not a bug.
func (s *Service) List(ctx context.Context, search string, page, limit int) (*ListResponse, error) {
	search = strings.TrimSpace(search)
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	total, err := s.images.CountMatching(ctx, search)
	if err != nil {
		return nil, err
	}

	images, err := s.images.ListMatching(ctx, search, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	items := make([]ImageResponse, 0, len(images))
	for _, img := range images {
		if !s.media.Exists(img.Filename) {
			s.log.Debug().Str("filename", img.Filename).Int64("image_id", img.ID).
				Msg("skipping image with missing backing file")
			continue
		}
		items = append(items, toImageResponse(img))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ListResponse{
		Data: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// Like atomically increments the like counter and returns the fresh record.
func (s *Service) Like(ctx context.Context, imageID int64) (*domain.Image, error) {
	if err := s.images.IncrementLikes(ctx, imageID); err != nil {
		return nil, translateNotFound(err)
	}
	metrics.LikeOperationsTotal.WithLabelValues("like").Inc()
	return s.getImage(ctx, imageID)
}

// Unlike atomically decrements the like counter. The repository floors the
// stored value at zero, so more unlikes than likes never go negative.
func (s *Service) Unlike(ctx context.Context, imageID int64) (*domain.Image, error) {
	if err := s.images.DecrementLikes(ctx, imageID); err != nil {
		return nil, translateNotFound(err)
	}
	metrics.LikeOperationsTotal.WithLabelValues("unlike").Inc()
	return s.getImage(ctx, imageID)
}

// Comment persists a new comment on an image. Text is trimmed before the
// emptiness check and stored in its trimmed form.
func (s *Service) Comment(ctx context.Context, imageID int64, text string, authorID int64) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	if _, err := s.images.GetByID(ctx, imageID); err != nil {
		return nil, translateNotFound(err)
	}

	comment := &domain.Comment{
		ImageID:  imageID,
		Text:     text,
		AuthorID: authorID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	metrics.CommentsCreatedTotal.Inc()
	return s.comments.GetByID(ctx, comment.ID)
}

// Delete removes the backing file first, then the database record; its
// comments go with it. A file already gone at this point is logged and
// deletion proceeds — the listing path hides such rows anyway. A crash
// between the two steps leaves a row without a file, which is benign for
// the same reason.
func (s *Service) Delete(ctx context.Context, imageID int64) error {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return translateNotFound(err)
	}

	if s.media.Exists(img.Filename) {
		if err := s.media.Remove(img.Filename); err != nil {
			s.log.Warn().Err(err).Str("filename", img.Filename).Msg("failed to remove backing file")
		}
	} else {
		s.log.Warn().Str("filename", img.Filename).Int64("image_id", img.ID).
			Msg("backing file already missing at delete time")
	}

	if err := s.images.Delete(ctx, imageID); err != nil {
		return translateNotFound(err)
	}
	return nil
}

func (s *Service) getImage(ctx context.Context, id int64) (*domain.Image, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return img, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrImageNotFound
	}
	return err
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
