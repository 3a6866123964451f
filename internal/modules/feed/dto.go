package feed

import (
	"time"

	"picshare/internal/domain"
)

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID        int64             `json:"id"`
	ImageID   int64             `json:"image_id"`
	Text      string            `json:"text"`
	User      domain.PublicUser `json:"user"`
	CreatedAt time.Time         `json:"created_at"`
}

type ImageResponse struct {
	ID           int64             `json:"id"`
	Filename     string            `json:"filename"`
	OriginalName string            `json:"original_name,omitempty"`
	URL          string            `json:"url"`
	Description  string            `json:"description,omitempty"`
	Likes        int64             `json:"likes"`
	UploaderID   int64             `json:"uploader_id"`
	Uploader     domain.PublicUser `json:"uploader"`
	Comments     []CommentResponse `json:"comments"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Pagination mirrors the feed listing contract: totals are computed before
// file-existence filtering, so a page can hold fewer items than limit while
// hasNext is still true.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

type ListResponse struct {
	Data       []ImageResponse `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

func toCommentResponse(c domain.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		ImageID:   c.ImageID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if c.Author != nil {
		resp.User = c.Author.Public()
	}
	return resp
}

func toImageResponse(img domain.Image) ImageResponse {
	resp := ImageResponse{
		ID:           img.ID,
		Filename:     img.Filename,
		OriginalName: img.OriginalName,
		URL:          img.URL,
		Description:  img.Description,
		Likes:        img.Likes,
		UploaderID:   img.UploaderID,
		Comments:     make([]CommentResponse, 0, len(img.Comments)),
		CreatedAt:    img.CreatedAt,
	}
	if img.Uploader != nil {
		resp.Uploader = img.Uploader.Public()
	}
	for _, c := range img.Comments {
		resp.Comments = append(resp.Comments, toCommentResponse(c))
	}
	return resp
}
