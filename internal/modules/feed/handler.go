package feed

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"picshare/internal/domain"
	"picshare/internal/pkg/response"
)

// Handler exposes the feed service over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/images", h.List)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	images := protected.Group("/images")
	{
		images.POST("/upload", h.Upload)
		images.POST("/:id/like", h.Like)
		images.DELETE("/:id/like", h.Unlike)
		images.POST("/:id/comment", h.Comment)
		images.DELETE("/:id", h.Delete)
	}
}

// Upload godoc
// @Summary Upload an image
// @Description Accepts JPEG/PNG/GIF/WebP up to 5 MiB via multipart form field "file", with an optional "description".
// @Tags Images
// @Accept multipart/form-data
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Param description formData string false "Description"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,413,500 {object} map[string]interface{}
// @Router /images/upload [POST]
func (h *Handler) Upload(c *gin.Context) {
	userID := c.GetInt64("user_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "No file provided")
		return
	}
	description := c.PostForm("description")

	img, err := h.service.Upload(c.Request.Context(), fileHeader, description, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrInvalidMimeType):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrFileTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Upload failed")
		}
		return
	}

	response.Success(c, http.StatusCreated, img)
}

// List godoc
// @Summary List the image feed
// @Description Paginated, most recent first. "search" matches the description or any comment text, case-insensitively.
// @Tags Images
// @Param search query string false "Search term"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} ListResponse
// @Failure 500 {object} map[string]interface{}
// @Router /images [GET]
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.service.List(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list images")
		return
	}

	// The feed keeps the flat {data, pagination} shape the clients scroll on.
	c.JSON(http.StatusOK, result)
}

// Like godoc
// @Summary Like an image
// @Tags Images
// @Security BearerAuth
// @Param id path int true "Image ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,404,500 {object} map[string]interface{}
// @Router /images/{id}/like [POST]
func (h *Handler) Like(c *gin.Context) {
	h.applyLike(c, h.service.Like)
}

// Unlike godoc
// @Summary Remove a like from an image
// @Tags Images
// @Security BearerAuth
// @Param id path int true "Image ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,404,500 {object} map[string]interface{}
// @Router /images/{id}/like [DELETE]
func (h *Handler) Unlike(c *gin.Context) {
	h.applyLike(c, h.service.Unlike)
}

// Comment godoc
// @Summary Comment on an image
// @Tags Images
// @Security BearerAuth
// @Param id path int true "Image ID"
// @Param request body CommentRequest true "comment text"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,404,500 {object} map[string]interface{}
// @Router /images/{id}/comment [POST]
func (h *Handler) Comment(c *gin.Context) {
	userID := c.GetInt64("user_id")

	imageID, ok := imageIDParam(c)
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	comment, err := h.service.Comment(c.Request.Context(), imageID, req.Text, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyComment):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrImageNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Image not found")
		default:
			response.Error(c, http.StatusInternalServerError, "COMMENT_FAILED", "Failed to add comment")
		}
		return
	}

	response.Success(c, http.StatusCreated, toCommentResponse(*comment))
}

// Delete godoc
// @Summary Delete an image
// @Description Removes the backing file and the record; comments go with it.
// @Tags Images
// @Security BearerAuth
// @Param id path int true "Image ID"
// @Success 204
// @Failure 400,401,404,500 {object} map[string]interface{}
// @Router /images/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	imageID, ok := imageIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), imageID); err != nil {
		if errors.Is(err, ErrImageNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Image not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete image")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) applyLike(c *gin.Context, op func(ctx context.Context, id int64) (*domain.Image, error)) {
	imageID, ok := imageIDParam(c)
	if !ok {
		return
	}

	img, err := op(c.Request.Context(), imageID)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Image not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LIKE_FAILED", "Failed to update likes")
		return
	}

	response.Success(c, http.StatusOK, img)
}

func imageIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid image ID")
		return 0, false
	}
	return id, true
}
