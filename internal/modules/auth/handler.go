package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"picshare/internal/pkg/response"
	"picshare/internal/pkg/validator"
)

// Handler manages all HTTP interactions for authentication.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	authGroup := protected.Group("/auth")
	{
		authGroup.PATCH("/me", h.UpdateProfile)
	}
}

// Register godoc
// @Summary Register a new account
// @Description Creates a user and returns a session token alongside the public user view.
// @Tags Auth
// @Param request body RegisterRequest true "username and password"
// @Success 201 {object} map[string]interface{}
// @Failure 400,409,500 {object} map[string]interface{}
// @Router /auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", details)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			response.Error(c, http.StatusConflict, "USERNAME_TAKEN", "This username is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register")
		return
	}

	response.Success(c, http.StatusCreated, SessionResponse{Token: token, User: user.Public()})
}

// Login godoc
// @Summary Log in
// @Description Verifies credentials and returns a session token. Unknown username and wrong password produce the same error.
// @Tags Auth
// @Param request body LoginRequest true "username and password"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,500 {object} map[string]interface{}
// @Router /auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Username or password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, SessionResponse{Token: token, User: user.Public()})
}

// UpdateProfile godoc
// @Summary Change the current user's username
// @Tags Auth
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "new username"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,404,409,500 {object} map[string]interface{}
// @Router /auth/me [PATCH]
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", details)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, ErrUsernameTaken):
			response.Error(c, http.StatusConflict, "USERNAME_TAKEN", "This username is already registered")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Could not update profile")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user.Public()})
}
