package auth

import "picshare/internal/domain"

type RegisterRequest struct {
	Username string `json:"username" binding:"required" validate:"required,min=3,max=32"`
	Password string `json:"password" binding:"required" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required" validate:"required,min=3,max=32"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}
