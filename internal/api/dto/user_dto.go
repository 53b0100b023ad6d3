package dto

import (
	"time"

	"github.com/spec-kit/job-board/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetRequest payload for requesting a password-reset code.
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest payload for consuming a reset code.
type ResetPasswordRequest struct {
	Email     string `json:"email"`
	ResetCode string `json:"resetCode"`
	Password  string `json:"password"`
}

// UserUpdateRequest is the allow-listed update payload.
type UserUpdateRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// UserResponse is the account projection; the password hash never appears.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResponse maps a domain user to its response projection.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
