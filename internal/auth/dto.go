package auth

import (
	"github.com/google/uuid"

	"github.com/coupleshub/backend/internal/users"
)

// RegisterRequest captures the signup payload.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
}

// RegisterResult reports the created user and their fresh pending relationship.
type RegisterResult struct {
	User     *users.UserDTO `json:"user"`
	CoupleID uuid.UUID      `json:"couple_id"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and profile produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
	CoupleID     *uuid.UUID     `json:"couple_id,omitempty"`
}
