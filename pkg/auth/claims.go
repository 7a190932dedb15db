package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	CoupleID *uuid.UUID
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients. CoupleID is
// present once the user belongs to a relationship (pending or active).
type AccessTokenClaims struct {
	UserID   uuid.UUID  `json:"user_id"`
	CoupleID *uuid.UUID `json:"couple_id,omitempty"`
	jwt.RegisteredClaims
}
