// Package auth provides authentication services: signed bearer tokens and
// password hashing/verification.
package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing JWT authentication tokens.
// Tokens are stateless: verification requires no server-side session store,
// with the tradeoff that a token cannot be revoked before its expiry.
type JWTService interface {
	// GenerateToken creates a signed access token whose subject is the
	// user's email address. Returns the token string or an error if
	// signing fails.
	GenerateToken(ctx context.Context, email string) (string, error)

	// ValidateToken validates the provided token string and extracts the
	// claims. Returns ErrExpiredToken if the token has expired, or
	// ErrInvalidToken if the signature is invalid, the payload is
	// malformed, or the subject is missing. No other side effects.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified claim set extracted from a token.
type Claims struct {
	// Subject is the email address of the user the token was issued for.
	Subject string `json:"sub,omitempty"`

	// Standard registered JWT claims
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
