package auth

import "errors"

// Sentinel errors for bearer token validation. The API layer maps every
// one of them to the same 401 response; the distinction only survives in
// logs.
var (
	// ErrInvalidToken covers malformed tokens, bad signatures and tokens
	// whose claims cannot be read.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when the exp claim is in the past.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned when the nbf claim is in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken is returned when a protected route is hit without an
	// Authorization header.
	ErrMissingToken = errors.New("authentication token is missing")
)
