package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a login password against the bcrypt hash the
// user store produced at registration.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword. Any
	// non-nil error, mismatch or otherwise, must be treated by callers
	// as a failed login.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier is the production PasswordVerifier. It carries no state;
// the work factor lives in the stored hash itself.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements PasswordVerifier.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return fmt.Errorf("password verification failed: %w", err)
	}
	return nil
}
