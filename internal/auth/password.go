package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultCost = 12

	// MinPasswordLength applies to passwords set through the API and CLI.
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

// ErrInvalidPassword is returned by Verify on a mismatch.
var ErrInvalidPassword = errors.New("auth: invalid password")

// PasswordService hashes admin passwords with bcrypt.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest uses a low cost so tests in other packages stay fast.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash returns the bcrypt hash of plaintext. Passwords longer than
// MaxPasswordLength are rejected.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordLength {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns ErrInvalidPassword when plaintext does not match hash.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
