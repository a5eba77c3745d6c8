package authsvc

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/geocheckin/internal/domain"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// PasswordHasher turns passwords into storable digests and checks them.
type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Verify(password string, digest []byte) (bool, error)
}

// PasswordConfig contains configuration parameters for password hashing.
type PasswordConfig struct {
	// BcryptCost is the bcrypt work factor
	BcryptCost int `env:"BCRYPT_COST" default:"10"`
}

// BcryptPasswordHasher implements PasswordHasher with bcrypt.
type BcryptPasswordHasher struct {
	Cost int
}

var _ PasswordHasher = (*BcryptPasswordHasher)(nil)

func NewBcryptPasswordHasher(cfg PasswordConfig) *BcryptPasswordHasher {
	return &BcryptPasswordHasher{Cost: cfg.BcryptCost}
}

// Hash returns the bcrypt digest of password.
// Returns ErrPasswordTooLong if password exceeds 72 bytes.
func (h *BcryptPasswordHasher) Hash(password string) ([]byte, error) {
	if len(password) > maxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, errors.Join(domain.ErrPasswordTooLong, err)
		}

		return nil, fmt.Errorf("generate hash: %w", err)
	}

	return digest, nil
}

// Verify reports whether password matches digest.
func (h *BcryptPasswordHasher) Verify(password string, digest []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword(digest, []byte(password))

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("compare hash: %w", err)
	}
}
