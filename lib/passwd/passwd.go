// Package passwd hashes default-user passwords into crypt(3) strings that
// guests accept in /etc/shadow.
package passwd

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest password bcrypt accepts, in bytes.
const MaxLength = 72

var (
	// ErrEmptyPassword is returned when asked to hash an empty password.
	ErrEmptyPassword = errors.New("empty password")

	// ErrPasswordTooLong is returned for passwords over MaxLength bytes.
	ErrPasswordTooLong = errors.New("password too long")
)

// Hasher turns a plaintext password into a hash suitable for cloud-init's passwd field.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// BcryptHasher produces "$2a$" hashes, understood by libxcrypt on current distributions.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher with the given cost, or bcrypt.DefaultCost
// when cost is zero.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{Cost: cost}, nil
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > MaxLength {
		return "", fmt.Errorf("%w: %d bytes, at most %d", ErrPasswordTooLong, len(plaintext), MaxLength)
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
