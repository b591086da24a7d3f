package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultBcryptCost keeps hashing around a quarter second on current hardware.
const defaultBcryptCost = 12

// bcrypt silently truncates inputs beyond 72 bytes; reject them instead.
const maxPasswordBytes = 72

// ErrPasswordTooLong indicates the plaintext exceeds the bcrypt input limit.
var ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")

// PasswordHasher hashes and verifies passwords with bcrypt. Each Hash call
// salts independently, so equal plaintexts never produce equal hashes.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher constructs a hasher with the production work factor.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: defaultBcryptCost}
}

// NewPasswordHasherWithCost constructs a hasher with a custom work factor.
// Tests pass bcrypt.MinCost to avoid paying the production cost per case.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of the plaintext. The plaintext is never
// logged or retained.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the stored hash. A malformed
// stored hash counts as a mismatch rather than an error; password checks
// fail closed.
func (h *PasswordHasher) Verify(storedHash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}
