// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the work factor existing hashes were created with.
const DefaultCost = 10

// MaxBytes is the longest password bcrypt accepts, counted in bytes.
const MaxBytes = 72

// Hasher is a bcrypt hasher with a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher. A cost outside bcrypt's range falls back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. The comparison is constant time.
func (h *Hasher) Verify(hash, plain string) bool {
	// a malformed stored hash is reported as a mismatch
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
