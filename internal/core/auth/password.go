// Package auth holds the credential manager, the session gate and the
// authorization policy. Nothing here performs I/O.
package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// DefaultCost matches the work factor existing digests were created with.
const DefaultCost = 10

// PasswordHasher hashes and verifies passwords with bcrypt. The number of
// hashes running at once is capped at GOMAXPROCS.
type PasswordHasher struct {
	cost  int
	slots *semaphore.Weighted

	absentOnce   sync.Once
	absentDigest []byte
}

// NewPasswordHasher returns a hasher using cost, falling back to DefaultCost
// when cost is outside bcrypt's accepted range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

// Cost returns the work factor new digests are created with.
func (h *PasswordHasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt digest of plaintext.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.Invalidf("password must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is not an
// error; only a digest that cannot be parsed yields domain.ErrCredentialFormat.
func (h *PasswordHasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", domain.ErrCredentialFormat, err)
	}
}

// VerifyAbsent does the comparison work of Verify for an account that does
// not exist, so lookups of unknown emails cost as much as wrong passwords.
func (h *PasswordHasher) VerifyAbsent(plaintext string) {
	h.absentOnce.Do(func() {
		digest, err := bcrypt.GenerateFromPassword([]byte("absent account placeholder"), h.cost)
		if err == nil {
			h.absentDigest = digest
		}
	})
	if h.absentDigest != nil {
		_ = bcrypt.CompareHashAndPassword(h.absentDigest, []byte(plaintext))
	}
}

// NeedsRehash reports whether digest was produced with a different cost than
// the hasher's current one.
func (h *PasswordHasher) NeedsRehash(digest string) bool {
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		return false
	}
	return cost != h.cost
}
