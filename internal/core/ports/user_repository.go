package ports

import (
	"context"
	"time"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	// Create inserts user and returns it with its assigned ID.
	// A duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// UpdateName sets the display name and returns the updated record.
	UpdateName(ctx context.Context, id, name string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// Delete removes the account and returns the removed record.
	Delete(ctx context.Context, id string) (*domain.User, error)
}

// LoginThrottle counts login attempts per email.
type LoginThrottle interface {
	// Attempt counts one attempt and returns zero when it may proceed, or
	// how long the caller must wait otherwise. Counting and checking are a
	// single atomic step.
	Attempt(ctx context.Context, email string) (retryAfter time.Duration, err error)
	// Reset clears the count after a successful login.
	Reset(ctx context.Context, email string) error
}
