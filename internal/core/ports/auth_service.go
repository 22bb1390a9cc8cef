package ports

import (
	"context"
	"time"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// RegisterInput carries the fields of a registration form.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
	// Image is optional.
	Image *Image
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// EnsureAdmin creates an elevated account unless one already exists for email.
	EnsureAdmin(ctx context.Context, name, email, password string) error
}
