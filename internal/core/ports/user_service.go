package ports

import (
	"context"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// UserService defines use-case operations on registered accounts.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateName(ctx context.Context, id, name string) (*domain.User, error)
	Delete(ctx context.Context, id string) (*domain.User, error)
}
