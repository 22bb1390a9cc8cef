package ports

import (
	"context"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// CreateStoreItemInput carries all data needed to list a new product.
type CreateStoreItemInput struct {
	ProductName        string
	ProductDescription string
	ProductPrice       float64
	// Image is optional.
	Image *Image
}

// StoreService defines use-case operations for store items.
type StoreService interface {
	List(ctx context.Context) ([]*domain.StoreItem, error)
	Get(ctx context.Context, id string) (*domain.StoreItem, error)
	Create(ctx context.Context, input CreateStoreItemInput) (*domain.StoreItem, error)
	Update(ctx context.Context, id string, patch StoreItemPatch) (*domain.StoreItem, error)
	Delete(ctx context.Context, id string) (*domain.StoreItem, error)
}
