package ports

import (
	"context"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// StoreItemPatch carries the fields of a partial store item update.
// Nil fields are left untouched.
type StoreItemPatch struct {
	ProductName        *string
	ProductDescription *string
	ProductPrice       *float64
}

// Empty reports whether the patch changes nothing.
func (p StoreItemPatch) Empty() bool {
	return p.ProductName == nil && p.ProductDescription == nil && p.ProductPrice == nil
}

// StoreRepository defines persistence operations for store items.
type StoreRepository interface {
	Create(ctx context.Context, item *domain.StoreItem) (*domain.StoreItem, error)
	FindByID(ctx context.Context, id string) (*domain.StoreItem, error)
	List(ctx context.Context) ([]*domain.StoreItem, error)
	// Update applies patch and returns the updated record.
	Update(ctx context.Context, id string, patch StoreItemPatch) (*domain.StoreItem, error)
	// Delete removes the item and returns the removed record.
	Delete(ctx context.Context, id string) (*domain.StoreItem, error)
}
