package service

import (
	"context"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

type StoreService struct {
	repo     ports.StoreRepository
	images   ports.ImageStore
	cleaner  ports.ImageCleaner
	sanitize *bluemonday.Policy
	logger   zerolog.Logger
}

// NewStoreService wires the store use cases. images and cleaner may be nil,
// in which case uploaded images are ignored.
func NewStoreService(repo ports.StoreRepository, images ports.ImageStore, cleaner ports.ImageCleaner, logger zerolog.Logger) *StoreService {
	return &StoreService{
		repo:     repo,
		images:   images,
		cleaner:  cleaner,
		sanitize: bluemonday.StrictPolicy(),
		logger:   logger,
	}
}

// maxCleanPasses bounds how many entity layers clean will peel off.
const maxCleanPasses = 5

// clean strips markup from user supplied text. The strict policy escapes
// what it keeps, so entities are decoded back to plain text. Decoding can
// surface new tags ("&lt;b&gt;" becomes "<b>"), so the text is sanitized
// again until a pass leaves it unchanged. Input still changing after
// maxCleanPasses is rejected.
func (s *StoreService) clean(field, v string) (string, error) {
	cur := strings.TrimSpace(v)
	for range maxCleanPasses {
		next := strings.TrimSpace(html.UnescapeString(s.sanitize.Sanitize(cur)))
		if next == cur {
			return cur, nil
		}
		cur = next
	}
	return "", domain.Invalidf("%s contains nested markup", field)
}

func validPrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return domain.Invalidf("productPrice must be a non-negative number")
	}
	return nil
}

func (s *StoreService) List(ctx context.Context) ([]*domain.StoreItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list store items: %w", err)
	}
	return items, nil
}

func (s *StoreService) Get(ctx context.Context, id string) (*domain.StoreItem, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates and persists a new store item, storing its image first.
func (s *StoreService) Create(ctx context.Context, input ports.CreateStoreItemInput) (*domain.StoreItem, error) {
	name, err := s.clean("productName", input.ProductName)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, domain.Invalidf("productName is required")
	}
	desc, err := s.clean("productDescription", input.ProductDescription)
	if err != nil {
		return nil, err
	}
	if err := validPrice(input.ProductPrice); err != nil {
		return nil, err
	}

	var imageRef string
	if input.Image != nil && s.images != nil {
		ref, err := s.images.Save(ctx, *input.Image)
		if err != nil {
			return nil, fmt.Errorf("create store item: %w", err)
		}
		imageRef = ref
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.StoreItem{
		ProductName:        name,
		ProductDescription: desc,
		ProductPrice:       input.ProductPrice,
		Image:              imageRef,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		s.release(imageRef)
		return nil, err
	}

	s.logger.Info().Str("item_id", created.ID).Str("product", created.ProductName).Msg("store item created")
	return created, nil
}

// Update applies a partial change. Only the fields present in patch are
// written.
func (s *StoreService) Update(ctx context.Context, id string, patch ports.StoreItemPatch) (*domain.StoreItem, error) {
	if patch.Empty() {
		return nil, domain.Invalidf("nothing to update")
	}
	if patch.ProductName != nil {
		name, err := s.clean("productName", *patch.ProductName)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, domain.Invalidf("productName cannot be empty")
		}
		patch.ProductName = &name
	}
	if patch.ProductDescription != nil {
		desc, err := s.clean("productDescription", *patch.ProductDescription)
		if err != nil {
			return nil, err
		}
		patch.ProductDescription = &desc
	}
	if patch.ProductPrice != nil {
		if err := validPrice(*patch.ProductPrice); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *StoreService) Delete(ctx context.Context, id string) (*domain.StoreItem, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.release(deleted.Image)
	s.logger.Info().Str("item_id", deleted.ID).Msg("store item deleted")
	return deleted, nil
}

func (s *StoreService) release(ref string) {
	if ref == "" || s.cleaner == nil {
		return
	}
	s.cleaner.Enqueue(ref)
}
