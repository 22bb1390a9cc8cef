package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

type userService struct {
	users   ports.UserRepository
	cleaner ports.ImageCleaner
	log     zerolog.Logger
}

// NewUserService returns a UserService implementation. cleaner may be nil.
func NewUserService(users ports.UserRepository, cleaner ports.ImageCleaner, log zerolog.Logger) ports.UserService {
	return &userService{users: users, cleaner: cleaner, log: log}
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateName changes the display name. Email and role are never touched here.
func (s *userService) UpdateName(ctx context.Context, id, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalidf("name is required")
	}
	return s.users.UpdateName(ctx, id, name)
}

// Delete removes the account and schedules its image for cleanup.
func (s *userService) Delete(ctx context.Context, id string) (*domain.User, error) {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if deleted.Image != "" && s.cleaner != nil {
		s.cleaner.Enqueue(deleted.Image)
	}
	s.log.Info().Str("user_id", deleted.ID).Msg("user deleted")
	return deleted, nil
}
