package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/ecommerce-api/internal/core/auth"
	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

// DefaultPasswordMinLength is the shortest password accepted at registration.
const DefaultPasswordMinLength = 5

// AuthService implements registration, login and the admin bootstrap.
type AuthService struct {
	users    ports.UserRepository
	hasher   *auth.PasswordHasher
	gate     *auth.SessionGate
	throttle ports.LoginThrottle
	images   ports.ImageStore
	cleaner  ports.ImageCleaner
	minLen   int
	log      zerolog.Logger
	now      func() time.Time
}

// AuthOption configures optional collaborators of AuthService.
type AuthOption func(*AuthService)

// WithLoginThrottle locks out emails after repeated failed logins.
func WithLoginThrottle(t ports.LoginThrottle) AuthOption {
	return func(s *AuthService) { s.throttle = t }
}

// WithImages enables profile image uploads at registration.
func WithImages(store ports.ImageStore, cleaner ports.ImageCleaner) AuthOption {
	return func(s *AuthService) {
		s.images = store
		s.cleaner = cleaner
	}
}

// WithPasswordMinLength overrides DefaultPasswordMinLength.
func WithPasswordMinLength(n int) AuthOption {
	return func(s *AuthService) {
		if n > 0 {
			s.minLen = n
		}
	}
}

func NewAuthService(
	users ports.UserRepository,
	hasher *auth.PasswordHasher,
	gate *auth.SessionGate,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:  users,
		hasher: hasher,
		gate:   gate,
		minLen: DefaultPasswordMinLength,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) checkPassword(password string) error {
	if password == "" {
		return domain.Invalidf("password is required")
	}
	if len(password) < s.minLen {
		return domain.Invalidf("password must be at least %d characters", s.minLen)
	}
	return nil
}

// Register stores a new standard account. The password is hashed before
// anything is persisted, and an uploaded image is released again when the
// account cannot be created.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, domain.Invalidf("name is required")
	}
	if email == "" {
		return nil, domain.Invalidf("email is required")
	}
	if err := s.checkPassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	var imageRef string
	if in.Image != nil && s.images != nil {
		imageRef, err = s.images.Save(ctx, *in.Image)
		if err != nil {
			return nil, fmt.Errorf("register: %w", err)
		}
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleStandard,
		Image:        imageRef,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.release(imageRef)
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("user registered")
	return created, nil
}

// Login verifies the password and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller, in both the error and
// the bcrypt work spent.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		wait, err := s.throttle.Attempt(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("login throttle unavailable, allowing attempt")
		} else if wait > 0 {
			return nil, &domain.ThrottledError{RetryAfter: wait}
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.hasher.VerifyAbsent(password)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password digest is unreadable")
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("reset login throttle")
		}
	}
	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}

	token, expiresAt, err := s.gate.Issue(domain.SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, err
	}

	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// EnsureAdmin creates the bootstrap admin. An empty email disables it.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if !existing.Role.IsElevated() {
			s.log.Warn().Str("email", email).Msg("bootstrap admin email belongs to a standard account")
		}
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("ensure admin: %w", err)
	}

	if err := s.checkPassword(password); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		name = "admin"
	}
	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleElevated,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("email", email).Msg("bootstrap admin created")
	return nil
}

func (s *AuthService) rehash(ctx context.Context, user *domain.User, password string) {
	hash, err := s.hasher.Hash(ctx, password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password rehash failed")
		return
	}
	s.log.Debug().Str("user_id", user.ID).Int("cost", s.hasher.Cost()).Msg("password rehashed")
}

func (s *AuthService) release(ref string) {
	if ref == "" || s.cleaner == nil {
		return
	}
	s.cleaner.Enqueue(ref)
}
