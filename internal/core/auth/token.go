package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// DefaultTokenTTL is the lifetime of an issued session token.
const DefaultTokenTTL = 48 * time.Hour

// sessionClaims is the signed payload. Field names are part of the wire
// contract with existing clients.
type sessionClaims struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// SessionGate issues and verifies HS256 session tokens.
type SessionGate struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// GateOption customises a SessionGate.
type GateOption func(*SessionGate)

// WithIssuer sets the iss claim stamped on issued tokens.
func WithIssuer(issuer string) GateOption {
	return func(g *SessionGate) { g.issuer = issuer }
}

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) GateOption {
	return func(g *SessionGate) { g.now = now }
}

// NewSessionGate builds a gate signing with secret. Rotating the secret
// invalidates every outstanding token.
func NewSessionGate(secret string, ttl time.Duration, opts ...GateOption) *SessionGate {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	g := &SessionGate{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TTL returns the lifetime applied to issued tokens.
func (g *SessionGate) TTL() time.Duration { return g.ttl }

// Issue signs claims into a compact token and returns it with its expiry.
func (g *SessionGate) Issue(claims domain.SessionClaims) (string, time.Time, error) {
	now := g.now()
	exp := now.Add(g.ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		ID:      claims.UserID,
		Email:   claims.Email,
		IsAdmin: claims.Role.IsElevated(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := t.SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks the token's signature and expiry and returns its claims.
func (g *SessionGate) Verify(token string) (domain.SessionClaims, error) {
	if strings.TrimSpace(token) == "" {
		return domain.SessionClaims{}, domain.ErrMissingToken
	}

	var sc sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &sc, func(*jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return domain.SessionClaims{}, domain.ErrMalformedToken
		}
		return domain.SessionClaims{}, domain.ErrInvalidToken
	}
	if !parsed.Valid || sc.ID == "" {
		return domain.SessionClaims{}, domain.ErrInvalidToken
	}

	return domain.SessionClaims{
		UserID: sc.ID,
		Email:  sc.Email,
		Role:   domain.RoleFromAdminFlag(sc.IsAdmin),
	}, nil
}

// ExtractToken pulls the credential out of an Authorization header value.
//
// The conventional form is "Bearer <token>". With legacy set, a header of
// three or more fields yields its third field, which is where older clients
// put the token ("Bearer <ignored> <token>"). Legacy mode still accepts the
// two field "Bearer <token>" form, so it only ever admits more headers than
// the default.
func ExtractToken(header string, legacy bool) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", domain.ErrMissingToken
	}

	fields := strings.Fields(header)
	if legacy && len(fields) >= 3 {
		return fields[2], nil
	}
	if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
		return "", domain.ErrMalformedToken
	}
	return fields[1], nil
}
