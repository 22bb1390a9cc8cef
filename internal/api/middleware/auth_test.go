package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront/ecommerce-api/internal/core/auth"
	"github.com/storefront/ecommerce-api/internal/core/domain"
)

func newContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func issue(t *testing.T, gate *auth.SessionGate, claims domain.SessionClaims) string {
	t.Helper()
	token, _, err := gate.Issue(claims)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	gate := auth.NewSessionGate("secret", time.Hour)
	want := domain.SessionClaims{UserID: "u1", Email: "alice@x.com", Role: domain.RoleElevated}
	c, rec := newContext("Bearer " + issue(t, gate, want))

	called := false
	handler := Auth(gate, false)(func(c echo.Context) error {
		called = true
		got, ok := Claims(c)
		if !ok || got != want {
			t.Fatalf("claims = %+v (ok=%v), want %+v", got, ok, want)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_LegacyHeader(t *testing.T) {
	gate := auth.NewSessionGate("secret", time.Hour)
	token := issue(t, gate, domain.SessionClaims{UserID: "u1"})

	c, _ := newContext("Bearer x " + token)
	if err := Auth(gate, true)(okHandler)(c); err != nil {
		t.Fatalf("legacy header rejected: %v", err)
	}

	c, _ = newContext("Bearer x " + token)
	if err := Auth(gate, false)(okHandler)(c); !errors.Is(err, domain.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken without legacy mode, got %v", err)
	}
}

func TestAuthMiddleware_Failures(t *testing.T) {
	gate := auth.NewSessionGate("secret", time.Hour)
	otherKey := issue(t, auth.NewSessionGate("other", time.Hour), domain.SessionClaims{UserID: "u1"})

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", domain.ErrMissingToken},
		{"wrong scheme", "Basic abc", domain.ErrMalformedToken},
		{"not a jwt", "Bearer abc", domain.ErrMalformedToken},
		{"wrong key", "Bearer " + otherKey, domain.ErrInvalidToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newContext(tc.header)
			called := false
			err := Auth(gate, false)(func(c echo.Context) error {
				called = true
				return nil
			})(c)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if called {
				t.Fatal("next must not run")
			}
		})
	}
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }
