package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/storefront/ecommerce-api/internal/api/metrics"
	"github.com/storefront/ecommerce-api/internal/core/auth"
	"github.com/storefront/ecommerce-api/internal/core/domain"
)

const claimsKey = "session_claims"

// Auth validates the session token and injects its claims into the context.
// Failures are returned as domain errors so the central error handler picks
// the status for each kind.
func Auth(gate *auth.SessionGate, legacyHeader bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := auth.ExtractToken(c.Request().Header.Get(echo.HeaderAuthorization), legacyHeader)
			if err != nil {
				metrics.SessionRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			claims, err := gate.Verify(token)
			if err != nil {
				metrics.SessionRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			SetClaims(c, claims)
			return next(c)
		}
	}
}

// SetClaims stores verified claims on the request context.
func SetClaims(c echo.Context, claims domain.SessionClaims) {
	c.Set(claimsKey, claims)
}

// Claims returns the claims injected by Auth.
func Claims(c echo.Context) (domain.SessionClaims, bool) {
	claims, ok := c.Get(claimsKey).(domain.SessionClaims)
	return claims, ok
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return "missing"
	case errors.Is(err, domain.ErrMalformedToken):
		return "malformed"
	default:
		return "invalid"
	}
}
