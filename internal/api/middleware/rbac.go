package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/ecommerce-api/internal/api/metrics"
	"github.com/storefront/ecommerce-api/internal/core/auth"
	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// OwnerFunc resolves the id of the identity owning the target of a request.
type OwnerFunc func(c echo.Context) string

// ParamOwner reads the owner id from a path parameter.
func ParamOwner(name string) OwnerFunc {
	return func(c echo.Context) string { return c.Param(name) }
}

// NoOwner is used for platform owned resources.
func NoOwner(echo.Context) string { return "" }

// Authorize enforces req against the claims injected by Auth. A denial is
// always an explicit domain.ErrForbidden, never a silent pass-through.
// It must be mounted after Auth.
func Authorize(req auth.Requirement, owner OwnerFunc) echo.MiddlewareFunc {
	if owner == nil {
		owner = NoOwner
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := Claims(c)
			if !ok {
				return domain.ErrMissingToken
			}
			if !auth.CanMutate(claims, owner(c), req) {
				metrics.AuthorizationDecisionsTotal.WithLabelValues(req.Name, "deny").Inc()
				return domain.ErrForbidden
			}
			metrics.AuthorizationDecisionsTotal.WithLabelValues(req.Name, "allow").Inc()
			return next(c)
		}
	}
}
