package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

const (
	msgNoRight          = "You don't have the right to perform this action"
	msgCheckCredentials = "Check your credentials again"
	msgInternal         = "internal server error"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
//
// With legacyAuth set, session failures keep the historical wire behaviour:
// a missing token is a 404, any other token problem a 401.
func NewHTTPErrorHandler(log zerolog.Logger, legacyAuth bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, legacyAuth, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, legacyAuth bool, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, body limit, rate limit).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var throttled *domain.ThrottledError
	if errors.As(err, &throttled) {
		secs := int(math.Ceil(throttled.RetryAfter.Seconds()))
		c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
		return http.StatusTooManyRequests, "too many failed login attempts, try again later"
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrStoreItemNotFound):
		return http.StatusNotFound, "store item not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, domain.ErrMissingToken):
		if legacyAuth {
			return http.StatusNotFound, msgNoRight
		}
		return http.StatusUnauthorized, "missing session token"
	case errors.Is(err, domain.ErrMalformedToken), errors.Is(err, domain.ErrInvalidToken):
		if legacyAuth {
			return http.StatusUnauthorized, msgCheckCredentials
		}
		return http.StatusUnauthorized, "invalid or expired session token"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "you are not allowed to perform this action"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many failed login attempts, try again later"
	}

	// Unexpected error (storage, corrupt digest): log the real cause,
	// return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Bool("storage", errors.Is(err, domain.ErrStorage)).
		Msg("unhandled error")

	return http.StatusInternalServerError, msgInternal
}

// validationMessage strips the sentinel prefix so clients only see the
// field level reason.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
