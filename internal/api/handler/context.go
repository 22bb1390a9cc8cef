package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// idParam returns the trimmed :id path parameter. A blank id can never match
// a record, so it is reported with the resource's not found error.
func idParam(c echo.Context, notFound error) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", notFound
	}
	return id, nil
}

// bindAndValidate decodes the request into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalidf("invalid payload")
	}
	return c.Validate(req)
}
