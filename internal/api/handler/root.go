package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Index handles GET /.
//
// @Summary      API banner
// @Tags         meta
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       / [get]
func Index(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "An eCommerce PlatForm Api"})
}
