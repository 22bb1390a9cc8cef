package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

// StoreHandler serves the /stores resource.
type StoreHandler struct {
	service       ports.StoreService
	maxImageBytes int64
}

func NewStoreHandler(service ports.StoreService, maxImageBytes int64) *StoreHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &StoreHandler{service: service, maxImageBytes: maxImageBytes}
}

// List handles GET /stores.
//
// @Summary      List store items
// @Tags         stores
// @Produce      json
// @Success      200  {object}  storeItemListResponse
// @Failure      500  {object}  errorResponse
// @Router       /stores [get]
func (h *StoreHandler) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, storeItemListResponse{
		Message:    "All Items Found Successfully",
		TotalItems: len(items),
		Data:       items,
	})
}

// Get handles GET /stores/:id.
//
// @Summary      Get a store item
// @Tags         stores
// @Produce      json
// @Param        id   path      string  true  "Store item ID"
// @Success      200  {object}  storeItemResponse
// @Failure      404  {object}  errorResponse
// @Router       /stores/{id} [get]
func (h *StoreHandler) Get(c echo.Context) error {
	id, err := idParam(c, domain.ErrStoreItemNotFound)
	if err != nil {
		return err
	}
	item, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, storeItemResponse{Message: "Item Found Successfully", Data: item})
}

// Create handles POST /stores.
//
// @Summary      Create a store item
// @Tags         stores
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        productName         formData  string  true   "Product name"
// @Param        productDescription  formData  string  false  "Product description"
// @Param        productPrice        formData  number  true   "Price, zero or more"
// @Param        image               formData  file    false  "Product picture (jpeg, png, gif, webp)"
// @Success      201  {object}  storeItemResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /stores [post]
func (h *StoreHandler) Create(c echo.Context) error {
	var req createStoreItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	img, release, err := readImage(c, h.maxImageBytes)
	if err != nil {
		return err
	}
	defer release()

	item, err := h.service.Create(c.Request().Context(), toCreateStoreItemInput(req, img))
	if err != nil {
		return err
	}
	observeStored(img)

	return c.JSON(http.StatusCreated, storeItemResponse{Message: "Store Item Successfully Created", Data: item})
}

// Update handles PATCH /stores/:id.
//
// @Summary      Update a store item
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Store item ID"
// @Param        body  body      updateStoreItemRequest  true  "Fields to change"
// @Success      200   {object}  storeItemResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /stores/{id} [patch]
func (h *StoreHandler) Update(c echo.Context) error {
	id, err := idParam(c, domain.ErrStoreItemNotFound)
	if err != nil {
		return err
	}
	var req updateStoreItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.service.Update(c.Request().Context(), id, toStoreItemPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, storeItemResponse{Message: "Successfully Updated this store", Data: item})
}

// Delete handles DELETE /stores/:id.
//
// @Summary      Delete a store item
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Store item ID"
// @Success      200  {object}  storeItemResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /stores/{id} [delete]
func (h *StoreHandler) Delete(c echo.Context) error {
	id, err := idParam(c, domain.ErrStoreItemNotFound)
	if err != nil {
		return err
	}
	item, err := h.service.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, storeItemResponse{Message: "Successfully Deleted this store", Data: item})
}
