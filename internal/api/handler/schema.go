package handler

import (
	"time"

	"github.com/storefront/ecommerce-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is returned by endpoints without a payload.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

// registerRequest is the multipart registration form. The image travels in
// the "image" file field.
type registerRequest struct {
	Name        string `form:"name"        json:"name"        validate:"required"`
	Email       string `form:"email"       json:"email"       validate:"required,email"`
	Password    string `form:"password"    json:"password"    validate:"required"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateUserRequest struct {
	Name string `json:"name" validate:"required"`
}

// createStoreItemRequest is the multipart store item form.
type createStoreItemRequest struct {
	ProductName        string  `form:"productName"        json:"productName"        validate:"required"`
	ProductDescription string  `form:"productDescription" json:"productDescription"`
	ProductPrice       float64 `form:"productPrice"       json:"productPrice"       validate:"gte=0"`
}

// updateStoreItemRequest is a partial update; absent fields are left as is.
type updateStoreItemRequest struct {
	ProductName        *string  `json:"productName"`
	ProductDescription *string  `json:"productDescription"`
	ProductPrice       *float64 `json:"productPrice" validate:"omitempty,gte=0"`
}

// --- Response types ---

type userResponse struct {
	Message string       `json:"message"`
	Data    *domain.User `json:"data"`
}

type userListResponse struct {
	Message   string         `json:"message"`
	TotalUser int            `json:"totalUser"`
	Data      []*domain.User `json:"data"`
}

type storeItemResponse struct {
	Message string            `json:"message"`
	Data    *domain.StoreItem `json:"data"`
}

type storeItemListResponse struct {
	Message    string              `json:"message"`
	TotalItems int                 `json:"totalItems"`
	Data       []*domain.StoreItem `json:"data"`
}

// sessionData is the identity plus its freshly issued token.
type sessionData struct {
	*domain.User
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type loginResponse struct {
	Message string      `json:"message"`
	Data    sessionData `json:"data"`
}
