package handler

import (
	"fmt"

	"github.com/storefront/ecommerce-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest, img *ports.Image) ports.RegisterInput {
	return ports.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Image:       img,
	}
}

func toCreateStoreItemInput(req createStoreItemRequest, img *ports.Image) ports.CreateStoreItemInput {
	return ports.CreateStoreItemInput{
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
		ProductPrice:       req.ProductPrice,
		Image:              img,
	}
}

func toStoreItemPatch(req updateStoreItemRequest) ports.StoreItemPatch {
	return ports.StoreItemPatch{
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
		ProductPrice:       req.ProductPrice,
	}
}

// --- Service result → Response ---

func toLoginResponse(res *ports.LoginResult) loginResponse {
	return loginResponse{
		Message: fmt.Sprintf("welcome back %s", res.User.Name),
		Data: sessionData{
			User:      res.User,
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
		},
	}
}
