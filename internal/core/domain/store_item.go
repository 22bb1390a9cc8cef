package domain

import "time"

// StoreItem is a product listed by the platform.
type StoreItem struct {
	ID                 string    `json:"id"`
	ProductName        string    `json:"productName"`
	ProductDescription string    `json:"productDescription"`
	ProductPrice       float64   `json:"productPrice"`
	Image              string    `json:"image,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
