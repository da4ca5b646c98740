package shop

import "time"

type Shop struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	IsOpen       bool      `json:"is_open"`
	OpeningHours string    `json:"opening_hours"`
	Categories   []string  `json:"categories"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Stats summarizes a shop's catalog and order book.
type Stats struct {
	TotalProducts int    `json:"totalProducts"`
	TotalOrders   int    `json:"totalOrders"`
	PendingOrders int    `json:"pendingOrders"`
	TotalRevenue  string `json:"totalRevenue"` // NUMERIC -> string, delivered orders only
}

// UpsertRequest payload for creating or updating the caller's shop.
// swagger:model UpsertShopRequest
type UpsertRequest struct {
	Name         string   `json:"name" example:"Test Mart"`
	Description  string   `json:"description"`
	Address      string   `json:"address" example:"12 Market Rd"`
	Phone        string   `json:"phone" example:"+15550001111"`
	Email        string   `json:"email" example:"shop@x.com"`
	IsOpen       *bool    `json:"is_open"`
	OpeningHours string   `json:"opening_hours"`
	Categories   []string `json:"categories"`
}
