package product

import "time"

// Units a product can be sold in.
var ValidUnits = []string{"kg", "g", "lb", "oz", "piece", "dozen", "pack", "bottle", "liter", "ml"}

type Product struct {
	ID          string `json:"id"`
	ShopID      string `json:"shop_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// We store price as a string to avoid rounding errors (NUMERIC in Postgres)
	Price       string    `json:"price"`
	Unit        string    `json:"unit"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	IsAvailable bool      `json:"is_available"`
	Discount    int       `json:"discount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest payload of creation. The shop is always the caller's own;
// any client-supplied shop id is ignored.
// swagger:model CreateProductRequest
type CreateRequest struct {
	Name        string   `json:"name"        example:"Apple"`
	Description string   `json:"description" example:"Red, crisp"`
	Price       string   `json:"price"       example:"2.50"`
	Unit        string   `json:"unit"        example:"kg"`
	Stock       int      `json:"stock"       example:"10"`
	Category    string   `json:"category"    example:"fruit"`
	Images      []string `json:"images"`
	Discount    int      `json:"discount"`
}

// UpdateRequest payload of partial update.
// swagger:model UpdateProductRequest
type UpdateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Unit        string   `json:"unit"`
	Stock       *int     `json:"stock"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	IsAvailable *bool    `json:"is_available"`
	Discount    *int     `json:"discount"`
}
