package order

// PlaceItem is one line of a checkout request. Quantity is the only thing
// the client decides; prices come from the catalog.
// swagger:model PlaceOrderItem
type PlaceItem struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"2"`
}

// PlaceRequest payload for checkout.
// swagger:model PlaceOrderRequest
type PlaceRequest struct {
	ShopID               string      `json:"shop_id"`
	Items                []PlaceItem `json:"items"`
	DeliveryAddress      string      `json:"delivery_address"`
	DeliveryInstructions string      `json:"delivery_instructions"`
	PaymentMethod        string      `json:"payment_method" example:"cash"`
}

// StatusRequest payload for a shop-side status change.
// swagger:model UpdateOrderStatusRequest
type StatusRequest struct {
	Status string `json:"status" example:"confirmed"`
}
