package order

import "time"

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Payment methods accepted at checkout.
var ValidPaymentMethods = []string{"cash", "card", "upi", "wallet"}

type Order struct {
	ID            string `json:"id"`
	Number        string `json:"order_number"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	ShopID        string `json:"shop_id"`
	Items         []Item `json:"items,omitempty"`
	// NUMERIC -> string; always recomputed from product prices, never
	// taken from the client.
	TotalAmount          string     `json:"total_amount"`
	DeliveryAddress      string     `json:"delivery_address"`
	DeliveryInstructions string     `json:"delivery_instructions,omitempty"`
	Status               Status     `json:"status"`
	PaymentStatus        string     `json:"payment_status"`
	PaymentMethod        string     `json:"payment_method"`
	DeliveryAgentID      *string    `json:"delivery_agent_id,omitempty"`
	DeliveredAt          *time.Time `json:"delivered_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Item is a denormalized snapshot of a product at order time; later price or
// name changes on the product never rewrite history.
type Item struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Unit      string `json:"unit"`
	Image     string `json:"image,omitempty"`
}

// StatusCount is one group-by-status row of the shop order stats.
type StatusCount struct {
	Status      Status `json:"status"`
	Count       int    `json:"count"`
	TotalAmount string `json:"totalAmount"`
}

type ShopStats struct {
	Stats         []StatusCount `json:"stats"`
	TotalOrders   int           `json:"totalOrders"`
	PendingOrders int           `json:"pendingOrders"`
}

type AgentStats struct {
	TotalDeliveries   int `json:"totalDeliveries"`
	PendingDeliveries int `json:"pendingDeliveries"`
	TodayDeliveries   int `json:"todayDeliveries"`
	TotalEarnings     int `json:"totalEarnings"`
	TodayEarnings     int `json:"todayEarnings"`
}
