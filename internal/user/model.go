package user

import "time"

const (
	RoleCustomer      = "customer"
	RoleShopOwner     = "shop_owner"
	RoleDeliveryAgent = "delivery_agent"
)

func ValidRole(r string) bool {
	return r == RoleCustomer || r == RoleShopOwner || r == RoleDeliveryAgent
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
