package delivery

import "time"

// Vehicle types an agency can register.
var ValidVehicleTypes = []string{"bike", "scooter", "car", "bicycle", "truck"}

type Agent struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	AgencyName          string    `json:"agency_name"`
	Address             string    `json:"address"`
	LicenseNumber       string    `json:"license_number"`
	Phone               string    `json:"phone"`
	Email               string    `json:"email"`
	VehicleType         string    `json:"vehicle_type"`
	VehicleNumber       string    `json:"vehicle_number"`
	IsOnline            bool      `json:"is_online"`
	IsAvailable         bool      `json:"is_available"`
	Rating              float64   `json:"rating"`
	TotalDeliveries     int       `json:"total_deliveries"`
	CompletedDeliveries int       `json:"completed_deliveries"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CreateRequest payload for registering a delivery agency profile.
// swagger:model CreateDeliveryAccountRequest
type CreateRequest struct {
	AgencyName    string `json:"agency_name"    example:"Swift Couriers"`
	Address       string `json:"address"        example:"4 Depot Lane"`
	LicenseNumber string `json:"license_number" example:"DL-99812"`
	MobileNumber  string `json:"mobile_number"  example:"+15550002222"`
	VehicleType   string `json:"vehicle_type"   example:"bike"`
	VehicleNumber string `json:"vehicle_number" example:"KA-01-1234"`
}
