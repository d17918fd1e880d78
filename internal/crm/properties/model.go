package properties

import "time"

// Operations a property can be offered under.
const (
	OperationSale = "sale"
	OperationRent = "rent"
	OperationBoth = "both"
)

// Property statuses.
const (
	StatusAvailable = "AVAILABLE"
	StatusReserved  = "RESERVED"
	StatusSold      = "SOLD"
	StatusRented    = "RENTED"
	StatusWithdrawn = "WITHDRAWN"
)

// Property is an item of real estate offered by a client.
type Property struct {
	ID            int64     `json:"id"`
	OwnerClientID int64     `json:"owner_client_id"`
	Operation     string    `json:"operation"`
	Status        string    `json:"status"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Address       string    `json:"address"`
	City          string    `json:"city,omitempty"`
	PostalCode    string    `json:"postal_code,omitempty"`
	Province      string    `json:"province,omitempty"`
	PriceSale     *float64  `json:"price_sale,omitempty"`
	PriceRent     *float64  `json:"price_rent,omitempty"`
	AreaM2        *float64  `json:"area_m2,omitempty"`
	Rooms         *int      `json:"rooms,omitempty"`
	CreatedBy     int64     `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ValidOperation reports whether op is a known offering operation.
func ValidOperation(op string) bool {
	return op == OperationSale || op == OperationRent || op == OperationBoth
}

// ValidStatus reports whether status is a known property status.
func ValidStatus(status string) bool {
	switch status {
	case StatusAvailable, StatusReserved, StatusSold, StatusRented, StatusWithdrawn:
		return true
	}
	return false
}
