package properties

// CreatePropertyRequest is the payload to register a property.
type CreatePropertyRequest struct {
	OwnerClientID int64    `json:"owner_client_id" validate:"required,gt=0"`
	Operation     string   `json:"operation" validate:"required,oneof=sale rent both"`
	Title         string   `json:"title" validate:"required,min=2,max=200"`
	Description   string   `json:"description" validate:"omitempty,max=4000"`
	Address       string   `json:"address" validate:"required,max=250"`
	City          string   `json:"city" validate:"omitempty,max=120"`
	PostalCode    string   `json:"postal_code" validate:"omitempty,max=10"`
	Province      string   `json:"province" validate:"omitempty,max=120"`
	PriceSale     *float64 `json:"price_sale" validate:"omitempty,gte=0"`
	PriceRent     *float64 `json:"price_rent" validate:"omitempty,gte=0"`
	AreaM2        *float64 `json:"area_m2" validate:"omitempty,gt=0"`
	Rooms         *int     `json:"rooms" validate:"omitempty,gte=0"`
}

// UpdatePropertyRequest carries partial property changes.
type UpdatePropertyRequest struct {
	Operation   *string  `json:"operation" validate:"omitempty,oneof=sale rent both"`
	Status      *string  `json:"status" validate:"omitempty,oneof=AVAILABLE RESERVED SOLD RENTED WITHDRAWN"`
	Title       *string  `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	Address     *string  `json:"address" validate:"omitempty,max=250"`
	City        *string  `json:"city" validate:"omitempty,max=120"`
	PostalCode  *string  `json:"postal_code" validate:"omitempty,max=10"`
	Province    *string  `json:"province" validate:"omitempty,max=120"`
	PriceSale   *float64 `json:"price_sale" validate:"omitempty,gte=0"`
	PriceRent   *float64 `json:"price_rent" validate:"omitempty,gte=0"`
	AreaM2      *float64 `json:"area_m2" validate:"omitempty,gt=0"`
	Rooms       *int     `json:"rooms" validate:"omitempty,gte=0"`
}

// ListFilter narrows property listings.
type ListFilter struct {
	OwnerClientID int64
	Operation     string
	Status        string
	Limit         int
	Offset        int
}
