package clients

// CreateClientRequest is the payload to register a client.
type CreateClientRequest struct {
	Kind           string `json:"kind" validate:"required,oneof=individual company"`
	Name           string `json:"name" validate:"required,min=2,max=200"`
	FiscalID       string `json:"fiscal_id" validate:"omitempty,min=3,max=32"`
	FiscalIDType   string `json:"fiscal_id_type" validate:"omitempty,oneof=dni nie cif vat"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"omitempty,max=32"`
	Address        string `json:"address" validate:"omitempty,max=250"`
	City           string `json:"city" validate:"omitempty,max=120"`
	PostalCode     string `json:"postal_code" validate:"omitempty,max=10"`
	Province       string `json:"province" validate:"omitempty,max=120"`
	Country        string `json:"country" validate:"omitempty,max=120"`
	Notes          string `json:"notes" validate:"omitempty,max=2000"`
	ParentClientID *int64 `json:"parent_client_id"`
}

// UpdateClientRequest carries partial client changes.
type UpdateClientRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=200"`
	FiscalID       *string `json:"fiscal_id" validate:"omitempty,min=3,max=32"`
	FiscalIDType   *string `json:"fiscal_id_type" validate:"omitempty,oneof=dni nie cif vat"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	Address        *string `json:"address" validate:"omitempty,max=250"`
	City           *string `json:"city" validate:"omitempty,max=120"`
	PostalCode     *string `json:"postal_code" validate:"omitempty,max=10"`
	Province       *string `json:"province" validate:"omitempty,max=120"`
	Country        *string `json:"country" validate:"omitempty,max=120"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
	ParentClientID *int64  `json:"parent_client_id"`
	Active         *bool   `json:"active"`
}

// ListFilter narrows client listings.
type ListFilter struct {
	Search string
	Kind   string
	Active *bool
	Limit  int
	Offset int
}
