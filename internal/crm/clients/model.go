package clients

import "time"

// Client kinds.
const (
	KindIndividual = "individual"
	KindCompany    = "company"
)

// Fiscal identifier types accepted for Spanish billing.
const (
	FiscalIDTypeDNI = "dni"
	FiscalIDTypeNIE = "nie"
	FiscalIDTypeCIF = "cif"
	FiscalIDTypeVAT = "vat"
)

// Client is a billable party, either a person or a company.
type Client struct {
	ID             int64     `json:"id"`
	Kind           string    `json:"kind"`
	Name           string    `json:"name"`
	FiscalID       string    `json:"fiscal_id,omitempty"`
	FiscalIDType   string    `json:"fiscal_id_type,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	PostalCode     string    `json:"postal_code,omitempty"`
	Province       string    `json:"province,omitempty"`
	Country        string    `json:"country,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	ParentClientID *int64    `json:"parent_client_id,omitempty"`
	CreatedBy      int64     `json:"user_id"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ValidKind reports whether kind is a known client kind.
func ValidKind(kind string) bool {
	return kind == KindIndividual || kind == KindCompany
}

// ValidFiscalIDType reports whether t is a known fiscal identifier type.
func ValidFiscalIDType(t string) bool {
	switch t {
	case FiscalIDTypeDNI, FiscalIDTypeNIE, FiscalIDTypeCIF, FiscalIDTypeVAT:
		return true
	}
	return false
}
