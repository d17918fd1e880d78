package estimates

import "time"

// Estimate statuses. CONVERTED is terminal.
const (
	StatusDraft     = "DRAFT"
	StatusSent      = "SENT"
	StatusAccepted  = "ACCEPTED"
	StatusRejected  = "REJECTED"
	StatusConverted = "CONVERTED"
)

// Estimate is a quote document with one document-level VAT rate.
type Estimate struct {
	ID              int64     `json:"id"`
	Number          string    `json:"number"`
	Status          string    `json:"status"`
	ClientID        *int64    `json:"client_id,omitempty"`
	ConceptText     string    `json:"concept_text,omitempty"`
	Date            time.Time `json:"date"`
	TaxPercent      float64   `json:"tax_percent"`
	DiscountPercent float64   `json:"discount_percent"`
	BaseAmount      float64   `json:"base_amount"`
	TaxAmount       float64   `json:"tax_amount"`
	DiscountAmount  float64   `json:"discount_amount"`
	Total           float64   `json:"total"`
	Lines           []Line    `json:"lines"`
	CreatedBy       int64     `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Line is an estimate line. The VAT rate lives on the document, not here.
type Line struct {
	ID          int64   `json:"id"`
	EstimateID  int64   `json:"estimate_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineOrder   int     `json:"line_order"`
}

// ValidStatus reports whether status is a known estimate status.
func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusConverted:
		return true
	}
	return false
}
