package estimates

import (
	"time"

	"github.com/vivenda-crm/vivenda-crm/internal/finance"
)

// CreateEstimateRequest is the payload to create a draft estimate.
type CreateEstimateRequest struct {
	ClientID        *int64              `json:"client_id"`
	ConceptText     string              `json:"concept_text" validate:"omitempty,max=2000"`
	Date            time.Time           `json:"date"`
	TaxPercent      float64             `json:"tax_percent" validate:"gte=0,lte=100"`
	DiscountPercent float64             `json:"discount_percent" validate:"gte=0,lte=100"`
	Lines           []finance.LineInput `json:"lines" validate:"required,min=1,dive"`
}

// UpdateEstimateRequest fully replaces the editable fields of an estimate.
type UpdateEstimateRequest struct {
	ClientID        *int64              `json:"client_id"`
	ConceptText     string              `json:"concept_text" validate:"omitempty,max=2000"`
	Date            time.Time           `json:"date"`
	TaxPercent      float64             `json:"tax_percent" validate:"gte=0,lte=100"`
	DiscountPercent float64             `json:"discount_percent" validate:"gte=0,lte=100"`
	Lines           []finance.LineInput `json:"lines" validate:"required,min=1,dive"`
}

// ListFilter narrows estimate listings.
type ListFilter struct {
	Status   string
	ClientID int64
	Year     int
	Limit    int
	Offset   int
}
