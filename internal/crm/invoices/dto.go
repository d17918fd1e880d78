package invoices

import (
	"time"

	"github.com/vivenda-crm/vivenda-crm/internal/finance"
)

// CreateInvoiceRequest is the payload to create a draft invoice.
type CreateInvoiceRequest struct {
	ClientID           *int64              `json:"client_id"`
	ConceptText        string              `json:"concept_text" validate:"omitempty,max=2000"`
	IssueDate          time.Time           `json:"issue_date"`
	DueDate            *time.Time          `json:"due_date"`
	DiscountPercent    float64             `json:"discount_percent" validate:"gte=0,lte=100"`
	WithholdingPercent float64             `json:"withholding_percent" validate:"gte=0,lte=100"`
	Lines              []finance.LineInput `json:"lines" validate:"required,min=1,dive"`
}

// UpdateInvoiceRequest fully replaces the editable fields of a draft.
type UpdateInvoiceRequest struct {
	ClientID           *int64              `json:"client_id"`
	ConceptText        string              `json:"concept_text" validate:"omitempty,max=2000"`
	IssueDate          time.Time           `json:"issue_date"`
	DueDate            *time.Time          `json:"due_date"`
	DiscountPercent    float64             `json:"discount_percent" validate:"gte=0,lte=100"`
	WithholdingPercent float64             `json:"withholding_percent" validate:"gte=0,lte=100"`
	Lines              []finance.LineInput `json:"lines" validate:"required,min=1,dive"`
}

// RecordPaymentRequest is the payload to append a payment.
type RecordPaymentRequest struct {
	Amount float64   `json:"amount" validate:"required,gt=0"`
	Date   time.Time `json:"date"`
	Method string    `json:"method" validate:"required,oneof=TRANSFER CASH CARD BIZUM DIRECT_DEBIT OTHER"`
	Note   string    `json:"note" validate:"omitempty,max=500"`
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	Status   string
	ClientID int64
	Year     int
	Limit    int
	Offset   int
}
