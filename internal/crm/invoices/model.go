package invoices

import "time"

// Invoice statuses.
const (
	StatusDraft  = "DRAFT"
	StatusIssued = "ISSUED"
	StatusPaid   = "PAID"
)

// Payment methods.
const (
	MethodTransfer    = "TRANSFER"
	MethodCash        = "CASH"
	MethodCard        = "CARD"
	MethodBizum       = "BIZUM"
	MethodDirectDebit = "DIRECT_DEBIT"
	MethodOther       = "OTHER"
)

// Invoice is a billing document with its own per-line VAT rates.
type Invoice struct {
	ID                 int64      `json:"id"`
	Number             string     `json:"number"`
	Status             string     `json:"status"`
	ClientID           *int64     `json:"client_id,omitempty"`
	ConceptText        string     `json:"concept_text,omitempty"`
	IssueDate          time.Time  `json:"issue_date"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	DiscountPercent    float64    `json:"discount_percent"`
	WithholdingPercent float64    `json:"withholding_percent"`
	SourceEstimateID   *int64     `json:"source_estimate_id,omitempty"`
	BaseAmount         float64    `json:"base_amount"`
	TaxAmount          float64    `json:"tax_amount"`
	DiscountAmount     float64    `json:"discount_amount"`
	WithholdingAmount  float64    `json:"withholding_amount"`
	Total              float64    `json:"total"`
	Lines              []Line     `json:"lines"`
	CreatedBy          int64      `json:"user_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Line is an invoice line. Lines carry no identity across edits; every
// document edit replaces the full set.
type Line struct {
	ID          int64   `json:"id"`
	InvoiceID   int64   `json:"invoice_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	VATPercent  float64 `json:"vat_percent"`
	LineOrder   int     `json:"line_order"`
}

// Payment is an append-only record against one invoice.
type Payment struct {
	ID        int64     `json:"id"`
	InvoiceID int64     `json:"invoice_id"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	Method    string    `json:"method"`
	Note      string    `json:"note,omitempty"`
	CreatedBy int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidStatus reports whether status is a known invoice status.
func ValidStatus(status string) bool {
	return status == StatusDraft || status == StatusIssued || status == StatusPaid
}

// ValidMethod reports whether method is a known payment method.
func ValidMethod(method string) bool {
	switch method {
	case MethodTransfer, MethodCash, MethodCard, MethodBizum, MethodDirectDebit, MethodOther:
		return true
	}
	return false
}
