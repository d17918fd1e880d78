// Package finance holds the pure financial arithmetic shared by the live
// preview endpoints and the save paths. Nothing here touches the store; both
// call sites must go through the same functions so the displayed and the
// persisted totals can never drift.
package finance

import (
	"fmt"
	"math"
	"strings"

	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

// VAT rates accepted on invoice lines (Spanish IVA brackets).
var allowedVATRates = []float64{0, 4, 10, 21}

// LineInput is the calculator's view of a document line.
type LineInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	VATPercent  float64 `json:"vat_percent"`
	LineOrder   int     `json:"line_order"`
}

// Totals carries every derived amount for a document. Values keep full
// float64 precision; use Round2 only at presentation time.
type Totals struct {
	Base        float64 `json:"base"`
	Tax         float64 `json:"tax"`
	Discount    float64 `json:"discount"`
	Withholding float64 `json:"withholding"`
	Total       float64 `json:"total"`
}

// LineBase returns quantity × unit price for a single line.
func LineBase(line LineInput) float64 {
	return line.Quantity * line.UnitPrice
}

// InvoiceTotals computes invoice amounts. Tax is accumulated per line from
// each line's own VAT rate; discount and withholding are taken on the
// document base, before tax, never compounded.
func InvoiceTotals(lines []LineInput, discountPercent, withholdingPercent float64) (Totals, error) {
	if err := ValidateInvoiceLines(lines); err != nil {
		return Totals{}, err
	}
	if err := validatePercent("discount_percent", discountPercent); err != nil {
		return Totals{}, err
	}
	if err := validatePercent("withholding_percent", withholdingPercent); err != nil {
		return Totals{}, err
	}

	var base, tax float64
	for _, line := range lines {
		lineBase := LineBase(line)
		base += lineBase
		tax += lineBase * line.VATPercent / 100
	}

	discount := base * discountPercent / 100
	withholding := base * withholdingPercent / 100
	return Totals{
		Base:        base,
		Tax:         tax,
		Discount:    discount,
		Withholding: withholding,
		Total:       base + tax - discount - withholding,
	}, nil
}

// EstimateTotals computes estimate amounts. Estimates precede itemised tax
// assignment, so tax is taken once on the document base from the single
// document-level rate. Estimates carry no withholding.
func EstimateTotals(lines []LineInput, taxPercent, discountPercent float64) (Totals, error) {
	if err := ValidateEstimateLines(lines); err != nil {
		return Totals{}, err
	}
	if err := validatePercent("tax_percent", taxPercent); err != nil {
		return Totals{}, err
	}
	if err := validatePercent("discount_percent", discountPercent); err != nil {
		return Totals{}, err
	}

	var base float64
	for _, line := range lines {
		base += LineBase(line)
	}

	tax := base * taxPercent / 100
	discount := base * discountPercent / 100
	return Totals{
		Base:     base,
		Tax:      tax,
		Discount: discount,
		Total:    base + tax - discount,
	}, nil
}

// ValidateEstimateLines checks the constraints shared by every line.
func ValidateEstimateLines(lines []LineInput) error {
	for i, line := range lines {
		if strings.TrimSpace(line.Description) == "" {
			return fmt.Errorf("%w: line %d: description is required", shared.ErrValidation, i+1)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line %d: quantity must be positive", shared.ErrValidation, i+1)
		}
		if line.UnitPrice < 0 {
			return fmt.Errorf("%w: line %d: unit price must not be negative", shared.ErrValidation, i+1)
		}
	}
	return nil
}

// ValidateInvoiceLines additionally requires each line's VAT rate to be one
// of the allowed brackets.
func ValidateInvoiceLines(lines []LineInput) error {
	if err := ValidateEstimateLines(lines); err != nil {
		return err
	}
	for i, line := range lines {
		if !AllowedVATRate(line.VATPercent) {
			return fmt.Errorf("%w: line %d: vat rate %.4g is not one of 0, 4, 10, 21", shared.ErrValidation, i+1, line.VATPercent)
		}
	}
	return nil
}

// AllowedVATRate reports whether rate is a valid invoice-line VAT rate.
func AllowedVATRate(rate float64) bool {
	for _, allowed := range allowedVATRates {
		if rate == allowed {
			return true
		}
	}
	return false
}

// Round2 rounds a monetary amount to two fraction digits for presentation.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func validatePercent(field string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%w: %s must not be negative", shared.ErrValidation, field)
	}
	return nil
}
