// Package preview exposes the live totals calculation used by document
// editors. It runs the exact same arithmetic as the save paths.
package preview

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vivenda-crm/vivenda-crm/internal/finance"
	"github.com/vivenda-crm/vivenda-crm/internal/platform/httpx"
)

// DocTypeInvoice and DocTypeEstimate select the calculation mode.
const (
	DocTypeInvoice  = "invoice"
	DocTypeEstimate = "estimate"
)

// Request is a calculator invocation.
type Request struct {
	DocType            string              `json:"doc_type" validate:"required,oneof=invoice estimate"`
	TaxPercent         float64             `json:"tax_percent" validate:"gte=0,lte=100"`
	DiscountPercent    float64             `json:"discount_percent" validate:"gte=0,lte=100"`
	WithholdingPercent float64             `json:"withholding_percent" validate:"gte=0,lte=100"`
	Lines              []finance.LineInput `json:"lines" validate:"required,min=1,dive"`
}

// Response carries the derived amounts rounded for display.
type Response struct {
	Base        float64 `json:"base"`
	Tax         float64 `json:"tax"`
	Discount    float64 `json:"discount"`
	Withholding float64 `json:"withholding"`
	Total       float64 `json:"total"`
}

// Handler serves the preview endpoint.
type Handler struct {
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{validator: validator.New()}
}

// MountRoutes registers the preview route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/preview", h.handlePreview)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	var totals finance.Totals
	var err error
	switch req.DocType {
	case DocTypeEstimate:
		totals, err = finance.EstimateTotals(req.Lines, req.TaxPercent, req.DiscountPercent)
	default:
		totals, err = finance.InvoiceTotals(req.Lines, req.DiscountPercent, req.WithholdingPercent)
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, Response{
		Base:        finance.Round2(totals.Base),
		Tax:         finance.Round2(totals.Tax),
		Discount:    finance.Round2(totals.Discount),
		Withholding: finance.Round2(totals.Withholding),
		Total:       finance.Round2(totals.Total),
	})
}
