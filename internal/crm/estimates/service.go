// Package estimates implements the quote side of the billing core and the
// one cross-entity operation in the system, convert-to-invoice.
package estimates

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vivenda-crm/vivenda-crm/internal/crm/invoices"
	"github.com/vivenda-crm/vivenda-crm/internal/finance"
	"github.com/vivenda-crm/vivenda-crm/internal/platform/db"
	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

// InvoiceStore is the slice of the invoice repository the conversion needs.
// Both repositories join the same context-carried transaction.
type InvoiceStore interface {
	NextNumber(ctx context.Context, series string, year int) (string, error)
	Insert(ctx context.Context, inv *invoices.Invoice) (int64, error)
	InsertLines(ctx context.Context, invoiceID int64, lines []invoices.Line) error
}

// Service implements estimate business rules.
type Service struct {
	repo     Repository
	invoices InvoiceStore
	series   string
	now      func() time.Time
	runInTx  func(ctx context.Context, fn func(context.Context) error) error
}

// NewService constructs a Service.
func NewService(pool *pgxpool.Pool, repo Repository, invoiceStore InvoiceStore, series string) *Service {
	return &Service{
		repo:     repo,
		invoices: invoiceStore,
		series:   series,
		now:      time.Now,
		runInTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
	}
}

func linesFromInputs(inputs []finance.LineInput) []Line {
	lines := make([]Line, 0, len(inputs))
	for _, in := range inputs {
		lines = append(lines, Line{
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			LineOrder:   in.LineOrder,
		})
	}
	return lines
}

// Create persists a new draft estimate. The number comes from the estimate
// numbering domain under the creation year.
func (s *Service) Create(ctx context.Context, actingUserID int64, req CreateEstimateRequest) (*Estimate, error) {
	totals, err := finance.EstimateTotals(req.Lines, req.TaxPercent, req.DiscountPercent)
	if err != nil {
		return nil, err
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	var created *Estimate
	err = s.runInTx(ctx, func(ctx context.Context) error {
		number, err := s.repo.NextNumber(ctx, s.series, s.now().Year())
		if err != nil {
			return err
		}
		est := &Estimate{
			Number:          number,
			Status:          StatusDraft,
			ClientID:        req.ClientID,
			ConceptText:     req.ConceptText,
			Date:            date,
			TaxPercent:      req.TaxPercent,
			DiscountPercent: req.DiscountPercent,
			BaseAmount:      totals.Base,
			TaxAmount:       totals.Tax,
			DiscountAmount:  totals.Discount,
			Total:           totals.Total,
			CreatedBy:       actingUserID,
		}
		id, err := s.repo.Insert(ctx, est)
		if err != nil {
			return err
		}
		if err := s.repo.InsertLines(ctx, id, linesFromInputs(req.Lines)); err != nil {
			return err
		}
		created, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces the editable fields and the full line set. Converted
// estimates are frozen.
func (s *Service) Update(ctx context.Context, id int64, req UpdateEstimateRequest) (*Estimate, error) {
	totals, err := finance.EstimateTotals(req.Lines, req.TaxPercent, req.DiscountPercent)
	if err != nil {
		return nil, err
	}

	var updated *Estimate
	err = s.runInTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.Status == StatusConverted {
			return fmt.Errorf("%w: estimate %s is converted and can no longer be edited", shared.ErrPrecondition, existing.Number)
		}

		var clientID interface{}
		if req.ClientID != nil {
			clientID = *req.ClientID
		}
		date := req.Date
		if date.IsZero() {
			date = existing.Date
		}

		fields := map[string]interface{}{
			"client_id":        clientID,
			"concept_text":     req.ConceptText,
			"date":             date,
			"tax_percent":      req.TaxPercent,
			"discount_percent": req.DiscountPercent,
			"base_amount":      totals.Base,
			"tax_amount":       totals.Tax,
			"discount_amount":  totals.Discount,
			"total":            totals.Total,
		}
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return err
		}
		if err := s.repo.DeleteLines(ctx, id); err != nil {
			return err
		}
		if err := s.repo.InsertLines(ctx, id, linesFromInputs(req.Lines)); err != nil {
			return err
		}
		updated, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) transition(ctx context.Context, id int64, from, to string) (*Estimate, error) {
	est, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if est.Status != from {
		return nil, fmt.Errorf("%w: estimate %s is %s, expected %s", shared.ErrPrecondition, est.Number, est.Status, from)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	est.Status = to
	return est, nil
}

// Send marks a draft as sent to the client.
func (s *Service) Send(ctx context.Context, id int64) (*Estimate, error) {
	return s.transition(ctx, id, StatusDraft, StatusSent)
}

// Accept marks a sent estimate as accepted.
func (s *Service) Accept(ctx context.Context, id int64) (*Estimate, error) {
	return s.transition(ctx, id, StatusSent, StatusAccepted)
}

// Reject marks a sent estimate as rejected.
func (s *Service) Reject(ctx context.Context, id int64) (*Estimate, error) {
	return s.transition(ctx, id, StatusSent, StatusRejected)
}

// Convert turns an estimate into a new draft invoice. The invoice copies the
// client, concept and discount; every line inherits the estimate's single
// tax rate as its own VAT rate. The estimate ends up CONVERTED. All of it is
// one transaction: a failed line copy leaves no orphan invoice.
func (s *Service) Convert(ctx context.Context, estimateID, actingUserID int64) (*invoices.Invoice, error) {
	var converted *invoices.Invoice
	err := s.runInTx(ctx, func(ctx context.Context) error {
		est, err := s.repo.GetByID(ctx, estimateID)
		if err != nil {
			return err
		}
		if est.Status == StatusConverted {
			return fmt.Errorf("%w: estimate %s is already converted", shared.ErrPrecondition, est.Number)
		}
		if len(est.Lines) == 0 {
			return fmt.Errorf("%w: estimate %s has no lines to convert", shared.ErrPrecondition, est.Number)
		}

		lineInputs := make([]finance.LineInput, 0, len(est.Lines))
		invoiceLines := make([]invoices.Line, 0, len(est.Lines))
		for _, l := range est.Lines {
			lineInputs = append(lineInputs, finance.LineInput{
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				VATPercent:  est.TaxPercent,
				LineOrder:   l.LineOrder,
			})
			invoiceLines = append(invoiceLines, invoices.Line{
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				VATPercent:  est.TaxPercent,
				LineOrder:   l.LineOrder,
			})
		}
		totals, err := finance.InvoiceTotals(lineInputs, est.DiscountPercent, 0)
		if err != nil {
			return err
		}

		number, err := s.invoices.NextNumber(ctx, s.series, s.now().Year())
		if err != nil {
			return err
		}
		sourceID := est.ID
		inv := &invoices.Invoice{
			Number:             number,
			Status:             invoices.StatusDraft,
			ClientID:           est.ClientID,
			ConceptText:        est.ConceptText,
			IssueDate:          s.now(),
			DueDate:            nil,
			DiscountPercent:    est.DiscountPercent,
			WithholdingPercent: 0,
			SourceEstimateID:   &sourceID,
			BaseAmount:         totals.Base,
			TaxAmount:          totals.Tax,
			DiscountAmount:     totals.Discount,
			WithholdingAmount:  totals.Withholding,
			Total:              totals.Total,
			CreatedBy:          actingUserID,
		}
		invoiceID, err := s.invoices.Insert(ctx, inv)
		if err != nil {
			return err
		}
		if err := s.invoices.InsertLines(ctx, invoiceID, invoiceLines); err != nil {
			return err
		}
		if err := s.repo.UpdateStatus(ctx, est.ID, StatusConverted); err != nil {
			return err
		}
		inv.ID = invoiceID
		inv.Lines = invoiceLines
		converted = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return converted, nil
}

// Get fetches a single estimate with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Estimate, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns estimates matching the filter plus the total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Estimate, int, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// Delete removes an estimate. Converted estimates are permanent because an
// invoice references them.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.runInTx(ctx, func(ctx context.Context) error {
		est, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if est.Status == StatusConverted {
			return fmt.Errorf("%w: converted estimates cannot be deleted", shared.ErrPrecondition)
		}
		return s.repo.Delete(ctx, id)
	})
}
