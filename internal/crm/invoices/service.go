// Package invoices implements the invoice side of the billing core:
// draft editing, issue, payments, and the paid-status ratchet.
package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vivenda-crm/vivenda-crm/internal/finance"
	"github.com/vivenda-crm/vivenda-crm/internal/platform/db"
	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

// paymentEpsilon absorbs float rounding when comparing the cumulative paid
// amount against the invoice total.
const paymentEpsilon = 0.01

// Service implements invoice business rules.
type Service struct {
	repo    Repository
	series  string
	now     func() time.Time
	runInTx func(ctx context.Context, fn func(context.Context) error) error
}

// NewService constructs a Service.
func NewService(pool *pgxpool.Pool, repo Repository, series string) *Service {
	return &Service{
		repo:   repo,
		series: series,
		now:    time.Now,
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
			VATPercent:  in.VATPercent,
			LineOrder:   in.LineOrder,
		})
	}
	return lines
}

// Create persists a new draft invoice. The number is allocated from the
// invoice numbering domain under the creation year, regardless of the
// stated issue date.
func (s *Service) Create(ctx context.Context, actingUserID int64, req CreateInvoiceRequest) (*Invoice, error) {
	totals, err := finance.InvoiceTotals(req.Lines, req.DiscountPercent, req.WithholdingPercent)
	if err != nil {
		return nil, err
	}
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = s.now()
	}

	var created *Invoice
	err = s.runInTx(ctx, func(ctx context.Context) error {
		number, err := s.repo.NextNumber(ctx, s.series, s.now().Year())
		if err != nil {
			return err
		}
		inv := &Invoice{
			Number:             number,
			Status:             StatusDraft,
			ClientID:           req.ClientID,
			ConceptText:        req.ConceptText,
			IssueDate:          issueDate,
			DueDate:            req.DueDate,
			DiscountPercent:    req.DiscountPercent,
			WithholdingPercent: req.WithholdingPercent,
			BaseAmount:         totals.Base,
			TaxAmount:          totals.Tax,
			DiscountAmount:     totals.Discount,
			WithholdingAmount:  totals.Withholding,
			Total:              totals.Total,
			CreatedBy:          actingUserID,
		}
		id, err := s.repo.Insert(ctx, inv)
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

// Update replaces the editable fields and the full line set of a draft.
func (s *Service) Update(ctx context.Context, id int64, req UpdateInvoiceRequest) (*Invoice, error) {
	totals, err := finance.InvoiceTotals(req.Lines, req.DiscountPercent, req.WithholdingPercent)
	if err != nil {
		return nil, err
	}

	var updated *Invoice
	err = s.runInTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.Status != StatusDraft {
			return fmt.Errorf("%w: only draft invoices can be edited", shared.ErrPrecondition)
		}

		var clientID interface{}
		if req.ClientID != nil {
			clientID = *req.ClientID
		}
		issueDate := req.IssueDate
		if issueDate.IsZero() {
			issueDate = existing.IssueDate
		}
		var dueDate interface{}
		if req.DueDate != nil {
			dueDate = *req.DueDate
		}

		fields := map[string]interface{}{
			"client_id":           clientID,
			"concept_text":        req.ConceptText,
			"issue_date":          issueDate,
			"due_date":            dueDate,
			"discount_percent":    req.DiscountPercent,
			"withholding_percent": req.WithholdingPercent,
			"base_amount":         totals.Base,
			"tax_amount":          totals.Tax,
			"discount_amount":     totals.Discount,
			"withholding_amount":  totals.Withholding,
			"total":               totals.Total,
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

// Issue moves a draft to issued.
func (s *Service) Issue(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft {
		return nil, fmt.Errorf("%w: invoice %s is %s, only drafts can be issued", shared.ErrPrecondition, inv.Number, inv.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusIssued); err != nil {
		return nil, err
	}
	inv.Status = StatusIssued
	return inv, nil
}

// RecordPayment appends a payment and ratchets the invoice to paid once the
// cumulative amount covers the total. Drafts cannot accrue payments.
func (s *Service) RecordPayment(ctx context.Context, invoiceID, actingUserID int64, req RecordPaymentRequest) (*Payment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}
	if !ValidMethod(req.Method) {
		return nil, fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, req.Method)
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	var payment *Payment
	err := s.runInTx(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == StatusDraft {
			return fmt.Errorf("%w: invoice %s is a draft, issue it before recording payments", shared.ErrPrecondition, inv.Number)
		}
		paid, err := s.repo.SumPayments(ctx, invoiceID)
		if err != nil {
			return err
		}
		pending := inv.Total - paid
		if pending <= 0 {
			return fmt.Errorf("%w: invoice %s has no pending amount", shared.ErrPrecondition, inv.Number)
		}

		payment, err = s.repo.InsertPayment(ctx, &Payment{
			InvoiceID: invoiceID,
			Amount:    req.Amount,
			Date:      date,
			Method:    req.Method,
			Note:      req.Note,
			CreatedBy: actingUserID,
		})
		if err != nil {
			return err
		}

		// Overpayment still flips to paid; the ratchet never unwinds.
		if paid+req.Amount >= inv.Total-paymentEpsilon && inv.Status != StatusPaid {
			return s.repo.UpdateStatus(ctx, invoiceID, StatusPaid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Get fetches an invoice. Status is a cached derivation of the payment sum;
// a stale row is repaired on read.
func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusIssued {
		paid, err := s.repo.SumPayments(ctx, id)
		if err != nil {
			return nil, err
		}
		if paid >= inv.Total-paymentEpsilon {
			if err := s.repo.UpdateStatus(ctx, id, StatusPaid); err != nil {
				return nil, err
			}
			inv.Status = StatusPaid
		}
	}
	return inv, nil
}

// List returns invoices matching the filter plus the total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Invoice, int, error) {
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

// Payments lists the payments of an invoice.
func (s *Service) Payments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	if _, err := s.repo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, invoiceID)
}

// PendingAmount returns the outstanding amount, floored at zero.
func (s *Service) PendingAmount(ctx context.Context, invoiceID int64) (float64, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return 0, err
	}
	paid, err := s.repo.SumPayments(ctx, invoiceID)
	if err != nil {
		return 0, err
	}
	pending := inv.Total - paid
	if pending < 0 {
		pending = 0
	}
	return pending, nil
}

// Delete removes a draft invoice. Issued and paid documents are permanent.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.runInTx(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != StatusDraft {
			return fmt.Errorf("%w: only draft invoices can be deleted", shared.ErrPrecondition)
		}
		return s.repo.Delete(ctx, id)
	})
}
