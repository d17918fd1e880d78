// Package dashboard aggregates headline numbers for the landing view.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/vivenda-crm/vivenda-crm/internal/platform/db"
)

const summaryTTL = 15 * time.Second

// Summary is the landing page aggregate.
type Summary struct {
	ActiveClients       int     `json:"active_clients"`
	AvailableProperties int     `json:"available_properties"`
	DraftEstimates      int     `json:"draft_estimates"`
	SentEstimates       int     `json:"sent_estimates"`
	IssuedInvoices      int     `json:"issued_invoices"`
	PendingAmount       float64 `json:"pending_amount"`
	PaidThisYear        float64 `json:"paid_this_year"`
}

// Service computes the summary. Concurrent requests collapse onto a single
// set of queries and the result is held for a few seconds, so a busy landing
// page never hammers the aggregate queries.
type Service struct {
	pool  *pgxpool.Pool
	group singleflight.Group

	mu       sync.Mutex
	cached   *Summary
	cachedAt time.Time
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool, now: time.Now}
}

// Summary returns the current headline numbers.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	if s.cached != nil && s.now().Sub(s.cachedAt) < summaryTTL {
		cached := *s.cached
		s.mu.Unlock()
		return &cached, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("summary", func() (interface{}, error) {
		sum, err := s.compute(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cached = sum
		s.cachedAt = s.now()
		s.mu.Unlock()
		return sum, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Summary), nil
}

func (s *Service) compute(ctx context.Context) (*Summary, error) {
	q := db.From(ctx, s.pool)
	var sum Summary

	const counts = `
		SELECT
			(SELECT COUNT(*) FROM clients WHERE active),
			(SELECT COUNT(*) FROM properties WHERE status = 'AVAILABLE'),
			(SELECT COUNT(*) FROM estimates WHERE status = 'DRAFT'),
			(SELECT COUNT(*) FROM estimates WHERE status = 'SENT'),
			(SELECT COUNT(*) FROM invoices WHERE status = 'ISSUED')`
	if err := q.QueryRow(ctx, counts).Scan(
		&sum.ActiveClients, &sum.AvailableProperties,
		&sum.DraftEstimates, &sum.SentEstimates, &sum.IssuedInvoices,
	); err != nil {
		return nil, err
	}

	const pending = `
		SELECT COALESCE(SUM(i.total - COALESCE(p.paid, 0)), 0)
		FROM invoices i
		LEFT JOIN (
			SELECT invoice_id, SUM(amount) AS paid
			FROM invoice_payments
			GROUP BY invoice_id
		) p ON p.invoice_id = i.id
		WHERE i.status = 'ISSUED'`
	if err := q.QueryRow(ctx, pending).Scan(&sum.PendingAmount); err != nil {
		return nil, err
	}

	const paidThisYear = `
		SELECT COALESCE(SUM(amount), 0)
		FROM invoice_payments
		WHERE EXTRACT(YEAR FROM date) = EXTRACT(YEAR FROM NOW())`
	if err := q.QueryRow(ctx, paidThisYear).Scan(&sum.PaidThisYear); err != nil {
		return nil, err
	}

	return &sum, nil
}
