package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vivenda-crm/vivenda-crm/internal/finance"
	"github.com/vivenda-crm/vivenda-crm/internal/platform/db"
	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

// Repository defines persistence for invoices and their payments.
type Repository interface {
	NextNumber(ctx context.Context, series string, year int) (string, error)
	Insert(ctx context.Context, inv *Invoice) (int64, error)
	InsertLines(ctx context.Context, invoiceID int64, lines []Line) error
	DeleteLines(ctx context.Context, invoiceID int64) error
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]Invoice, int, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	InsertPayment(ctx context.Context, p *Payment) (*Payment, error)
	ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error)
	SumPayments(ctx context.Context, invoiceID int64) (float64, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const invoiceColumns = `id, number, status, client_id, concept_text, issue_date, due_date,
	discount_percent, withholding_percent, source_estimate_id,
	base_amount, tax_amount, discount_amount, withholding_amount, total,
	user_id, created_at, updated_at`

// NextNumber allocates the next correlative for the series/year pair. The
// sequence row is upserted atomically so concurrent callers cannot observe
// the same value.
func (r *PGRepository) NextNumber(ctx context.Context, series string, year int) (string, error) {
	const query = `
		INSERT INTO document_sequences (doc_type, series, year, seq)
		VALUES ('INV', $1, $2, 1)
		ON CONFLICT (doc_type, series, year)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`

	var seq int
	if err := db.From(ctx, r.pool).QueryRow(ctx, query, series, year).Scan(&seq); err != nil {
		return "", err
	}
	return finance.FormatNumber(series, year, seq), nil
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var clientID, sourceEstimateID pgtype.Int8
	var conceptText pgtype.Text
	var issueDate pgtype.Date
	var dueDate pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&inv.ID, &inv.Number, &inv.Status, &clientID, &conceptText,
		&issueDate, &dueDate, &inv.DiscountPercent, &inv.WithholdingPercent, &sourceEstimateID,
		&inv.BaseAmount, &inv.TaxAmount, &inv.DiscountAmount, &inv.WithholdingAmount, &inv.Total,
		&inv.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if clientID.Valid {
		v := clientID.Int64
		inv.ClientID = &v
	}
	if sourceEstimateID.Valid {
		v := sourceEstimateID.Int64
		inv.SourceEstimateID = &v
	}
	inv.ConceptText = conceptText.String
	inv.IssueDate = issueDate.Time
	if dueDate.Valid {
		v := dueDate.Time
		inv.DueDate = &v
	}
	inv.CreatedAt = createdAt.Time
	inv.UpdatedAt = updatedAt.Time
	return &inv, nil
}

// Insert creates the invoice row and returns its id.
func (r *PGRepository) Insert(ctx context.Context, inv *Invoice) (int64, error) {
	const query = `
		INSERT INTO invoices (number, status, client_id, concept_text, issue_date, due_date,
			discount_percent, withholding_percent, source_estimate_id,
			base_amount, tax_amount, discount_amount, withholding_amount, total,
			user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING id`

	var dueDate pgtype.Date
	if inv.DueDate != nil {
		dueDate = pgtype.Date{Time: *inv.DueDate, Valid: true}
	}
	var clientID, sourceID pgtype.Int8
	if inv.ClientID != nil {
		clientID = pgtype.Int8{Int64: *inv.ClientID, Valid: true}
	}
	if inv.SourceEstimateID != nil {
		sourceID = pgtype.Int8{Int64: *inv.SourceEstimateID, Valid: true}
	}

	var id int64
	err := db.From(ctx, r.pool).QueryRow(ctx, query,
		inv.Number, inv.Status, clientID,
		pgtype.Text{String: inv.ConceptText, Valid: inv.ConceptText != ""},
		pgtype.Date{Time: inv.IssueDate, Valid: true}, dueDate,
		inv.DiscountPercent, inv.WithholdingPercent, sourceID,
		inv.BaseAmount, inv.TaxAmount, inv.DiscountAmount, inv.WithholdingAmount, inv.Total,
		inv.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: invoice number %s already taken", shared.ErrConflict, inv.Number)
		}
		return 0, err
	}
	return id, nil
}

// InsertLines bulk-inserts the line set for an invoice.
func (r *PGRepository) InsertLines(ctx context.Context, invoiceID int64, lines []Line) error {
	q := db.From(ctx, r.pool)
	for _, line := range lines {
		_, err := q.Exec(ctx, `
			INSERT INTO invoice_lines (invoice_id, description, quantity, unit_price, vat_percent, line_order)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			invoiceID, line.Description, line.Quantity, line.UnitPrice, line.VATPercent, line.LineOrder)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteLines removes every line of an invoice. Edits replace the full set.
func (r *PGRepository) DeleteLines(ctx context.Context, invoiceID int64) error {
	_, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, invoiceID)
	return err
}

func (r *PGRepository) loadLines(ctx context.Context, invoiceID int64) ([]Line, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_price, vat_percent, line_order
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY line_order ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.Quantity, &l.UnitPrice, &l.VATPercent, &l.LineOrder); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// GetByID fetches one invoice with its ordered lines.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(db.From(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}

// List returns invoices matching the filter. Lines are not loaded for
// listings.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Invoice, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}
	if filter.ClientID > 0 {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argPos))
		args = append(args, filter.ClientID)
		argPos++
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM issue_date) = $%d", argPos))
		args = append(args, filter.Year)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := db.From(ctx, r.pool).QueryRow(ctx, "SELECT COUNT(*) FROM invoices WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM invoices WHERE %s ORDER BY number DESC LIMIT $%d OFFSET $%d",
		invoiceColumns, where, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := db.From(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}

// Update applies partial changes with a dynamic SET clause.
func (r *PGRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	cols := []string{"client_id", "concept_text", "issue_date", "due_date",
		"discount_percent", "withholding_percent",
		"base_amount", "tax_amount", "discount_amount", "withholding_amount", "total"}

	setClauses := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+1)
	argPos := 1
	for _, col := range cols {
		if val, ok := fields[col]; ok {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, val)
			argPos++
		}
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE invoices SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argPos)
	tag, err := db.From(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStatus flips the cached status column.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx,
		`UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the invoice and its lines.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	q := db.From(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, id); err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// InsertPayment appends a payment row.
func (r *PGRepository) InsertPayment(ctx context.Context, p *Payment) (*Payment, error) {
	const query = `
		INSERT INTO invoice_payments (invoice_id, amount, date, method, note, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`

	var createdAt pgtype.Timestamptz
	err := db.From(ctx, r.pool).QueryRow(ctx, query,
		p.InvoiceID, p.Amount, pgtype.Date{Time: p.Date, Valid: true}, p.Method,
		pgtype.Text{String: p.Note, Valid: p.Note != ""}, p.CreatedBy,
	).Scan(&p.ID, &createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt = createdAt.Time
	return p, nil
}

// ListPayments returns all payments of an invoice in chronological order.
func (r *PGRepository) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT id, invoice_id, amount, date, method, note, user_id, created_at
		FROM invoice_payments
		WHERE invoice_id = $1
		ORDER BY date ASC, id ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		var note pgtype.Text
		var date pgtype.Date
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &date, &p.Method, &note, &p.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		p.Date = date.Time
		p.Note = note.String
		p.CreatedAt = createdAt.Time
		out = append(out, p)
	}
	return out, rows.Err()
}

// SumPayments returns the cumulative paid amount for an invoice.
func (r *PGRepository) SumPayments(ctx context.Context, invoiceID int64) (float64, error) {
	var sum float64
	err := db.From(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM invoice_payments WHERE invoice_id = $1`, invoiceID).Scan(&sum)
	return sum, err
}

var _ Repository = (*PGRepository)(nil)
