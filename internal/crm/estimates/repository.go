package estimates

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

// Repository defines persistence for estimates.
type Repository interface {
	NextNumber(ctx context.Context, series string, year int) (string, error)
	Insert(ctx context.Context, est *Estimate) (int64, error)
	InsertLines(ctx context.Context, estimateID int64, lines []Line) error
	DeleteLines(ctx context.Context, estimateID int64) error
	GetByID(ctx context.Context, id int64) (*Estimate, error)
	List(ctx context.Context, filter ListFilter) ([]Estimate, int, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const estimateColumns = `id, number, status, client_id, concept_text, date,
	tax_percent, discount_percent, base_amount, tax_amount, discount_amount, total,
	user_id, created_at, updated_at`

// NextNumber allocates the next correlative in the estimate numbering
// domain. Estimates and invoices never share a counter.
func (r *PGRepository) NextNumber(ctx context.Context, series string, year int) (string, error) {
	const query = `
		INSERT INTO document_sequences (doc_type, series, year, seq)
		VALUES ('EST', $1, $2, 1)
		ON CONFLICT (doc_type, series, year)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`

	var seq int
	if err := db.From(ctx, r.pool).QueryRow(ctx, query, series, year).Scan(&seq); err != nil {
		return "", err
	}
	return finance.FormatNumber(series, year, seq), nil
}

func scanEstimate(row pgx.Row) (*Estimate, error) {
	var est Estimate
	var clientID pgtype.Int8
	var conceptText pgtype.Text
	var date pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&est.ID, &est.Number, &est.Status, &clientID, &conceptText, &date,
		&est.TaxPercent, &est.DiscountPercent,
		&est.BaseAmount, &est.TaxAmount, &est.DiscountAmount, &est.Total,
		&est.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if clientID.Valid {
		v := clientID.Int64
		est.ClientID = &v
	}
	est.ConceptText = conceptText.String
	est.Date = date.Time
	est.CreatedAt = createdAt.Time
	est.UpdatedAt = updatedAt.Time
	return &est, nil
}

// Insert creates the estimate row and returns its id.
func (r *PGRepository) Insert(ctx context.Context, est *Estimate) (int64, error) {
	const query = `
		INSERT INTO estimates (number, status, client_id, concept_text, date,
			tax_percent, discount_percent, base_amount, tax_amount, discount_amount, total,
			user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id`

	var clientID pgtype.Int8
	if est.ClientID != nil {
		clientID = pgtype.Int8{Int64: *est.ClientID, Valid: true}
	}

	var id int64
	err := db.From(ctx, r.pool).QueryRow(ctx, query,
		est.Number, est.Status, clientID,
		pgtype.Text{String: est.ConceptText, Valid: est.ConceptText != ""},
		pgtype.Date{Time: est.Date, Valid: true},
		est.TaxPercent, est.DiscountPercent,
		est.BaseAmount, est.TaxAmount, est.DiscountAmount, est.Total,
		est.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: estimate number %s already taken", shared.ErrConflict, est.Number)
		}
		return 0, err
	}
	return id, nil
}

// InsertLines bulk-inserts the line set for an estimate.
func (r *PGRepository) InsertLines(ctx context.Context, estimateID int64, lines []Line) error {
	q := db.From(ctx, r.pool)
	for _, line := range lines {
		_, err := q.Exec(ctx, `
			INSERT INTO estimate_lines (estimate_id, description, quantity, unit_price, line_order)
			VALUES ($1, $2, $3, $4, $5)`,
			estimateID, line.Description, line.Quantity, line.UnitPrice, line.LineOrder)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteLines removes every line of an estimate.
func (r *PGRepository) DeleteLines(ctx context.Context, estimateID int64) error {
	_, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM estimate_lines WHERE estimate_id = $1`, estimateID)
	return err
}

func (r *PGRepository) loadLines(ctx context.Context, estimateID int64) ([]Line, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT id, estimate_id, description, quantity, unit_price, line_order
		FROM estimate_lines
		WHERE estimate_id = $1
		ORDER BY line_order ASC`, estimateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.EstimateID, &l.Description, &l.Quantity, &l.UnitPrice, &l.LineOrder); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// GetByID fetches one estimate with its ordered lines.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Estimate, error) {
	query := `SELECT ` + estimateColumns + ` FROM estimates WHERE id = $1`
	est, err := scanEstimate(db.From(ctx, r.pool).QueryRow(ctx, query, id))
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
	est.Lines = lines
	return est, nil
}

// List returns estimates matching the filter. Lines are not loaded.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Estimate, int, error) {
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
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM date) = $%d", argPos))
		args = append(args, filter.Year)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := db.From(ctx, r.pool).QueryRow(ctx, "SELECT COUNT(*) FROM estimates WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM estimates WHERE %s ORDER BY number DESC LIMIT $%d OFFSET $%d",
		estimateColumns, where, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := db.From(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Estimate
	for rows.Next() {
		est, err := scanEstimate(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *est)
	}
	return out, total, rows.Err()
}

// Update applies partial changes with a dynamic SET clause.
func (r *PGRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	cols := []string{"client_id", "concept_text", "date", "tax_percent", "discount_percent",
		"base_amount", "tax_amount", "discount_amount", "total"}

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

	query := fmt.Sprintf("UPDATE estimates SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argPos)
	tag, err := db.From(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStatus flips the status column.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx,
		`UPDATE estimates SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the estimate and its lines.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	q := db.From(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM estimate_lines WHERE estimate_id = $1`, id); err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `DELETE FROM estimates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
