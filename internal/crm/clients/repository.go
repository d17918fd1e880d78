package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vivenda-crm/vivenda-crm/internal/platform/db"
	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

// Repository defines persistence for clients.
type Repository interface {
	Create(ctx context.Context, c *Client) (*Client, error)
	GetByID(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, filter ListFilter) ([]Client, int, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	CountPropertyRefs(ctx context.Context, id int64) (int, error)
	DetachDocuments(ctx context.Context, id int64) error
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const clientColumns = `id, kind, name, fiscal_id, fiscal_id_type, email, phone, address, city,
	postal_code, province, country, notes, parent_client_id, user_id, active, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	var fiscalID, fiscalIDType pgtype.Text
	var email, phone, address, city, postalCode, province, country, notes pgtype.Text
	var parent pgtype.Int8
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&c.ID, &c.Kind, &c.Name, &fiscalID, &fiscalIDType,
		&email, &phone, &address, &city, &postalCode, &province, &country, &notes,
		&parent, &c.CreatedBy, &c.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.FiscalID = fiscalID.String
	c.FiscalIDType = fiscalIDType.String
	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String
	c.City = city.String
	c.PostalCode = postalCode.String
	c.Province = province.String
	c.Country = country.String
	c.Notes = notes.String
	if parent.Valid {
		v := parent.Int64
		c.ParentClientID = &v
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

func textArg(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func int8Arg(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

// Create inserts a client row.
func (r *PGRepository) Create(ctx context.Context, c *Client) (*Client, error) {
	query := `
		INSERT INTO clients (kind, name, fiscal_id, fiscal_id_type, email, phone, address, city,
			postal_code, province, country, notes, parent_client_id, user_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE, NOW(), NOW())
		RETURNING ` + clientColumns

	created, err := scanClient(db.From(ctx, r.pool).QueryRow(ctx, query,
		c.Kind, c.Name, textArg(c.FiscalID), textArg(c.FiscalIDType),
		textArg(c.Email), textArg(c.Phone), textArg(c.Address), textArg(c.City),
		textArg(c.PostalCode), textArg(c.Province), textArg(c.Country), textArg(c.Notes),
		int8Arg(c.ParentClientID), c.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: fiscal id already registered", shared.ErrConflict)
		}
		return nil, err
	}
	return created, nil
}

// GetByID fetches a single client.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := scanClient(db.From(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns clients matching the filter along with the total count.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Client, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR fiscal_id ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argPos))
		args = append(args, filter.Kind)
		argPos++
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argPos))
		args = append(args, *filter.Active)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM clients WHERE " + where
	if err := db.From(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM clients WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		clientColumns, where, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := db.From(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

// Update applies partial changes with a dynamic SET clause.
func (r *PGRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	cols := []string{"name", "fiscal_id", "fiscal_id_type", "email", "phone", "address", "city",
		"postal_code", "province", "country", "notes", "parent_client_id", "active"}

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

	query := fmt.Sprintf("UPDATE clients SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argPos)
	tag, err := db.From(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: fiscal id already registered", shared.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the client row.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountPropertyRefs counts properties still referencing the client.
func (r *PGRepository) CountPropertyRefs(ctx context.Context, id int64) (int, error) {
	var count int
	err := db.From(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM properties WHERE owner_client_id = $1`, id).Scan(&count)
	return count, err
}

// DetachDocuments clears the client reference on invoices and estimates.
func (r *PGRepository) DetachDocuments(ctx context.Context, id int64) error {
	q := db.From(ctx, r.pool)
	if _, err := q.Exec(ctx, `UPDATE invoices SET client_id = NULL, updated_at = NOW() WHERE client_id = $1`, id); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `UPDATE estimates SET client_id = NULL, updated_at = NOW() WHERE client_id = $1`, id); err != nil {
		return err
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
