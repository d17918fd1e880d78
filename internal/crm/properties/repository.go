package properties

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

// Repository defines persistence for properties.
type Repository interface {
	Create(ctx context.Context, p *Property) (*Property, error)
	GetByID(ctx context.Context, id int64) (*Property, error)
	List(ctx context.Context, filter ListFilter) ([]Property, int, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
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

const propertyColumns = `id, owner_client_id, operation, status, title, description, address,
	city, postal_code, province, price_sale, price_rent, area_m2, rooms, user_id, created_at, updated_at`

func scanProperty(row pgx.Row) (*Property, error) {
	var p Property
	var description, city, postalCode, province pgtype.Text
	var priceSale, priceRent, areaM2 pgtype.Float8
	var rooms pgtype.Int4
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&p.ID, &p.OwnerClientID, &p.Operation, &p.Status, &p.Title,
		&description, &p.Address, &city, &postalCode, &province,
		&priceSale, &priceRent, &areaM2, &rooms, &p.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.City = city.String
	p.PostalCode = postalCode.String
	p.Province = province.String
	if priceSale.Valid {
		v := priceSale.Float64
		p.PriceSale = &v
	}
	if priceRent.Valid {
		v := priceRent.Float64
		p.PriceRent = &v
	}
	if areaM2.Valid {
		v := areaM2.Float64
		p.AreaM2 = &v
	}
	if rooms.Valid {
		v := int(rooms.Int32)
		p.Rooms = &v
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

func textArg(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func float8Arg(v *float64) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *v, Valid: true}
}

func int4Arg(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

// Create inserts a property row.
func (r *PGRepository) Create(ctx context.Context, p *Property) (*Property, error) {
	query := `
		INSERT INTO properties (owner_client_id, operation, status, title, description, address,
			city, postal_code, province, price_sale, price_rent, area_m2, rooms, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING ` + propertyColumns

	created, err := scanProperty(db.From(ctx, r.pool).QueryRow(ctx, query,
		p.OwnerClientID, p.Operation, p.Status, p.Title,
		textArg(p.Description), p.Address, textArg(p.City), textArg(p.PostalCode), textArg(p.Province),
		float8Arg(p.PriceSale), float8Arg(p.PriceRent), float8Arg(p.AreaM2), int4Arg(p.Rooms),
		p.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("%w: owner client not found", shared.ErrValidation)
		}
		return nil, err
	}
	return created, nil
}

// GetByID fetches a single property.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(db.From(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns properties matching the filter along with the total count.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Property, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filter.OwnerClientID > 0 {
		conditions = append(conditions, fmt.Sprintf("owner_client_id = $%d", argPos))
		args = append(args, filter.OwnerClientID)
		argPos++
	}
	if filter.Operation != "" {
		conditions = append(conditions, fmt.Sprintf("operation = $%d", argPos))
		args = append(args, filter.Operation)
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := db.From(ctx, r.pool).QueryRow(ctx, "SELECT COUNT(*) FROM properties WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM properties WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		propertyColumns, where, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := db.From(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// Update applies partial changes with a dynamic SET clause.
func (r *PGRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	cols := []string{"operation", "status", "title", "description", "address", "city",
		"postal_code", "province", "price_sale", "price_rent", "area_m2", "rooms"}

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

	query := fmt.Sprintf("UPDATE properties SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argPos)
	tag, err := db.From(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the property row.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
