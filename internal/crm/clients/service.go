// Package clients manages the billable parties of the agency.
package clients

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vivenda-crm/vivenda-crm/internal/platform/db"
	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

// Service implements client business rules.
type Service struct {
	repo    Repository
	runInTx func(ctx context.Context, fn func(context.Context) error) error
}

// NewService constructs a Service.
func NewService(pool *pgxpool.Pool, repo Repository) *Service {
	return &Service{
		repo: repo,
		runInTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
	}
}

func validateFiscalPair(fiscalID, fiscalIDType string) error {
	if fiscalID == "" {
		return nil
	}
	if !ValidFiscalIDType(fiscalIDType) {
		return fmt.Errorf("%w: fiscal_id_type required when fiscal_id is set", shared.ErrValidation)
	}
	return nil
}

// Create registers a new client.
func (s *Service) Create(ctx context.Context, actingUserID int64, req CreateClientRequest) (*Client, error) {
	if !ValidKind(req.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", shared.ErrValidation, req.Kind)
	}
	if err := validateFiscalPair(req.FiscalID, req.FiscalIDType); err != nil {
		return nil, err
	}
	if req.ParentClientID != nil {
		if req.Kind != KindCompany {
			return nil, fmt.Errorf("%w: parent_client_id is only valid for company clients", shared.ErrValidation)
		}
		if _, err := s.repo.GetByID(ctx, *req.ParentClientID); err != nil {
			return nil, fmt.Errorf("%w: parent client not found", shared.ErrValidation)
		}
	}

	return s.repo.Create(ctx, &Client{
		Kind:           req.Kind,
		Name:           req.Name,
		FiscalID:       req.FiscalID,
		FiscalIDType:   req.FiscalIDType,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		PostalCode:     req.PostalCode,
		Province:       req.Province,
		Country:        req.Country,
		Notes:          req.Notes,
		ParentClientID: req.ParentClientID,
		CreatedBy:      actingUserID,
	})
}

// Get fetches a single client.
func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns clients matching the filter plus the total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Client, int, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Kind != "" && !ValidKind(filter.Kind) {
		return nil, 0, fmt.Errorf("%w: unknown kind %q", shared.ErrValidation, filter.Kind)
	}
	return s.repo.List(ctx, filter)
}

// Update applies partial changes. Last write wins.
func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.FiscalID != nil {
		fiscalType := existing.FiscalIDType
		if req.FiscalIDType != nil {
			fiscalType = *req.FiscalIDType
		}
		if err := validateFiscalPair(*req.FiscalID, fiscalType); err != nil {
			return nil, err
		}
		fields["fiscal_id"] = textArg(*req.FiscalID)
	}
	if req.FiscalIDType != nil {
		fields["fiscal_id_type"] = textArg(*req.FiscalIDType)
	}
	if req.Email != nil {
		fields["email"] = textArg(*req.Email)
	}
	if req.Phone != nil {
		fields["phone"] = textArg(*req.Phone)
	}
	if req.Address != nil {
		fields["address"] = textArg(*req.Address)
	}
	if req.City != nil {
		fields["city"] = textArg(*req.City)
	}
	if req.PostalCode != nil {
		fields["postal_code"] = textArg(*req.PostalCode)
	}
	if req.Province != nil {
		fields["province"] = textArg(*req.Province)
	}
	if req.Country != nil {
		fields["country"] = textArg(*req.Country)
	}
	if req.Notes != nil {
		fields["notes"] = textArg(*req.Notes)
	}
	if req.ParentClientID != nil {
		if existing.Kind != KindCompany {
			return nil, fmt.Errorf("%w: parent_client_id is only valid for company clients", shared.ErrValidation)
		}
		fields["parent_client_id"] = int8Arg(req.ParentClientID)
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete hard-deletes a client. Invoices and estimates keep their rows
// with the client reference cleared. Properties still owned by the
// client block the deletion.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.runInTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		refs, err := s.repo.CountPropertyRefs(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: client still owns %d properties", shared.ErrPrecondition, refs)
		}
		if err := s.repo.DetachDocuments(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
}
