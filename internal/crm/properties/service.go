// Package properties tracks the real estate offered by clients.
package properties

import (
	"context"
	"fmt"

	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

// Service implements property business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new property in AVAILABLE status.
func (s *Service) Create(ctx context.Context, actingUserID int64, req CreatePropertyRequest) (*Property, error) {
	if !ValidOperation(req.Operation) {
		return nil, fmt.Errorf("%w: unknown operation %q", shared.ErrValidation, req.Operation)
	}
	if (req.Operation == OperationSale || req.Operation == OperationBoth) && req.PriceSale == nil {
		return nil, fmt.Errorf("%w: price_sale required for sale offerings", shared.ErrValidation)
	}
	if (req.Operation == OperationRent || req.Operation == OperationBoth) && req.PriceRent == nil {
		return nil, fmt.Errorf("%w: price_rent required for rent offerings", shared.ErrValidation)
	}

	return s.repo.Create(ctx, &Property{
		OwnerClientID: req.OwnerClientID,
		Operation:     req.Operation,
		Status:        StatusAvailable,
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Province:      req.Province,
		PriceSale:     req.PriceSale,
		PriceRent:     req.PriceRent,
		AreaM2:        req.AreaM2,
		Rooms:         req.Rooms,
		CreatedBy:     actingUserID,
	})
}

// Get fetches a single property.
func (s *Service) Get(ctx context.Context, id int64) (*Property, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns properties matching the filter plus the total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Property, int, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Operation != "" && !ValidOperation(filter.Operation) {
		return nil, 0, fmt.Errorf("%w: unknown operation %q", shared.ErrValidation, filter.Operation)
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// Update applies partial changes. Last write wins.
func (s *Service) Update(ctx context.Context, id int64, req UpdatePropertyRequest) (*Property, error) {
	fields := map[string]interface{}{}
	if req.Operation != nil {
		if !ValidOperation(*req.Operation) {
			return nil, fmt.Errorf("%w: unknown operation %q", shared.ErrValidation, *req.Operation)
		}
		fields["operation"] = *req.Operation
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *req.Status)
		}
		fields["status"] = *req.Status
	}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = textArg(*req.Description)
	}
	if req.Address != nil {
		fields["address"] = *req.Address
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
	if req.PriceSale != nil {
		fields["price_sale"] = float8Arg(req.PriceSale)
	}
	if req.PriceRent != nil {
		fields["price_rent"] = float8Arg(req.PriceRent)
	}
	if req.AreaM2 != nil {
		fields["area_m2"] = float8Arg(req.AreaM2)
	}
	if req.Rooms != nil {
		fields["rooms"] = int4Arg(req.Rooms)
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a property.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
