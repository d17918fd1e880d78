package users

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

// Service implements account management rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new account with a hashed password.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	if !shared.ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, req.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req.Email, req.FullName, req.Role, string(hash))
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get fetches a single account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the provided partial changes.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	fields := map[string]interface{}{}
	if req.FullName != nil {
		fields["full_name"] = *req.FullName
	}
	if req.Role != nil {
		if !shared.ValidRole(*req.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, *req.Role)
		}
		fields["role"] = *req.Role
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = string(hash)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Deactivate disables an account without removing history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Update(ctx, id, map[string]interface{}{"is_active": false})
}
