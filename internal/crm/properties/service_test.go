package properties

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, p *Property) (*Property, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Property), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Property), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) ([]Property, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Property), args.Int(1), args.Error(2)
}

func (m *mockRepo) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCreateStartsAvailable(t *testing.T) {
	price := 250000.0
	repo := new(mockRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Property) bool {
		return p.Status == StatusAvailable && p.CreatedBy == 3
	})).Return(&Property{ID: 1, Status: StatusAvailable}, nil)

	svc := NewService(repo)
	p, err := svc.Create(context.Background(), 3, CreatePropertyRequest{
		OwnerClientID: 8,
		Operation:     OperationSale,
		Title:         "Piso en Chamberi",
		Address:       "Calle Trafalgar 12",
		PriceSale:     &price,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, p.Status)
	repo.AssertExpectations(t)
}

func TestCreateSaleRequiresSalePrice(t *testing.T) {
	svc := NewService(new(mockRepo))

	_, err := svc.Create(context.Background(), 3, CreatePropertyRequest{
		OwnerClientID: 8,
		Operation:     OperationSale,
		Title:         "Piso en Chamberi",
		Address:       "Calle Trafalgar 12",
	})

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateBothRequiresBothPrices(t *testing.T) {
	price := 250000.0
	svc := NewService(new(mockRepo))

	_, err := svc.Create(context.Background(), 3, CreatePropertyRequest{
		OwnerClientID: 8,
		Operation:     OperationBoth,
		Title:         "Piso en Chamberi",
		Address:       "Calle Trafalgar 12",
		PriceSale:     &price,
	})

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(new(mockRepo))
	bad := "DEMOLISHED"

	_, err := svc.Update(context.Background(), 1, UpdatePropertyRequest{Status: &bad})

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestListRejectsUnknownOperation(t *testing.T) {
	svc := NewService(new(mockRepo))

	_, _, err := svc.List(context.Background(), ListFilter{Operation: "lease"})

	assert.ErrorIs(t, err, shared.ErrValidation)
}
