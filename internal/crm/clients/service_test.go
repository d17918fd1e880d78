package clients

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

func (m *mockRepo) Create(ctx context.Context, c *Client) (*Client, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Client), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Client), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) ([]Client, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Client), args.Int(1), args.Error(2)
}

func (m *mockRepo) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepo) CountPropertyRefs(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) DetachDocuments(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(repo Repository) *Service {
	return &Service{
		repo: repo,
		runInTx: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	}
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	svc := newTestService(new(mockRepo))

	_, err := svc.Create(context.Background(), 1, CreateClientRequest{
		Kind: "charity",
		Name: "Fundacion Algo",
	})

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRequiresFiscalTypeWithFiscalID(t *testing.T) {
	svc := newTestService(new(mockRepo))

	_, err := svc.Create(context.Background(), 1, CreateClientRequest{
		Kind:     KindIndividual,
		Name:     "Marta Ruiz",
		FiscalID: "12345678Z",
	})

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateParentOnlyForCompanies(t *testing.T) {
	svc := newTestService(new(mockRepo))
	parent := int64(9)

	_, err := svc.Create(context.Background(), 1, CreateClientRequest{
		Kind:           KindIndividual,
		Name:           "Marta Ruiz",
		ParentClientID: &parent,
	})

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateStampsOwner(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *Client) bool {
		return c.CreatedBy == 42 && c.Kind == KindIndividual
	})).Return(&Client{ID: 1, Kind: KindIndividual, Name: "Marta Ruiz", CreatedBy: 42}, nil)

	svc := newTestService(repo)
	client, err := svc.Create(context.Background(), 42, CreateClientRequest{
		Kind: KindIndividual,
		Name: "Marta Ruiz",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), client.CreatedBy)
	repo.AssertExpectations(t)
}

func TestDeleteBlockedByProperties(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&Client{ID: 5}, nil)
	repo.On("CountPropertyRefs", mock.Anything, int64(5)).Return(2, nil)

	svc := newTestService(repo)
	err := svc.Delete(context.Background(), 5)

	assert.ErrorIs(t, err, shared.ErrPrecondition)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteDetachesDocuments(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&Client{ID: 5}, nil)
	repo.On("CountPropertyRefs", mock.Anything, int64(5)).Return(0, nil)
	repo.On("DetachDocuments", mock.Anything, int64(5)).Return(nil)
	repo.On("Delete", mock.Anything, int64(5)).Return(nil)

	svc := newTestService(repo)
	err := svc.Delete(context.Background(), 5)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteMissingClient(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, shared.ErrNotFound)

	svc := newTestService(repo)
	err := svc.Delete(context.Background(), 99)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListDefaultsPagination(t *testing.T) {
	repo := new(mockRepo)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f ListFilter) bool {
		return f.Limit == 50 && f.Offset == 0
	})).Return([]Client{}, 0, nil)

	svc := newTestService(repo)
	_, _, err := svc.List(context.Background(), ListFilter{Limit: -3, Offset: -1})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
