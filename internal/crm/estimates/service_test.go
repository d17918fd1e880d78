package estimates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vivenda-crm/vivenda-crm/internal/crm/invoices"
	"github.com/vivenda-crm/vivenda-crm/internal/finance"
	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) NextNumber(ctx context.Context, series string, year int) (string, error) {
	args := m.Called(ctx, series, year)
	return args.String(0), args.Error(1)
}

func (m *mockRepo) Insert(ctx context.Context, est *Estimate) (int64, error) {
	args := m.Called(ctx, est)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) InsertLines(ctx context.Context, estimateID int64, lines []Line) error {
	args := m.Called(ctx, estimateID, lines)
	return args.Error(0)
}

func (m *mockRepo) DeleteLines(ctx context.Context, estimateID int64) error {
	args := m.Called(ctx, estimateID)
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*Estimate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Estimate), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) ([]Estimate, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Estimate), args.Int(1), args.Error(2)
}

func (m *mockRepo) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockInvoiceStore struct {
	mock.Mock
}

func (m *mockInvoiceStore) NextNumber(ctx context.Context, series string, year int) (string, error) {
	args := m.Called(ctx, series, year)
	return args.String(0), args.Error(1)
}

func (m *mockInvoiceStore) Insert(ctx context.Context, inv *invoices.Invoice) (int64, error) {
	args := m.Called(ctx, inv)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInvoiceStore) InsertLines(ctx context.Context, invoiceID int64, lines []invoices.Line) error {
	args := m.Called(ctx, invoiceID, lines)
	return args.Error(0)
}

func newTestService(repo Repository, store InvoiceStore) *Service {
	return &Service{
		repo:     repo,
		invoices: store,
		series:   "RHB",
		now:      func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) },
		runInTx: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	}
}

func sampleLines() []finance.LineInput {
	return []finance.LineInput{
		{Description: "Tasacion vivienda", Quantity: 1, UnitPrice: 200, LineOrder: 1},
	}
}

func TestCreateAssignsNumberAndDraftStatus(t *testing.T) {
	repo := new(mockRepo)
	repo.On("NextNumber", mock.Anything, "RHB", 2024).Return("RHB-2024-0001", nil)
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(est *Estimate) bool {
		return est.Number == "RHB-2024-0001" &&
			est.Status == StatusDraft &&
			est.BaseAmount == 200 &&
			est.TaxAmount == 42 &&
			est.Total == 242
	})).Return(int64(5), nil)
	repo.On("InsertLines", mock.Anything, int64(5), mock.Anything).Return(nil)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&Estimate{ID: 5, Number: "RHB-2024-0001", Status: StatusDraft}, nil)

	svc := newTestService(repo, new(mockInvoiceStore))
	est, err := svc.Create(context.Background(), 1, CreateEstimateRequest{
		TaxPercent: 21,
		Lines:      sampleLines(),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusDraft, est.Status)
	repo.AssertExpectations(t)
}

func TestLifecycleTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		call    func(svc *Service) (*Estimate, error)
		to      string
		blocked bool
	}{
		{"send draft", StatusDraft, func(s *Service) (*Estimate, error) { return s.Send(context.Background(), 5) }, StatusSent, false},
		{"send sent", StatusSent, func(s *Service) (*Estimate, error) { return s.Send(context.Background(), 5) }, "", true},
		{"accept sent", StatusSent, func(s *Service) (*Estimate, error) { return s.Accept(context.Background(), 5) }, StatusAccepted, false},
		{"accept draft", StatusDraft, func(s *Service) (*Estimate, error) { return s.Accept(context.Background(), 5) }, "", true},
		{"reject sent", StatusSent, func(s *Service) (*Estimate, error) { return s.Reject(context.Background(), 5) }, StatusRejected, false},
		{"reject converted", StatusConverted, func(s *Service) (*Estimate, error) { return s.Reject(context.Background(), 5) }, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockRepo)
			repo.On("GetByID", mock.Anything, int64(5)).Return(&Estimate{ID: 5, Number: "RHB-2024-0001", Status: tc.from}, nil)
			if !tc.blocked {
				repo.On("UpdateStatus", mock.Anything, int64(5), tc.to).Return(nil)
			}

			svc := newTestService(repo, new(mockInvoiceStore))
			est, err := tc.call(svc)

			if tc.blocked {
				assert.ErrorIs(t, err, shared.ErrPrecondition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, est.Status)
		})
	}
}

func TestUpdateRejectsConverted(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&Estimate{ID: 5, Number: "RHB-2024-0001", Status: StatusConverted}, nil)

	svc := newTestService(repo, new(mockInvoiceStore))
	_, err := svc.Update(context.Background(), 5, UpdateEstimateRequest{TaxPercent: 21, Lines: sampleLines()})

	assert.ErrorIs(t, err, shared.ErrPrecondition)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestConvertCopiesDocument(t *testing.T) {
	clientID := int64(33)
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&Estimate{
		ID:              5,
		Number:          "RHB-2024-0003",
		Status:          StatusAccepted,
		ClientID:        &clientID,
		ConceptText:     "Gestion de venta",
		TaxPercent:      10,
		DiscountPercent: 5,
		Lines: []Line{
			{Description: "Honorarios", Quantity: 2, UnitPrice: 150, LineOrder: 1},
			{Description: "Publicidad", Quantity: 1, UnitPrice: 80, LineOrder: 2},
		},
	}, nil)
	repo.On("UpdateStatus", mock.Anything, int64(5), StatusConverted).Return(nil)

	store := new(mockInvoiceStore)
	store.On("NextNumber", mock.Anything, "RHB", 2024).Return("RHB-2024-0009", nil)
	store.On("Insert", mock.Anything, mock.MatchedBy(func(inv *invoices.Invoice) bool {
		return inv.Status == invoices.StatusDraft &&
			inv.Number == "RHB-2024-0009" &&
			inv.ClientID != nil && *inv.ClientID == 33 &&
			inv.ConceptText == "Gestion de venta" &&
			inv.DiscountPercent == 5 &&
			inv.WithholdingPercent == 0 &&
			inv.DueDate == nil &&
			inv.SourceEstimateID != nil && *inv.SourceEstimateID == 5
	})).Return(int64(77), nil)
	store.On("InsertLines", mock.Anything, int64(77), mock.MatchedBy(func(lines []invoices.Line) bool {
		return len(lines) == 2 &&
			lines[0].VATPercent == 10 && lines[1].VATPercent == 10 &&
			lines[0].LineOrder == 1 && lines[1].LineOrder == 2
	})).Return(nil)

	svc := newTestService(repo, store)
	inv, err := svc.Convert(context.Background(), 5, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(77), inv.ID)
	assert.Equal(t, int64(42), inv.CreatedBy)
	// base 380, tax 38, discount 19
	assert.InDelta(t, 380.0, inv.BaseAmount, 1e-9)
	assert.InDelta(t, 38.0, inv.TaxAmount, 1e-9)
	assert.InDelta(t, 399.0, inv.Total, 1e-9)
	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestConvertRejectsAlreadyConverted(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&Estimate{
		ID: 5, Number: "RHB-2024-0003", Status: StatusConverted,
		Lines: []Line{{Description: "Honorarios", Quantity: 1, UnitPrice: 100, LineOrder: 1}},
	}, nil)

	svc := newTestService(repo, new(mockInvoiceStore))
	_, err := svc.Convert(context.Background(), 5, 1)

	assert.ErrorIs(t, err, shared.ErrPrecondition)
}

func TestConvertRejectsEmptyEstimate(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&Estimate{
		ID: 5, Number: "RHB-2024-0003", Status: StatusDraft,
	}, nil)

	store := new(mockInvoiceStore)
	svc := newTestService(repo, store)
	_, err := svc.Convert(context.Background(), 5, 1)

	assert.ErrorIs(t, err, shared.ErrPrecondition)
	store.AssertNotCalled(t, "NextNumber", mock.Anything, mock.Anything, mock.Anything)
}

func TestConvertFromAnyNonConvertedStatus(t *testing.T) {
	for _, status := range []string{StatusDraft, StatusSent, StatusAccepted, StatusRejected} {
		t.Run(status, func(t *testing.T) {
			repo := new(mockRepo)
			repo.On("GetByID", mock.Anything, int64(5)).Return(&Estimate{
				ID: 5, Number: "RHB-2024-0003", Status: status, TaxPercent: 21,
				Lines: []Line{{Description: "Honorarios", Quantity: 1, UnitPrice: 100, LineOrder: 1}},
			}, nil)
			repo.On("UpdateStatus", mock.Anything, int64(5), StatusConverted).Return(nil)

			store := new(mockInvoiceStore)
			store.On("NextNumber", mock.Anything, "RHB", 2024).Return("RHB-2024-0010", nil)
			store.On("Insert", mock.Anything, mock.Anything).Return(int64(80), nil)
			store.On("InsertLines", mock.Anything, int64(80), mock.Anything).Return(nil)

			svc := newTestService(repo, store)
			_, err := svc.Convert(context.Background(), 5, 1)

			require.NoError(t, err)
		})
	}
}

func TestDeleteRejectsConverted(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&Estimate{ID: 5, Status: StatusConverted}, nil)

	svc := newTestService(repo, new(mockInvoiceStore))
	err := svc.Delete(context.Background(), 5)

	assert.ErrorIs(t, err, shared.ErrPrecondition)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
