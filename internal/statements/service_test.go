package statements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/banking"
	"fueleu-ledger/compliance-backend/internal/borrowing"
	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/internal/pooling"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Balances(ctx context.Context, shipID string) ([]BalanceLine, error) {
	args := m.Called(ctx, shipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BalanceLine), args.Error(1)
}

func (m *MockRepository) BankEntries(ctx context.Context, shipID string) ([]BankLine, error) {
	args := m.Called(ctx, shipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BankLine), args.Error(1)
}

func (m *MockRepository) Applications(ctx context.Context, shipID string) ([]ApplicationLine, error) {
	args := m.Called(ctx, shipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ApplicationLine), args.Error(1)
}

func (m *MockRepository) Borrowings(ctx context.Context, shipID string) ([]BorrowLine, error) {
	args := m.Called(ctx, shipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BorrowLine), args.Error(1)
}

func (m *MockRepository) Pools(ctx context.Context, shipID string) ([]PoolLine, error) {
	args := m.Called(ctx, shipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PoolLine), args.Error(1)
}

func (m *MockRepository) expectEmpty(shipID string) {
	m.On("Balances", mock.Anything, shipID).Return([]BalanceLine{}, nil).Maybe()
	m.On("BankEntries", mock.Anything, shipID).Return([]BankLine{}, nil).Maybe()
	m.On("Applications", mock.Anything, shipID).Return([]ApplicationLine{}, nil).Maybe()
	m.On("Borrowings", mock.Anything, shipID).Return([]BorrowLine{}, nil).Maybe()
	m.On("Pools", mock.Anything, shipID).Return([]PoolLine{}, nil).Maybe()
}

func sampleStatement() *Statement {
	repaid := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	st := &Statement{
		ShipID:      "IMO9321483",
		GeneratedAt: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		Balances: []BalanceLine{
			{Year: 2025, CBValue: 9336.8, ActualIntensity: 80, TargetIntensity: 89.3368, EnergyScope: 1000},
			{Year: 2026, CBValue: -1163.2, ActualIntensity: 90.5, TargetIntensity: 89.3368, EnergyScope: 1000},
		},
		BankEntries:  []BankLine{{ID: uuid.New(), Year: 2025, InitialAmount: 5000, Amount: 3836.8}},
		Applications: []ApplicationLine{{ID: uuid.New(), Year: 2026, Amount: 1163.2}},
		Borrowings: []BorrowLine{
			{ID: uuid.New(), Year: 2024, Amount: 100, AggravatedAmount: 110, Status: "REPAID", RepaidAt: &repaid},
			{ID: uuid.New(), Year: 2026, Amount: 200, AggravatedAmount: 220, Status: "BORROWED"},
		},
		Pools: []PoolLine{{PoolID: uuid.New(), Year: 2025, CBBefore: 9336.8, CBAfter: 8000}},
	}
	st.Totals = totals(st)
	return st
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	sample := sampleStatement()

	repo := new(MockRepository)
	repo.On("Balances", mock.Anything, "IMO9321483").Return(sample.Balances, nil)
	repo.On("BankEntries", mock.Anything, "IMO9321483").Return(sample.BankEntries, nil)
	repo.On("Applications", mock.Anything, "IMO9321483").Return(sample.Applications, nil)
	repo.On("Borrowings", mock.Anything, "IMO9321483").Return(sample.Borrowings, nil)
	repo.On("Pools", mock.Anything, "IMO9321483").Return(sample.Pools, nil)

	service := NewService(repo, zap.NewNop())
	st, err := service.Build(ctx, " IMO9321483 ")
	require.NoError(t, err)

	assert.Equal(t, "IMO9321483", st.ShipID)
	assert.InDelta(t, 8173.6, st.Totals.ComputedCB, 1e-9)
	assert.InDelta(t, 3836.8, st.Totals.BankedRemaining, 1e-9)
	assert.InDelta(t, 1163.2, st.Totals.BankedApplied, 1e-9)
	assert.InDelta(t, 300.0, st.Totals.Borrowed, 1e-9)
	assert.InDelta(t, 220.0, st.Totals.RepaymentOutstanding, 1e-9)
	assert.InDelta(t, -1336.8, st.Totals.PoolTransfers, 1e-9)
	repo.AssertExpectations(t)
}

func TestBuild_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("blank ship", func(t *testing.T) {
		service := NewService(new(MockRepository), zap.NewNop())
		_, err := service.Build(ctx, "  ")
		r, ok := outcome.As(err)
		require.True(t, ok)
		assert.Equal(t, outcome.InvalidInput, r.Kind)
	})

	t.Run("no activity", func(t *testing.T) {
		repo := new(MockRepository)
		repo.expectEmpty("S9")
		_, err := NewService(repo, zap.NewNop()).Build(ctx, "S9")
		r, ok := outcome.As(err)
		require.True(t, ok)
		assert.Equal(t, outcome.NotFound, r.Kind)
	})

	t.Run("read failure", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Balances", mock.Anything, "S1").Return([]BalanceLine{{Year: 2025}}, nil).Maybe()
		repo.On("BankEntries", mock.Anything, "S1").Return([]BankLine{}, nil).Maybe()
		repo.On("Applications", mock.Anything, "S1").Return([]ApplicationLine{}, nil).Maybe()
		repo.On("Borrowings", mock.Anything, "S1").Return([]BorrowLine{}, nil).Maybe()
		repo.On("Pools", mock.Anything, "S1").Return(nil, errors.New("connection reset"))

		_, err := NewService(repo, zap.NewNop()).Build(ctx, "S1")
		require.Error(t, err)
		_, isRejection := outcome.As(err)
		assert.False(t, isRejection)
	})
}

func TestLedgerReader(t *testing.T) {
	ctx := context.Background()

	balances := compliance.NewMemoryRepository()
	bank := banking.NewMemoryRepository()
	borrow := borrowing.NewMemoryRepository()
	pools := pooling.NewMemoryRepository()

	require.NoError(t, balances.UpsertBalance(ctx, &compliance.ComplianceBalance{ShipID: "S1", Year: 2026, CBValue: -1163.2}))
	require.NoError(t, balances.UpsertBalance(ctx, &compliance.ComplianceBalance{ShipID: "S1", Year: 2025, CBValue: 9336.8}))
	require.NoError(t, bank.CreateEntry(ctx, &banking.BankEntry{ShipID: "S1", Year: 2025, Amount: 500, InitialAmount: 500}))
	require.NoError(t, bank.CreateApplication(ctx, &banking.BankApplication{ShipID: "S1", Year: 2026, Amount: 250}))
	require.NoError(t, borrow.Create(ctx, &borrowing.BorrowEntry{ShipID: "S1", Year: 2027, Amount: 10, AggravatedAmount: 11}))
	require.NoError(t, pools.Create(ctx, &pooling.Pool{Year: 2025, Members: []pooling.PoolMember{
		{ShipID: "S1", CBBefore: 9336.8, CBAfter: 9000},
		{ShipID: "S2", CBBefore: -336.8, CBAfter: 0},
	}}))

	st, err := NewService(NewLedgerReader(balances, bank, borrow, pools), zap.NewNop()).Build(ctx, "S1")
	require.NoError(t, err)

	require.Len(t, st.Balances, 2)
	assert.Equal(t, 2025, st.Balances[0].Year)
	require.Len(t, st.BankEntries, 1)
	require.Len(t, st.Applications, 1)
	require.Len(t, st.Borrowings, 1)
	assert.Equal(t, "BORROWED", st.Borrowings[0].Status)
	require.Len(t, st.Pools, 1)
	assert.InDelta(t, -336.8, st.Totals.PoolTransfers, 1e-9)
	assert.InDelta(t, 11.0, st.Totals.RepaymentOutstanding, 1e-9)
}
