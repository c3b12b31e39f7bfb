package compliance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/compliance/calculation"
	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/database"
)

// MockFuelSource is a mock implementation of the FuelSource interface
type MockFuelSource struct {
	mock.Mock
}

func (m *MockFuelSource) FuelData(ctx context.Context, shipID string, year int) (*FuelData, error) {
	args := m.Called(ctx, shipID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FuelData), args.Error(1)
}

// MockBankLedger is a mock implementation of the BankLedger interface
type MockBankLedger struct {
	mock.Mock
}

func (m *MockBankLedger) TotalBanked(ctx context.Context, shipID string) (float64, error) {
	args := m.Called(ctx, shipID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockBankLedger) AppliedTo(ctx context.Context, shipID string, year int) (float64, error) {
	args := m.Called(ctx, shipID, year)
	return args.Get(0).(float64), args.Error(1)
}

// MockRepaymentLedger is a mock implementation of the RepaymentLedger interface
type MockRepaymentLedger struct {
	mock.Mock
}

func (m *MockRepaymentLedger) Repayment(ctx context.Context, shipID string, year int) (float64, error) {
	args := m.Called(ctx, shipID, year)
	return args.Get(0).(float64), args.Error(1)
}

func newTestService(source FuelSource, bank BankLedger, repayments RepaymentLedger) (*Service, Repository) {
	repo := NewMemoryRepository()
	return NewService(repo, source, bank, repayments, database.NewLocalTransactor(), zap.NewNop()), repo
}

func TestGetTarget(t *testing.T) {
	service, _ := newTestService(NewStaticSource(90.5, 5_000_000), nil, nil)

	assert.Equal(t, TargetResult{Year: 2025, Target: 89.3368, Reference: 91.16, ReductionPercent: 2}, service.GetTarget(2025))
	assert.Equal(t, 85.6904, service.GetTarget(2030).Target)
	assert.Equal(t, 91.16, service.GetTarget(2020).Target)
	assert.Zero(t, service.GetTarget(2020).ReductionPercent)
}

func TestComputeBalanceWithDefaultInputs(t *testing.T) {
	service, repo := newTestService(NewStaticSource(90.5, 5_000_000), nil, nil)
	ctx := context.Background()

	result, err := service.ComputeBalance(ctx, "S1", 2025)
	require.NoError(t, err)

	assert.InDelta(t, -5_816_000, result.CBValue, 1e-6)
	assert.InDelta(t, 90.5, result.ActualIntensity, 1e-9)
	assert.InDelta(t, 5_000_000, result.EnergyScope, 1e-6)
	assert.False(t, result.IsCompliant)
	assert.Zero(t, result.Surplus)
	assert.InDelta(t, 5_816_000, result.Deficit, 1e-6)

	stored, err := repo.GetBalance(ctx, "S1", 2025)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, result.CBValue, stored.CBValue)
	assert.Equal(t, 89.3368, stored.TargetIntensity)
}

func TestComputeBalanceOverwritesPreviousValue(t *testing.T) {
	source := new(MockFuelSource)
	service, repo := newTestService(source, nil, nil)
	ctx := context.Background()

	first := &FuelData{Fuels: []calculation.FuelRecord{{Mass: 1000, LCV: 1, TankToWake: 80, RewardFactor: 1}}}
	second := &FuelData{Fuels: []calculation.FuelRecord{{Mass: 1000, LCV: 1, TankToWake: 95, RewardFactor: 1}}}
	source.On("FuelData", mock.Anything, "S1", 2025).Return(first, nil).Once()
	source.On("FuelData", mock.Anything, "S1", 2025).Return(second, nil).Once()

	_, err := service.ComputeBalance(ctx, "S1", 2025)
	require.NoError(t, err)
	result, err := service.ComputeBalance(ctx, "S1", 2025)
	require.NoError(t, err)

	balances, err := repo.ListByShip(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, result.CBValue, balances[0].CBValue)
	assert.Less(t, balances[0].CBValue, 0.0)
	source.AssertExpectations(t)
}

func TestComputeBalanceRejections(t *testing.T) {
	source := new(MockFuelSource)
	source.On("FuelData", mock.Anything, "GHOST", 2025).Return(nil, ErrNoVoyageData)
	service, _ := newTestService(source, nil, nil)

	_, err := service.ComputeBalance(context.Background(), "GHOST", 2025)
	rejection, ok := outcome.As(err)
	require.True(t, ok)
	assert.Equal(t, outcome.NotFound, rejection.Kind)
	assert.Equal(t, outcome.CodeNoVoyageData, rejection.Code)

	_, err = service.ComputeBalance(context.Background(), " ", 2025)
	rejection, ok = outcome.As(err)
	require.True(t, ok)
	assert.Equal(t, outcome.InvalidInput, rejection.Kind)

	_, err = service.ComputeBalance(context.Background(), "S1", 1999)
	rejection, ok = outcome.As(err)
	require.True(t, ok)
	assert.Equal(t, outcome.CodeInvalidYear, rejection.Code)
}

func TestComputeBalancePropagatesSourceFailure(t *testing.T) {
	source := new(MockFuelSource)
	source.On("FuelData", mock.Anything, "S1", 2025).Return(nil, assert.AnError)
	service, _ := newTestService(source, nil, nil)

	_, err := service.ComputeBalance(context.Background(), "S1", 2025)
	assert.ErrorIs(t, err, assert.AnError)
	_, isRejection := outcome.As(err)
	assert.False(t, isRejection)
}

func TestAdjustedCB(t *testing.T) {
	ctx := context.Background()

	t.Run("repayment, applications and bank preview", func(t *testing.T) {
		bank := new(MockBankLedger)
		repayments := new(MockRepaymentLedger)
		service, _ := newTestService(NewStaticSource(90.5, 1000), bank, repayments)

		repayments.On("Repayment", mock.Anything, "S1", 2025).Return(1000.0, nil)
		bank.On("AppliedTo", mock.Anything, "S1", 2025).Return(500.0, nil)
		bank.On("TotalBanked", mock.Anything, "S1").Return(1000.0, nil)

		result, err := service.AdjustedCB(ctx, "S1", 2025)
		require.NoError(t, err)

		assert.InDelta(t, -1163.2, result.RawCB, 1e-6)
		assert.InDelta(t, -1663.2, result.EffectiveCB, 1e-6)
		assert.InDelta(t, 1000, result.BankPreview, 1e-6)
		assert.InDelta(t, -663.2, result.AdjustedCB, 1e-6)
		assert.False(t, result.IsCompliant)
	})

	t.Run("preview never exceeds the deficit", func(t *testing.T) {
		bank := new(MockBankLedger)
		service, _ := newTestService(NewStaticSource(90.5, 1000), bank, nil)

		bank.On("AppliedTo", mock.Anything, "S1", 2025).Return(0.0, nil)
		bank.On("TotalBanked", mock.Anything, "S1").Return(1_000_000.0, nil)

		result, err := service.AdjustedCB(ctx, "S1", 2025)
		require.NoError(t, err)
		assert.Zero(t, result.AdjustedCB)
		assert.InDelta(t, 1163.2, result.BankPreview, 1e-6)
		assert.True(t, result.IsCompliant)
	})

	t.Run("surplus skips the bank preview", func(t *testing.T) {
		bank := new(MockBankLedger)
		service, _ := newTestService(NewStaticSource(80, 1000), bank, nil)

		bank.On("AppliedTo", mock.Anything, "S1", 2025).Return(0.0, nil)

		result, err := service.AdjustedCB(ctx, "S1", 2025)
		require.NoError(t, err)
		assert.InDelta(t, 9336.8, result.AdjustedCB, 1e-6)
		bank.AssertNotCalled(t, "TotalBanked", mock.Anything, mock.Anything)
	})

	t.Run("effective balance has no preview", func(t *testing.T) {
		bank := new(MockBankLedger)
		service, _ := newTestService(NewStaticSource(90.5, 1000), bank, nil)

		bank.On("AppliedTo", mock.Anything, "S1", 2025).Return(0.0, nil)

		result, err := service.EffectiveBalance(ctx, "S1", 2025)
		require.NoError(t, err)
		assert.InDelta(t, -1163.2, result.AdjustedCB, 1e-6)
		bank.AssertNotCalled(t, "TotalBanked", mock.Anything, mock.Anything)
	})
}

func TestAssessPenalty(t *testing.T) {
	service, _ := newTestService(NewStaticSource(90.5, 5_000_000), nil, nil)

	single, err := service.AssessPenalty(context.Background(), "S1", 2025, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, single.ConsecutiveYears)
	assert.Equal(t, 3762.0, single.PenaltyEUR)

	repeated, err := service.AssessPenalty(context.Background(), "S1", 2025, 3)
	require.NoError(t, err)
	assert.Greater(t, repeated.PenaltyEUR, single.PenaltyEUR)

	compliant, _ := newTestService(NewStaticSource(80, 5_000_000), nil, nil)
	none, err := compliant.AssessPenalty(context.Background(), "S1", 2025, 2)
	require.NoError(t, err)
	assert.Zero(t, none.PenaltyEUR)
}

func TestFallbackSource(t *testing.T) {
	primary := new(MockFuelSource)
	primary.On("FuelData", mock.Anything, "S1", 2025).Return(nil, ErrNoVoyageData)
	primary.On("FuelData", mock.Anything, "S2", 2025).Return(nil, assert.AnError)

	source := &FallbackSource{Primary: primary, Fallback: NewStaticSource(90.5, 100)}

	data, err := source.FuelData(context.Background(), "S1", 2025)
	require.NoError(t, err)
	assert.Equal(t, 100.0, data.Fuels[0].Mass)

	_, err = source.FuelData(context.Background(), "S2", 2025)
	assert.ErrorIs(t, err, assert.AnError)
}
