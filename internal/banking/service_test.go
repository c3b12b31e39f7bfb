package banking

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/events"
	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/database"
)

// intensitySource reports a fixed actual intensity per year over 1000 MJ.
type intensitySource map[int]float64

func (s intensitySource) FuelData(ctx context.Context, shipID string, year int) (*compliance.FuelData, error) {
	intensity, ok := s[year]
	if !ok {
		return nil, compliance.ErrNoVoyageData
	}
	return compliance.NewStaticSource(intensity, 1000).FuelData(ctx, shipID, year)
}

type fixture struct {
	service    *Service
	repo       Repository
	compliance *compliance.Service
}

// 2025 has a surplus of 9336.8, 2026 a deficit of -1163.2.
func newFixture() *fixture {
	tx := database.NewLocalTransactor()
	repo := NewMemoryRepository()
	source := intensitySource{2025: 80, 2026: 90.5}
	complianceService := compliance.NewService(compliance.NewMemoryRepository(), source, repo, nil, tx, zap.NewNop())
	return &fixture{
		service:    NewService(repo, complianceService, tx, zap.NewNop()),
		repo:       repo,
		compliance: complianceService,
	}
}

func assertRejected(t *testing.T, r *outcome.Rejection, kind outcome.Kind, code string) {
	t.Helper()
	require.NotNil(t, r)
	assert.Equal(t, kind, r.Kind)
	assert.Equal(t, code, r.Code)
}

func assertLedgerConsistent(t *testing.T, f *fixture, shipID string) {
	t.Helper()
	balance, err := f.service.GetBalance(context.Background(), shipID)
	require.NoError(t, err)

	var sum float64
	for _, e := range balance.Entries {
		assert.GreaterOrEqual(t, e.Amount, 0.0)
		assert.LessOrEqual(t, e.Amount, e.InitialAmount)
		sum += e.Amount
	}
	assert.InDelta(t, balance.TotalBanked, sum, 1e-6)
}

func TestBankSurplus(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-positive amounts first", func(t *testing.T) {
		f := newFixture()
		for _, amount := range []float64{0, -10} {
			result, err := f.service.BankSurplus(ctx, "S1", 2026, amount)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assertRejected(t, result.Rejection, outcome.InvalidInput, outcome.CodeInvalidAmount)
		}
	})

	t.Run("rejects a deficit year", func(t *testing.T) {
		f := newFixture()
		result, err := f.service.BankSurplus(ctx, "S1", 2026, 100)
		require.NoError(t, err)
		assertRejected(t, result.Rejection, outcome.StateConflict, outcome.CodeNoSurplus)
		assert.InDelta(t, -1163.2, result.Rejection.Details["cb"], 1e-6)
	})

	t.Run("rejects more than the surplus", func(t *testing.T) {
		f := newFixture()
		result, err := f.service.BankSurplus(ctx, "S1", 2025, 10_000)
		require.NoError(t, err)
		assertRejected(t, result.Rejection, outcome.InsufficientResource, outcome.CodeInsufficientSurplus)
		assert.Equal(t, 10_000.0, result.Rejection.Details["requested"])
		assert.InDelta(t, 9336.8, result.Rejection.Details["available"], 1e-6)
	})

	t.Run("surplus can only be banked once", func(t *testing.T) {
		f := newFixture()
		first, err := f.service.BankSurplus(ctx, "S1", 2025, 5000)
		require.NoError(t, err)
		require.True(t, first.Success)
		assert.InDelta(t, 4336.8, first.Available, 1e-6)

		second, err := f.service.BankSurplus(ctx, "S1", 2025, 5000)
		require.NoError(t, err)
		assertRejected(t, second.Rejection, outcome.InsufficientResource, outcome.CodeInsufficientSurplus)

		third, err := f.service.BankSurplus(ctx, "S1", 2025, 4336.8)
		require.NoError(t, err)
		assert.True(t, third.Success)

		balance, err := f.service.GetBalance(ctx, "S1")
		require.NoError(t, err)
		assert.InDelta(t, 9336.8, balance.TotalBanked, 1e-6)
		assert.Len(t, balance.Entries, 2)
	})

	t.Run("unknown year is not found", func(t *testing.T) {
		f := newFixture()
		result, err := f.service.BankSurplus(ctx, "S1", 2030, 10)
		require.NoError(t, err)
		assertRejected(t, result.Rejection, outcome.NotFound, outcome.CodeNoVoyageData)
	})
}

func TestApplyBanked(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a surplus year", func(t *testing.T) {
		f := newFixture()
		result, err := f.service.ApplyBanked(ctx, "S1", 2025, 100)
		require.NoError(t, err)
		assertRejected(t, result.Rejection, outcome.StateConflict, outcome.CodeNoDeficit)
	})

	t.Run("rejects more than banked", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.BankSurplus(ctx, "S1", 2025, 500)
		require.NoError(t, err)

		result, err := f.service.ApplyBanked(ctx, "S1", 2026, 1000)
		require.NoError(t, err)
		assertRejected(t, result.Rejection, outcome.InsufficientResource, outcome.CodeInsufficientBanked)
		assert.Equal(t, 500.0, result.Rejection.Details["available"])
	})

	t.Run("applies at most the deficit and debits oldest first", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.BankSurplus(ctx, "S1", 2025, 1000)
		require.NoError(t, err)
		_, err = f.service.BankSurplus(ctx, "S1", 2025, 2000)
		require.NoError(t, err)

		result, err := f.service.ApplyBanked(ctx, "S1", 2026, 3000)
		require.NoError(t, err)
		require.True(t, result.Success)
		assert.InDelta(t, -1163.2, result.CBBefore, 1e-6)
		assert.InDelta(t, 1163.2, result.Applied, 1e-6)
		assert.Zero(t, result.CBAfter)

		var debits []Debit
		require.NoError(t, json.Unmarshal(result.Application.Debits, &debits))
		require.Len(t, debits, 2)
		assert.Equal(t, 1000.0, debits[0].Amount)
		assert.InDelta(t, 163.2, debits[1].Amount, 1e-6)

		balance, err := f.service.GetBalance(ctx, "S1")
		require.NoError(t, err)
		assert.InDelta(t, 1836.8, balance.TotalBanked, 1e-6)
		assertLedgerConsistent(t, f, "S1")

		again, err := f.service.ApplyBanked(ctx, "S1", 2026, 100)
		require.NoError(t, err)
		assertRejected(t, again.Rejection, outcome.StateConflict, outcome.CodeNoDeficit)
	})

	t.Run("application raises the adjusted balance", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.BankSurplus(ctx, "S1", 2025, 500)
		require.NoError(t, err)

		before, err := f.compliance.AdjustedCB(ctx, "S1", 2026)
		require.NoError(t, err)
		assert.InDelta(t, -663.2, before.AdjustedCB, 1e-6)

		_, err = f.service.ApplyBanked(ctx, "S1", 2026, 500)
		require.NoError(t, err)

		after, err := f.compliance.AdjustedCB(ctx, "S1", 2026)
		require.NoError(t, err)
		assert.InDelta(t, -663.2, after.AdjustedCB, 1e-6, "applying must not double count the preview")
		assert.InDelta(t, 500, after.BankedApplied, 1e-6)
		assert.Zero(t, after.BankPreview)
	})
}

func TestApplyBankedConcurrentRequestsNeverOverspend(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.service.BankSurplus(ctx, "S1", 2025, 5000)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.ApplyBanked(ctx, "S1", 2026, 200)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	applied, err := f.repo.AppliedTo(ctx, "S1", 2026)
	require.NoError(t, err)
	assert.InDelta(t, 1163.2, applied, 1e-6)

	balance, err := f.service.GetBalance(ctx, "S1")
	require.NoError(t, err)
	assert.InDelta(t, 3836.8, balance.TotalBanked, 1e-6)
	assertLedgerConsistent(t, f, "S1")
}

func TestPublishesCommittedMovements(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	recorder := &events.Recorder{}
	f.service.SetPublisher(recorder)

	rejected, err := f.service.BankSurplus(ctx, "S1", 2026, 100)
	require.NoError(t, err)
	require.False(t, rejected.Success)
	assert.Empty(t, recorder.Events())

	banked, err := f.service.BankSurplus(ctx, "S1", 2025, 2000)
	require.NoError(t, err)
	require.True(t, banked.Success)

	applied, err := f.service.ApplyBanked(ctx, "S1", 2026, 500)
	require.NoError(t, err)
	require.True(t, applied.Success)

	published := recorder.Events()
	require.Len(t, published, 2)
	assert.Equal(t, events.TypeSurplusBanked, published[0].Type)
	assert.Equal(t, []string{"S1"}, published[0].ShipIDs)
	assert.Equal(t, 2000.0, published[0].Amounts["amount"])
	assert.Equal(t, banked.Entry.ID.String(), published[0].Reference)
	assert.Equal(t, events.TypeBankedApplied, published[1].Type)
	assert.Equal(t, 2026, published[1].Year)
	assert.Equal(t, 500.0, published[1].Amounts["applied"])
}
