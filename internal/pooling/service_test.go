package pooling

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/database"
)

// shipSource reports a fixed intensity per ship over 1000 MJ in every year.
type shipSource map[string]float64

func (s shipSource) FuelData(ctx context.Context, shipID string, year int) (*compliance.FuelData, error) {
	intensity, ok := s[shipID]
	if !ok {
		return nil, compliance.ErrNoVoyageData
	}
	return compliance.NewStaticSource(intensity, 1000).FuelData(ctx, shipID, year)
}

func newTestService() *Service {
	tx := database.NewLocalTransactor()
	source := shipSource{"S1": 80, "S2": 90.5}
	complianceService := compliance.NewService(compliance.NewMemoryRepository(), source, nil, nil, tx, zap.NewNop())
	return NewService(NewMemoryRepository(), complianceService, tx, zap.NewNop())
}

func cb(v float64) *float64 { return &v }

func TestCreatePool(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	result, err := service.CreatePool(ctx, 2025, []MemberRequest{
		{ShipID: "S1", CBBefore: cb(10000)},
		{ShipID: "S2", CBBefore: cb(-5000)},
	})
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.NotNil(t, result.Pool)
	assert.Equal(t, 5000.0, result.Pool.TotalCBBefore)
	assert.Equal(t, 5000.0, result.Pool.TotalCBAfter)
	require.Len(t, result.Pool.Members, 2)
	assert.Equal(t, 5000.0, result.Pool.Members[0].CBAfter)
	assert.Equal(t, 0.0, result.Pool.Members[1].CBAfter)

	stored, err := service.GetPool(ctx, result.Pool.ID)
	require.NoError(t, err)
	assert.Equal(t, 2025, stored.Year)
	assert.Len(t, stored.Members, 2)

	pools, err := service.ListPools(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, pools, 1)

	pools, err = service.ListPools(ctx, 2026)
	require.NoError(t, err)
	assert.Empty(t, pools)
}

func TestCreatePoolRejectedPoolPersistsNothing(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	result, err := service.CreatePool(ctx, 2025, []MemberRequest{
		{ShipID: "S1", CBBefore: cb(-100000)},
		{ShipID: "S2", CBBefore: cb(-50000)},
	})
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Message, "negative")
	assert.Nil(t, result.Pool)

	pools, err := service.ListPools(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pools)
}

func TestCreatePoolResolvesAdjustedBalances(t *testing.T) {
	service := newTestService()

	result, err := service.CreatePool(context.Background(), 2025, []MemberRequest{
		{ShipID: "S1"},
		{ShipID: "S2"},
	})
	require.NoError(t, err)
	require.True(t, result.IsValid)

	assert.InDelta(t, 9336.8, result.Members[0].CBBefore, 1e-6)
	assert.InDelta(t, 8173.6, result.Members[0].CBAfter, 1e-6)
	assert.InDelta(t, -1163.2, result.Members[1].CBBefore, 1e-6)
	assert.Zero(t, result.Members[1].CBAfter)
}

func TestCreatePoolRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown ship", func(t *testing.T) {
		service := newTestService()
		result, err := service.CreatePool(ctx, 2025, []MemberRequest{{ShipID: "S1"}, {ShipID: "GHOST"}})
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Equal(t, outcome.NotFound, result.Rejection.Kind)
	})

	t.Run("ship already pooled this year", func(t *testing.T) {
		service := newTestService()
		_, err := service.CreatePool(ctx, 2025, []MemberRequest{{ShipID: "S1", CBBefore: cb(10)}})
		require.NoError(t, err)

		result, err := service.CreatePool(ctx, 2025, []MemberRequest{{ShipID: "S1", CBBefore: cb(10)}, {ShipID: "S3", CBBefore: cb(-5)}})
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Equal(t, outcome.CodeShipAlreadyPooled, result.Rejection.Code)

		other, err := service.CreatePool(ctx, 2026, []MemberRequest{{ShipID: "S1", CBBefore: cb(10)}})
		require.NoError(t, err)
		assert.True(t, other.IsValid)
	})

	t.Run("invalid year", func(t *testing.T) {
		service := newTestService()
		result, err := service.CreatePool(ctx, 1990, []MemberRequest{{ShipID: "S1", CBBefore: cb(10)}})
		require.NoError(t, err)
		assert.Equal(t, outcome.CodeInvalidYear, result.Rejection.Code)
	})
}

func TestGetPoolNotFound(t *testing.T) {
	_, err := newTestService().GetPool(context.Background(), uuid.New())

	rejection, ok := outcome.As(err)
	require.True(t, ok)
	assert.Equal(t, outcome.NotFound, rejection.Kind)
}
