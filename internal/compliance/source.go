package compliance

import (
	"context"
	"errors"

	"fueleu-ledger/compliance-backend/internal/compliance/calculation"
)

// ErrNoVoyageData is returned by a FuelSource that has nothing recorded for
// the ship and year.
var ErrNoVoyageData = errors.New("no voyage data for ship and year")

// FuelSource supplies the fuel consumed by a ship in a reporting year.
type FuelSource interface {
	FuelData(ctx context.Context, shipID string, year int) (*FuelData, error)
}

// StaticSource reports the same actual intensity and energy for every ship.
// It stands in for a voyage aggregation pipeline.
type StaticSource struct {
	ActualIntensity float64
	EnergyScopeMJ   float64
}

// NewStaticSource returns a source producing the given intensity and energy.
func NewStaticSource(actualIntensity, energyScopeMJ float64) *StaticSource {
	return &StaticSource{ActualIntensity: actualIntensity, EnergyScopeMJ: energyScopeMJ}
}

// FuelData synthesizes one fuel record with an LCV of 1 MJ/g, so the mass is
// the energy and the tank-to-wake factor is the whole intensity.
func (s *StaticSource) FuelData(_ context.Context, _ string, _ int) (*FuelData, error) {
	return &FuelData{
		Fuels: []calculation.FuelRecord{{
			FuelType:     "STATIC",
			Mass:         s.EnergyScopeMJ,
			LCV:          1,
			TankToWake:   s.ActualIntensity,
			RewardFactor: calculation.DefaultRewardFactor,
		}},
	}, nil
}

// FallbackSource asks Primary first and Fallback only when Primary has no data.
type FallbackSource struct {
	Primary  FuelSource
	Fallback FuelSource
}

func (s *FallbackSource) FuelData(ctx context.Context, shipID string, year int) (*FuelData, error) {
	data, err := s.Primary.FuelData(ctx, shipID, year)
	if errors.Is(err, ErrNoVoyageData) && s.Fallback != nil {
		return s.Fallback.FuelData(ctx, shipID, year)
	}
	return data, err
}
