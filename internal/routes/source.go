package routes

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/compliance/calculation"
)

const gramsPerTonne = 1_000_000

// FuelSource aggregates the routes of a ship-year into compliance input.
type FuelSource struct {
	repo   Repository
	logger *zap.Logger
}

func NewFuelSource(repo Repository, logger *zap.Logger) *FuelSource {
	return &FuelSource{repo: repo, logger: logger}
}

// FuelData collects every fuel record and the shore power of the ship's
// routes in year. It returns compliance.ErrNoVoyageData when there are none.
func (s *FuelSource) FuelData(ctx context.Context, shipID string, year int) (*compliance.FuelData, error) {
	routes, err := s.repo.List(ctx, Filters{ShipID: shipID, Year: year})
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, compliance.ErrNoVoyageData
	}

	data := &compliance.FuelData{}
	for _, route := range routes {
		records, err := routeFuelRecords(route)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			s.logger.Warn("Route has no usable fuel data",
				zap.String("route_id", route.RouteID),
				zap.String("fuel_type", route.FuelType),
			)
			continue
		}
		data.Fuels = append(data.Fuels, records...)
		data.AuxEnergyMJ += route.OPSElectricityMJ
	}
	if len(data.Fuels) == 0 && data.AuxEnergyMJ == 0 {
		return nil, compliance.ErrNoVoyageData
	}
	return data, nil
}

// routeFuelRecords returns the route's detailed records, or one record
// derived from its fuel type, consumption and reported intensity.
func routeFuelRecords(route Route) ([]calculation.FuelRecord, error) {
	var records []calculation.FuelRecord
	if len(route.FuelRecords) > 0 {
		if err := json.Unmarshal(route.FuelRecords, &records); err != nil {
			return nil, fmt.Errorf("failed to decode fuel records of route %s: %w", route.RouteID, err)
		}
	}

	if len(records) == 0 {
		lcv, ok := calculation.LowerCalorificValue(route.FuelType)
		if !ok || route.FuelConsumption <= 0 {
			return nil, nil
		}
		records = append(records, calculation.FuelRecord{
			FuelType:        route.FuelType,
			Mass:            route.FuelConsumption * gramsPerTonne,
			LCV:             lcv,
			TankToWake:      route.GHGIntensity,
			SlipCoefficient: calculation.SlipCoefficient(route.FuelType, route.EngineType),
		})
	}

	for i := range records {
		if records[i].RewardFactor == 0 {
			records[i].RewardFactor = calculation.RewardFactor(route.Year, records[i].RFNBO)
		}
	}
	return records, nil
}
