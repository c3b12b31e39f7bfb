package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/compliance/calculation"
	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/database"
	"fueleu-ledger/compliance-backend/pkg/rounding"
)

// Service manages voyage routes and the baseline comparison.
type Service struct {
	repo                  Repository
	tx                    database.Transactor
	logger                *zap.Logger
	defaultComparisonYear int
}

// NewService creates a new routes service
func NewService(repo Repository, tx database.Transactor, logger *zap.Logger, defaultComparisonYear int) *Service {
	if defaultComparisonYear == 0 {
		defaultComparisonYear = 2025
	}
	return &Service{
		repo:                  repo,
		tx:                    tx,
		logger:                logger,
		defaultComparisonYear: defaultComparisonYear,
	}
}

// List returns routes matching filters, newest first.
func (s *Service) List(ctx context.Context, filters Filters) ([]Route, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one route.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Route, error) {
	route, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, outcome.Missing(outcome.CodeNotFound, "Route not found")
	}
	return route, nil
}

// Create stores a route. A route without a ship id belongs to a ship of the
// same name as the route.
func (s *Service) Create(ctx context.Context, req *CreateRouteRequest) (*Route, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	shipID := strings.TrimSpace(req.ShipID)
	if shipID == "" {
		shipID = req.RouteID
	}
	totalEmissions := req.TotalEmissions
	if totalEmissions == 0 {
		totalEmissions = rounding.Round5(req.FuelConsumption * req.GHGIntensity)
	}

	route := &Route{
		RouteID:          req.RouteID,
		ShipID:           shipID,
		VesselType:       req.VesselType,
		FuelType:         strings.ToUpper(req.FuelType),
		EngineType:       req.EngineType,
		Year:             req.Year,
		GHGIntensity:     req.GHGIntensity,
		FuelConsumption:  req.FuelConsumption,
		Distance:         req.Distance,
		TotalEmissions:   totalEmissions,
		FuelRecords:      req.FuelRecords,
		OPSElectricityMJ: req.OPSElectricityMJ,
	}
	if err := s.repo.Create(ctx, route); err != nil {
		if errors.Is(err, ErrDuplicateRoute) {
			return nil, outcome.Conflict("DUPLICATE_ROUTE", "route %s already exists", req.RouteID)
		}
		return nil, err
	}

	s.logger.Info("Route created",
		zap.String("route_id", route.RouteID),
		zap.String("ship_id", route.ShipID),
		zap.Int("year", route.Year),
	)
	return route, nil
}

func validateCreate(req *CreateRouteRequest) *outcome.Rejection {
	if strings.TrimSpace(req.RouteID) == "" {
		return outcome.Invalid("INVALID_ROUTE", "routeId is required")
	}
	if req.Year < compliance.MinYear || req.Year > compliance.MaxYear {
		return outcome.Invalid(outcome.CodeInvalidYear, "year %d is outside %d-%d", req.Year, compliance.MinYear, compliance.MaxYear)
	}
	if req.GHGIntensity < 0 || req.FuelConsumption < 0 || req.Distance < 0 || req.OPSElectricityMJ < 0 {
		return outcome.Invalid(outcome.CodeInvalidAmount, "route figures must not be negative")
	}
	if len(req.FuelRecords) > 0 {
		var records []calculation.FuelRecord
		if err := json.Unmarshal(req.FuelRecords, &records); err != nil {
			return outcome.Invalid("INVALID_FUEL_RECORDS", "fuelRecords must be a list of fuel records: %v", err)
		}
		for _, r := range records {
			if r.Mass < 0 || r.LCV < 0 || r.SlipCoefficient < 0 || r.SlipCoefficient > 100 {
				return outcome.Invalid("INVALID_FUEL_RECORDS", "fuel record %s has out of range values", r.FuelType)
			}
		}
	}
	return nil
}

// SetBaseline makes id the only baseline route.
func (s *Service) SetBaseline(ctx context.Context, id uuid.UUID) (*Route, error) {
	var route *Route
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if route, err = s.Get(ctx, id); err != nil {
			return err
		}
		if err := s.repo.SetBaseline(ctx, id); err != nil {
			return err
		}
		route.IsBaseline = true
		return nil
	})
	if err != nil {
		if _, ok := outcome.As(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to set baseline: %w", err)
	}
	return route, nil
}

// Comparison compares every other route's intensity with the baseline and
// with the target of year (the configured default when 0).
func (s *Service) Comparison(ctx context.Context, year int) (*ComparisonResult, error) {
	if year == 0 {
		year = s.defaultComparisonYear
	}

	baseline, err := s.repo.Baseline(ctx)
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		return nil, outcome.Missing(outcome.CodeNotFound, "No baseline route set")
	}

	routes, err := s.repo.List(ctx, Filters{})
	if err != nil {
		return nil, err
	}

	target := calculation.TargetFor(year)
	result := &ComparisonResult{Baseline: *baseline, Year: year, Target: target, Comparisons: []Comparison{}}
	for _, route := range routes {
		if route.ID == baseline.ID {
			continue
		}
		var diff float64
		if baseline.GHGIntensity != 0 {
			diff = rounding.Round2((route.GHGIntensity - baseline.GHGIntensity) / baseline.GHGIntensity * 100)
		}
		result.Comparisons = append(result.Comparisons, Comparison{
			Route:       route,
			PercentDiff: diff,
			IsCompliant: route.GHGIntensity <= target,
		})
	}
	return result, nil
}

// ShipsForYear lists ships with routes in year.
func (s *Service) ShipsForYear(ctx context.Context, year int) ([]string, error) {
	return s.repo.ShipsForYear(ctx, year)
}

// Seed creates the reference routes that are not present yet.
func (s *Service) Seed(ctx context.Context) error {
	for _, req := range SeedRoutes() {
		if _, err := s.Create(ctx, &req); err != nil {
			if r, ok := outcome.As(err); ok && r.Kind == outcome.StateConflict {
				continue
			}
			return err
		}
	}
	return nil
}

// SeedRoutes returns the reference voyage set.
func SeedRoutes() []CreateRouteRequest {
	return []CreateRouteRequest{
		{RouteID: "R001", VesselType: "Container", FuelType: "HFO", Year: 2024, GHGIntensity: 91.0, FuelConsumption: 5000, Distance: 12000},
		{RouteID: "R002", VesselType: "BulkCarrier", FuelType: "LNG", Year: 2024, GHGIntensity: 88.0, FuelConsumption: 4800, Distance: 11500},
		{RouteID: "R003", VesselType: "Tanker", FuelType: "MGO", Year: 2024, GHGIntensity: 93.5, FuelConsumption: 5100, Distance: 12500},
		{RouteID: "R004", VesselType: "RoRo", FuelType: "HFO", Year: 2025, GHGIntensity: 89.2, FuelConsumption: 4900, Distance: 11800},
		{RouteID: "R005", VesselType: "Container", FuelType: "LNG", Year: 2025, GHGIntensity: 90.5, FuelConsumption: 4950, Distance: 11900},
	}
}
