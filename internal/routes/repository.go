package routes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fueleu-ledger/compliance-backend/pkg/database"
)

// ErrDuplicateRoute is returned when a route id is already taken.
var ErrDuplicateRoute = errors.New("route id already exists")

// Repository persists voyage routes.
type Repository interface {
	Create(ctx context.Context, route *Route) error
	Get(ctx context.Context, id uuid.UUID) (*Route, error)
	List(ctx context.Context, filters Filters) ([]Route, error)
	Baseline(ctx context.Context) (*Route, error)
	// SetBaseline clears the current baseline and marks id. Callers run it
	// inside a transaction.
	SetBaseline(ctx context.Context, id uuid.UUID) error
	// ShipsForYear returns the distinct ships with routes in year.
	ShipsForYear(ctx context.Context, year int) ([]string, error)
}

type postgresRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, route *Route) error {
	err := database.Conn(ctx, r.db).Create(route).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateRoute
	}
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}
	return nil
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (*Route, error) {
	var route Route
	err := database.Conn(ctx, r.db).First(&route, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &route, nil
}

func (r *postgresRepository) List(ctx context.Context, filters Filters) ([]Route, error) {
	query := database.Conn(ctx, r.db).Order("created_at DESC")
	if filters.VesselType != "" {
		query = query.Where("vessel_type = ?", filters.VesselType)
	}
	if filters.FuelType != "" {
		query = query.Where("fuel_type = ?", filters.FuelType)
	}
	if filters.ShipID != "" {
		query = query.Where("ship_id = ?", filters.ShipID)
	}
	if filters.Year != 0 {
		query = query.Where("year = ?", filters.Year)
	}

	var routes []Route
	if err := query.Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

func (r *postgresRepository) Baseline(ctx context.Context) (*Route, error) {
	var route Route
	err := database.Conn(ctx, r.db).Where("is_baseline = ?", true).First(&route).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline route: %w", err)
	}
	return &route, nil
}

func (r *postgresRepository) SetBaseline(ctx context.Context, id uuid.UUID) error {
	db := database.Conn(ctx, r.db)
	if err := db.Model(&Route{}).Where("is_baseline = ?", true).Update("is_baseline", false).Error; err != nil {
		return fmt.Errorf("failed to clear baseline: %w", err)
	}
	if err := db.Model(&Route{}).Where("id = ?", id).Update("is_baseline", true).Error; err != nil {
		return fmt.Errorf("failed to set baseline: %w", err)
	}
	return nil
}

func (r *postgresRepository) ShipsForYear(ctx context.Context, year int) ([]string, error) {
	var ships []string
	err := database.Conn(ctx, r.db).
		Model(&Route{}).
		Where("year = ?", year).
		Distinct().
		Order("ship_id").
		Pluck("ship_id", &ships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ships: %w", err)
	}
	return ships, nil
}
