package routes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Route is one voyage leg reported for a ship. FuelRecords, when present,
// carry the per-fuel detail used for the intensity calculation; otherwise
// the route-level fuel type and consumption are used.
type Route struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RouteID          string         `json:"route_id" gorm:"not null;uniqueIndex"`
	ShipID           string         `json:"ship_id" gorm:"not null;index:idx_route_ship_year"`
	VesselType       string         `json:"vessel_type" gorm:"not null;index"`
	FuelType         string         `json:"fuel_type" gorm:"not null;index"`
	EngineType       string         `json:"engine_type,omitempty"`
	Year             int            `json:"year" gorm:"not null;index:idx_route_ship_year"`
	GHGIntensity     float64        `json:"ghg_intensity" gorm:"type:decimal(12,5);not null"`
	FuelConsumption  float64        `json:"fuel_consumption" gorm:"type:decimal(16,5);not null"` // tonnes
	Distance         float64        `json:"distance" gorm:"type:decimal(16,3)"`                  // km
	TotalEmissions   float64        `json:"total_emissions" gorm:"type:decimal(20,5)"`           // tonnes
	IsBaseline       bool           `json:"is_baseline" gorm:"not null;default:false;index"`
	FuelRecords      datatypes.JSON `json:"fuel_records,omitempty" gorm:"default:'[]'"`
	OPSElectricityMJ float64        `json:"ops_electricity_mj" gorm:"type:decimal(20,5);default:0"`
	CreatedAt        time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Route) TableName() string { return "routes" }

// Filters narrows route listings. Zero values match everything.
type Filters struct {
	VesselType string
	FuelType   string
	ShipID     string
	Year       int
}

// CreateRouteRequest is the body of a create route call.
type CreateRouteRequest struct {
	RouteID          string         `json:"routeId" binding:"required"`
	ShipID           string         `json:"shipId"`
	VesselType       string         `json:"vesselType" binding:"required"`
	FuelType         string         `json:"fuelType" binding:"required"`
	EngineType       string         `json:"engineType"`
	Year             int            `json:"year" binding:"required"`
	GHGIntensity     float64        `json:"ghgIntensity"`
	FuelConsumption  float64        `json:"fuelConsumption"`
	Distance         float64        `json:"distance"`
	TotalEmissions   float64        `json:"totalEmissions"`
	FuelRecords      datatypes.JSON `json:"fuelRecords"`
	OPSElectricityMJ float64        `json:"opsElectricityMJ"`
}

// Comparison is one route measured against the baseline.
type Comparison struct {
	Route       Route   `json:"route"`
	PercentDiff float64 `json:"percent_diff"`
	IsCompliant bool    `json:"is_compliant"`
}

// ComparisonResult compares every route with the baseline route.
type ComparisonResult struct {
	Baseline    Route        `json:"baseline"`
	Year        int          `json:"year"`
	Target      float64      `json:"target"`
	Comparisons []Comparison `json:"comparisons"`
}
