package compliance

import (
	"time"

	"github.com/google/uuid"

	"fueleu-ledger/compliance-backend/internal/compliance/calculation"
)

// ComplianceBalance is the computed CB of one ship-year. It is a derived
// cache, overwritten on every computation.
type ComplianceBalance struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShipID          string    `json:"ship_id" gorm:"not null;uniqueIndex:idx_cb_ship_year"`
	Year            int       `json:"year" gorm:"not null;uniqueIndex:idx_cb_ship_year"`
	CBValue         float64   `json:"cb_value" gorm:"type:decimal(24,5);not null"`
	ActualIntensity float64   `json:"actual_intensity" gorm:"type:decimal(12,5);not null"`
	TargetIntensity float64   `json:"target_intensity" gorm:"type:decimal(12,5);not null"`
	EnergyScope     float64   `json:"energy_scope" gorm:"type:decimal(24,5);not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ComplianceBalance) TableName() string { return "compliance_balances" }

// FuelData is what a ship consumed in a reporting year.
type FuelData struct {
	Fuels       []calculation.FuelRecord `json:"fuels"`
	AuxEnergyMJ float64                  `json:"aux_energy_mj"`
}

// TargetResult describes the target intensity of a year.
type TargetResult struct {
	Year             int     `json:"year"`
	Target           float64 `json:"target"`
	Reference        float64 `json:"reference"`
	ReductionPercent float64 `json:"reduction_percent"`
}

// Result is a freshly computed compliance balance.
type Result struct {
	ShipID          string  `json:"ship_id"`
	Year            int     `json:"year"`
	CBValue         float64 `json:"cb_value"`
	ActualIntensity float64 `json:"actual_intensity"`
	TargetIntensity float64 `json:"target_intensity"`
	EnergyScope     float64 `json:"energy_scope"`
	WellToTank      float64 `json:"wtt"`
	TankToWake      float64 `json:"ttw"`
	IsCompliant     bool    `json:"is_compliant"`
	Surplus         float64 `json:"surplus"`
	Deficit         float64 `json:"deficit"`
}

// AdjustedResult breaks the adjusted CB down into its parts.
//
//	EffectiveCB = RawCB − Repayment + BankedApplied
//	AdjustedCB  = EffectiveCB + BankPreview
type AdjustedResult struct {
	ShipID          string  `json:"ship_id"`
	Year            int     `json:"year"`
	RawCB           float64 `json:"raw_cb"`
	Repayment       float64 `json:"borrow_repayment"`
	BankedApplied   float64 `json:"banked_applied"`
	EffectiveCB     float64 `json:"effective_cb"`
	BankPreview     float64 `json:"bank_preview"`
	AdjustedCB      float64 `json:"adjusted_cb"`
	ActualIntensity float64 `json:"actual_intensity"`
	TargetIntensity float64 `json:"target_intensity"`
	EnergyScope     float64 `json:"energy_scope"`
	IsCompliant     bool    `json:"is_compliant"`
}

// PenaltyAssessment is the FuelEU penalty owed on the adjusted CB.
type PenaltyAssessment struct {
	ShipID           string  `json:"ship_id"`
	Year             int     `json:"year"`
	AdjustedCB       float64 `json:"adjusted_cb"`
	ActualIntensity  float64 `json:"actual_intensity"`
	ConsecutiveYears int     `json:"consecutive_years"`
	PenaltyEUR       float64 `json:"penalty_eur"`
}
