package calculation

import (
	"math"

	"fueleu-ledger/compliance-backend/pkg/rounding"
)

// ComplianceBalance returns the CB in gCO2eq. Positive is surplus, negative
// is deficit.
func ComplianceBalance(target, actual, energyMJ float64) float64 {
	return rounding.Round5((target - actual) * energyMJ)
}

// Penalty returns the FuelEU penalty in EUR for a compliance balance.
//
//	base    = |CB| / (GHGIE_actual × 41 000) × 2 400
//	penalty = base × (1 + (n − 1) × 0.10)
//
// consecutiveYears counts every non-compliant year including the current one;
// values below 1 count as 1.
func Penalty(cb, actualIntensity float64, consecutiveYears int) float64 {
	if cb >= 0 || actualIntensity <= 0 {
		return 0
	}
	if consecutiveYears < 1 {
		consecutiveYears = 1
	}

	base := math.Abs(cb) / (actualIntensity * VLSFOEnergyPerTonne) * PenaltyRateEUR
	multiplier := 1 + float64(consecutiveYears-1)*ConsecutivePenaltyIncrement

	return rounding.RoundPenaltyEUR(base * multiplier)
}

// MaxBorrowing is the largest advance compliance surplus a ship may borrow in
// year: 2% of the target intensity times the energy in scope.
func MaxBorrowing(year int, energyMJ float64) float64 {
	return rounding.Round5(MaxBorrowingShare * TargetFor(year) * energyMJ)
}

// AggravatedACS is the amount owed the year after borrowing.
func AggravatedACS(borrowed float64) float64 {
	return rounding.Round5(borrowed * BorrowingAggravation)
}
