package calculation

import "strings"

// Regulation constants (Regulation (EU) 2023/1805, Annexes I, II and IV).
const (
	// ReferenceGHGIntensity is the 2020 fleet reference value in gCO2eq/MJ.
	ReferenceGHGIntensity = 91.16

	// VLSFOEnergyPerTonne is the energy content used to convert a deficit
	// into tonnes of VLSFO equivalent for the penalty (MJ/t).
	VLSFOEnergyPerTonne = 41000.0

	// PenaltyRateEUR is the penalty per tonne of VLSFO equivalent.
	PenaltyRateEUR = 2400.0

	// ConsecutivePenaltyIncrement raises the penalty by 10% for every
	// additional consecutive year of non-compliance.
	ConsecutivePenaltyIncrement = 0.10

	// MaxBorrowingShare caps advance compliance surplus at 2% of
	// target intensity times energy used.
	MaxBorrowingShare = 0.02

	// BorrowingAggravation is applied to borrowed surplus on repayment.
	BorrowingAggravation = 1.10

	// RFNBORewardFactor applies to RFNBO fuels from 2025 to 2033.
	RFNBORewardFactor = 2.0

	// DefaultRewardFactor applies to every other fuel.
	DefaultRewardFactor = 1.0
)

const (
	rfnboRewardFirstYear = 2025
	rfnboRewardLastYear  = 2033
)

// lowerCalorificValues in MJ/g, Annex II defaults.
var lowerCalorificValues = map[string]float64{
	"HFO":      0.0405,
	"LFO":      0.0410,
	"MDO":      0.0427,
	"MGO":      0.0427,
	"LNG":      0.0491,
	"METHANOL": 0.0199,
	"AMMONIA":  0.0186,
	"HYDROGEN": 0.1200,
}

// slipCoefficients in percent of fuel mass, Annex II defaults. LNG values are
// keyed by engine family.
var slipCoefficients = map[string]float64{
	"HFO":           0,
	"MDO":           0,
	"MGO":           0,
	"LNG_OTTO_MS":   3.1,
	"LNG_OTTO_SS":   1.7,
	"LNG_DIESEL_SS": 0.2,
	"LNG_LBSI":      2.6,
}

// RewardFactor returns the energy reward multiplier for a fuel used in year.
func RewardFactor(year int, rfnbo bool) float64 {
	if rfnbo && year >= rfnboRewardFirstYear && year <= rfnboRewardLastYear {
		return RFNBORewardFactor
	}
	return DefaultRewardFactor
}

// LowerCalorificValue returns the default LCV for a fuel type, or false when
// the regulation defines no default for it.
func LowerCalorificValue(fuelType string) (float64, bool) {
	lcv, ok := lowerCalorificValues[strings.ToUpper(fuelType)]
	return lcv, ok
}

// SlipCoefficient returns the methane slip percentage for a fuel and, for
// LNG, the engine type (OTTO_MS, OTTO_SS, DIESEL_SS, LBSI). Unknown
// combinations slip nothing.
func SlipCoefficient(fuelType, engineType string) float64 {
	fuel := strings.ToUpper(fuelType)
	if fuel == "LNG" && engineType != "" {
		return slipCoefficients["LNG_"+strings.ToUpper(engineType)]
	}
	return slipCoefficients[fuel]
}
