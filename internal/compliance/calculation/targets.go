package calculation

import "fueleu-ledger/compliance-backend/pkg/rounding"

// TargetBand is one step of the intensity reduction schedule.
type TargetBand struct {
	FromYear  int     `json:"from_year"`
	ToYear    int     `json:"to_year,omitempty"` // 0 means open ended
	Reduction float64 `json:"reduction_percent"`
	Target    float64 `json:"target"`
}

// targetBands are the published Article 4(2) limits. The absolute values are
// stored alongside the percentages and never recomputed at call time.
var targetBands = []TargetBand{
	{FromYear: 2025, ToYear: 2029, Reduction: 2, Target: 89.3368},
	{FromYear: 2030, ToYear: 2034, Reduction: 6, Target: 85.6904},
	{FromYear: 2035, ToYear: 2039, Reduction: 14.5, Target: 77.9418},
	{FromYear: 2040, ToYear: 2044, Reduction: 31, Target: 62.9004},
	{FromYear: 2045, ToYear: 2049, Reduction: 62, Target: 34.6408},
	{FromYear: 2050, Reduction: 80, Target: 18.2320},
}

// TargetFor returns the target GHG intensity (gCO2eq/MJ) for a reporting
// year. Years before the first band get the unreduced reference value.
func TargetFor(year int) float64 {
	for _, band := range targetBands {
		if year >= band.FromYear && (band.ToYear == 0 || year <= band.ToYear) {
			return rounding.Round5(band.Target)
		}
	}
	return rounding.Round5(ReferenceGHGIntensity)
}

// Schedule returns a copy of the reduction schedule.
func Schedule() []TargetBand {
	bands := make([]TargetBand, len(targetBands))
	copy(bands, targetBands)
	return bands
}
