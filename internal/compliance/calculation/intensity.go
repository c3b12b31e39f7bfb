package calculation

import "fueleu-ledger/compliance-backend/pkg/rounding"

// FuelRecord is one fuel consumed by a ship over a reporting period.
type FuelRecord struct {
	FuelType        string  `json:"fuel_type"`
	Mass            float64 `json:"mass"`             // grams
	LCV             float64 `json:"lcv"`              // MJ/g
	WellToTank      float64 `json:"wtt_factor"`       // gCO2eq/MJ
	TankToWake      float64 `json:"ttw_factor"`       // gCO2eq/MJ
	SlipCoefficient float64 `json:"slip_coefficient"` // percent of mass not combusted
	RewardFactor    float64 `json:"reward_factor"`
	RFNBO           bool    `json:"rfnbo"`
}

// IntensityResult is the GHG intensity breakdown of a fuel mix.
type IntensityResult struct {
	WellToTank float64 `json:"wtt"`
	TankToWake float64 `json:"ttw"`
	Total      float64 `json:"total"`
	Energy     float64 `json:"energy"` // MJ in scope
}

// ComputeIntensity aggregates per-fuel energy and emissions into the total
// GHG intensity of the energy used, following Annex I:
//
//	energy = Σ(M × LCV × RWD) + E_aux
//	WtT    = Σ(M × LCV × CO2eq_WtT) / energy
//	TtW    = Σ(M × LCV × CO2eq_TtW × ((1 − Cslip/100) + Cslip/100)) / energy
//
// A zero reward factor is treated as 1. The slipped fraction currently uses
// the combustion factor, so both fractions always add up to the full mass.
func ComputeIntensity(fuels []FuelRecord, auxEnergyMJ float64) IntensityResult {
	var energy, wttSum, ttwSum float64
	for _, fuel := range fuels {
		reward := fuel.RewardFactor
		if reward == 0 {
			reward = DefaultRewardFactor
		}
		fuelEnergy := fuel.Mass * fuel.LCV
		energy += fuelEnergy * reward

		wttSum += fuelEnergy * fuel.WellToTank

		combusted := 1 - fuel.SlipCoefficient/100
		slipped := fuel.SlipCoefficient / 100
		ttwSum += fuelEnergy * fuel.TankToWake * (combusted + slipped)
	}
	energy += auxEnergyMJ

	if energy == 0 {
		return IntensityResult{}
	}

	wtt := wttSum / energy
	ttw := ttwSum / energy

	return IntensityResult{
		WellToTank: rounding.Round5(wtt),
		TankToWake: rounding.Round5(ttw),
		Total:      rounding.Round5(wtt + ttw),
		Energy:     rounding.Round5(energy),
	}
}
