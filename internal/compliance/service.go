package compliance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/compliance/calculation"
	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/database"
	"fueleu-ledger/compliance-backend/pkg/rounding"
)

// Reporting years accepted by the ledger.
const (
	MinYear = 2020
	MaxYear = 2100
)

// BankLedger is the part of the banking ledger the adjusted CB depends on.
type BankLedger interface {
	TotalBanked(ctx context.Context, shipID string) (float64, error)
	AppliedTo(ctx context.Context, shipID string, year int) (float64, error)
}

// RepaymentLedger reports the borrowed surplus a ship repays in a year.
type RepaymentLedger interface {
	Repayment(ctx context.Context, shipID string, year int) (float64, error)
}

// Service computes compliance balances and the adjusted CB every ledger
// decision is based on.
type Service struct {
	repo       Repository
	source     FuelSource
	bank       BankLedger
	repayments RepaymentLedger
	tx         database.Transactor
	logger     *zap.Logger
}

// NewService creates a compliance service. bank and repayments may be nil
// when those ledgers are not in use.
func NewService(repo Repository, source FuelSource, bank BankLedger, repayments RepaymentLedger, tx database.Transactor, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		source:     source,
		bank:       bank,
		repayments: repayments,
		tx:         tx,
		logger:     logger,
	}
}

// ValidateShipYear rejects a blank ship id or a year outside the ledger range.
func ValidateShipYear(shipID string, year int) *outcome.Rejection {
	if strings.TrimSpace(shipID) == "" {
		return outcome.Invalid(outcome.CodeInvalidShip, "shipId is required")
	}
	if year < MinYear || year > MaxYear {
		return outcome.Invalid(outcome.CodeInvalidYear, "year %d is outside %d-%d", year, MinYear, MaxYear).
			With("year", float64(year))
	}
	return nil
}

// GetTarget returns the target intensity for a year.
func (s *Service) GetTarget(year int) TargetResult {
	result := TargetResult{
		Year:      year,
		Target:    calculation.TargetFor(year),
		Reference: calculation.ReferenceGHGIntensity,
	}
	for _, band := range calculation.Schedule() {
		if year >= band.FromYear && (band.ToYear == 0 || year <= band.ToYear) {
			result.ReductionPercent = band.Reduction
		}
	}
	return result
}

// ComputeBalance computes the raw CB of a ship-year from its fuel data and
// stores it.
func (s *Service) ComputeBalance(ctx context.Context, shipID string, year int) (*Result, error) {
	if r := ValidateShipYear(shipID, year); r != nil {
		return nil, r
	}

	var result *Result
	err := database.WithinShipLock(ctx, s.tx, shipID, func(ctx context.Context) error {
		var err error
		result, err = s.computeLocked(ctx, shipID, year)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) computeLocked(ctx context.Context, shipID string, year int) (*Result, error) {
	data, err := s.source.FuelData(ctx, shipID, year)
	if errors.Is(err, ErrNoVoyageData) {
		return nil, outcome.Missing(outcome.CodeNoVoyageData, "no voyage data for ship %s in %d", shipID, year)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load fuel data: %w", err)
	}

	intensity := calculation.ComputeIntensity(data.Fuels, data.AuxEnergyMJ)
	target := calculation.TargetFor(year)
	cb := calculation.ComplianceBalance(target, intensity.Total, intensity.Energy)

	balance := &ComplianceBalance{
		ShipID:          shipID,
		Year:            year,
		CBValue:         cb,
		ActualIntensity: intensity.Total,
		TargetIntensity: target,
		EnergyScope:     intensity.Energy,
	}
	if err := s.repo.UpsertBalance(ctx, balance); err != nil {
		return nil, err
	}

	s.logger.Debug("Compliance balance computed",
		zap.String("ship_id", shipID),
		zap.Int("year", year),
		zap.Float64("cb", cb),
		zap.Float64("actual_intensity", intensity.Total),
	)

	return &Result{
		ShipID:          shipID,
		Year:            year,
		CBValue:         cb,
		ActualIntensity: intensity.Total,
		TargetIntensity: target,
		EnergyScope:     intensity.Energy,
		WellToTank:      intensity.WellToTank,
		TankToWake:      intensity.TankToWake,
		IsCompliant:     cb >= 0,
		Surplus:         math.Max(cb, 0),
		Deficit:         math.Max(-cb, 0),
	}, nil
}

// AdjustedCB recomputes the raw CB and adjusts it for borrowing repayment,
// banked surplus already applied to the year, and a read-only preview of the
// remaining bank covering the deficit.
func (s *Service) AdjustedCB(ctx context.Context, shipID string, year int) (*AdjustedResult, error) {
	return s.adjusted(ctx, shipID, year, true)
}

// EffectiveBalance is AdjustedCB without the bank preview: the balance still
// open after repayments and actual bank applications.
func (s *Service) EffectiveBalance(ctx context.Context, shipID string, year int) (*AdjustedResult, error) {
	return s.adjusted(ctx, shipID, year, false)
}

func (s *Service) adjusted(ctx context.Context, shipID string, year int, preview bool) (*AdjustedResult, error) {
	if r := ValidateShipYear(shipID, year); r != nil {
		return nil, r
	}

	var result *AdjustedResult
	err := database.WithinShipLock(ctx, s.tx, shipID, func(ctx context.Context) error {
		raw, err := s.computeLocked(ctx, shipID, year)
		if err != nil {
			return err
		}

		var repayment, applied float64
		if s.repayments != nil {
			if repayment, err = s.repayments.Repayment(ctx, shipID, year); err != nil {
				return fmt.Errorf("failed to settle borrowing: %w", err)
			}
		}
		if s.bank != nil {
			if applied, err = s.bank.AppliedTo(ctx, shipID, year); err != nil {
				return fmt.Errorf("failed to read bank applications: %w", err)
			}
		}

		effective := rounding.Sum5(raw.CBValue, -repayment, applied)
		adjusted := effective

		var previewed float64
		if preview && effective < 0 && s.bank != nil {
			total, err := s.bank.TotalBanked(ctx, shipID)
			if err != nil {
				return fmt.Errorf("failed to read banked total: %w", err)
			}
			if total > 0 {
				previewed = math.Min(math.Abs(effective), total)
				adjusted = rounding.Add5(effective, previewed)
			}
		}

		result = &AdjustedResult{
			ShipID:          shipID,
			Year:            year,
			RawCB:           raw.CBValue,
			Repayment:       repayment,
			BankedApplied:   applied,
			EffectiveCB:     effective,
			BankPreview:     rounding.Round5(previewed),
			AdjustedCB:      rounding.Round5(adjusted),
			ActualIntensity: raw.ActualIntensity,
			TargetIntensity: raw.TargetIntensity,
			EnergyScope:     raw.EnergyScope,
			IsCompliant:     adjusted >= 0,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AssessPenalty computes the penalty due on the adjusted CB.
func (s *Service) AssessPenalty(ctx context.Context, shipID string, year, consecutiveYears int) (*PenaltyAssessment, error) {
	if consecutiveYears < 1 {
		consecutiveYears = 1
	}

	adjusted, err := s.AdjustedCB(ctx, shipID, year)
	if err != nil {
		return nil, err
	}

	return &PenaltyAssessment{
		ShipID:           shipID,
		Year:             year,
		AdjustedCB:       adjusted.AdjustedCB,
		ActualIntensity:  adjusted.ActualIntensity,
		ConsecutiveYears: consecutiveYears,
		PenaltyEUR:       calculation.Penalty(adjusted.AdjustedCB, adjusted.ActualIntensity, consecutiveYears),
	}, nil
}

// ListBalances returns the stored balances of a ship, latest year first.
func (s *Service) ListBalances(ctx context.Context, shipID string) ([]ComplianceBalance, error) {
	return s.repo.ListByShip(ctx, shipID)
}
