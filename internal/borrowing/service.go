package borrowing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/compliance/calculation"
	"fueleu-ledger/compliance-backend/internal/events"
	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/database"
	"fueleu-ledger/compliance-backend/pkg/rounding"
)

// BalanceProvider computes the adjusted CB borrowing decisions use.
type BalanceProvider interface {
	AdjustedCB(ctx context.Context, shipID string, year int) (*compliance.AdjustedResult, error)
}

// Service validates and records advance compliance surplus (Article 20(2)).
type Service struct {
	repo     Repository
	ledger   *Ledger
	balances BalanceProvider
	tx       database.Transactor
	events   events.Publisher
	logger   *zap.Logger
}

func NewService(repo Repository, ledger *Ledger, balances BalanceProvider, tx database.Transactor, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledger,
		balances: balances,
		tx:       tx,
		events:   events.Nop{},
		logger:   logger,
	}
}

// SetPublisher sends committed borrowings to p.
func (s *Service) SetPublisher(p events.Publisher) {
	s.events = p
}

// Validate checks whether a ship may borrow for a year: it must not have
// borrowed the year before, must be in deficit, and the deficit must fit
// within 2% of target intensity times energy used.
func (s *Service) Validate(ctx context.Context, shipID string, year int) (*ValidationResult, error) {
	var result *ValidationResult
	err := database.WithinShipLock(ctx, s.tx, shipID, func(ctx context.Context) error {
		var err error
		result, err = s.validateLocked(ctx, shipID, year)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) validateLocked(ctx context.Context, shipID string, year int) (*ValidationResult, error) {
	result := &ValidationResult{ShipID: shipID, Year: year}
	if r := compliance.ValidateShipYear(shipID, year); r != nil {
		return result.reject(r), nil
	}

	previous, err := s.repo.Get(ctx, shipID, year-1)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		return result.reject(outcome.Conflict(outcome.CodeBorrowedLastYear,
			"Cannot borrow for 2 consecutive years (borrowed in %d)", year-1).
			With("previous_year", float64(year-1))), nil
	}

	adjusted, err := s.balances.AdjustedCB(ctx, shipID, year)
	if err != nil {
		if r, ok := outcome.As(err); ok {
			return result.reject(r), nil
		}
		return nil, err
	}
	result.EnergyScope = adjusted.EnergyScope

	if adjusted.AdjustedCB >= 0 {
		return result.reject(outcome.Conflict(outcome.CodeNoDeficitToBorrow,
			"No deficit to borrow against (adjusted CB %.5f)", adjusted.AdjustedCB).
			With("adjusted_cb", adjusted.AdjustedCB)), nil
	}

	maxACS := calculation.MaxBorrowing(year, adjusted.EnergyScope)
	deficit := rounding.Round5(math.Abs(adjusted.AdjustedCB))
	result.MaxAllowedACS = &maxACS
	result.DeficitAmount = &deficit

	if deficit > maxACS {
		return result.reject(outcome.Insufficient(outcome.CodeDeficitExceedsLimit,
			"Deficit (%.5f gCO2eq) exceeds 2%% limit (%.5f gCO2eq)", deficit, maxACS).
			With("deficit", deficit).
			With("max_allowed", maxACS)), nil
	}

	result.CanBorrow = true
	return result, nil
}

func (r *ValidationResult) reject(rejection *outcome.Rejection) *ValidationResult {
	r.CanBorrow = false
	r.Reason = rejection.Message
	r.Rejection = rejection
	return r
}

// Borrow records the ship's current deficit as advance surplus, owed back
// with 10% aggravation next year.
func (s *Service) Borrow(ctx context.Context, shipID string, year int) (*BorrowResult, error) {
	var result *BorrowResult
	err := database.WithinShipLock(ctx, s.tx, shipID, func(ctx context.Context) error {
		validation, err := s.validateLocked(ctx, shipID, year)
		if err != nil {
			return err
		}
		if !validation.CanBorrow {
			result = rejectBorrow(validation.Rejection)
			return nil
		}

		existing, err := s.repo.Get(ctx, shipID, year)
		if err != nil {
			return err
		}
		if !lifecycle.CanTransition(string(existing.CurrentStatus()), string(StatusBorrowed)) {
			result = rejectBorrow(outcome.Conflict(outcome.CodeAlreadyBorrowed, "Already borrowed for %d", year))
			return nil
		}

		amount := *validation.DeficitAmount
		entry := &BorrowEntry{
			ShipID:           shipID,
			Year:             year,
			Amount:           amount,
			AggravatedAmount: calculation.AggravatedACS(amount),
			Status:           StatusBorrowed,
		}
		if err := s.repo.Create(ctx, entry); err != nil {
			if errors.Is(err, ErrAlreadyBorrowed) {
				result = rejectBorrow(outcome.Conflict(outcome.CodeAlreadyBorrowed, "Already borrowed for %d", year))
				return nil
			}
			return err
		}

		result = &BorrowResult{
			Success: true,
			Message: fmt.Sprintf("Successfully borrowed %.5f gCO2eq. Must repay %.5f gCO2eq in %d.",
				entry.Amount, entry.AggravatedAmount, year+1),
			Entry:            entry,
			AggravatedAmount: entry.AggravatedAmount,
			RepaymentYear:    year + 1,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to borrow: %w", err)
	}

	if result.Success {
		s.logger.Info("Advance compliance surplus borrowed",
			zap.String("ship_id", shipID),
			zap.Int("year", year),
			zap.Float64("amount", result.Entry.Amount),
			zap.Float64("aggravated_amount", result.AggravatedAmount),
		)
		s.events.Publish(events.Event{
			Type:      events.TypeSurplusBorrowed,
			ShipIDs:   []string{shipID},
			Year:      year,
			Amounts:   map[string]float64{"amount": result.Entry.Amount, "aggravated_amount": result.AggravatedAmount},
			Reference: result.Entry.ID.String(),
		})
	}
	return result, nil
}

// History returns a ship's borrow entries, most recent year first.
func (s *Service) History(ctx context.Context, shipID string) ([]BorrowEntry, error) {
	return s.ledger.History(ctx, shipID)
}

func rejectBorrow(r *outcome.Rejection) *BorrowResult {
	return &BorrowResult{Message: r.Message, Rejection: r}
}
