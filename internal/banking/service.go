package banking

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/events"
	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/database"
	"fueleu-ledger/compliance-backend/pkg/rounding"
)

// BalanceProvider computes the compliance balance banking decisions use.
type BalanceProvider interface {
	EffectiveBalance(ctx context.Context, shipID string, year int) (*compliance.AdjustedResult, error)
}

// Service is the banking ledger (Article 20(1)).
type Service struct {
	repo     Repository
	balances BalanceProvider
	tx       database.Transactor
	events   events.Publisher
	logger   *zap.Logger
}

// NewService creates a new banking service
func NewService(repo Repository, balances BalanceProvider, tx database.Transactor, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		balances: balances,
		tx:       tx,
		events:   events.Nop{},
		logger:   logger,
	}
}

// SetPublisher sends committed banking movements to p.
func (s *Service) SetPublisher(p events.Publisher) {
	s.events = p
}

// BankSurplus banks part of a positive compliance balance for later years.
// The amount may not exceed the year's balance less what was already banked
// from it.
func (s *Service) BankSurplus(ctx context.Context, shipID string, year int, amount float64) (*BankResult, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return rejectBank(outcome.Invalid(outcome.CodeInvalidAmount, "amount must be positive").With("requested", amount)), nil
	}
	amount = rounding.Round5(amount)

	var result *BankResult
	err := database.WithinShipLock(ctx, s.tx, shipID, func(ctx context.Context) error {
		balance, err := s.balances.EffectiveBalance(ctx, shipID, year)
		if err != nil {
			if r, ok := outcome.As(err); ok {
				result = rejectBank(r)
				return nil
			}
			return err
		}
		cb := balance.AdjustedCB

		if cb <= 0 {
			result = rejectBank(outcome.Conflict(outcome.CodeNoSurplus, "no surplus to bank: compliance balance is %.5f", cb).
				With("cb", cb))
			return nil
		}

		banked, err := s.repo.BankedFromYear(ctx, shipID, year)
		if err != nil {
			return err
		}
		available := rounding.Add5(cb, -banked)

		if amount > available {
			result = rejectBank(outcome.Insufficient(outcome.CodeInsufficientSurplus,
				"requested %.5f exceeds available surplus %.5f", amount, available).
				With("requested", amount).
				With("available", available).
				With("cb", cb))
			return nil
		}

		entry := &BankEntry{ShipID: shipID, Year: year, Amount: amount, InitialAmount: amount}
		if err := s.repo.CreateEntry(ctx, entry); err != nil {
			return err
		}

		result = &BankResult{Success: true, Entry: entry, CB: cb, Available: rounding.Add5(available, -amount)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bank surplus: %w", err)
	}

	if result.Success {
		s.logger.Info("Surplus banked",
			zap.String("ship_id", shipID),
			zap.Int("year", year),
			zap.Float64("amount", amount),
		)
		s.events.Publish(events.Event{
			Type:      events.TypeSurplusBanked,
			ShipIDs:   []string{shipID},
			Year:      year,
			Amounts:   map[string]float64{"amount": amount, "available": result.Available},
			Reference: result.Entry.ID.String(),
		})
	}
	return result, nil
}

// ApplyBanked covers a deficit with banked surplus. Entries are debited
// oldest first within the ship's lock, so the same surplus is never spent
// twice.
func (s *Service) ApplyBanked(ctx context.Context, shipID string, year int, amount float64) (*ApplyResult, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return rejectApply(outcome.Invalid(outcome.CodeInvalidAmount, "amount must be positive").With("requested", amount)), nil
	}
	amount = rounding.Round5(amount)

	var result *ApplyResult
	err := database.WithinShipLock(ctx, s.tx, shipID, func(ctx context.Context) error {
		balance, err := s.balances.EffectiveBalance(ctx, shipID, year)
		if err != nil {
			if r, ok := outcome.As(err); ok {
				result = rejectApply(r)
				return nil
			}
			return err
		}
		cb := balance.AdjustedCB

		if cb >= 0 {
			result = rejectApply(outcome.Conflict(outcome.CodeNoDeficit, "no deficit to cover: compliance balance is %.5f", cb).
				With("cb", cb))
			return nil
		}

		entries, err := s.repo.LockOpenEntries(ctx, shipID)
		if err != nil {
			return err
		}
		amounts := make([]float64, len(entries))
		for i, e := range entries {
			amounts[i] = e.Amount
		}
		totalBanked := rounding.Sum5(amounts...)

		if totalBanked < amount {
			result = rejectApply(outcome.Insufficient(outcome.CodeInsufficientBanked,
				"requested %.5f exceeds banked surplus %.5f", amount, totalBanked).
				With("requested", amount).
				With("available", totalBanked))
			return nil
		}

		applied := rounding.Round5(math.Min(amount, math.Abs(cb)))
		debits, err := s.debit(ctx, entries, applied)
		if err != nil {
			return err
		}

		encoded, err := json.Marshal(debits)
		if err != nil {
			return fmt.Errorf("failed to encode debits: %w", err)
		}
		application := &BankApplication{
			ShipID: shipID,
			Year:   year,
			Amount: applied,
			Debits: datatypes.JSON(encoded),
		}
		if err := s.repo.CreateApplication(ctx, application); err != nil {
			return err
		}

		result = &ApplyResult{
			Success:     true,
			CBBefore:    cb,
			CBAfter:     rounding.Add5(cb, applied),
			Applied:     applied,
			Application: application,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply banked surplus: %w", err)
	}

	if result.Success {
		s.logger.Info("Banked surplus applied",
			zap.String("ship_id", shipID),
			zap.Int("year", year),
			zap.Float64("applied", result.Applied),
			zap.Float64("cb_after", result.CBAfter),
		)
		s.events.Publish(events.Event{
			Type:      events.TypeBankedApplied,
			ShipIDs:   []string{shipID},
			Year:      year,
			Amounts:   map[string]float64{"applied": result.Applied, "cb_before": result.CBBefore, "cb_after": result.CBAfter},
			Reference: result.Application.ID.String(),
		})
	}
	return result, nil
}

// debit consumes amount from entries in order and returns what was taken
// from each.
func (s *Service) debit(ctx context.Context, entries []BankEntry, amount float64) ([]Debit, error) {
	var debits []Debit
	remaining := amount
	for _, entry := range entries {
		if remaining <= 0 {
			break
		}
		take := math.Min(entry.Amount, remaining)
		if err := s.repo.UpdateEntryAmount(ctx, entry.ID, rounding.Add5(entry.Amount, -take)); err != nil {
			return nil, err
		}
		debits = append(debits, Debit{EntryID: entry.ID, Amount: rounding.Round5(take)})
		remaining = rounding.Add5(remaining, -take)
	}
	return debits, nil
}

// GetBalance returns the banked surplus of a ship, newest entries first.
func (s *Service) GetBalance(ctx context.Context, shipID string) (*Balance, error) {
	entries, err := s.repo.ListEntries(ctx, shipID)
	if err != nil {
		return nil, err
	}
	amounts := make([]float64, len(entries))
	for i, e := range entries {
		amounts[i] = e.Amount
	}
	if entries == nil {
		entries = []BankEntry{}
	}
	return &Balance{ShipID: shipID, TotalBanked: rounding.Sum5(amounts...), Entries: entries}, nil
}

// ListApplications returns the bank applications of a ship, newest first.
func (s *Service) ListApplications(ctx context.Context, shipID string) ([]BankApplication, error) {
	return s.repo.ListApplications(ctx, shipID)
}

func rejectBank(r *outcome.Rejection) *BankResult {
	return &BankResult{Rejection: r}
}

func rejectApply(r *outcome.Rejection) *ApplyResult {
	return &ApplyResult{Rejection: r}
}
