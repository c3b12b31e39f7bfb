package borrowing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/pkg/database"
)

// Ledger tracks borrow entries and their repayment. It has no dependency on
// compliance balances, so the compliance service can consume it directly.
type Ledger struct {
	repo   Repository
	tx     database.Transactor
	logger *zap.Logger
	now    func() time.Time
}

func NewLedger(repo Repository, tx database.Transactor, logger *zap.Logger) *Ledger {
	return &Ledger{repo: repo, tx: tx, logger: logger, now: time.Now}
}

// SettlePreviousYear marks the unpaid entry of year-1 repaid and returns its
// aggravated amount. It returns 0 when nothing is owed or the entry was
// already settled.
func (l *Ledger) SettlePreviousYear(ctx context.Context, shipID string, year int) (float64, error) {
	var owed float64
	err := database.WithinShipLock(ctx, l.tx, shipID, func(ctx context.Context) error {
		entry, err := l.repo.GetForUpdate(ctx, shipID, year-1)
		if err != nil || entry == nil || entry.Repaid {
			return err
		}
		owed, err = l.settle(ctx, entry)
		return err
	})
	if err != nil {
		return 0, err
	}
	return owed, nil
}

// Repayment returns the aggravated amount a ship repays in year for
// borrowing in year-1, settling the entry on first use. Unlike
// SettlePreviousYear it keeps reporting the obligation after settlement so
// every computation of the year's balance deducts it.
func (l *Ledger) Repayment(ctx context.Context, shipID string, year int) (float64, error) {
	var owed float64
	err := database.WithinShipLock(ctx, l.tx, shipID, func(ctx context.Context) error {
		entry, err := l.repo.GetForUpdate(ctx, shipID, year-1)
		if err != nil || entry == nil {
			return err
		}
		if !entry.Repaid {
			if _, err := l.settle(ctx, entry); err != nil {
				return err
			}
		}
		owed = entry.AggravatedAmount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return owed, nil
}

func (l *Ledger) settle(ctx context.Context, entry *BorrowEntry) (float64, error) {
	if _, err := lifecycle.Transition(string(entry.CurrentStatus()), string(StatusRepaid)); err != nil {
		return 0, err
	}
	if err := l.repo.MarkRepaid(ctx, entry.ID, l.now()); err != nil {
		return 0, fmt.Errorf("failed to settle borrowing: %w", err)
	}

	l.logger.Info("Borrowed surplus repaid",
		zap.String("ship_id", entry.ShipID),
		zap.Int("borrow_year", entry.Year),
		zap.Float64("aggravated_amount", entry.AggravatedAmount),
	)
	return entry.AggravatedAmount, nil
}

// History returns a ship's borrow entries, most recent year first.
func (l *Ledger) History(ctx context.Context, shipID string) ([]BorrowEntry, error) {
	return l.repo.ListByShip(ctx, shipID)
}
