package statements

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/rounding"
)

// Service assembles per-ship ledger statements.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new statement service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Build reads every ledger of shipID. A ship without any activity is
// reported as not found.
func (s *Service) Build(ctx context.Context, shipID string) (*Statement, error) {
	shipID = strings.TrimSpace(shipID)
	if shipID == "" {
		return nil, outcome.Invalid(outcome.CodeInvalidShip, "shipId is required")
	}

	st := &Statement{ShipID: shipID, GeneratedAt: s.now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.Balances, err = s.repo.Balances(gctx, shipID)
		return err
	})
	g.Go(func() (err error) {
		st.BankEntries, err = s.repo.BankEntries(gctx, shipID)
		return err
	})
	g.Go(func() (err error) {
		st.Applications, err = s.repo.Applications(gctx, shipID)
		return err
	})
	g.Go(func() (err error) {
		st.Borrowings, err = s.repo.Borrowings(gctx, shipID)
		return err
	})
	g.Go(func() (err error) {
		st.Pools, err = s.repo.Pools(gctx, shipID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to read ledger for statement", zap.String("ship_id", shipID), zap.Error(err))
		return nil, err
	}

	if st.Empty() {
		return nil, outcome.Missing(outcome.CodeNotFound, "No ledger activity for ship %s", shipID)
	}

	st.Totals = totals(st)
	return st, nil
}

func totals(st *Statement) Totals {
	var t Totals
	for _, b := range st.Balances {
		t.ComputedCB = rounding.Add5(t.ComputedCB, b.CBValue)
	}
	for _, e := range st.BankEntries {
		t.BankedRemaining = rounding.Add5(t.BankedRemaining, e.Amount)
	}
	for _, a := range st.Applications {
		t.BankedApplied = rounding.Add5(t.BankedApplied, a.Amount)
	}
	for _, b := range st.Borrowings {
		t.Borrowed = rounding.Add5(t.Borrowed, b.Amount)
		if b.RepaidAt == nil {
			t.RepaymentOutstanding = rounding.Add5(t.RepaymentOutstanding, b.AggravatedAmount)
		}
	}
	for _, p := range st.Pools {
		t.PoolTransfers = rounding.Add5(t.PoolTransfers, p.CBAfter-p.CBBefore)
	}
	return t
}
