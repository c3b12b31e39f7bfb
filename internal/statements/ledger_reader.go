package statements

import (
	"context"
	"sort"

	"fueleu-ledger/compliance-backend/internal/banking"
	"fueleu-ledger/compliance-backend/internal/borrowing"
	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/pooling"
)

// LedgerReader implements Repository on top of the ledger repositories. It
// serves deployments without a SQL connection.
type LedgerReader struct {
	balances  compliance.Repository
	bank      banking.Repository
	borrowing borrowing.Repository
	pools     pooling.Repository
}

func NewLedgerReader(balances compliance.Repository, bank banking.Repository, borrow borrowing.Repository, pools pooling.Repository) *LedgerReader {
	return &LedgerReader{balances: balances, bank: bank, borrowing: borrow, pools: pools}
}

func (r *LedgerReader) Balances(ctx context.Context, shipID string) ([]BalanceLine, error) {
	balances, err := r.balances.ListByShip(ctx, shipID)
	if err != nil {
		return nil, err
	}
	lines := make([]BalanceLine, 0, len(balances))
	for _, b := range balances {
		lines = append(lines, BalanceLine{
			Year:            b.Year,
			CBValue:         b.CBValue,
			ActualIntensity: b.ActualIntensity,
			TargetIntensity: b.TargetIntensity,
			EnergyScope:     b.EnergyScope,
			UpdatedAt:       b.UpdatedAt,
		})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Year < lines[j].Year })
	return lines, nil
}

func (r *LedgerReader) BankEntries(ctx context.Context, shipID string) ([]BankLine, error) {
	entries, err := r.bank.ListEntries(ctx, shipID)
	if err != nil {
		return nil, err
	}
	lines := make([]BankLine, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, BankLine{ID: e.ID, Year: e.Year, InitialAmount: e.InitialAmount, Amount: e.Amount, CreatedAt: e.CreatedAt})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].CreatedAt.Before(lines[j].CreatedAt) })
	return lines, nil
}

func (r *LedgerReader) Applications(ctx context.Context, shipID string) ([]ApplicationLine, error) {
	applications, err := r.bank.ListApplications(ctx, shipID)
	if err != nil {
		return nil, err
	}
	lines := make([]ApplicationLine, 0, len(applications))
	for _, a := range applications {
		lines = append(lines, ApplicationLine{ID: a.ID, Year: a.Year, Amount: a.Amount, CreatedAt: a.CreatedAt})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].CreatedAt.Before(lines[j].CreatedAt) })
	return lines, nil
}

func (r *LedgerReader) Borrowings(ctx context.Context, shipID string) ([]BorrowLine, error) {
	entries, err := r.borrowing.ListByShip(ctx, shipID)
	if err != nil {
		return nil, err
	}
	lines := make([]BorrowLine, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, BorrowLine{
			ID:               e.ID,
			Year:             e.Year,
			Amount:           e.Amount,
			AggravatedAmount: e.AggravatedAmount,
			Status:           string(e.CurrentStatus()),
			RepaidAt:         e.RepaidAt,
			CreatedAt:        e.CreatedAt,
		})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Year < lines[j].Year })
	return lines, nil
}

func (r *LedgerReader) Pools(ctx context.Context, shipID string) ([]PoolLine, error) {
	pools, err := r.pools.ListByYear(ctx, 0)
	if err != nil {
		return nil, err
	}
	lines := []PoolLine{}
	for _, p := range pools {
		for _, m := range p.Members {
			if m.ShipID != shipID {
				continue
			}
			lines = append(lines, PoolLine{PoolID: p.ID, Year: p.Year, CBBefore: m.CBBefore, CBAfter: m.CBAfter, CreatedAt: p.CreatedAt})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Year != lines[j].Year {
			return lines[i].Year < lines[j].Year
		}
		return lines[i].CreatedAt.Before(lines[j].CreatedAt)
	})
	return lines, nil
}
