package compliance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryKey struct {
	shipID string
	year   int
}

type memoryRepository struct {
	mu       sync.RWMutex
	balances map[memoryKey]ComplianceBalance
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{balances: make(map[memoryKey]ComplianceBalance)}
}

func (r *memoryRepository) UpsertBalance(_ context.Context, balance *ComplianceBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memoryKey{balance.ShipID, balance.Year}
	now := time.Now()
	if existing, ok := r.balances[key]; ok {
		balance.ID = existing.ID
		balance.CreatedAt = existing.CreatedAt
	} else {
		if balance.ID == uuid.Nil {
			balance.ID = uuid.New()
		}
		balance.CreatedAt = now
	}
	balance.UpdatedAt = now
	r.balances[key] = *balance
	return nil
}

func (r *memoryRepository) GetBalance(_ context.Context, shipID string, year int) (*ComplianceBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	balance, ok := r.balances[memoryKey{shipID, year}]
	if !ok {
		return nil, nil
	}
	return &balance, nil
}

func (r *memoryRepository) ListByShip(_ context.Context, shipID string) ([]ComplianceBalance, error) {
	return r.filter(func(b ComplianceBalance) bool { return b.ShipID == shipID }, func(a, b ComplianceBalance) bool {
		return a.Year > b.Year
	}), nil
}

func (r *memoryRepository) ListByYear(_ context.Context, year int) ([]ComplianceBalance, error) {
	return r.filter(func(b ComplianceBalance) bool { return b.Year == year }, func(a, b ComplianceBalance) bool {
		return a.ShipID < b.ShipID
	}), nil
}

func (r *memoryRepository) filter(keep func(ComplianceBalance) bool, less func(a, b ComplianceBalance) bool) []ComplianceBalance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ComplianceBalance
	for _, b := range r.balances {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
