package banking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fueleu-ledger/compliance-backend/pkg/rounding"
)

// memoryRepository keeps entries in insertion order, which is creation order.
type memoryRepository struct {
	mu           sync.RWMutex
	entries      []BankEntry
	applications []BankApplication
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) CreateEntry(_ context.Context, entry *BankEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryRepository) ListEntries(_ context.Context, shipID string) ([]BankEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []BankEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].ShipID == shipID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *memoryRepository) LockOpenEntries(_ context.Context, shipID string) ([]BankEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []BankEntry
	for _, e := range r.entries {
		if e.ShipID == shipID && e.Amount > 0 {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepository) UpdateEntryAmount(_ context.Context, id uuid.UUID, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].Amount = amount
			return nil
		}
	}
	return fmt.Errorf("bank entry %s not found", id)
}

func (r *memoryRepository) TotalBanked(_ context.Context, shipID string) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var amounts []float64
	for _, e := range r.entries {
		if e.ShipID == shipID {
			amounts = append(amounts, e.Amount)
		}
	}
	return rounding.Sum5(amounts...), nil
}

func (r *memoryRepository) BankedFromYear(_ context.Context, shipID string, year int) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var amounts []float64
	for _, e := range r.entries {
		if e.ShipID == shipID && e.Year == year {
			amounts = append(amounts, e.InitialAmount)
		}
	}
	return rounding.Sum5(amounts...), nil
}

func (r *memoryRepository) CreateApplication(_ context.Context, application *BankApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if application.ID == uuid.Nil {
		application.ID = uuid.New()
	}
	application.CreatedAt = time.Now()
	r.applications = append(r.applications, *application)
	return nil
}

func (r *memoryRepository) ListApplications(_ context.Context, shipID string) ([]BankApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []BankApplication
	for i := len(r.applications) - 1; i >= 0; i-- {
		if r.applications[i].ShipID == shipID {
			out = append(out, r.applications[i])
		}
	}
	return out, nil
}

func (r *memoryRepository) AppliedTo(_ context.Context, shipID string, year int) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var amounts []float64
	for _, a := range r.applications {
		if a.ShipID == shipID && a.Year == year {
			amounts = append(amounts, a.Amount)
		}
	}
	return rounding.Sum5(amounts...), nil
}
