package borrowing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]map[int]BorrowEntry
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{entries: make(map[string]map[int]BorrowEntry)}
}

func (r *memoryRepository) Create(_ context.Context, entry *BorrowEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	years, ok := r.entries[entry.ShipID]
	if !ok {
		years = make(map[int]BorrowEntry)
		r.entries[entry.ShipID] = years
	}
	if _, exists := years[entry.Year]; exists {
		return ErrAlreadyBorrowed
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	years[entry.Year] = *entry
	return nil
}

func (r *memoryRepository) Get(_ context.Context, shipID string, year int) (*BorrowEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[shipID][year]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (r *memoryRepository) GetForUpdate(ctx context.Context, shipID string, year int) (*BorrowEntry, error) {
	return r.Get(ctx, shipID, year)
}

func (r *memoryRepository) MarkRepaid(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, years := range r.entries {
		for year, entry := range years {
			if entry.ID != id {
				continue
			}
			if !entry.Repaid {
				entry.Repaid = true
				entry.Status = StatusRepaid
				entry.RepaidAt = &at
				years[year] = entry
			}
			return nil
		}
	}
	return fmt.Errorf("borrow entry %s not found", id)
}

func (r *memoryRepository) ListByShip(_ context.Context, shipID string) ([]BorrowEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]BorrowEntry, 0, len(r.entries[shipID]))
	for _, entry := range r.entries[shipID] {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Year > entries[j].Year })
	return entries, nil
}
