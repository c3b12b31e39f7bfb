package pooling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	pools []Pool
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, pool *Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pool.ID == uuid.Nil {
		pool.ID = uuid.New()
	}
	pool.CreatedAt = time.Now()
	for i := range pool.Members {
		if pool.Members[i].ID == uuid.Nil {
			pool.Members[i].ID = uuid.New()
		}
		pool.Members[i].PoolID = pool.ID
	}

	stored := *pool
	stored.Members = append([]PoolMember(nil), pool.Members...)
	r.pools = append(r.pools, stored)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id uuid.UUID) (*Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.pools {
		if p.ID == id {
			pool := p
			return &pool, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) ListByYear(_ context.Context, year int) ([]Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pools := []Pool{}
	for i := len(r.pools) - 1; i >= 0; i-- {
		if year == 0 || r.pools[i].Year == year {
			pools = append(pools, r.pools[i])
		}
	}
	return pools, nil
}

func (r *memoryRepository) PooledShips(_ context.Context, year int, shipIDs []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(shipIDs))
	for _, id := range shipIDs {
		wanted[id] = true
	}
	var pooled []string
	for _, p := range r.pools {
		if p.Year != year {
			continue
		}
		for _, m := range p.Members {
			if wanted[m.ShipID] {
				pooled = append(pooled, m.ShipID)
				wanted[m.ShipID] = false
			}
		}
	}
	return pooled, nil
}
