package pooling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fueleu-ledger/compliance-backend/pkg/database"
)

// Repository persists pools together with their members.
type Repository interface {
	// Create stores the pool and its members in one statement batch.
	Create(ctx context.Context, pool *Pool) error
	Get(ctx context.Context, id uuid.UUID) (*Pool, error)
	ListByYear(ctx context.Context, year int) ([]Pool, error)
	// PooledShips returns which of shipIDs are already in a pool for year.
	PooledShips(ctx context.Context, year int, shipIDs []string) ([]string, error)
}

type postgresRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, pool *Pool) error {
	if err := database.Conn(ctx, r.db).Create(pool).Error; err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	return nil
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (*Pool, error) {
	var pool Pool
	err := database.Conn(ctx, r.db).Preload("Members").First(&pool, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	return &pool, nil
}

func (r *postgresRepository) ListByYear(ctx context.Context, year int) ([]Pool, error) {
	var pools []Pool
	query := database.Conn(ctx, r.db).Preload("Members").Order("created_at DESC")
	if year != 0 {
		query = query.Where("year = ?", year)
	}
	if err := query.Find(&pools).Error; err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	return pools, nil
}

func (r *postgresRepository) PooledShips(ctx context.Context, year int, shipIDs []string) ([]string, error) {
	var pooled []string
	err := database.Conn(ctx, r.db).
		Model(&PoolMember{}).
		Joins("JOIN pools ON pools.id = pool_members.pool_id").
		Where("pools.year = ? AND pool_members.ship_id IN ?", year, shipIDs).
		Distinct().
		Pluck("pool_members.ship_id", &pooled).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check pooled ships: %w", err)
	}
	return pooled, nil
}
