package borrowing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fueleu-ledger/compliance-backend/pkg/database"
)

// ErrAlreadyBorrowed is returned by Create when the ship-year has an entry.
var ErrAlreadyBorrowed = errors.New("borrow entry already exists for ship and year")

// Repository persists borrow entries.
type Repository interface {
	Create(ctx context.Context, entry *BorrowEntry) error
	// Get returns the entry for a ship-year, or nil.
	Get(ctx context.Context, shipID string, year int) (*BorrowEntry, error)
	// GetForUpdate is Get holding a row lock for the surrounding transaction.
	GetForUpdate(ctx context.Context, shipID string, year int) (*BorrowEntry, error)
	MarkRepaid(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByShip(ctx context.Context, shipID string) ([]BorrowEntry, error)
}

type postgresRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, entry *BorrowEntry) error {
	result := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry)
	if result.Error != nil {
		return fmt.Errorf("failed to create borrow entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyBorrowed
	}
	return nil
}

func (r *postgresRepository) Get(ctx context.Context, shipID string, year int) (*BorrowEntry, error) {
	return r.get(database.Conn(ctx, r.db), shipID, year)
}

func (r *postgresRepository) GetForUpdate(ctx context.Context, shipID string, year int) (*BorrowEntry, error) {
	return r.get(database.Conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), shipID, year)
}

func (r *postgresRepository) get(db *gorm.DB, shipID string, year int) (*BorrowEntry, error) {
	var entry BorrowEntry
	err := db.Where("ship_id = ? AND year = ?", shipID, year).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get borrow entry: %w", err)
	}
	return &entry, nil
}

func (r *postgresRepository) MarkRepaid(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := database.Conn(ctx, r.db).
		Model(&BorrowEntry{}).
		Where("id = ? AND repaid = ?", id, false).
		Updates(map[string]any{"repaid": true, "status": StatusRepaid, "repaid_at": at})
	if result.Error != nil {
		return fmt.Errorf("failed to mark borrow entry repaid: %w", result.Error)
	}
	return nil
}

func (r *postgresRepository) ListByShip(ctx context.Context, shipID string) ([]BorrowEntry, error) {
	var entries []BorrowEntry
	if err := database.Conn(ctx, r.db).Where("ship_id = ?", shipID).Order("year DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list borrow entries: %w", err)
	}
	return entries, nil
}
