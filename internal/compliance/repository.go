package compliance

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fueleu-ledger/compliance-backend/pkg/database"
)

// Repository persists computed compliance balances.
type Repository interface {
	UpsertBalance(ctx context.Context, balance *ComplianceBalance) error
	GetBalance(ctx context.Context, shipID string, year int) (*ComplianceBalance, error)
	ListByShip(ctx context.Context, shipID string) ([]ComplianceBalance, error)
	ListByYear(ctx context.Context, year int) ([]ComplianceBalance, error)
}

type postgresRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) UpsertBalance(ctx context.Context, balance *ComplianceBalance) error {
	err := database.Conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ship_id"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{"cb_value", "actual_intensity", "target_intensity", "energy_scope", "updated_at"}),
	}).Create(balance).Error
	if err != nil {
		return fmt.Errorf("failed to upsert compliance balance: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetBalance(ctx context.Context, shipID string, year int) (*ComplianceBalance, error) {
	var balance ComplianceBalance
	err := database.Conn(ctx, r.db).Where("ship_id = ? AND year = ?", shipID, year).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance balance: %w", err)
	}
	return &balance, nil
}

func (r *postgresRepository) ListByShip(ctx context.Context, shipID string) ([]ComplianceBalance, error) {
	var balances []ComplianceBalance
	if err := database.Conn(ctx, r.db).Where("ship_id = ?", shipID).Order("year DESC").Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("failed to list compliance balances: %w", err)
	}
	return balances, nil
}

func (r *postgresRepository) ListByYear(ctx context.Context, year int) ([]ComplianceBalance, error) {
	var balances []ComplianceBalance
	if err := database.Conn(ctx, r.db).Where("year = ?", year).Order("ship_id").Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("failed to list compliance balances: %w", err)
	}
	return balances, nil
}
