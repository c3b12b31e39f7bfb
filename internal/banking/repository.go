package banking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fueleu-ledger/compliance-backend/pkg/database"
	"fueleu-ledger/compliance-backend/pkg/rounding"
)

// Repository persists bank entries and applications.
type Repository interface {
	CreateEntry(ctx context.Context, entry *BankEntry) error
	ListEntries(ctx context.Context, shipID string) ([]BankEntry, error)
	// LockOpenEntries returns entries with a remaining amount, oldest first,
	// locked until the surrounding transaction ends.
	LockOpenEntries(ctx context.Context, shipID string) ([]BankEntry, error)
	UpdateEntryAmount(ctx context.Context, id uuid.UUID, amount float64) error
	TotalBanked(ctx context.Context, shipID string) (float64, error)
	// BankedFromYear is the surplus ever banked from a year, before debits.
	BankedFromYear(ctx context.Context, shipID string, year int) (float64, error)

	CreateApplication(ctx context.Context, application *BankApplication) error
	ListApplications(ctx context.Context, shipID string) ([]BankApplication, error)
	AppliedTo(ctx context.Context, shipID string, year int) (float64, error)
}

type postgresRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateEntry(ctx context.Context, entry *BankEntry) error {
	if err := database.Conn(ctx, r.db).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create bank entry: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListEntries(ctx context.Context, shipID string) ([]BankEntry, error) {
	var entries []BankEntry
	err := database.Conn(ctx, r.db).
		Where("ship_id = ?", shipID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bank entries: %w", err)
	}
	return entries, nil
}

func (r *postgresRepository) LockOpenEntries(ctx context.Context, shipID string) ([]BankEntry, error) {
	var entries []BankEntry
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("ship_id = ? AND amount > 0", shipID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock bank entries: %w", err)
	}
	return entries, nil
}

func (r *postgresRepository) UpdateEntryAmount(ctx context.Context, id uuid.UUID, amount float64) error {
	err := database.Conn(ctx, r.db).Model(&BankEntry{}).Where("id = ?", id).Update("amount", amount).Error
	if err != nil {
		return fmt.Errorf("failed to debit bank entry: %w", err)
	}
	return nil
}

func (r *postgresRepository) TotalBanked(ctx context.Context, shipID string) (float64, error) {
	return r.sum(ctx, &BankEntry{}, "amount", "ship_id = ?", shipID)
}

func (r *postgresRepository) BankedFromYear(ctx context.Context, shipID string, year int) (float64, error) {
	return r.sum(ctx, &BankEntry{}, "initial_amount", "ship_id = ? AND year = ?", shipID, year)
}

func (r *postgresRepository) CreateApplication(ctx context.Context, application *BankApplication) error {
	if err := database.Conn(ctx, r.db).Create(application).Error; err != nil {
		return fmt.Errorf("failed to record bank application: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListApplications(ctx context.Context, shipID string) ([]BankApplication, error) {
	var applications []BankApplication
	err := database.Conn(ctx, r.db).Where("ship_id = ?", shipID).Order("created_at DESC").Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bank applications: %w", err)
	}
	return applications, nil
}

func (r *postgresRepository) AppliedTo(ctx context.Context, shipID string, year int) (float64, error) {
	return r.sum(ctx, &BankApplication{}, "amount", "ship_id = ? AND year = ?", shipID, year)
}

func (r *postgresRepository) sum(ctx context.Context, model any, column, where string, args ...any) (float64, error) {
	var total float64
	err := database.Conn(ctx, r.db).
		Model(model).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", column)).
		Where(where, args...).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum %s: %w", column, err)
	}
	return rounding.Round5(total), nil
}
