package statements

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository reads the ledger of one ship.
type Repository interface {
	Balances(ctx context.Context, shipID string) ([]BalanceLine, error)
	BankEntries(ctx context.Context, shipID string) ([]BankLine, error)
	Applications(ctx context.Context, shipID string) ([]ApplicationLine, error)
	Borrowings(ctx context.Context, shipID string) ([]BorrowLine, error)
	Pools(ctx context.Context, shipID string) ([]PoolLine, error)
}

// PostgresRepository implements Repository with plain SQL over the ledger tables
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL statement repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Balances(ctx context.Context, shipID string) ([]BalanceLine, error) {
	query := `
		SELECT year, cb_value, actual_intensity, target_intensity, energy_scope, updated_at
		FROM compliance_balances
		WHERE ship_id = $1
		ORDER BY year`

	lines := []BalanceLine{}
	if err := r.db.SelectContext(ctx, &lines, query, shipID); err != nil {
		return nil, fmt.Errorf("failed to read compliance balances: %w", err)
	}
	return lines, nil
}

func (r *PostgresRepository) BankEntries(ctx context.Context, shipID string) ([]BankLine, error) {
	query := `
		SELECT id, year, initial_amount, amount, created_at
		FROM bank_entries
		WHERE ship_id = $1
		ORDER BY created_at, id`

	lines := []BankLine{}
	if err := r.db.SelectContext(ctx, &lines, query, shipID); err != nil {
		return nil, fmt.Errorf("failed to read bank entries: %w", err)
	}
	return lines, nil
}

func (r *PostgresRepository) Applications(ctx context.Context, shipID string) ([]ApplicationLine, error) {
	query := `
		SELECT id, year, amount, created_at
		FROM bank_applications
		WHERE ship_id = $1
		ORDER BY created_at, id`

	lines := []ApplicationLine{}
	if err := r.db.SelectContext(ctx, &lines, query, shipID); err != nil {
		return nil, fmt.Errorf("failed to read bank applications: %w", err)
	}
	return lines, nil
}

func (r *PostgresRepository) Borrowings(ctx context.Context, shipID string) ([]BorrowLine, error) {
	query := `
		SELECT id, year, amount, aggravated_amount, status, repaid_at, created_at
		FROM borrow_entries
		WHERE ship_id = $1
		ORDER BY year`

	lines := []BorrowLine{}
	if err := r.db.SelectContext(ctx, &lines, query, shipID); err != nil {
		return nil, fmt.Errorf("failed to read borrow entries: %w", err)
	}
	return lines, nil
}

func (r *PostgresRepository) Pools(ctx context.Context, shipID string) ([]PoolLine, error) {
	query := `
		SELECT m.pool_id, p.year, m.cb_before, m.cb_after, p.created_at
		FROM pool_members m
		JOIN pools p ON p.id = m.pool_id
		WHERE m.ship_id = $1
		ORDER BY p.year, p.created_at`

	lines := []PoolLine{}
	if err := r.db.SelectContext(ctx, &lines, query, shipID); err != nil {
		return nil, fmt.Errorf("failed to read pool memberships: %w", err)
	}
	return lines, nil
}
