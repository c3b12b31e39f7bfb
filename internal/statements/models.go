package statements

import (
	"time"

	"github.com/google/uuid"
)

// Format is a statement rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// BalanceLine is the stored compliance balance of one year.
type BalanceLine struct {
	Year            int       `db:"year" json:"year"`
	CBValue         float64   `db:"cb_value" json:"cb_value"`
	ActualIntensity float64   `db:"actual_intensity" json:"actual_intensity"`
	TargetIntensity float64   `db:"target_intensity" json:"target_intensity"`
	EnergyScope     float64   `db:"energy_scope" json:"energy_scope"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// BankLine is one banked surplus and what remains of it.
type BankLine struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Year          int       `db:"year" json:"year"`
	InitialAmount float64   `db:"initial_amount" json:"initial_amount"`
	Amount        float64   `db:"amount" json:"amount"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ApplicationLine is banked surplus applied to a deficit year.
type ApplicationLine struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Year      int       `db:"year" json:"year"`
	Amount    float64   `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BorrowLine is an advance of compliance surplus.
type BorrowLine struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Year             int        `db:"year" json:"year"`
	Amount           float64    `db:"amount" json:"amount"`
	AggravatedAmount float64    `db:"aggravated_amount" json:"aggravated_amount"`
	Status           string     `db:"status" json:"status"`
	RepaidAt         *time.Time `db:"repaid_at" json:"repaid_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// PoolLine is the ship's share of a pool.
type PoolLine struct {
	PoolID    uuid.UUID `db:"pool_id" json:"pool_id"`
	Year      int       `db:"year" json:"year"`
	CBBefore  float64   `db:"cb_before" json:"cb_before"`
	CBAfter   float64   `db:"cb_after" json:"cb_after"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Totals summarises a statement.
type Totals struct {
	ComputedCB           float64 `json:"computed_cb"`
	BankedRemaining      float64 `json:"banked_remaining"`
	BankedApplied        float64 `json:"banked_applied"`
	Borrowed             float64 `json:"borrowed"`
	RepaymentOutstanding float64 `json:"repayment_outstanding"`
	PoolTransfers        float64 `json:"pool_transfers"`
}

// Statement is every ledger movement of one ship.
type Statement struct {
	ShipID       string            `json:"ship_id"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Balances     []BalanceLine     `json:"balances"`
	BankEntries  []BankLine        `json:"bank_entries"`
	Applications []ApplicationLine `json:"applications"`
	Borrowings   []BorrowLine      `json:"borrowings"`
	Pools        []PoolLine        `json:"pools"`
	Totals       Totals            `json:"totals"`
}

// Empty reports whether the ship has no ledger activity at all.
func (s *Statement) Empty() bool {
	return len(s.Balances) == 0 && len(s.BankEntries) == 0 && len(s.Applications) == 0 &&
		len(s.Borrowings) == 0 && len(s.Pools) == 0
}
