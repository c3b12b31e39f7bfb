package borrowing

import (
	"time"

	"github.com/google/uuid"

	"fueleu-ledger/compliance-backend/internal/outcome"
	"fueleu-ledger/compliance-backend/pkg/workflows"
)

// BorrowStatus is the lifecycle position of a ship-year's advance surplus.
type BorrowStatus string

const (
	StatusNone     BorrowStatus = "NONE"
	StatusBorrowed BorrowStatus = "BORROWED"
	StatusRepaid   BorrowStatus = "REPAID"
)

// lifecycle allows NONE -> BORROWED -> REPAID and nothing else.
var lifecycle = workflows.NewStateMachine(map[string][]string{
	string(StatusNone):     {string(StatusBorrowed)},
	string(StatusBorrowed): {string(StatusRepaid)},
	string(StatusRepaid):   {},
})

// BorrowEntry is advance compliance surplus borrowed by a ship for a year and
// repaid, aggravated, the following year.
type BorrowEntry struct {
	ID               uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShipID           string       `json:"ship_id" gorm:"not null;uniqueIndex:idx_borrow_ship_year"`
	Year             int          `json:"year" gorm:"not null;uniqueIndex:idx_borrow_ship_year"`
	Amount           float64      `json:"amount" gorm:"type:decimal(24,5);not null"`
	AggravatedAmount float64      `json:"aggravated_amount" gorm:"type:decimal(24,5);not null"`
	Status           BorrowStatus `json:"status" gorm:"not null;default:'BORROWED'"`
	Repaid           bool         `json:"repaid" gorm:"not null;default:false"`
	RepaidAt         *time.Time   `json:"repaid_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

func (BorrowEntry) TableName() string { return "borrow_entries" }

// ValidationResult says whether a ship may borrow for a year.
type ValidationResult struct {
	ShipID        string             `json:"ship_id"`
	Year          int                `json:"year"`
	CanBorrow     bool               `json:"can_borrow"`
	Reason        string             `json:"reason,omitempty"`
	Rejection     *outcome.Rejection `json:"rejection,omitempty"`
	MaxAllowedACS *float64           `json:"max_allowed_acs,omitempty"`
	DeficitAmount *float64           `json:"deficit_amount,omitempty"`
	EnergyScope   float64            `json:"-"`
}

// BorrowResult is the outcome of a borrow request.
type BorrowResult struct {
	Success          bool               `json:"success"`
	Message          string             `json:"message"`
	Rejection        *outcome.Rejection `json:"rejection,omitempty"`
	Entry            *BorrowEntry       `json:"entry,omitempty"`
	AggravatedAmount float64            `json:"aggravated_amount,omitempty"`
	RepaymentYear    int                `json:"repayment_year,omitempty"`
}

// BorrowRequest is the body of a borrow call.
type BorrowRequest struct {
	ShipID string `json:"shipId" binding:"required"`
	Year   int    `json:"year" binding:"required"`
}

// CurrentStatus returns the lifecycle status; a nil entry has not borrowed.
func (e *BorrowEntry) CurrentStatus() BorrowStatus {
	switch {
	case e == nil:
		return StatusNone
	case e.Repaid:
		return StatusRepaid
	default:
		return StatusBorrowed
	}
}
