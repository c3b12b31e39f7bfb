package banking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"fueleu-ledger/compliance-backend/internal/outcome"
)

// BankEntry is surplus banked by a ship from one reporting year. Amount is
// what is still available; it only decreases, through applications.
type BankEntry struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShipID        string    `json:"ship_id" gorm:"not null;index:idx_bank_ship_created"`
	Year          int       `json:"year" gorm:"not null;index"`
	Amount        float64   `json:"amount" gorm:"type:decimal(24,5);not null"`
	InitialAmount float64   `json:"initial_amount" gorm:"type:decimal(24,5);not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_bank_ship_created"`
}

func (BankEntry) TableName() string { return "bank_entries" }

// Debit is the part of one entry consumed by an application.
type Debit struct {
	EntryID uuid.UUID `json:"entry_id"`
	Amount  float64   `json:"amount"`
}

// BankApplication records banked surplus applied to a deficit year.
type BankApplication struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShipID    string         `json:"ship_id" gorm:"not null;index:idx_application_ship_year"`
	Year      int            `json:"year" gorm:"not null;index:idx_application_ship_year"`
	Amount    float64        `json:"amount" gorm:"type:decimal(24,5);not null"`
	Debits    datatypes.JSON `json:"debits" gorm:"default:'[]'"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

func (BankApplication) TableName() string { return "bank_applications" }

// BankRequest is the body of bank and apply calls.
type BankRequest struct {
	ShipID string  `json:"shipId" binding:"required"`
	Year   int     `json:"year" binding:"required"`
	Amount float64 `json:"amount"`
}

// BankResult is the outcome of banking surplus.
type BankResult struct {
	Success   bool               `json:"success"`
	Rejection *outcome.Rejection `json:"rejection,omitempty"`
	Entry     *BankEntry         `json:"entry,omitempty"`
	CB        float64            `json:"cb"`
	Available float64            `json:"available"`
}

// ApplyResult is the outcome of applying banked surplus to a deficit.
type ApplyResult struct {
	Success     bool               `json:"success"`
	Rejection   *outcome.Rejection `json:"rejection,omitempty"`
	CBBefore    float64            `json:"cb_before"`
	CBAfter     float64            `json:"cb_after"`
	Applied     float64            `json:"applied"`
	Application *BankApplication   `json:"application,omitempty"`
}

// Balance is the banked surplus of a ship.
type Balance struct {
	ShipID      string      `json:"ship_id"`
	TotalBanked float64     `json:"total_banked"`
	Entries     []BankEntry `json:"entries"`
}
