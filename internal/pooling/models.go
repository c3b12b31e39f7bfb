package pooling

import (
	"time"

	"github.com/google/uuid"

	"fueleu-ledger/compliance-backend/internal/outcome"
)

// Pool redistributes compliance balance among ships for one year
// (Article 21). It is created with its members and never changed.
type Pool struct {
	ID            uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Year          int          `json:"year" gorm:"not null;index"`
	TotalCBBefore float64      `json:"total_cb_before" gorm:"type:decimal(24,5);not null"`
	TotalCBAfter  float64      `json:"total_cb_after" gorm:"type:decimal(24,5);not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"autoCreateTime"`
	Members       []PoolMember `json:"members" gorm:"foreignKey:PoolID;constraint:OnDelete:CASCADE"`
}

func (Pool) TableName() string { return "pools" }

// PoolMember is a ship's balance before and after pooling.
type PoolMember struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PoolID   uuid.UUID `json:"pool_id" gorm:"type:uuid;not null;index"`
	ShipID   string    `json:"ship_id" gorm:"not null;index"`
	CBBefore float64   `json:"cb_before" gorm:"type:decimal(24,5);not null"`
	CBAfter  float64   `json:"cb_after" gorm:"type:decimal(24,5);not null"`
}

func (PoolMember) TableName() string { return "pool_members" }

// Member is an allocator input.
type Member struct {
	ShipID   string  `json:"shipId"`
	CBBefore float64 `json:"cbBefore"`
}

// AllocatedMember is an allocator output.
type AllocatedMember struct {
	ShipID   string  `json:"ship_id"`
	CBBefore float64 `json:"cb_before"`
	CBAfter  float64 `json:"cb_after"`
}

// ValidationResult is the outcome of the pool-level checks.
type ValidationResult struct {
	IsValid       bool               `json:"is_valid"`
	Message       string             `json:"message,omitempty"`
	Rejection     *outcome.Rejection `json:"rejection,omitempty"`
	TotalCBBefore float64            `json:"total_cb_before"`
}

// Allocation is the result of redistributing balances among members.
type Allocation struct {
	IsValid       bool               `json:"is_valid"`
	Message       string             `json:"message,omitempty"`
	Rejection     *outcome.Rejection `json:"rejection,omitempty"`
	Members       []AllocatedMember  `json:"members,omitempty"`
	TotalCBBefore float64            `json:"total_cb_before"`
	TotalCBAfter  float64            `json:"total_cb_after"`
}

// PoolResult is the outcome of creating a pool.
type PoolResult struct {
	Allocation
	Pool *Pool `json:"pool,omitempty"`
}

// MemberRequest is a pool member in a request. A missing cbBefore is
// resolved from the ship's adjusted compliance balance.
type MemberRequest struct {
	ShipID   string   `json:"shipId" binding:"required"`
	CBBefore *float64 `json:"cbBefore"`
}

// CreatePoolRequest is the body of a create pool call.
type CreatePoolRequest struct {
	Year    int             `json:"year" binding:"required"`
	Members []MemberRequest `json:"members" binding:"required"`
}

// ValidatePoolRequest is the body of a validate call.
type ValidatePoolRequest struct {
	Members []Member `json:"members"`
}
