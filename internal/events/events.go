// Package events streams committed ledger movements to websocket clients.
package events

import (
	"sync"
	"time"
)

// Type names a ledger movement.
type Type string

const (
	TypeSurplusBanked   Type = "SURPLUS_BANKED"
	TypeBankedApplied   Type = "BANKED_APPLIED"
	TypeSurplusBorrowed Type = "SURPLUS_BORROWED"
	TypePoolCreated     Type = "POOL_CREATED"
	// TypeSubscribe is sent by clients to replace their ship filter.
	TypeSubscribe Type = "SUBSCRIBE"
	TypeStatus    Type = "STATUS"
)

// Event is one committed ledger movement. ShipIDs lists every ship the
// movement touched; pools touch several.
type Event struct {
	Type      Type               `json:"type"`
	ShipIDs   []string           `json:"ship_ids,omitempty"`
	Year      int                `json:"year,omitempty"`
	Amounts   map[string]float64 `json:"amounts,omitempty"`
	Reference string             `json:"reference,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Publisher receives events after the ledger change is committed.
type Publisher interface {
	Publish(event Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
