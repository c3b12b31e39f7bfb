package database

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"
)

// Transactor runs ledger work atomically.
//
// WithinShipLocks serializes all work for the given ships: two callers that
// share a ship id never run fn concurrently. Both methods are reentrant; a
// nested call with the context handed to fn joins the outer unit of work and
// skips locks it already holds.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	WithinShipLocks(ctx context.Context, shipIDs []string, fn func(ctx context.Context) error) error
}

// WithinShipLock is WithinShipLocks for a single ship.
func WithinShipLock(ctx context.Context, t Transactor, shipID string, fn func(ctx context.Context) error) error {
	return t.WithinShipLocks(ctx, []string{shipID}, fn)
}

type txKey struct{}

type heldLocksKey struct{}

// WithTx stores a gorm transaction in the context.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// Conn returns the transaction carried by ctx, or db bound to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func heldLocks(ctx context.Context) map[string]struct{} {
	held, _ := ctx.Value(heldLocksKey{}).(map[string]struct{})
	return held
}

// pendingLocks returns the ids not yet held by ctx, deduplicated and sorted so
// every caller acquires locks in the same order.
func pendingLocks(ctx context.Context, shipIDs []string) []string {
	held := heldLocks(ctx)
	seen := make(map[string]struct{}, len(shipIDs))
	pending := make([]string, 0, len(shipIDs))
	for _, id := range shipIDs {
		if _, ok := held[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pending = append(pending, id)
	}
	sort.Strings(pending)
	return pending
}

func withHeldLocks(ctx context.Context, acquired []string) context.Context {
	if len(acquired) == 0 {
		return ctx
	}
	held := heldLocks(ctx)
	next := make(map[string]struct{}, len(held)+len(acquired))
	for id := range held {
		next[id] = struct{}{}
	}
	for _, id := range acquired {
		next[id] = struct{}{}
	}
	return context.WithValue(ctx, heldLocksKey{}, next)
}

// GormTransactor serializes ships with transaction-scoped postgres advisory
// locks, released on commit or rollback.
type GormTransactor struct {
	db *gorm.DB
}

func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

func (t *GormTransactor) WithinShipLocks(ctx context.Context, shipIDs []string, fn func(ctx context.Context) error) error {
	return t.WithinTransaction(ctx, func(ctx context.Context) error {
		pending := pendingLocks(ctx, shipIDs)
		tx := Conn(ctx, t.db)
		for _, id := range pending {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "ship:"+id).Error; err != nil {
				return err
			}
		}
		return fn(withHeldLocks(ctx, pending))
	})
}

// LocalTransactor serializes ships with in-process mutexes. It has no
// transaction of its own; repositories used with it must be atomic per call.
type LocalTransactor struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalTransactor() *LocalTransactor {
	return &LocalTransactor{locks: make(map[string]*sync.Mutex)}
}

func (t *LocalTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (t *LocalTransactor) WithinShipLocks(ctx context.Context, shipIDs []string, fn func(ctx context.Context) error) error {
	pending := pendingLocks(ctx, shipIDs)
	for _, id := range pending {
		lock := t.lockFor(id)
		lock.Lock()
		defer lock.Unlock()
	}
	return fn(withHeldLocks(ctx, pending))
}

func (t *LocalTransactor) lockFor(shipID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[shipID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[shipID] = lock
	}
	return lock
}
