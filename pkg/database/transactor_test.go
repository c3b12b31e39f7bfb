package database

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingLocksSortsAndSkipsHeld(t *testing.T) {
	ctx := withHeldLocks(context.Background(), []string{"S2"})

	assert.Equal(t, []string{"S1", "S3"}, pendingLocks(ctx, []string{"S3", "S2", "S1", "S3"}))
	assert.Empty(t, pendingLocks(ctx, []string{"S2"}))
}

func TestLocalTransactorIsReentrant(t *testing.T) {
	tr := NewLocalTransactor()
	ctx := context.Background()

	var inner bool
	err := WithinShipLock(ctx, tr, "S1", func(ctx context.Context) error {
		return tr.WithinShipLocks(ctx, []string{"S1", "S2"}, func(ctx context.Context) error {
			return WithinShipLock(ctx, tr, "S2", func(ctx context.Context) error {
				inner = true
				return nil
			})
		})
	})

	require.NoError(t, err)
	assert.True(t, inner)
}

func TestLocalTransactorSerializesSameShip(t *testing.T) {
	tr := NewLocalTransactor()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = WithinShipLock(ctx, tr, "S1", func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestLocalTransactorPropagatesErrors(t *testing.T) {
	tr := NewLocalTransactor()
	err := tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}
