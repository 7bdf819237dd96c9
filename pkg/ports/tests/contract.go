package tests

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// LockerContractTest is a reusable test suite that verifies if an adapter complies with ports.Locker.
func LockerContractTest(t *testing.T, locker ports.Locker) {
	t.Helper()
	ctx := context.Background()

	// 1. Lock and Unlock
	t.Run("Lock_Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-a", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))

		// The key is free again
		unlock, err = locker.Lock(ctx, "contract-a", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	// 2. Contention: the second caller waits until the first releases
	t.Run("Lock_Contention", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-b", 5*time.Second)
		require.NoError(t, err)

		var acquired atomic.Bool
		done := make(chan struct{})
		go func() {
			defer close(done)
			second, err := locker.Lock(ctx, "contract-b", 5*time.Second)
			if assert.NoError(t, err) {
				acquired.Store(true)
				assert.NoError(t, second(ctx))
			}
		}()

		time.Sleep(50 * time.Millisecond)
		assert.False(t, acquired.Load(), "lock must be exclusive")

		require.NoError(t, unlock(ctx))
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("second locker never acquired the lock")
		}
		assert.True(t, acquired.Load())
	})

	// 3. Cancellation
	t.Run("Lock_ContextCanceled", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-c", 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(cctx, "contract-c", 5*time.Second)
		assert.Error(t, err)
	})
}
