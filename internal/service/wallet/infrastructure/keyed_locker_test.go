package infrastructure

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedOwnerLockerSerializesSameOwner(t *testing.T) {
	locker := NewKeyedOwnerLocker()
	ctx := context.Background()

	const workers = 50
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithOwnerLock(ctx, "owner-1", func(ctx context.Context) error {
				// 无保护的读改写：只有串行执行才不会丢更新
				v := counter
				counter = v + 1
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, workers, counter)
}

func TestKeyedOwnerLockerIndependentOwners(t *testing.T) {
	locker := NewKeyedOwnerLocker()
	ctx := context.Background()

	release := make(chan struct{})
	holding := make(chan struct{})
	go func() {
		_ = locker.WithOwnerLock(ctx, "owner-1", func(ctx context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	// owner-1 被长期持锁时，owner-2 不受影响
	err := locker.WithOwnerLock(ctx, "owner-2", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	close(release)
}

func TestKeyedOwnerLockerReclaimsIdleEntries(t *testing.T) {
	locker := NewKeyedOwnerLocker()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		err := locker.WithOwnerLock(ctx, "owner-1", func(ctx context.Context) error { return nil })
		require.NoError(t, err)
	}

	locker.mu.Lock()
	defer locker.mu.Unlock()
	require.Empty(t, locker.locks)
}
