package lock

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLockSerializesPerProvider(t *testing.T) {
	locks := NewProviderLocks()
	providerID := uuid.New()

	const n = 32
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(providerID)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, n, counter)
}

func TestLockIndependentProviders(t *testing.T) {
	locks := NewProviderLocks()

	unlockA := locks.Lock(uuid.New())
	defer unlockA()

	// A second provider's lock is not held by the first.
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock(uuid.New())
		unlockB()
		close(done)
	}()
	<-done
}

func TestLockReentryAfterUnlock(t *testing.T) {
	locks := NewProviderLocks()
	providerID := uuid.New()

	unlock := locks.Lock(providerID)
	unlock()

	unlock = locks.Lock(providerID)
	unlock()
}
