package lock

import (
	"sync"

	"github.com/google/uuid"
)

// ProviderLocks serializes scheduling mutations per provider. Every
// check-then-insert sequence over a provider's windows or appointments runs
// under that provider's lock, so two concurrent bookings cannot both observe
// a free slot and both insert.
type ProviderLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewProviderLocks() *ProviderLocks {
	return &ProviderLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the lock for the given provider and returns the unlock func.
func (l *ProviderLocks) Lock(providerID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[providerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[providerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
