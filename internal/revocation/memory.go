package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger is an in-process ledger for tests and single-node setups.
// Entries are never removed, so revocation is monotonic for the process
// lifetime regardless of the retention hint.
type MemoryLedger struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{revoked: make(map[string]time.Time)}
}

// Revoke inserts the jti, keeping the original revocation time on repeats.
func (l *MemoryLedger) Revoke(_ context.Context, jti string, _ time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.revoked[jti]; !ok {
		l.revoked[jti] = time.Now()
	}
	return nil
}

// IsRevoked reports whether the jti has been revoked.
func (l *MemoryLedger) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.revoked[jti]
	return ok, nil
}
