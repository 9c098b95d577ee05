package ledger

import (
	"sync"
	"time"
)

// Ledger is the seen-item record consulted around every dispatch decision.
type Ledger interface {
	// Has reports whether the (account, item) pair was already dispatched.
	Has(accountID, itemID string) (bool, error)

	// Record marks the pair as dispatched. Recording an already-present pair
	// is a no-op, not an error.
	Record(accountID, itemID string, seenAt time.Time) error

	// Count returns the number of recorded items for an account.
	Count(accountID string) (int, error)

	// Clear forgets all items for an account, re-enabling their dispatch.
	Clear(accountID string) error

	Close() error
}

// Memory is an in-process Ledger. Used by tests and as the fallback when no
// database path is configured.
type Memory struct {
	mu   sync.RWMutex
	seen map[string]map[string]time.Time
}

// NewMemory creates an empty in-memory ledger
func NewMemory() *Memory {
	return &Memory{seen: make(map[string]map[string]time.Time)}
}

// Has reports whether the pair is recorded
func (m *Memory) Has(accountID, itemID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.seen[accountID][itemID]
	return ok, nil
}

// Record marks the pair as seen; idempotent
func (m *Memory) Record(accountID, itemID string, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, ok := m.seen[accountID]
	if !ok {
		items = make(map[string]time.Time)
		m.seen[accountID] = items
	}
	if _, ok := items[itemID]; !ok {
		items[itemID] = seenAt
	}
	return nil
}

// Count returns the number of items recorded for the account
func (m *Memory) Count(accountID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.seen[accountID]), nil
}

// Clear forgets every item recorded for the account
func (m *Memory) Clear(accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, accountID)
	return nil
}

// Close is a no-op for the in-memory ledger
func (m *Memory) Close() error {
	return nil
}
