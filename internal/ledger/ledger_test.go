package ledger

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ledgers under test; constructors run per test so state never leaks
func openLedgers(t *testing.T) map[string]Ledger {
	t.Helper()

	sq, err := NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Ledger{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestLedger_HasAndRecord(t *testing.T) {
	for name, l := range openLedgers(t) {
		t.Run(name, func(t *testing.T) {
			seen, err := l.Has("a1", "v1")
			require.NoError(t, err)
			require.False(t, seen, "fresh ledger should not contain (a1, v1)")

			require.NoError(t, l.Record("a1", "v1", time.Now()))

			seen, err = l.Has("a1", "v1")
			require.NoError(t, err)
			require.True(t, seen)

			// Same item id under another account is a distinct pair.
			seen, err = l.Has("a2", "v1")
			require.NoError(t, err)
			require.False(t, seen)
		})
	}
}

func TestLedger_RecordIsIdempotent(t *testing.T) {
	for name, l := range openLedgers(t) {
		t.Run(name, func(t *testing.T) {
			first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			require.NoError(t, l.Record("a1", "v1", first))
			require.NoError(t, l.Record("a1", "v1", first.Add(time.Hour)))

			n, err := l.Count("a1")
			require.NoError(t, err)
			require.Equal(t, 1, n)
		})
	}
}

func TestLedger_Clear(t *testing.T) {
	for name, l := range openLedgers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, l.Record("a1", "v1", time.Now()))
			require.NoError(t, l.Record("a1", "v2", time.Now()))
			require.NoError(t, l.Record("a2", "v1", time.Now()))

			require.NoError(t, l.Clear("a1"))

			n, err := l.Count("a1")
			require.NoError(t, err)
			require.Equal(t, 0, n)

			// Other accounts keep their records.
			seen, err := l.Has("a2", "v1")
			require.NoError(t, err)
			require.True(t, seen)
		})
	}
}

func TestLedger_ConcurrentAccess(t *testing.T) {
	for name, l := range openLedgers(t) {
		t.Run(name, func(t *testing.T) {
			const workers = 8
			const items = 25

			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					account := fmt.Sprintf("acc-%d", w%2)
					for i := 0; i < items; i++ {
						item := fmt.Sprintf("item-%d", i)
						if err := l.Record(account, item, time.Now()); err != nil {
							t.Errorf("record: %v", err)
							return
						}
						if _, err := l.Has(account, item); err != nil {
							t.Errorf("has: %v", err)
							return
						}
					}
				}(w)
			}
			wg.Wait()

			// Two accounts were written; every item recorded once each.
			for _, account := range []string{"acc-0", "acc-1"} {
				n, err := l.Count(account)
				require.NoError(t, err)
				require.Equal(t, items, n)
			}
		})
	}
}
