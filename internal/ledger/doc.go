package ledger

// Package ledger records which (account, item) pairs have already been
// dispatched. It is the single source of truth for "already seen": a pair is
// recorded exactly once, recording an existing pair is a no-op, and all
// operations are safe under concurrent access from many listeners.
