package listener

// Package listener runs one account's polling loop: probe the account on its
// configured interval, diff the result against the ledger, dispatch new items
// one at a time, and back off exponentially on probe failure. Each listener
// owns its state; other goroutines only ever see value snapshots.
