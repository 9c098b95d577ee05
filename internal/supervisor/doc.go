package supervisor

// Package supervisor owns the set of account listeners: it starts, stops,
// and reconfigures them, enforces one running listener per account id, and
// aggregates their states into a consistent snapshot for observers. The
// supervisor itself never polls or downloads anything.
