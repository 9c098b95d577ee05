package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ytget/yt-monitor/internal/listener"
	"github.com/ytget/yt-monitor/internal/model"
)

var (
	// ErrAccountExists is returned when adding an id that is already managed
	ErrAccountExists = errors.New("account already exists")

	// ErrAccountNotFound is returned for operations on an unknown id
	ErrAccountNotFound = errors.New("account not found")
)

// Supervisor coordinates all account listeners
type Supervisor struct {
	deps listener.Deps
	opts listener.Options

	mu        sync.Mutex
	accounts  map[string]model.Account
	listeners map[string]*listener.Listener
	running   bool
}

// New creates a supervisor with no accounts
func New(deps listener.Deps, opts listener.Options) *Supervisor {
	return &Supervisor{
		deps:      deps,
		opts:      opts,
		accounts:  make(map[string]model.Account),
		listeners: make(map[string]*listener.Listener),
	}
}

// AddAccount registers an account. If the supervisor is running and the
// account is enabled, its listener starts immediately.
func (s *Supervisor) AddAccount(account model.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAccountExists, account.ID)
	}
	s.accounts[account.ID] = account
	if s.running && account.Enabled {
		s.spawnLocked(account)
	}
	return nil
}

// RemoveAccount stops the account's listener, waits until it reaches
// Stopped, and only then frees the id for reuse.
func (s *Supervisor) RemoveAccount(ctx context.Context, accountID string) error {
	s.mu.Lock()
	if _, ok := s.accounts[accountID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	l := s.listeners[accountID]
	s.mu.Unlock()

	// The id stays reserved in s.accounts while the listener winds down, so
	// a concurrent AddAccount of the same id is rejected until we are done.
	if l != nil {
		l.Stop(ctx)
	}

	s.mu.Lock()
	delete(s.listeners, accountID)
	delete(s.accounts, accountID)
	s.mu.Unlock()
	return nil
}

// SetEnabled enables or disables an account. Disabling stops the listener
// and waits for it; enabling starts one if the supervisor is running.
func (s *Supervisor) SetEnabled(ctx context.Context, accountID string, enabled bool) error {
	s.mu.Lock()
	account, ok := s.accounts[accountID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	account.Enabled = enabled
	s.accounts[accountID] = account

	if enabled {
		if s.running && s.listeners[accountID] == nil {
			s.spawnLocked(account)
		}
		s.mu.Unlock()
		return nil
	}

	l := s.listeners[accountID]
	s.mu.Unlock()

	if l != nil {
		l.Stop(ctx)
		s.mu.Lock()
		delete(s.listeners, accountID)
		s.mu.Unlock()
	}
	return nil
}

// UpdateInterval changes an account's poll interval; a running listener
// observes the change before its next poll.
func (s *Supervisor) UpdateInterval(accountID string, interval time.Duration) error {
	if interval < model.MinInterval {
		return fmt.Errorf("interval %s is below minimum %s", interval, model.MinInterval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	account.Interval = interval
	s.accounts[accountID] = account

	if l := s.listeners[accountID]; l != nil {
		l.UpdateInterval(interval)
	}
	return nil
}

// ClearSeen forgets the account's ledger entries, re-enabling download of
// previously dispatched items.
func (s *Supervisor) ClearSeen(accountID string) error {
	s.mu.Lock()
	_, ok := s.accounts[accountID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	return s.deps.Ledger.Clear(accountID)
}

// Snapshot returns the current state of every account. Accounts without a
// running listener report Stopped.
func (s *Supervisor) Snapshot() map[string]model.ListenerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make(map[string]model.ListenerState, len(s.accounts))
	for id := range s.accounts {
		if l := s.listeners[id]; l != nil {
			states[id] = l.Snapshot()
			continue
		}
		states[id] = model.ListenerState{AccountID: id, Status: model.StatusStopped}
	}
	return states
}

// Accounts returns all managed accounts sorted by id
func (s *Supervisor) Accounts() []model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StartAll starts a listener for every enabled account and marks the
// supervisor running, so later additions start on their own.
func (s *Supervisor) StartAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = true
	for _, account := range s.accounts {
		if account.Enabled && s.listeners[account.ID] == nil {
			s.spawnLocked(account)
		}
	}
}

// StopAll requests every listener to stop and waits for each to confirm.
// When it returns, no listener goroutine is left running.
func (s *Supervisor) StopAll(ctx context.Context) {
	s.mu.Lock()
	s.running = false
	stopping := make([]*listener.Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		stopping = append(stopping, l)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, l := range stopping {
		wg.Add(1)
		go func(l *listener.Listener) {
			defer wg.Done()
			l.Stop(ctx)
		}(l)
	}
	wg.Wait()

	s.mu.Lock()
	s.listeners = make(map[string]*listener.Listener)
	s.mu.Unlock()
}

// Sync reconciles the managed set against a desired account list, typically
// after a config reload. New accounts are added, accounts absent from the
// list are removed, and enabled/interval changes are applied in place.
// Changes to any other field restart the account's listener with the new
// definition. Errors are collected per account; one bad entry does not stop
// the rest of the reconciliation.
func (s *Supervisor) Sync(ctx context.Context, desired []model.Account) []error {
	var errs []error

	desiredByID := make(map[string]model.Account, len(desired))
	for _, account := range desired {
		desiredByID[account.ID] = account
	}

	for _, current := range s.Accounts() {
		if _, ok := desiredByID[current.ID]; ok {
			continue
		}
		if err := s.RemoveAccount(ctx, current.ID); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", current.ID, err))
		}
	}

	for _, want := range desired {
		s.mu.Lock()
		have, exists := s.accounts[want.ID]
		s.mu.Unlock()

		if !exists {
			if err := s.AddAccount(want); err != nil {
				errs = append(errs, fmt.Errorf("add %s: %w", want.ID, err))
			}
			continue
		}
		if have == want {
			continue
		}

		if needsRestart(have, want) {
			if err := s.RemoveAccount(ctx, want.ID); err != nil {
				errs = append(errs, fmt.Errorf("replace %s: %w", want.ID, err))
				continue
			}
			if err := s.AddAccount(want); err != nil {
				errs = append(errs, fmt.Errorf("replace %s: %w", want.ID, err))
			}
			continue
		}

		if have.Interval != want.Interval {
			if err := s.UpdateInterval(want.ID, want.Interval); err != nil {
				errs = append(errs, fmt.Errorf("update %s: %w", want.ID, err))
			}
		}
		if have.Enabled != want.Enabled {
			if err := s.SetEnabled(ctx, want.ID, want.Enabled); err != nil {
				errs = append(errs, fmt.Errorf("update %s: %w", want.ID, err))
			}
		}
	}
	return errs
}

// needsRestart reports whether the change cannot be applied to a running
// listener. Interval and Enabled have dedicated live paths; everything else
// requires tearing the listener down and starting a fresh one.
func needsRestart(have, want model.Account) bool {
	have.Interval, want.Interval = 0, 0
	have.Enabled, want.Enabled = false, false
	return have != want
}

// spawnLocked creates and starts the account's listener. Caller holds s.mu;
// the map guarantees at most one listener per id.
func (s *Supervisor) spawnLocked(account model.Account) {
	l := listener.New(account, s.deps, s.opts)
	s.listeners[account.ID] = l
	l.Start()
}
