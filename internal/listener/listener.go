package listener

import (
	"context"
	"sync"
	"time"

	"github.com/ytget/yt-monitor/internal/dispatch"
	"github.com/ytget/yt-monitor/internal/events"
	"github.com/ytget/yt-monitor/internal/ledger"
	"github.com/ytget/yt-monitor/internal/logger"
	"github.com/ytget/yt-monitor/internal/model"
	"github.com/ytget/yt-monitor/internal/platform"
	"github.com/ytget/yt-monitor/internal/probe"
)

// Deps are the collaborators one listener works against
type Deps struct {
	Prober     probe.Prober
	Dispatcher dispatch.Dispatcher
	Ledger     ledger.Ledger
	Bus        *events.Bus
	Logger     logger.Interface
}

// Options tune the failure backoff
type Options struct {
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

func (o *Options) withDefaults() Options {
	opts := *o
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = DefaultBackoffMax
	}
	return opts
}

// Listener owns one account's polling loop
type Listener struct {
	deps Deps
	opts Options
	log  logger.Interface

	mu      sync.Mutex
	account model.Account
	state   model.ListenerState
	wake    chan struct{}

	// loopCancel interrupts waits and is observed at checkpoints;
	// callCancel additionally aborts an in-flight probe/dispatch call.
	loopCtx    context.Context
	loopCancel context.CancelFunc
	callCtx    context.Context
	callCancel context.CancelFunc

	startOnce    sync.Once
	neverRanOnce sync.Once
	done         chan struct{}
}

// New creates a listener for the account. The loop does not run until Start.
func New(account model.Account, deps Deps, opts Options) *Listener {
	return &Listener{
		deps: deps,
		opts: opts.withDefaults(),
		log:  deps.Logger.With("account", account.ID),
		account: account,
		state: model.ListenerState{
			AccountID: account.ID,
			Status:    model.StatusIdle,
		},
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start launches the polling loop. The first poll runs immediately.
// Subsequent Start calls are no-ops.
func (l *Listener) Start() {
	l.startOnce.Do(func() {
		l.loopCtx, l.loopCancel = context.WithCancel(context.Background())
		l.callCtx, l.callCancel = context.WithCancel(context.Background())

		l.publish(model.NewEvent(model.EventAccountStarted, l.state.AccountID))
		l.log.Info("listener started", "interval", l.Account().Interval)
		go l.run()
	})
}

// Stop requests termination and blocks until the loop reaches Stopped. A
// sleeping loop stops promptly; an in-flight probe or dispatch is allowed to
// finish until ctx expires, after which the call itself is cancelled.
func (l *Listener) Stop(ctx context.Context) {
	if l.loopCancel == nil {
		// Never started.
		l.neverRanOnce.Do(func() {
			l.markStopped()
			close(l.done)
		})
		return
	}
	l.loopCancel()
	select {
	case <-l.done:
	case <-ctx.Done():
		l.callCancel()
		<-l.done
	}
}

// Done is closed once the loop has reached Stopped
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Snapshot returns a copy of the listener's current state
func (l *Listener) Snapshot() model.ListenerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Account returns a copy of the listener's account config
func (l *Listener) Account() model.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.account
}

// UpdateInterval changes the poll interval. A loop sleeping between polls
// recomputes its remaining wait against the new interval.
func (l *Listener) UpdateInterval(interval time.Duration) {
	l.mu.Lock()
	l.account.Interval = interval
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Listener) run() {
	defer close(l.done)
	defer l.markStopped()

	for {
		l.cycle()
		if l.loopCtx.Err() != nil {
			return
		}

		failures, lastErr := l.failureState()
		var wait time.Duration
		if failures > 0 {
			wait = backoffDelay(l.opts.BackoffBase, l.opts.BackoffMax, failures)
			l.setStatus(model.StatusBackoff)
			ev := model.NewEvent(model.EventAccountBackoff, l.state.AccountID)
			ev.Err = lastErr
			l.publish(ev)
			l.log.Warn("entering backoff", "failures", failures, "wait", wait, "error", lastErr)
			if !l.sleep(wait, false) {
				return
			}
		} else {
			wait = l.Account().Interval
			l.setStatus(model.StatusIdle)
			if !l.sleep(wait, true) {
				return
			}
		}
	}
}

// cycle runs one poll and dispatches whatever it found. Stop requests are
// honored between items, never mid-call.
func (l *Listener) cycle() {
	account := l.Account() // config checkpoint: re-read at the start of each cycle

	l.setStatus(model.StatusPolling)
	items, err := l.deps.Prober.Fetch(l.callCtx, account)
	polledAt := time.Now()
	if err != nil {
		l.setState(func(s *model.ListenerState) {
			s.LastPoll = polledAt
			s.Failures++
			s.LastError = err.Error()
		})
		return
	}

	l.setState(func(s *model.ListenerState) {
		s.LastPoll = polledAt
		s.Failures = 0
		s.LastError = ""
	})

	dispatched := 0
	for _, item := range items {
		if l.loopCtx.Err() != nil {
			return
		}
		if account.MaxPerPoll > 0 && dispatched >= account.MaxPerPoll {
			break
		}
		if l.process(account, item) {
			dispatched++
		}
	}
}

// process handles one probed item. Returns true if the item counted against
// the per-poll dispatch cap.
func (l *Listener) process(account model.Account, item model.Item) bool {
	seen, err := l.deps.Ledger.Has(account.ID, item.ID)
	if err != nil {
		l.log.Error("ledger lookup failed", "item", item.ID, "error", err)
		return false
	}
	if seen {
		return false
	}

	// A finished file already in the destination means the item was fetched
	// outside our ledger (or before a ledger reset); record, don't refetch.
	dest := dispatch.DestinationDir(account)
	if exists, err := platform.FileWithIDExists(dest, item.ID); err == nil && exists {
		l.log.Info("file already in destination, marking seen", "item", item.ID)
		l.record(account.ID, item.ID)
		return false
	}

	ev := model.NewEvent(model.EventNewItemFound, account.ID)
	ev.Item = &item
	l.publish(ev)
	l.log.Info("new item found", "item", item.ID, "title", item.Title, "live", item.IsLive)

	l.setStatus(model.StatusDispatching)
	if err := l.deps.Dispatcher.Download(l.callCtx, account, item); err != nil {
		// Not recorded: stays eligible for retry on the next poll.
		ev := model.NewEvent(model.EventDispatchFailed, account.ID)
		ev.Item = &item
		ev.Err = err.Error()
		l.publish(ev)
		l.log.Warn("dispatch failed", "item", item.ID, "error", err)
		return true
	}

	// Record before moving on so a crash between two dispatches never
	// re-downloads the one that already succeeded.
	l.record(account.ID, item.ID)
	l.setState(func(s *model.ListenerState) { s.Dispatched++ })

	ev = model.NewEvent(model.EventDispatchSucceeded, account.ID)
	ev.Item = &item
	l.publish(ev)
	l.log.Info("dispatch succeeded", "item", item.ID)
	return true
}

func (l *Listener) record(accountID, itemID string) {
	if err := l.deps.Ledger.Record(accountID, itemID, time.Now()); err != nil {
		l.log.Error("ledger record failed", "item", itemID, "error", err)
	}
}

// sleep waits for d, returning false if stop was requested. When recompute is
// set, an interval change restarts the wait at newInterval minus the time
// already slept, clamped to zero.
func (l *Listener) sleep(d time.Duration, recompute bool) bool {
	start := time.Now()
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-l.loopCtx.Done():
			return false
		case <-timer.C:
			return true
		case <-l.wake:
			if !recompute {
				continue
			}
			remaining := l.Account().Interval - time.Since(start)
			if remaining < 0 {
				remaining = 0
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(remaining)
		}
	}
}

func (l *Listener) markStopped() {
	l.setStatus(model.StatusStopped)
	l.publish(model.NewEvent(model.EventAccountStopped, l.state.AccountID))
	l.log.Info("listener stopped")
}

func (l *Listener) setStatus(status model.ListenerStatus) {
	l.setState(func(s *model.ListenerState) { s.Status = status })
}

func (l *Listener) setState(mutate func(*model.ListenerState)) {
	l.mu.Lock()
	mutate(&l.state)
	l.mu.Unlock()
}

func (l *Listener) failureState() (int, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Failures, l.state.LastError
}

func (l *Listener) publish(ev model.Event) {
	if l.deps.Bus != nil {
		l.deps.Bus.Publish(ev)
	}
}
