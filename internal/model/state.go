package model

import "time"

// ListenerState is a point-in-time view of one account's listener. It is
// mutated only by the owning listener goroutine and handed to observers as a
// value copy, never as a live reference.
type ListenerState struct {
	AccountID  string
	Status     ListenerStatus
	LastPoll   time.Time
	LastError  string
	Failures   int // consecutive probe failures
	Dispatched int // successful dispatches over the listener's lifetime
}
