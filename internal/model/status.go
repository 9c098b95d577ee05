package model

// ListenerStatus represents the status of an account listener loop
type ListenerStatus string

const (
	// StatusIdle means the listener is waiting for its next scheduled poll
	StatusIdle ListenerStatus = "Idle"

	// StatusPolling means the listener is fetching the account's item list
	StatusPolling ListenerStatus = "Polling"

	// StatusDispatching means the listener is downloading a new item
	StatusDispatching ListenerStatus = "Dispatching"

	// StatusBackoff means the listener is waiting out a failure delay
	StatusBackoff ListenerStatus = "Backoff"

	// StatusStopped means the listener loop has terminated
	StatusStopped ListenerStatus = "Stopped"
)

// String returns the string representation of ListenerStatus
func (ls ListenerStatus) String() string {
	return string(ls)
}

// IsActive returns true if the listener is in a working state
func (ls ListenerStatus) IsActive() bool {
	return ls == StatusPolling || ls == StatusDispatching
}

// IsWaiting returns true if the listener is sleeping between cycles
func (ls ListenerStatus) IsWaiting() bool {
	return ls == StatusIdle || ls == StatusBackoff
}

// IsTerminal returns true if the listener loop has ended
func (ls ListenerStatus) IsTerminal() bool {
	return ls == StatusStopped
}
