package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies discrete listener events delivered to observers
type EventType string

const (
	EventAccountStarted    EventType = "AccountStarted"
	EventNewItemFound      EventType = "NewItemFound"
	EventDispatchSucceeded EventType = "DispatchSucceeded"
	EventDispatchFailed    EventType = "DispatchFailed"
	EventAccountBackoff    EventType = "AccountBackoff"
	EventAccountStopped    EventType = "AccountStopped"
)

// Event is one discrete occurrence in an account's lifecycle. Item is set for
// item-scoped events, Err for failure events.
type Event struct {
	ID        string
	Type      EventType
	AccountID string
	Item      *Item
	Err       string
	Time      time.Time
}

// NewEvent creates an event stamped with a fresh id and the current time
func NewEvent(t EventType, accountID string) Event {
	return Event{
		ID:        "evt-" + uuid.NewString(),
		Type:      t,
		AccountID: accountID,
		Time:      time.Now(),
	}
}
