// Package events delivers discrete listener events to observers. Observers
// subscribe for a channel; publishing never blocks a listener, so a slow
// observer drops events instead of stalling polls.
package events

import (
	"sync"

	"github.com/ytget/yt-monitor/internal/model"
)

// DefaultBuffer is the subscription channel capacity used by Subscribe
const DefaultBuffer = 64

// Bus fans events out to all current subscribers
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan model.Event
	nextID int
	closed bool
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan model.Event)}
}

// Subscribe registers an observer. The returned cancel func removes the
// subscription and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe() (<-chan model.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan model.Event, DefaultBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking. Events to
// a full subscription are dropped.
func (b *Bus) Publish(ev model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close shuts the bus down and closes all subscription channels
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
