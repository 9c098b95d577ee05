package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ytget/yt-monitor/internal/model"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch1, cancel1 := bus.Subscribe()
	defer cancel1()
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()

	ev := model.NewEvent(model.EventNewItemFound, "a1")
	bus.Publish(ev)

	for _, ch := range []<-chan model.Event{ch1, ch2} {
		select {
		case got := <-ch:
			require.Equal(t, ev.ID, got.ID)
			require.Equal(t, model.EventNewItemFound, got.Type)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	cancel()
	cancel() // second cancel is a no-op

	// Channel is closed after cancel.
	_, open := <-ch
	require.False(t, open)

	// Publishing after cancel must not panic.
	bus.Publish(model.NewEvent(model.EventAccountStopped, "a1"))
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Overflow the buffer; Publish must never block.
		for i := 0; i < DefaultBuffer*2; i++ {
			bus.Publish(model.NewEvent(model.EventNewItemFound, "a1"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// The buffer holds at most DefaultBuffer events.
	count := 0
	for {
		select {
		case <-ch:
			count++
			continue
		default:
		}
		break
	}
	require.Equal(t, DefaultBuffer, count)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()
	ch, _ := bus.Subscribe()

	bus.Close()
	bus.Close() // idempotent

	_, open := <-ch
	require.False(t, open)

	// Subscribe after close returns a closed channel.
	ch2, cancel2 := bus.Subscribe()
	cancel2()
	_, open = <-ch2
	require.False(t, open)
}
