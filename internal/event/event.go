// Package event carries discrete session events to subscribers such as
// desktop notifications and session hooks
package event

import (
	"sync"
	"time"

	"github.com/ayoisaiah/focusguard/internal/models"
)

// Kind identifies an event.
type Kind string

const (
	PhaseCompleted         Kind = "phaseCompleted"
	SessionCompleted       Kind = "sessionCompleted"
	EmergencyAccessGranted Kind = "emergencyAccessGranted"
)

// Event is published by the timer and the blocking coordinator.
type Event struct {
	Time   time.Time
	Kind   Kind
	TaskID string
	From   models.Phase
	To     models.Phase
	Reason string
}

// Emitter publishes events.
type Emitter interface {
	Publish(e Event)
}

const defaultBuffer = 16

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// that falls behind misses events.
type Bus struct {
	subs   map[int]chan Event
	mu     sync.Mutex
	next   int
	closed bool
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
	}
}

// Subscribe returns a channel of events and a function that cancels the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, defaultBuffer)

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers e to every subscriber that has room for it.
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close closes every subscription.
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
