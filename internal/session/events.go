// internal/session/events.go
package session

import "sync"

// EventKind classifies a session event
type EventKind string

const (
	EventMessage EventKind = "message"
	EventState   EventKind = "state"
	EventReset   EventKind = "reset"
	// EventResync replaces events a slow subscriber missed; re-read the
	// session instead of applying deltas.
	EventResync EventKind = "resync"
)

// Event is published on every log append, state change and reset
type Event struct {
	Kind    EventKind `json:"kind"`
	Message *Message  `json:"message,omitempty"`
	State   State     `json:"state"`
}

type subscriber struct {
	ch      chan Event
	lagging bool
}

// collector fans events out to subscribers without blocking the publisher.
// A subscriber whose buffer overflowed gets one EventResync in place of
// everything it missed, including the event that finds room again.
type collector struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscriber
}

func (c *collector) publish(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sub := range c.subs {
		if sub.lagging {
			select {
			case sub.ch <- Event{Kind: EventResync, State: e.State}:
				sub.lagging = false
			default:
			}
			continue
		}
		select {
		case sub.ch <- e:
		default:
			sub.lagging = true
		}
	}
}

func (c *collector) subscribe(buf int) (<-chan Event, func()) {
	ch := make(chan Event, buf)
	c.mu.Lock()
	if c.subs == nil {
		c.subs = make(map[int]*subscriber)
	}
	id := c.next
	c.next++
	c.subs[id] = &subscriber{ch: ch}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}
