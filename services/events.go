// services/events.go
package services

import (
	"sync"
	"time"
)

// Event is a notification pushed to connected clients (XP popups, ticker lines).
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
	At   int64  `json:"at"`
}

// EventHub fans events out to subscribers. Slow subscribers miss events rather
// than blocking the publisher.
type EventHub struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	buffer int
}

func NewEventHub(buffer int) *EventHub {
	if buffer <= 0 {
		buffer = 16
	}
	return &EventHub{subs: map[int]chan Event{}, buffer: buffer}
}

// Subscribe returns a channel of events and a func that unsubscribes and closes it.
func (h *EventHub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

func (h *EventHub) Publish(typ string, data any) {
	ev := Event{Type: typ, Data: data, At: time.Now().UnixMilli()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
