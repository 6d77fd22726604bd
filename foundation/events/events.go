// Package events fans ledger event messages out to registered subscribers,
// such as websocket clients watching mining progress.
package events

import (
	"fmt"
	"sync"
)

// subscriberBuffer is the per-subscriber channel capacity. A message is
// dropped for a subscriber whose buffer is full rather than blocking the
// mining or submission paths.
const subscriberBuffer = 100

// Hub maintains the set of subscriber channels by unique id.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan string
}

// NewHub constructs a hub for publishing and subscribing to events.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]chan string),
	}
}

// Subscribe registers the id and returns the channel events are delivered
// on. Subscribing an existing id returns its current channel.
func (h *Hub) Subscribe(id string) chan string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, exists := h.subscribers[id]; exists {
		return ch
	}

	ch := make(chan string, subscriberBuffer)
	h.subscribers[id] = ch

	return ch
}

// Unsubscribe closes and removes the channel registered for the id.
func (h *Hub) Unsubscribe(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, exists := h.subscribers[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(h.subscribers, id)
	close(ch)

	return nil
}

// Publish delivers the message to every subscriber without blocking.
func (h *Hub) Publish(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- message:
		default:
		}
	}
}

// Shutdown closes and removes every subscriber channel.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
}
