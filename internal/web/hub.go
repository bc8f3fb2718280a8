package web

import (
	"sync"

	"github.com/smokyabdulrahman/salah-clock/internal/watch"
)

// Hub fans session updates out to stream subscribers. It implements
// watch.Sink and never blocks the session: a subscriber that has not
// consumed its previous update gets the newer one instead.
type Hub struct {
	mu   sync.Mutex
	subs map[chan watch.Update]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan watch.Update]struct{})}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() chan watch.Update {
	ch := make(chan watch.Update, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes ch. It is safe to call more than once.
func (h *Hub) Unsubscribe(ch chan watch.Update) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Send implements watch.Sink.
func (h *Hub) Send(u watch.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		// Full: drop the stale update and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}
