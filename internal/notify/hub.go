// Package notify delivers change events from the gateway to subscribers
// registered against a locator.
package notify

import (
	"sync"

	"github.com/mesh-intelligence/pets/pkg/types"
)

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 16

// Hub fans change events out to subscriptions whose locator overlaps the
// changed locator. Publish never blocks: a subscriber whose buffer is full
// misses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
}

// Subscription receives events for one locator until Cancel.
type Subscription struct {
	hub  *Hub
	loc  types.Locator
	ch   chan types.Change
	once sync.Once
}

var _ types.Subscription = (*Subscription)(nil)

// NewHub creates a hub. A buffer below 1 uses DefaultBuffer.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers loc. The returned channel is closed by Cancel or by
// Hub.Close. Subscribing to a closed hub returns an already-closed
// subscription.
func (h *Hub) Subscribe(loc types.Locator) *Subscription {
	s := &Subscription{hub: h, loc: loc, ch: make(chan types.Change, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Publish delivers c to every overlapping subscription and returns the
// number of subscriptions that received it.
func (h *Hub) Publish(c types.Change) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for s := range h.subs {
		if !c.Locator.Overlaps(s.loc) {
			continue
		}
		select {
		case s.ch <- c:
			delivered++
		default:
		}
	}
	return delivered
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close cancels every subscription. Later subscriptions are born closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		s.once.Do(func() { close(s.ch) })
		delete(h.subs, s)
	}
}

// Locator returns the subscribed locator.
func (s *Subscription) Locator() types.Locator { return s.loc }

// Changes returns the event channel.
func (s *Subscription) Changes() <-chan types.Change { return s.ch }

// Cancel unregisters the subscription and closes its channel. Cancel is
// idempotent.
func (s *Subscription) Cancel() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	delete(s.hub.subs, s)
	s.once.Do(func() { close(s.ch) })
}
