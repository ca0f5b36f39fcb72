// Package observe provides a small latest-value broadcast hub used by the
// state managers. Every successful mutation publishes a fresh snapshot;
// subscribers always observe snapshots in the order mutations were applied,
// though a slow subscriber may skip intermediate ones.
package observe

import "sync"

// Hub broadcasts snapshots of T to subscribers. Each subscriber channel
// holds at most one pending snapshot; publishing replaces an unconsumed
// snapshot so readers always see the freshest state. New subscribers are
// seeded with the last published snapshot.
type Hub[T any] struct {
	mu      sync.Mutex
	subs    map[int]chan T
	nextID  int
	closed  bool
	last    T
	hasLast bool
}

// NewHub creates an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a new subscriber. The returned cancel function removes
// the subscription and closes its channel.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	if h.hasLast {
		ch <- h.last
	}

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers v to every subscriber without blocking.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.last = v
	h.hasLast = true
	for _, ch := range h.subs {
		select {
		case ch <- v:
		default:
			// Stale snapshot pending; replace it.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Close closes all subscriber channels. Further publishes are dropped.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, ch := range h.subs {
		close(ch)
	}
	h.subs = nil
}
