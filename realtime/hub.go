package realtime

import (
	"log/slog"
	"sync"
)

// Subscriber receives payloads published to topics it subscribed to.
// Deliver must not block: implementations enqueue into a buffered channel
// and report an error on overflow or closed connection. The actual socket
// write happens on the subscriber's own writer goroutine.
type Subscriber interface {
	Deliver(payload []byte) error
}

// Hub maintains the set of live subscriptions per topic and fans published
// payloads out to them. Nothing is persisted and nothing is replayed: a
// subscriber only sees publishes that happen after it subscribed.
//
// Lock order is always hub.mu before topic.mu. The per-topic mutex both
// guards the subscriber set and serializes publishes, which gives every
// subscriber the same per-topic delivery order. Since Deliver is a
// non-blocking enqueue, no socket I/O ever happens under a lock.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]*topic
	log    *slog.Logger
}

type topic struct {
	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{topics: make(map[string]*topic), log: log}
}

// Subscribe adds the subscriber to the topic's set. Subscribing twice is a
// no-op.
func (h *Hub) Subscribe(name string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.topics[name]
	if !ok {
		t = &topic{subs: make(map[Subscriber]struct{})}
		h.topics[name] = t
	}
	t.mu.Lock()
	t.subs[sub] = struct{}{}
	t.mu.Unlock()
}

func (h *Hub) Unsubscribe(name string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(name, sub)
}

// UnsubscribeAll drops the subscriber from every topic. Connection teardown
// calls this on every exit path so no stale reference is retained.
func (h *Hub) UnsubscribeAll(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name := range h.topics {
		h.removeLocked(name, sub)
	}
}

// removeLocked expects h.mu to be held. Empty topics are dropped from the
// map so the hub does not grow with every chat ever visited.
func (h *Hub) removeLocked(name string, sub Subscriber) {
	t, ok := h.topics[name]
	if !ok {
		return
	}
	t.mu.Lock()
	delete(t.subs, sub)
	empty := len(t.subs) == 0
	t.mu.Unlock()
	if empty {
		delete(h.topics, name)
	}
}

// Publish delivers the payload to every current subscriber of the topic.
// Delivery is best-effort per subscriber: one slow or closing connection
// never blocks the others and never surfaces as an error to the publisher.
func (h *Hub) Publish(name string, payload []byte) {
	h.mu.RLock()
	t := h.topics[name]
	h.mu.RUnlock()
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for sub := range t.subs {
		if err := sub.Deliver(payload); err != nil {
			h.log.Debug("dropped payload for subscriber",
				"topic", name, "error", err)
		}
	}
}
