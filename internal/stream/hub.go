package stream

import (
	"log"
	"sync"

	"campus-energy/internal/observability/metrics"
)

// Subscriber is one live push channel tracked by the hub. TrySend must not
// block: it reports false when the channel is not writable so the hub can
// skip it and move on.
type Subscriber interface {
	TrySend(payload []byte) bool
}

// Hub maintains the set of live subscribers and fans identical payloads out
// to all of them. The hub never initiates connections; subscribers are added
// on connect and removed only via OnDisconnect.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[Subscriber]struct{}
	logger      *log.Logger
}

// NewHub constructs a hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		subscribers: make(map[Subscriber]struct{}),
		logger:      logger,
	}
}

// OnConnect adds a subscriber to the set. No handshake payload is sent.
func (h *Hub) OnConnect(sub Subscriber) {
	if h == nil || sub == nil {
		return
	}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()
	metrics.SetSubscribers(count)
	if h.logger != nil {
		h.logger.Printf("stream: subscriber connected, %d live", count)
	}
}

// OnDisconnect removes a subscriber from the set. Idempotent.
func (h *Hub) OnDisconnect(sub Subscriber) {
	if h == nil || sub == nil {
		return
	}
	h.mu.Lock()
	_, known := h.subscribers[sub]
	if known {
		delete(h.subscribers, sub)
	}
	count := len(h.subscribers)
	h.mu.Unlock()
	if !known {
		return
	}
	metrics.SetSubscribers(count)
	if h.logger != nil {
		h.logger.Printf("stream: subscriber disconnected, %d live", count)
	}
}

// Count returns the current subscriber count.
func (h *Hub) Count() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Broadcast delivers payload to every subscriber in the set at the moment
// the call begins. A subscriber whose channel is not writable is skipped,
// not removed; one bad subscriber never blocks delivery to the rest.
func (h *Hub) Broadcast(payload []byte) {
	if h == nil || len(payload) == 0 {
		return
	}
	h.mu.RLock()
	subscribers := make([]Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subscribers = append(subscribers, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subscribers {
		if !sub.TrySend(payload) {
			metrics.ObserveBroadcastDropped()
			if h.logger != nil {
				h.logger.Printf("stream: subscriber not writable, payload skipped")
			}
		}
	}
}
