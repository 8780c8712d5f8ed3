package v1

import (
	"io"
	"sync"

	"github.com/gin-gonic/gin"
)

// EventHub fans "state changed" signals out to connected clients. The core
// only guarantees change notifications, not paint timing, so a slow client
// may miss intermediate signals and simply re-reads on the next one.
type EventHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan struct{}]struct{})}
}

func (h *EventHub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub <- struct{}{}:
		default:
		}
	}
}

func (h *EventHub) subscribe() chan struct{} {
	sub := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *EventHub) unsubscribe(sub chan struct{}) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// HandleEvents streams one server-sent event per state change and per
// reconciliation tick. Clients re-fetch the projections they display.
func (h *handlerImpl) HandleEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sub := h.events.subscribe()
	defer h.events.unsubscribe(sub)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-sub:
			c.SSEvent("change", "state")
			return true
		}
	})
}
