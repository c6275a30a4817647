package runtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/observability"
)

// Hub fans events out to live connections. Delivery is best-effort per
// sink: a sink that cannot accept the event loses it and the drop is
// counted, so one slow consumer never stalls the others.
//
// The hub itself gives no ordering guarantee; callers that need delivery
// order to match store order must sequence their calls (see ChatService).
type Hub struct {
	mu         sync.RWMutex
	log        *slog.Logger
	monitoring *observability.Monitoring
	sinks      map[uuid.UUID]contract.EventSink
}

func NewHub(log *slog.Logger, monitoring *observability.Monitoring) *Hub {
	return &Hub{
		log:        log,
		monitoring: monitoring,
		sinks:      make(map[uuid.UUID]contract.EventSink),
	}
}

func (h *Hub) Register(connectionID uuid.UUID, sink contract.EventSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[connectionID] = sink
}

func (h *Hub) Unregister(connectionID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sinks, connectionID)
}

func (h *Hub) BroadcastAll(e event.Event) {
	for id, sink := range h.snapshot() {
		h.deliver(id, sink, e)
	}
}

func (h *Hub) BroadcastOthers(e event.Event, except uuid.UUID) {
	for id, sink := range h.snapshot() {
		if id == except {
			continue
		}
		h.deliver(id, sink, e)
	}
}

// Unicast delivers to exactly one connection. It reports whether the
// connection was still registered.
func (h *Hub) Unicast(e event.Event, connectionID uuid.UUID) bool {
	h.mu.RLock()
	sink, ok := h.sinks[connectionID]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	h.deliver(connectionID, sink, e)
	return true
}

// snapshot copies the sink directory so delivery runs without the lock.
func (h *Hub) snapshot() map[uuid.UUID]contract.EventSink {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sinks := make(map[uuid.UUID]contract.EventSink, len(h.sinks))
	for id, sink := range h.sinks {
		sinks[id] = sink
	}
	return sinks
}

func (h *Hub) deliver(connectionID uuid.UUID, sink contract.EventSink, e event.Event) {
	if err := sink.Consume(e); err != nil {
		h.monitoring.DeliveryDrops.Add(1)
		h.log.Warn("Event dropped for connection",
			"connection_id", connectionID,
			"event_type", e.EventType(),
			"error", err,
		)
		return
	}
	h.monitoring.EventsDelivered.Add(1)
}
