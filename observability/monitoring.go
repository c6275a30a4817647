// Package observability aggregates runtime counters for telemetry logging.
package observability

import "sync/atomic"

// Monitoring holds the live counters of the chat server. All fields are
// atomic; the telemetry worker snapshots them on an interval.
type Monitoring struct {
	ActiveConnections atomic.Int64
	JoinedUsers       atomic.Uint64
	MessagesStored    atomic.Uint64
	MessagesDeleted   atomic.Uint64
	EventsDelivered   atomic.Uint64
	DeliveryDrops     atomic.Uint64
	StoreErrors       atomic.Uint64
}

func NewMonitoring() *Monitoring {
	return &Monitoring{}
}

// Snapshot returns the counters as log attributes.
func (m *Monitoring) Snapshot() map[string]any {
	return map[string]any{
		"active_connections": m.ActiveConnections.Load(),
		"joined_users":       m.JoinedUsers.Load(),
		"messages_stored":    m.MessagesStored.Load(),
		"messages_deleted":   m.MessagesDeleted.Load(),
		"events_delivered":   m.EventsDelivered.Load(),
		"delivery_drops":     m.DeliveryDrops.Load(),
		"store_errors":       m.StoreErrors.Load(),
	}
}
