// Package runtime holds the in-memory state of live connections: the
// username registry and the broadcast hub. Nothing here persists; presence
// is lost on restart by design.
package runtime

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"chat-relay/domain"
)

// Registry maps live connections to usernames. It is the only owner of that
// mapping; mutation goes through Join and Remove exclusively so it stays
// serialized and auditable.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]string
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]string),
	}
}

// Join records the mapping and returns the roster snapshot, joiner included.
// A connection joining twice simply overwrites its previous name.
func (r *Registry) Join(connectionID uuid.UUID, username string) []domain.PresenceEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[connectionID] = username

	roster := make([]domain.PresenceEntry, 0, len(r.sessions))
	for id, name := range r.sessions {
		roster = append(roster, domain.PresenceEntry{ConnectionID: id, Username: name})
	}
	sort.Slice(roster, func(i, j int) bool {
		return roster[i].Username < roster[j].Username
	})
	return roster
}

func (r *Registry) Lookup(connectionID uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	username, ok := r.sessions[connectionID]
	return username, ok
}

// Remove deletes the mapping if present. It reports whether a username had
// been associated, so a disconnect before join leaves no trace and triggers
// no departure broadcast.
func (r *Registry) Remove(connectionID uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok := r.sessions[connectionID]
	if ok {
		delete(r.sessions, connectionID)
	}
	return username, ok
}
