package domain

import "github.com/google/uuid"

// PresenceEntry is one (connection, username) pair of the live roster.
// A connection that disconnects before joining never appears here.
type PresenceEntry struct {
	ConnectionID uuid.UUID
	Username     string
}
