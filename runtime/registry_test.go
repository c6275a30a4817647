package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
)

func rosterNames(roster []domain.PresenceEntry) []string {
	return lo.Map(roster, func(p domain.PresenceEntry, _ int) string { return p.Username })
}

func Test_Join_Returns_Roster_Including_Joiner(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	alice := uuid.New()
	bob := uuid.New()

	roster := registry.Join(alice, "Alice")
	req.Equal([]string{"Alice"}, rosterNames(roster))

	roster = registry.Join(bob, "Bob")
	req.Equal([]string{"Alice", "Bob"}, rosterNames(roster))
}

func Test_Lookup_Before_And_After_Join(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := uuid.New()

	_, ok := registry.Lookup(id)
	req.False(ok)

	registry.Join(id, "Alice")
	username, ok := registry.Lookup(id)
	req.True(ok)
	req.Equal("Alice", username)
}

func Test_Rejoin_Overwrites_Username(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := uuid.New()

	registry.Join(id, "Alice")
	roster := registry.Join(id, "Alicia")

	req.Equal([]string{"Alicia"}, rosterNames(roster))
	username, ok := registry.Lookup(id)
	req.True(ok)
	req.Equal("Alicia", username)
}

func Test_Remove_Reports_Whether_Connection_Had_Joined(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	joined := uuid.New()
	never := uuid.New()

	registry.Join(joined, "Alice")

	username, ok := registry.Remove(joined)
	req.True(ok)
	req.Equal("Alice", username)

	// Disconnect before join leaves no trace.
	_, ok = registry.Remove(never)
	req.False(ok)

	_, ok = registry.Lookup(joined)
	req.False(ok)
}
