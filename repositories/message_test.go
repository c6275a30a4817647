package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *MessageRepository {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	repository, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func Test_Append_Assigns_Strictly_Increasing_Identifiers(t *testing.T) {
	req := require.New(t)
	repository := newTestRepository(t)
	at := time.Now().UTC()

	var previous int64
	for i := 0; i < 10; i++ {
		id, err := repository.Append("Alice", fmt.Sprintf("message %d", i), at)
		req.NoError(err)
		req.Greater(id, previous)
		previous = id
	}
}

func Test_Recent_Returns_Ascending_Order_With_Limit(t *testing.T) {
	req := require.New(t)
	repository := newTestRepository(t)
	at := time.Now().UTC()

	var ids []int64
	for i := 0; i < 60; i++ {
		id, err := repository.Append("Bob", fmt.Sprintf("message %d", i), at.Add(time.Duration(i)*time.Second))
		req.NoError(err)
		ids = append(ids, id)
	}

	messages, err := repository.Recent(DefaultHistoryLimit)
	req.NoError(err)
	req.Len(messages, DefaultHistoryLimit)

	// The 50 most recent entries, oldest of them first.
	req.Equal(ids[len(ids)-DefaultHistoryLimit], messages[0].ID)
	req.Equal(ids[len(ids)-1], messages[len(messages)-1].ID)
	for i := 1; i < len(messages); i++ {
		req.Greater(messages[i].ID, messages[i-1].ID)
	}
}

func Test_Recent_Defaults_Limit_When_Not_Positive(t *testing.T) {
	req := require.New(t)
	repository := newTestRepository(t)
	at := time.Now().UTC()

	for i := 0; i < DefaultHistoryLimit+5; i++ {
		_, err := repository.Append("Clara", "hello", at)
		req.NoError(err)
	}

	messages, err := repository.Recent(0)
	req.NoError(err)
	req.Len(messages, DefaultHistoryLimit)
}

func Test_SoftDelete_Tombstones_And_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	repository := newTestRepository(t)
	at := time.Now().UTC()

	id, err := repository.Append("Alice", "delete me", at)
	req.NoError(err)

	existed, changed, err := repository.SoftDelete(id)
	req.NoError(err)
	req.True(existed)
	req.True(changed)

	// Second delete is a no-op success, not an error.
	existed, changed, err = repository.SoftDelete(id)
	req.NoError(err)
	req.True(existed)
	req.False(changed)

	messages, err := repository.Recent(10)
	req.NoError(err)
	req.Len(messages, 1)
	req.True(messages[0].Deleted())
	req.Nil(messages[0].Content)
	req.Equal("Alice", messages[0].Author)
}

func Test_SoftDelete_Missing_Identifier(t *testing.T) {
	req := require.New(t)
	repository := newTestRepository(t)

	existed, changed, err := repository.SoftDelete(42)
	req.NoError(err)
	req.False(existed)
	req.False(changed)
}

func Test_Recent_Includes_Tombstones_Among_Active_Messages(t *testing.T) {
	req := require.New(t)
	repository := newTestRepository(t)
	at := time.Now().UTC()

	first, err := repository.Append("Alice", "hi", at)
	req.NoError(err)
	second, err := repository.Append("Bob", "yo", at.Add(time.Second))
	req.NoError(err)

	_, _, err = repository.SoftDelete(first)
	req.NoError(err)

	messages, err := repository.Recent(10)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal(first, messages[0].ID)
	req.Nil(messages[0].Content)
	req.Equal(second, messages[1].ID)
	req.NotNil(messages[1].Content)
	req.Equal("yo", *messages[1].Content)
}

func Test_Describe_Returns_Metadata_Only(t *testing.T) {
	req := require.New(t)
	repository := newTestRepository(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := repository.Append("Alice", "secret", at)
	req.NoError(err)

	author, createdAt, ok, err := repository.Describe(id)
	req.NoError(err)
	req.True(ok)
	req.Equal("Alice", author)
	req.Equal(at, createdAt)

	// Metadata survives the tombstone transition unchanged.
	_, _, err = repository.SoftDelete(id)
	req.NoError(err)
	author, createdAt, ok, err = repository.Describe(id)
	req.NoError(err)
	req.True(ok)
	req.Equal("Alice", author)
	req.Equal(at, createdAt)
}

func Test_Describe_Missing_Identifier(t *testing.T) {
	req := require.New(t)
	repository := newTestRepository(t)

	_, _, ok, err := repository.Describe(999)
	req.NoError(err)
	req.False(ok)
}
