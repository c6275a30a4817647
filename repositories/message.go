package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

const (
	messageKeyPrefix = "msg:"
	sequenceKey      = "seq:message"

	// Ids are leased from the sequence in bands; a restart may skip the
	// unused remainder of a band. Visible ordering stays monotonic.
	sequenceBandwidth = 64

	DefaultHistoryLimit = 50
)

// highestKeySuffix sorts after any zero-padded id, so a reverse seek from
// prefix+suffix lands on the most recent message.
const highestKeySuffix = "9999999999999999999"

type IMessageRepository interface {
	Append(author, content string, at time.Time) (int64, error)
	Recent(limit int) ([]domain.Message, error)
	SoftDelete(id int64) (existed, changed bool, err error)
	Describe(id int64) (author string, createdAt time.Time, ok bool, err error)
}

// MessageRepository persists the chat log in BadgerDB.
//
// Keys are formatted as "msg:{id_padded}" with 19-digit zero padding so that
// lexicographical order equals id order. Ids come from a badger.Sequence and
// are strictly increasing across the life of the database.
type MessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("%w: sequence init: %v", apperrors.ErrStore, err)
	}
	return &MessageRepository{db: db, seq: seq, log: log}, nil
}

// Close releases the id sequence lease. Must be called before the database
// is closed.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// record is the persisted form of a message. Content stays a pointer so a
// tombstone survives round trips as null rather than "".
type record struct {
	Author  string  `json:"author"`
	Content *string `json:"content"`
	At      int64   `json:"at"`
}

// Append assigns the next id and writes the message. Nothing is visible to
// readers until the transaction commits, so a message can never be observed
// before its id is durably assigned.
func (m *MessageRepository) Append(author, content string, at time.Time) (int64, error) {
	next, err := m.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("%w: id allocation: %v", apperrors.ErrStore, err)
	}
	// The sequence starts at 0; visible ids start at 1.
	id := int64(next) + 1

	bytes, err := json.Marshal(record{
		Author:  author,
		Content: &content,
		At:      at.UTC().UnixNano(),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: encode message %d: %v", apperrors.ErrStore, id, err)
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(id), bytes)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: append message %d: %v", apperrors.ErrStore, id, err)
	}
	return id, nil
}

// Recent returns up to limit most recently created messages, active or
// tombstoned, in ascending id order. A non-positive limit falls back to
// DefaultHistoryLimit.
func (m *MessageRepository) Recent(limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(messageKeyPrefix)
		seekKey := append([]byte(messageKeyPrefix), []byte(highestKeySuffix)...)

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == limit {
				break
			}
			item := it.Item()
			id, err := idFromKey(item.Key())
			if err != nil {
				return err
			}
			err = item.Value(func(value []byte) error {
				msg, err := decodeRecord(id, value)
				if err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read history: %v", apperrors.ErrStore, err)
	}

	// Collected newest first; history is delivered ascending by id.
	lo.Reverse(messages)
	return messages, nil
}

// SoftDelete sets content to null for the given id. existed reports whether
// the row is there at all; changed reports whether this call performed the
// transition. Deleting an already tombstoned message is a no-op success.
func (m *MessageRepository) SoftDelete(id int64) (existed, changed bool, err error) {
	err = m.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(messageKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true

		var rec record
		err = item.Value(func(value []byte) error {
			return json.Unmarshal(value, &rec)
		})
		if err != nil {
			return err
		}
		if rec.Content == nil {
			return nil
		}

		rec.Content = nil
		bytes, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := txn.Set(messageKey(id), bytes); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, false, fmt.Errorf("%w: soft delete message %d: %v", apperrors.ErrStore, id, err)
	}
	return existed, changed, nil
}

// Describe returns author and creation instant without revealing content.
// ok is false when no such id exists.
func (m *MessageRepository) Describe(id int64) (author string, createdAt time.Time, ok bool, err error) {
	err = m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(messageKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var rec record
		err = item.Value(func(value []byte) error {
			return json.Unmarshal(value, &rec)
		})
		if err != nil {
			return err
		}
		author = rec.Author
		createdAt = time.Unix(0, rec.At).UTC()
		ok = true
		return nil
	})
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("%w: describe message %d: %v", apperrors.ErrStore, id, err)
	}
	return author, createdAt, ok, nil
}

func messageKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%019d", messageKeyPrefix, id))
}

func idFromKey(key []byte) (int64, error) {
	raw := strings.TrimPrefix(string(key), messageKeyPrefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed message key %q: %w", key, err)
	}
	return id, nil
}

func decodeRecord(id int64, value []byte) (domain.Message, error) {
	var rec record
	if err := json.Unmarshal(value, &rec); err != nil {
		return domain.Message{}, fmt.Errorf("decode message %d: %w", id, err)
	}
	return domain.Message{
		ID:        id,
		Author:    rec.Author,
		Content:   rec.Content,
		CreatedAt: time.Unix(0, rec.At).UTC(),
	}, nil
}
