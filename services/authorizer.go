package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chat-relay/contract"
	"chat-relay/errors"
	"chat-relay/repositories"
)

const DefaultDeletionWindow = 5 * time.Minute

// DeletionAuthorizer decides whether a connection may retract a message.
// It is a pure policy layer: it consults the registry and the store but
// mutates nothing. The clock is injected so the window check is testable.
//
// Per message the state machine is Active -> Deleted, terminal; this layer
// guards the only transition.
type DeletionAuthorizer struct {
	log        *slog.Logger
	registry   contract.IRegistry
	repository repositories.IMessageRepository
	window     time.Duration
	now        func() time.Time
}

func NewDeletionAuthorizer(log *slog.Logger, registry contract.IRegistry,
	repository repositories.IMessageRepository, window time.Duration,
	now func() time.Time) *DeletionAuthorizer {
	if window <= 0 {
		window = DefaultDeletionWindow
	}
	if now == nil {
		now = time.Now
	}
	return &DeletionAuthorizer{
		log:        log,
		registry:   registry,
		repository: repository,
		window:     window,
		now:        now,
	}
}

// Authorize returns nil when the requester may delete the message.
//
// ErrNotJoined and ErrMessageNotFound are silent rejections: the caller
// must not surface them to the client. ErrNotAuthor and ErrWindowExpired
// are the two user-visible kinds.
func (a *DeletionAuthorizer) Authorize(requesterID uuid.UUID, messageID int64) error {
	requester, ok := a.registry.Lookup(requesterID)
	if !ok {
		return errors.ErrNotJoined
	}

	author, createdAt, ok, err := a.repository.Describe(messageID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrMessageNotFound
	}

	// Ownership is checked before the window, so deleting someone else's
	// message is always NotAuthor regardless of elapsed time.
	if author != requester {
		return errors.ErrNotAuthor
	}
	if a.now().Sub(createdAt) > a.window {
		return errors.ErrWindowExpired
	}
	return nil
}
