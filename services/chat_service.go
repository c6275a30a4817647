// Package services wires the registry, store, and hub into the message and
// session lifecycle: join, post, delete, disconnect.
package services

import (
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/repositories"
)

// AnonymousUser names senders that post before joining, matching the
// behavior clients already rely on.
const AnonymousUser = "Anonymous"

type IChatService interface {
	Join(connectionID uuid.UUID, username string) error
	PostMessage(connectionID uuid.UUID, content string) error
	DeleteMessage(connectionID uuid.UUID, messageID int64) error
	Disconnect(connectionID uuid.UUID)
}

// ChatService is the dispatch core of the server. All mutation of shared
// state flows through here.
//
// The ordering mutex serialises persist-then-broadcast sections so that
// delivery order equals store insertion order: no client can observe
// message N before message M when M's id is smaller.
type ChatService struct {
	ordering     sync.Mutex
	log          *slog.Logger
	registry     contract.IRegistry
	hub          contract.IHub
	repository   repositories.IMessageRepository
	authorizer   *DeletionAuthorizer
	monitoring   *observability.Monitoring
	historyLimit int
	now          func() time.Time
}

func NewChatService(log *slog.Logger, registry contract.IRegistry, hub contract.IHub,
	repository repositories.IMessageRepository, authorizer *DeletionAuthorizer,
	monitoring *observability.Monitoring, historyLimit int, now func() time.Time) *ChatService {
	if historyLimit <= 0 {
		historyLimit = repositories.DefaultHistoryLimit
	}
	if now == nil {
		now = time.Now
	}
	return &ChatService{
		log:          log,
		registry:     registry,
		hub:          hub,
		repository:   repository,
		authorizer:   authorizer,
		monitoring:   monitoring,
		historyLimit: historyLimit,
		now:          now,
	}
}

// Join records the username, announces the arrival to every other
// connection, and unicasts the roster plus recent history to the joiner.
func (s *ChatService) Join(connectionID uuid.UUID, username string) error {
	if username == "" {
		return errors.ErrEmptyUsername
	}

	roster := s.registry.Join(connectionID, username)
	joinedAt := s.now().UTC()

	s.hub.BroadcastOthers(event.UserJoinedEvent{Username: username, Timestamp: joinedAt}, connectionID)
	s.hub.Unicast(event.UserListEvent{
		Users: lo.Map(roster, func(p domain.PresenceEntry, _ int) string { return p.Username }),
	}, connectionID)

	history, err := s.repository.Recent(s.historyLimit)
	if err != nil {
		// The joiner keeps the roster but gets no history; nothing else
		// is affected.
		s.monitoring.StoreErrors.Add(1)
		s.log.Error("History read failed on join", "connection_id", connectionID, "error", err)
		return err
	}
	s.hub.Unicast(event.ChatHistoryEvent{Messages: event.FromMessages(history)}, connectionID)

	s.monitoring.JoinedUsers.Add(1)
	s.log.Info("User joined", "connection_id", connectionID, "username", username)
	return nil
}

// PostMessage persists the message and broadcasts it to every connection.
// On a store failure nothing is broadcast and the sender sees the message
// simply not appear.
func (s *ChatService) PostMessage(connectionID uuid.UUID, content string) error {
	if content == "" {
		return errors.ErrEmptyContent
	}

	author, ok := s.registry.Lookup(connectionID)
	if !ok {
		author = AnonymousUser
	}
	createdAt := s.now().UTC()

	s.ordering.Lock()
	defer s.ordering.Unlock()

	id, err := s.repository.Append(author, content, createdAt)
	if err != nil {
		s.monitoring.StoreErrors.Add(1)
		s.log.Error("Message append failed", "connection_id", connectionID, "error", err)
		return err
	}
	s.monitoring.MessagesStored.Add(1)

	s.hub.BroadcastAll(event.ChatMessageEvent{
		ID:        id,
		Username:  author,
		Content:   &content,
		Timestamp: createdAt,
	})
	return nil
}

// DeleteMessage runs the authorization policy and, on a real transition,
// broadcasts the deletion. Re-deleting an already deleted message is a
// no-op success with no re-broadcast. The two user-visible failures are
// unicast to the requester as error-msg; everything else stays silent.
func (s *ChatService) DeleteMessage(connectionID uuid.UUID, messageID int64) error {
	if err := s.authorizer.Authorize(connectionID, messageID); err != nil {
		if text, visible := errors.UserMessage(err); visible {
			s.hub.Unicast(event.ErrorMsgEvent{Message: text}, connectionID)
			s.log.Info("Deletion rejected",
				"connection_id", connectionID, "message_id", messageID, "reason", err)
			return err
		}
		switch {
		case stderrors.Is(err, errors.ErrNotJoined), stderrors.Is(err, errors.ErrMessageNotFound):
			s.log.Debug("Deletion ignored",
				"connection_id", connectionID, "message_id", messageID, "reason", err)
		default:
			s.monitoring.StoreErrors.Add(1)
			s.log.Error("Deletion lookup failed",
				"connection_id", connectionID, "message_id", messageID, "error", err)
		}
		return err
	}

	s.ordering.Lock()
	defer s.ordering.Unlock()

	existed, changed, err := s.repository.SoftDelete(messageID)
	if err != nil {
		s.monitoring.StoreErrors.Add(1)
		s.log.Error("Soft delete failed", "message_id", messageID, "error", err)
		return err
	}
	if existed && changed {
		s.monitoring.MessagesDeleted.Add(1)
		s.hub.BroadcastAll(event.MessageDeletedEvent{MessageID: messageID})
		s.log.Info("Message deleted", "message_id", messageID, "connection_id", connectionID)
	}
	return nil
}

// Disconnect tears the connection down. Safe to run concurrently with an
// in-flight join or send from the same connection; the final state is
// always "connection gone". A connection that never joined leaves silently.
func (s *ChatService) Disconnect(connectionID uuid.UUID) {
	s.hub.Unregister(connectionID)

	username, ok := s.registry.Remove(connectionID)
	if !ok {
		s.log.Debug("Connection closed before join", "connection_id", connectionID)
		return
	}
	s.hub.BroadcastAll(event.UserLeftEvent{Username: username, Timestamp: s.now().UTC()})
	s.log.Info("User left", "connection_id", connectionID, "username", username)
}
