// Package event defines the closed set of server-to-client notifications.
// Every event travels as a JSON envelope {"type": ..., "payload": ...};
// consumers switch on the type tag.
package event

import (
	"time"

	"github.com/samber/lo"

	"chat-relay/domain"
)

type Type string

const (
	UserJoined     Type = "user-joined"
	UserLeft       Type = "user-left"
	UserList       Type = "user-list"
	ChatMessage    Type = "chat-message"
	ChatHistory    Type = "chat-history"
	MessageDeleted Type = "message-deleted"
	ErrorMsg       Type = "error-msg"
)

// Event is one outbound notification. The set of implementations is closed;
// adding a variant means adding a type constant and a payload struct here.
type Event interface {
	EventType() Type
}

// Envelope is the wire form of an event.
type Envelope struct {
	Type    Type  `json:"type"`
	Payload Event `json:"payload"`
}

// Wrap prepares an event for serialisation.
func Wrap(e Event) Envelope {
	return Envelope{Type: e.EventType(), Payload: e}
}

type UserJoinedEvent struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

func (UserJoinedEvent) EventType() Type { return UserJoined }

type UserLeftEvent struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

func (UserLeftEvent) EventType() Type { return UserLeft }

type UserListEvent struct {
	Users []string `json:"users"`
}

func (UserListEvent) EventType() Type { return UserList }

// ChatMessageEvent carries one log entry. Content is null for entries
// already tombstoned before delivery, which can only happen in history.
type ChatMessageEvent struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Content   *string   `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (ChatMessageEvent) EventType() Type { return ChatMessage }

// ChatHistoryEvent lists recent messages in ascending id order.
type ChatHistoryEvent struct {
	Messages []ChatMessageEvent `json:"messages"`
}

func (ChatHistoryEvent) EventType() Type { return ChatHistory }

type MessageDeletedEvent struct {
	MessageID int64 `json:"messageId"`
}

func (MessageDeletedEvent) EventType() Type { return MessageDeleted }

// ErrorMsgEvent is only ever unicast to the requester.
type ErrorMsgEvent struct {
	Message string `json:"message"`
}

func (ErrorMsgEvent) EventType() Type { return ErrorMsg }

// FromMessage converts a stored message into its outbound form.
func FromMessage(m domain.Message) ChatMessageEvent {
	return ChatMessageEvent{
		ID:        m.ID,
		Username:  m.Author,
		Content:   m.Content,
		Timestamp: m.CreatedAt,
	}
}

// FromMessages converts a history slice, preserving order.
func FromMessages(messages []domain.Message) []ChatMessageEvent {
	return lo.Map(messages, func(item domain.Message, _ int) ChatMessageEvent {
		return FromMessage(item)
	})
}
