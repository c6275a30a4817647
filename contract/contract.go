package contract

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

// EventSink receives outbound events for one consumer. Consume must not
// block; a sink that cannot keep up reports an error and loses the event.
type EventSink interface {
	Consume(e event.Event) error
}

type IRegistry interface {
	Join(connectionID uuid.UUID, username string) []domain.PresenceEntry
	Lookup(connectionID uuid.UUID) (string, bool)
	Remove(connectionID uuid.UUID) (string, bool)
}

type IHub interface {
	Register(connectionID uuid.UUID, sink EventSink)
	Unregister(connectionID uuid.UUID)
	BroadcastAll(e event.Event)
	BroadcastOthers(e event.Event, except uuid.UUID)
	Unicast(e event.Event, connectionID uuid.UUID) bool
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
