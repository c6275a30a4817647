package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrStore            = fmt.Errorf("message store failure")
	ErrNotAuthor        = fmt.Errorf("requester is not the author")
	ErrWindowExpired    = fmt.Errorf("deletion window expired")
	ErrNotJoined        = fmt.Errorf("connection never joined")
	ErrMessageNotFound  = fmt.Errorf("no such message")
	ErrEmptyUsername    = fmt.Errorf("empty username")
	ErrEmptyContent     = fmt.Errorf("empty content")
	ErrUnknownEventType = fmt.Errorf("unknown event type")
	ErrSendBufferFull   = fmt.Errorf("connection send buffer full")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)

// UserMessage maps a failure to the text carried by an error-msg event.
// Only the two deletion-authorization kinds are user visible; everything
// else stays internal and the second return is false.
func UserMessage(err error) (string, bool) {
	switch {
	case stderrors.Is(err, ErrNotAuthor):
		return "You can only delete your own messages", true
	case stderrors.Is(err, ErrWindowExpired):
		return "Messages can only be deleted within 5 minutes of sending", true
	}
	return "", false
}
