package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/runtime"
)

// fakeRepository serves Describe from a fixed map; the authorizer never
// touches anything else.
type fakeRepository struct {
	metadata map[int64]struct {
		author    string
		createdAt time.Time
	}
	describeErr error
}

func (f *fakeRepository) Append(string, string, time.Time) (int64, error) {
	return 0, fmt.Errorf("not implemented")
}

func (f *fakeRepository) Recent(int) ([]domain.Message, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeRepository) SoftDelete(int64) (bool, bool, error) {
	return false, false, fmt.Errorf("not implemented")
}

func (f *fakeRepository) Describe(id int64) (string, time.Time, bool, error) {
	if f.describeErr != nil {
		return "", time.Time{}, false, f.describeErr
	}
	meta, ok := f.metadata[id]
	if !ok {
		return "", time.Time{}, false, nil
	}
	return meta.author, meta.createdAt, true, nil
}

func Test_Authorize_Deletion_Policy(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := createdAt.Add(time.Minute)

	alice := uuid.New()
	bob := uuid.New()
	stranger := uuid.New()

	registry := runtime.NewRegistry()
	registry.Join(alice, "Alice")
	registry.Join(bob, "Bob")

	repository := &fakeRepository{
		metadata: map[int64]struct {
			author    string
			createdAt time.Time
		}{
			1: {"Alice", createdAt},
		},
	}

	tests := []struct {
		description string
		requester   uuid.UUID
		messageID   int64
		now         time.Time
		wantErr     error
	}{
		{
			"Author within the window may delete",
			alice, 1, now, nil,
		},
		{
			"Author exactly at the window boundary may delete",
			alice, 1, createdAt.Add(DefaultDeletionWindow), nil,
		},
		{
			"Requester that never joined is rejected silently",
			stranger, 1, now, errors.ErrNotJoined,
		},
		{
			"Missing message is a silent no-op",
			alice, 99, now, errors.ErrMessageNotFound,
		},
		{
			"Non-author is rejected regardless of elapsed time",
			bob, 1, createdAt.Add(48 * time.Hour), errors.ErrNotAuthor,
		},
		{
			"Author past the window is rejected",
			alice, 1, createdAt.Add(DefaultDeletionWindow + time.Second), errors.ErrWindowExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			authorizer := NewDeletionAuthorizer(logs.GetLoggerFromString("ERROR"),
				registry, repository, DefaultDeletionWindow,
				func() time.Time { return tt.now })

			err := authorizer.Authorize(tt.requester, tt.messageID)
			if tt.wantErr == nil {
				req.NoError(err)
				return
			}
			req.ErrorIs(err, tt.wantErr)
		})
	}
}

func Test_Authorize_Propagates_Store_Failure(t *testing.T) {
	req := require.New(t)
	alice := uuid.New()

	registry := runtime.NewRegistry()
	registry.Join(alice, "Alice")

	repository := &fakeRepository{describeErr: fmt.Errorf("%w: disk gone", errors.ErrStore)}
	authorizer := NewDeletionAuthorizer(logs.GetLoggerFromString("ERROR"),
		registry, repository, DefaultDeletionWindow, time.Now)

	err := authorizer.Authorize(alice, 1)
	req.ErrorIs(err, errors.ErrStore)
}
