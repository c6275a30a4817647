package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const gcDiscardRatio = 0.5

// BadgerGCWorker runs Badger value-log garbage collection on an interval.
// Badger never reclaims value-log space on its own; a long-lived chat log
// accumulates rewritten entries (tombstone transitions) without it.
type BadgerGCWorker struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewBadgerGCWorker(log *slog.Logger, db *badger.DB, interval time.Duration) *BadgerGCWorker {
	return &BadgerGCWorker{log: log, db: db, interval: interval}
}

func (w *BadgerGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// One call reclaims at most one log file; loop until there is
			// nothing left to rewrite.
			for {
				err := w.db.RunValueLogGC(gcDiscardRatio)
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					w.log.Warn("Badger value-log GC failed", "error", err)
					break
				}
				w.log.Debug("Badger value-log file reclaimed")
			}
		}
	}
}
