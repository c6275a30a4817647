package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/observability"
)

// TelemetryWorker logs a counter snapshot on a fixed interval.
type TelemetryWorker struct {
	log            *slog.Logger
	monitoring     *observability.Monitoring
	metricInterval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, monitoring *observability.Monitoring,
	metricInterval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{
		log:            log,
		monitoring:     monitoring,
		metricInterval: metricInterval,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			attrs := make([]any, 0, 14)
			for key, value := range w.monitoring.Snapshot() {
				attrs = append(attrs, key, value)
			}
			w.log.Info("telemetry: chat server stats", attrs...)
		}
	}
}
