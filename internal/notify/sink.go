package notify

import (
	"context"
	"log/slog"

	"github.com/phrazzld/sprout/internal/domain"
)

// LogSink delivers reminders by logging them. Used when no push channel is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink writing to l.
func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = slog.Default()
	}
	return &LogSink{logger: l.With(slog.String("component", "reminder_sink"))}
}

// Deliver implements Sink.
func (s *LogSink) Deliver(ctx context.Context, point domain.CampaignPoint) error {
	s.logger.InfoContext(ctx, "reminder delivered",
		slog.String("identity", point.Identity()),
		slog.String("title", point.Title),
		slog.String("body", point.Body),
		slog.Time("fire_at", point.FireAt))
	return nil
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, point domain.CampaignPoint) error

// Deliver implements Sink.
func (f SinkFunc) Deliver(ctx context.Context, point domain.CampaignPoint) error {
	return f(ctx, point)
}
