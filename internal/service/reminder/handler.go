package reminder

import (
	"context"
	"log/slog"

	"github.com/phrazzld/sprout/internal/events"
	"github.com/phrazzld/sprout/internal/platform/logger"
)

// ProfileEventHandler keeps campaigns in step with saved profiles.
type ProfileEventHandler struct {
	scheduler *Scheduler
	logger    *slog.Logger
}

var _ events.EventHandler = (*ProfileEventHandler)(nil)

// NewProfileEventHandler creates a handler for profile events.
func NewProfileEventHandler(scheduler *Scheduler, l *slog.Logger) *ProfileEventHandler {
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}
	return &ProfileEventHandler{
		scheduler: scheduler,
		logger:    l.With(slog.String("component", "reminder_event_handler")),
	}
}

// HandleEvent implements events.EventHandler. Events other than
// profile.updated are ignored.
func (h *ProfileEventHandler) HandleEvent(ctx context.Context, event *events.ProfileEvent) error {
	if event == nil || event.Type != events.ProfileUpdated {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, h.logger)

	profile, err := event.Profile()
	if err != nil {
		log.Error("unreadable profile event",
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
		return err
	}

	return h.scheduler.HandleProfileUpdate(ctx, profile)
}
