package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/sprout/internal/api/shared"
	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/platform/logger"
	"github.com/phrazzld/sprout/internal/service/reminder"
	"github.com/phrazzld/sprout/internal/store"
)

// CampaignScheduler schedules and cancels reminder campaigns. Satisfied by
// *reminder.Scheduler.
type CampaignScheduler interface {
	ScheduleCampaign(ctx context.Context, profile *domain.Profile) reminder.ScheduleReport
	CancelCampaign(ctx context.Context, profileID uuid.UUID) error
}

// ReminderHandler handles reminder campaign HTTP requests
type ReminderHandler struct {
	scheduler CampaignScheduler
	profiles  store.ProfileStore
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(scheduler CampaignScheduler, profiles store.ProfileStore) *ReminderHandler {
	return &ReminderHandler{scheduler: scheduler, profiles: profiles}
}

// ScheduleCampaign handles POST /v1/reminders/schedule for the stored profile
func (h *ReminderHandler) ScheduleCampaign(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Load(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}

	report := h.scheduler.ScheduleCampaign(r.Context(), profile)
	if report.Skipped == nil {
		report.ProfileID = profile.ID
		report.Scheduled = []domain.OffsetKind{}
		report.Skipped = map[domain.OffsetKind]reminder.SkipReason{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// CancelCampaign handles DELETE /v1/reminders/{profileID}
func (h *ReminderHandler) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "profileID")
	profileID, err := uuid.Parse(param)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Debug("invalid profile id", slog.String("value", param))
		HandleAPIError(w, r, domain.ErrInvalidID, "")
		return
	}

	if err := h.scheduler.CancelCampaign(r.Context(), profileID); err != nil {
		HandleAPIError(w, r, err, "Failed to cancel reminders")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
