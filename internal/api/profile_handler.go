package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/sprout/internal/api/shared"
	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/domain/lifecycle"
	"github.com/phrazzld/sprout/internal/events"
	"github.com/phrazzld/sprout/internal/platform/logger"
	"github.com/phrazzld/sprout/internal/store"
)

// CampaignCanceller retires a profile's reminder campaign.
type CampaignCanceller interface {
	CancelCampaign(ctx context.Context, profileID uuid.UUID) error
}

// ProfileLocker serializes profile writes with auto-update passes.
// Satisfied by *autoupdate.Orchestrator.
type ProfileLocker interface {
	WithProfileLock(ctx context.Context, id uuid.UUID, fn func(ctx context.Context) error) error
}

type unlockedProfiles struct{}

func (unlockedProfiles) WithProfileLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	profiles  store.ProfileStore
	lifecycle lifecycle.Service
	campaigns CampaignCanceller
	locker    ProfileLocker
	emitter   events.EventEmitter
	logger    *slog.Logger
	now       func() time.Time
}

// NewProfileHandler creates a new ProfileHandler. The emitter may be nil; a
// nil locker leaves writes unserialized.
func NewProfileHandler(
	profiles store.ProfileStore,
	svc lifecycle.Service,
	campaigns CampaignCanceller,
	locker ProfileLocker,
	emitter events.EventEmitter,
	l *slog.Logger,
) *ProfileHandler {
	if l == nil {
		l = slog.Default()
	}
	if locker == nil {
		locker = unlockedProfiles{}
	}
	return &ProfileHandler{
		profiles:  profiles,
		lifecycle: svc,
		campaigns: campaigns,
		locker:    locker,
		emitter:   emitter,
		logger:    l.With(slog.String("component", "profile_handler")),
		now:       time.Now,
	}
}

// GetProfile handles GET /v1/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Load(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profileToResponse(profile))
}

// SaveProfile handles PUT /v1/profile. The stored profile keeps its ID and
// creation time; everything else is replaced.
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SaveProfileRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	stage, err := domain.ParseStage(req.Stage)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	attrs := domain.NormalizeAttributes(req.Attributes)
	if err := h.lifecycle.ValidateAttributes(stage, attrs); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	now := h.now().UTC()
	profile := &domain.Profile{
		ID:            uuid.New(),
		Name:          req.Name,
		Stage:         stage,
		TargetDate:    utcPtr(req.TargetDate),
		OriginDate:    utcPtr(req.OriginDate),
		Attributes:    attrs,
		LastUpdatedAt: now,
		CreatedAt:     now,
	}

	id := profile.ID
	existing, err := h.profiles.Load(r.Context())
	switch {
	case err == nil:
		id = existing.ID
	case !errors.Is(err, store.ErrProfileNotFound):
		HandleAPIError(w, r, err, "Failed to save profile")
		return
	}

	// reload under the lock an auto-update pass would hold
	err = h.locker.WithProfileLock(r.Context(), id, func(ctx context.Context) error {
		current, err := h.profiles.Load(ctx)
		switch {
		case err == nil:
			profile.ID = current.ID
			profile.CreatedAt = current.CreatedAt
		case !errors.Is(err, store.ErrProfileNotFound):
			return err
		}

		if err := profile.Validate(); err != nil {
			return err
		}
		return h.profiles.Save(ctx, profile)
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save profile")
		return
	}

	log.Info("profile saved",
		slog.String("profile_id", profile.ID.String()),
		slog.String("stage", profile.Stage.String()))

	if h.emitter != nil {
		event, err := events.NewProfileEvent(events.ProfileUpdated, profile)
		if err == nil {
			err = h.emitter.EmitEvent(r.Context(), event)
		}
		if err != nil {
			log.Warn("profile event not delivered", slog.String("error", err.Error()))
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profileToResponse(profile))
}

// DeleteProfile handles DELETE /v1/profile. The reminder campaign is
// cancelled before the profile is removed.
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Load(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete profile")
		return
	}

	err = h.locker.WithProfileLock(r.Context(), profile.ID, func(ctx context.Context) error {
		if err := h.campaigns.CancelCampaign(ctx, profile.ID); err != nil {
			return fmt.Errorf("failed to cancel reminders: %w", err)
		}
		return h.profiles.Delete(ctx)
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
