package autoupdate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/domain/lifecycle"
	"github.com/phrazzld/sprout/internal/events"
	"github.com/phrazzld/sprout/internal/keylock"
	"github.com/phrazzld/sprout/internal/platform/logger"
	"github.com/phrazzld/sprout/internal/store"
)

// CampaignRetirer cancels the reminder campaign of a profile. It is
// satisfied by *reminder.Scheduler.
type CampaignRetirer interface {
	CancelCampaign(ctx context.Context, profileID uuid.UUID) error
}

// Orchestrator performs auto-update passes.
type Orchestrator struct {
	profiles  store.ProfileStore
	lifecycle lifecycle.Service
	retirer   CampaignRetirer
	emitter   events.EventEmitter
	logger    *slog.Logger

	locks *keylock.Map
	now   func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the orchestrator's time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithEmitter publishes a profile.updated event after every saved change.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(o *Orchestrator) {
		o.emitter = emitter
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	profiles store.ProfileStore,
	svc lifecycle.Service,
	retirer CampaignRetirer,
	l *slog.Logger,
	opts ...Option,
) *Orchestrator {
	if profiles == nil {
		panic("profiles cannot be nil")
	}
	if svc == nil {
		panic("lifecycle service cannot be nil")
	}
	if retirer == nil {
		panic("retirer cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}

	o := &Orchestrator{
		profiles:  profiles,
		lifecycle: svc,
		retirer:   retirer,
		logger:    l.With(slog.String("component", "auto_update")),
		locks:     keylock.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PerformAutoUpdate brings the profile up to date and persists the result.
// When profile is nil the stored profile is used; with no stored profile the
// result is empty and successful. The passed profile is never mutated.
//
// A supplied profile is reconciled with the stored record under the lock:
// the stored copy wins unless the supplied one was updated more recently.
func (o *Orchestrator) PerformAutoUpdate(ctx context.Context, profile *domain.Profile) domain.AutoUpdateResult {
	start := time.Now()
	defer func() { passDuration.Observe(time.Since(start).Seconds()) }()

	log := logger.FromContextOrDefault(ctx, o.logger)

	var id uuid.UUID
	if profile != nil {
		id = profile.ID
	} else {
		stored, err := o.profiles.Load(ctx)
		if err != nil {
			return o.loadFailed(log, err)
		}
		id = stored.ID
	}

	unlock, err := o.locks.Lock(ctx, id.String())
	if err != nil {
		passes.WithLabelValues("failed").Inc()
		return domain.FailedResult(err)
	}
	defer unlock()

	// reload under the lock so the pass sees the latest save
	stored, err := o.profiles.Load(ctx)
	if err != nil && (profile == nil || !errors.Is(err, store.ErrProfileNotFound)) {
		return o.loadFailed(log, err)
	}

	working := pickWorkingCopy(log, profile, stored)
	log = log.With(slog.String("profile_id", working.ID.String()))
	return o.update(ctx, log, working)
}

// pickWorkingCopy chooses what a pass computes from. stored may be nil when
// nothing is persisted yet.
func pickWorkingCopy(log *slog.Logger, supplied, stored *domain.Profile) *domain.Profile {
	switch {
	case supplied == nil:
		return stored
	case stored == nil:
		return supplied.Clone()
	case stored.ID != supplied.ID:
		log.Warn("supplied profile differs from stored profile",
			slog.String("supplied_id", supplied.ID.String()),
			slog.String("stored_id", stored.ID.String()))
		return supplied.Clone()
	case supplied.LastUpdatedAt.After(stored.LastUpdatedAt):
		return supplied.Clone()
	default:
		return stored
	}
}

// WithProfileLock runs fn while holding the lock auto-update passes take for
// the profile. Other writers of the profile use it to serialize with passes.
func (o *Orchestrator) WithProfileLock(ctx context.Context, id uuid.UUID, fn func(ctx context.Context) error) error {
	unlock, err := o.locks.Lock(ctx, id.String())
	if err != nil {
		return err
	}
	defer unlock()

	return fn(ctx)
}

func (o *Orchestrator) loadFailed(log *slog.Logger, err error) domain.AutoUpdateResult {
	if errors.Is(err, store.ErrProfileNotFound) {
		log.Debug("no stored profile, nothing to update")
		passes.WithLabelValues("no_profile").Inc()
		return domain.AutoUpdateResult{}
	}

	log.Error("failed to load profile", slog.String("error", err.Error()))
	passes.WithLabelValues("failed").Inc()
	return domain.FailedResult(fmt.Errorf("failed to load profile: %w", err))
}

func (o *Orchestrator) update(ctx context.Context, log *slog.Logger, working *domain.Profile) domain.AutoUpdateResult {
	now := o.now()

	transition, err := o.lifecycle.ComputeProgression(working, now)
	if err != nil {
		log.Error("cannot compute progression", slog.String("error", err.Error()))
		passes.WithLabelValues("failed").Inc()
		return domain.FailedResult(err)
	}

	var result domain.AutoUpdateResult

	if transition != nil {
		result.StageChange = &domain.StageChange{
			From:      transition.From,
			To:        transition.To,
			AgeMonths: transition.AgeMonths,
			Message:   o.lifecycle.StageMessage(working, transition),
		}

		change, err := o.lifecycle.MigrateAttributes(working.Attributes, transition.From, transition.To)
		if err != nil {
			passes.WithLabelValues("failed").Inc()
			return domain.FailedResult(err)
		}

		transition.Apply(working)
		if change != nil {
			working.Attributes = change.Current
			result.AttributeChange = change
		}
	}

	if !result.HasChanges() {
		passes.WithLabelValues("unchanged").Inc()
		return result
	}

	result.MetadataChange = &domain.MetadataChange{
		Previous: working.LastUpdatedAt,
		Current:  now,
	}
	working.LastUpdatedAt = now

	if err := o.profiles.Save(ctx, working); err != nil {
		log.Error("failed to save profile", slog.String("error", err.Error()))
		passes.WithLabelValues("failed").Inc()
		return domain.FailedResult(fmt.Errorf("failed to save profile: %w", err))
	}

	passes.WithLabelValues("changed").Inc()
	if transition != nil {
		transitions.WithLabelValues(transition.From.String(), transition.To.String()).Inc()
		log.Info("stage advanced",
			slog.String("from", transition.From.String()),
			slog.String("to", transition.To.String()),
			slog.Int("age_months", transition.AgeMonths))
	}

	if transition != nil && transition.Birth {
		if err := o.retirer.CancelCampaign(ctx, working.ID); err != nil {
			// the profile is saved; the next profile.updated event retries
			log.Error("failed to retire reminder campaign", slog.String("error", err.Error()))
		}
	}

	o.emit(ctx, log, working)
	return result
}

func (o *Orchestrator) emit(ctx context.Context, log *slog.Logger, profile *domain.Profile) {
	if o.emitter == nil {
		return
	}

	event, err := events.NewProfileEvent(events.ProfileUpdated, profile)
	if err != nil {
		log.Error("failed to build profile event", slog.String("error", err.Error()))
		return
	}
	if err := o.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("profile event handler failed", slog.String("error", err.Error()))
	}
}

// NeedsAutoUpdate reports whether a pass would change the profile or the
// profile has gone stale. It never writes. Load failures report false.
func (o *Orchestrator) NeedsAutoUpdate(ctx context.Context, profile *domain.Profile) bool {
	log := logger.FromContextOrDefault(ctx, o.logger)

	if profile == nil {
		stored, err := o.profiles.Load(ctx)
		if err != nil {
			if !errors.Is(err, store.ErrProfileNotFound) {
				log.Warn("failed to load profile", slog.String("error", err.Error()))
			}
			return false
		}
		profile = stored
	}

	now := o.now()
	transition, err := o.lifecycle.ComputeProgression(profile, now)
	if err != nil {
		log.Warn("cannot compute progression", slog.String("error", err.Error()))
		return false
	}

	return transition != nil || o.lifecycle.IsStale(profile, now)
}
