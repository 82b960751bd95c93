package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/keylock"
	"github.com/phrazzld/sprout/internal/notify"
	"github.com/phrazzld/sprout/internal/platform/logger"
	"github.com/phrazzld/sprout/internal/store"
)

// DefaultDeliveryHour is the local hour campaign points fire at.
const DefaultDeliveryHour = 9

// Config holds scheduler settings.
type Config struct {
	// DeliveryHour is the hour of day (0-23) reminders fire at
	DeliveryHour int

	// Location is the zone target dates and delivery hours are read in.
	// Defaults to UTC.
	Location *time.Location

	// Now replaces the clock, mostly for tests
	Now func() time.Time
}

// Scheduler arms, deduplicates and retires reminder campaigns.
type Scheduler struct {
	history   store.HistoryStore
	gate      notify.PermissionGate
	registrar notify.Registrar
	logger    *slog.Logger

	deliveryHour int
	loc          *time.Location
	now          func() time.Time

	group singleflight.Group
	locks *keylock.Map
}

// NewScheduler creates a Scheduler.
func NewScheduler(
	history store.HistoryStore,
	gate notify.PermissionGate,
	registrar notify.Registrar,
	cfg Config,
	l *slog.Logger,
) *Scheduler {
	if history == nil {
		panic("history cannot be nil")
	}
	if gate == nil {
		panic("gate cannot be nil")
	}
	if registrar == nil {
		panic("registrar cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}

	s := &Scheduler{
		history:      history,
		gate:         gate,
		registrar:    registrar,
		logger:       l.With(slog.String("component", "reminder_scheduler")),
		deliveryHour: DefaultDeliveryHour,
		loc:          time.UTC,
		now:          time.Now,
		locks:        keylock.New(),
	}

	if cfg.DeliveryHour >= 0 && cfg.DeliveryHour <= 23 {
		s.deliveryHour = cfg.DeliveryHour
	}
	if cfg.Location != nil {
		s.loc = cfg.Location
	}
	if cfg.Now != nil {
		s.now = cfg.Now
	}

	return s
}

// ScheduleCampaign arms every eligible point of the profile's campaign.
// It does nothing unless the profile is prenatal with a target date.
//
// Concurrent calls for the same profile and target date share one pass and
// receive the same report.
func (s *Scheduler) ScheduleCampaign(ctx context.Context, profile *domain.Profile) ScheduleReport {
	if profile == nil || !profile.Stage.IsPrenatal() || profile.TargetDate == nil {
		return ScheduleReport{}
	}

	working := profile.Clone()
	key := campaignKey(working.ID, *working.TargetDate)

	// a shared pass outlives any single caller's cancellation
	passCtx := context.WithoutCancel(ctx)
	v, _, coalescedCall := s.group.Do(key, func() (any, error) {
		return s.scheduleLocked(passCtx, working), nil
	})
	if coalescedCall {
		coalesced.Inc()
	}

	return v.(ScheduleReport)
}

// campaignKey identifies one campaign for coalescing. The day is taken in
// UTC, the same convention history matching uses.
func campaignKey(profileID uuid.UUID, target time.Time) string {
	return fmt.Sprintf("%s|%s", profileID, target.UTC().Format("2006-01-02"))
}

func (s *Scheduler) scheduleLocked(ctx context.Context, profile *domain.Profile) ScheduleReport {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("profile_id", profile.ID.String()))
	target := *profile.TargetDate
	report := newReport(profile.ID, target)

	unlock, err := s.locks.Lock(ctx, profile.ID.String())
	if err != nil {
		log.Warn("scheduling pass abandoned", slog.String("error", err.Error()))
		return report
	}
	defer unlock()

	report.Retired = s.retireStale(ctx, log, profile.ID, target)

	now := s.now()
	var permitted *bool

	for _, o := range Template {
		fireAt := FireAt(target, o, s.deliveryHour, s.loc)
		if !fireAt.After(now) {
			report.skip(o.Kind, SkipPast)
			continue
		}

		sent, err := s.history.HasEntry(ctx, profile.ID, o.Kind, target)
		if err != nil {
			// unreadable history counts as no history
			log.Warn("history lookup failed, treating as empty",
				slog.String("kind", string(o.Kind)),
				slog.String("error", err.Error()))
			sent = false
		}
		if sent && !s.stillArmed(ctx, log, profile.ID, o.Kind) {
			// history outlived the registration, usually across a restart
			log.Info("reminder recorded but no longer armed, re-arming",
				slog.String("kind", string(o.Kind)))
			rearmed.Inc()
			sent = false
		}
		if sent {
			report.skip(o.Kind, SkipAlreadySent)
			continue
		}

		if permitted == nil {
			ok := s.canDeliver(ctx, log)
			permitted = &ok
		}
		if !*permitted {
			report.skip(o.Kind, SkipPermissionDenied)
			continue
		}

		title, body := Copy(o.Kind, profile.Name)
		point := domain.CampaignPoint{
			ProfileID:  profile.ID,
			Kind:       o.Kind,
			TargetDate: target,
			FireAt:     fireAt,
			Title:      title,
			Body:       body,
		}

		if err := s.registrar.Register(ctx, point); err != nil {
			log.Warn("reminder registration failed",
				slog.String("kind", string(o.Kind)),
				slog.String("error", err.Error()))
			report.skip(o.Kind, SkipRegistrationFailed)
			continue
		}

		entry := domain.HistoryEntry{
			ProfileID:  profile.ID,
			Kind:       o.Kind,
			TargetDate: target,
			SentAt:     now,
		}
		if err := s.history.RecordEntry(ctx, entry); err != nil {
			// the point is armed; a later pass re-registers the same identity,
			// which replaces rather than duplicates it
			log.Error("failed to record reminder history",
				slog.String("kind", string(o.Kind)),
				slog.String("error", err.Error()))
		}
		report.scheduled(o.Kind)
	}

	log.Debug("scheduling pass complete",
		slog.Int("scheduled", len(report.Scheduled)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Bool("retired", report.Retired))
	return report
}

// retireStale cancels the campaign when history exists for a different
// target date. Reports whether it did.
func (s *Scheduler) retireStale(ctx context.Context, log *slog.Logger, profileID uuid.UUID, target time.Time) bool {
	entries, err := s.history.Entries(ctx, profileID)
	if err != nil {
		if !errors.Is(err, store.ErrCorrupted) {
			log.Warn("failed to read reminder history", slog.String("error", err.Error()))
			return false
		}
		log.Warn("reminder history partly unreadable", slog.String("error", err.Error()))
	}

	for _, e := range entries {
		if domain.SameTargetDate(e.TargetDate, target) {
			continue
		}

		log.Info("target date changed, retiring previous campaign",
			slog.Time("previous_target", e.TargetDate),
			slog.Time("target", target))
		if err := s.cancelLocked(ctx, log, profileID); err != nil {
			log.Error("failed to retire previous campaign", slog.String("error", err.Error()))
		}
		retirements.WithLabelValues("target_changed").Inc()
		return true
	}
	return false
}

// stillArmed asks the registrar whether a recorded point is armed. Registrars
// that cannot answer are trusted. A failed lookup counts as not armed.
func (s *Scheduler) stillArmed(ctx context.Context, log *slog.Logger, profileID uuid.UUID, kind domain.OffsetKind) bool {
	reporter, ok := s.registrar.(notify.ArmedReporter)
	if !ok {
		return true
	}

	armed, err := reporter.IsArmed(ctx, domain.ReminderIdentity(profileID, kind))
	if err != nil {
		log.Warn("armed lookup failed", slog.String("kind", string(kind)), slog.String("error", err.Error()))
		return false
	}
	return armed
}

func (s *Scheduler) canDeliver(ctx context.Context, log *slog.Logger) bool {
	ok, err := s.gate.CanDeliverNow(ctx)
	if err != nil {
		log.Warn("permission check failed", slog.String("error", err.Error()))
		return false
	}
	if !ok {
		log.Debug("reminders not permitted, skipping campaign")
	}
	return ok
}

// CancelCampaign disarms every point of the profile's campaign and clears
// its history. Registrar failures are logged and do not stop the cleanup.
func (s *Scheduler) CancelCampaign(ctx context.Context, profileID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("profile_id", profileID.String()))

	unlock, err := s.locks.Lock(ctx, profileID.String())
	if err != nil {
		return err
	}
	defer unlock()

	return s.cancelLocked(ctx, log, profileID)
}

func (s *Scheduler) cancelLocked(ctx context.Context, log *slog.Logger, profileID uuid.UUID) error {
	for _, o := range Template {
		identity := domain.ReminderIdentity(profileID, o.Kind)
		if err := s.registrar.Cancel(ctx, identity); err != nil {
			log.Warn("failed to cancel reminder",
				slog.String("identity", identity),
				slog.String("error", err.Error()))
		}
	}

	if err := s.history.ClearEntries(ctx, profileID); err != nil {
		return fmt.Errorf("failed to clear reminder history: %w", err)
	}

	log.Debug("campaign cancelled")
	return nil
}

// HandleProfileUpdate reconciles the campaign with a freshly saved profile:
// prenatal profiles are scheduled, every other stage is cancelled.
func (s *Scheduler) HandleProfileUpdate(ctx context.Context, profile *domain.Profile) error {
	if profile == nil {
		return nil
	}

	if !profile.Stage.IsPrenatal() {
		if err := s.CancelCampaign(ctx, profile.ID); err != nil {
			return err
		}
		retirements.WithLabelValues("stage_changed").Inc()
		return nil
	}

	s.ScheduleCampaign(ctx, profile)
	return nil
}
