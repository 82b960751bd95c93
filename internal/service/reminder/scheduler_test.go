package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/mocks"
	"github.com/phrazzld/sprout/internal/store"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	history   *mocks.MockHistoryStore
	gate      *mocks.MockPermissionGate
	registrar *mocks.MockRegistrar
	scheduler *Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		history:   mocks.NewMockHistoryStore(),
		gate:      &mocks.MockPermissionGate{Granted: true},
		registrar: mocks.NewMockRegistrar(),
	}
	f.scheduler = NewScheduler(f.history, f.gate, f.registrar, Config{
		DeliveryHour: 9,
		Now:          func() time.Time { return testNow },
	}, nil)
	return f
}

func prenatal(target time.Time) *domain.Profile {
	return &domain.Profile{
		ID:            uuid.New(),
		Name:          "Juniper",
		Stage:         domain.StagePrenatal,
		TargetDate:    &target,
		Attributes:    []string{"Calm"},
		LastUpdatedAt: testNow,
		CreatedAt:     testNow,
	}
}

func allKinds() []domain.OffsetKind {
	kinds := make([]domain.OffsetKind, 0, len(Template))
	for _, o := range Template {
		kinds = append(kinds, o.Kind)
	}
	return kinds
}

func TestScheduleCampaign_TenDaysOut(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	profile := prenatal(testNow.AddDate(0, 0, 10))

	f.registrar.RegisterFn = func(ctx context.Context, point domain.CampaignPoint) error {
		// history must not be written before the registrar confirms
		sent, err := f.history.HasEntry(ctx, point.ProfileID, point.Kind, point.TargetDate)
		require.NoError(t, err)
		assert.False(t, sent, "history recorded before registration for %s", point.Kind)
		return nil
	}

	report := f.scheduler.ScheduleCampaign(ctx, profile)

	assert.Equal(t, allKinds(), report.Scheduled)
	assert.Empty(t, report.Skipped)
	assert.False(t, report.Retired)
	assert.Len(t, f.registrar.Registered(), len(Template))
	assert.Equal(t, len(Template), f.history.Count(profile.ID))

	due := f.registrar.Registered()[domain.ReminderIdentity(profile.ID, domain.OffsetDueDate)]
	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), due.FireAt)
	assert.Contains(t, due.Body, "Juniper")
}

func TestScheduleCampaign_SkipsPastPoints(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	profile := prenatal(testNow.AddDate(0, 0, 2))

	report := f.scheduler.ScheduleCampaign(context.Background(), profile)

	assert.Equal(t, SkipPast, report.Skipped[domain.OffsetWeekBefore])
	assert.Equal(t, SkipPast, report.Skipped[domain.OffsetThreeDaysBefore])
	assert.Equal(t, []domain.OffsetKind{
		domain.OffsetDayBefore, domain.OffsetDueDate, domain.OffsetDayAfter,
	}, report.Scheduled)
}

func TestScheduleCampaign_NoDuplicateRegistrations(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	profile := prenatal(testNow.AddDate(0, 0, 10))

	f.registrar.RegisterFn = func(ctx context.Context, point domain.CampaignPoint) error {
		time.Sleep(time.Millisecond)
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.scheduler.ScheduleCampaign(ctx, profile)
		}()
	}
	wg.Wait()

	// and a few more in sequence
	for i := 0; i < 3; i++ {
		report := f.scheduler.ScheduleCampaign(ctx, profile)
		assert.Empty(t, report.Scheduled)
		for _, kind := range allKinds() {
			assert.Equal(t, SkipAlreadySent, report.Skipped[kind])
		}
	}

	calls := f.registrar.RegisterCalls()
	assert.Len(t, calls, len(Template))

	seen := make(map[string]int)
	for _, c := range calls {
		seen[c.Identity()]++
	}
	for identity, n := range seen {
		assert.Equal(t, 1, n, "identity %s registered more than once", identity)
	}
}

func TestScheduleCampaign_PermissionDenied(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.gate.Granted = false
	profile := prenatal(testNow.AddDate(0, 0, 10))

	report := f.scheduler.ScheduleCampaign(context.Background(), profile)

	assert.Empty(t, report.Scheduled)
	for _, kind := range allKinds() {
		assert.Equal(t, SkipPermissionDenied, report.Skipped[kind])
	}
	assert.Empty(t, f.registrar.RegisterCalls())
	assert.Zero(t, f.history.Count(profile.ID))

	// a later grant delivers the whole campaign
	f.gate.Granted = true
	report = f.scheduler.ScheduleCampaign(context.Background(), profile)
	assert.Equal(t, allKinds(), report.Scheduled)
}

func TestScheduleCampaign_GateErrorTreatedAsDenied(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.gate.CanDeliverNowFn = func(ctx context.Context) (bool, error) {
		return false, errors.New("settings unavailable")
	}

	report := f.scheduler.ScheduleCampaign(context.Background(), prenatal(testNow.AddDate(0, 0, 10)))

	assert.Empty(t, report.Scheduled)
	assert.Equal(t, SkipPermissionDenied, report.Skipped[domain.OffsetDueDate])
}

func TestScheduleCampaign_RegistrationFailureLeavesPointEligible(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	profile := prenatal(testNow.AddDate(0, 0, 10))

	failing := true
	f.registrar.RegisterFn = func(ctx context.Context, point domain.CampaignPoint) error {
		if failing && point.Kind == domain.OffsetDueDate {
			return errors.New("os rejected")
		}
		return nil
	}

	report := f.scheduler.ScheduleCampaign(context.Background(), profile)
	assert.Equal(t, SkipRegistrationFailed, report.Skipped[domain.OffsetDueDate])
	assert.Len(t, report.Scheduled, len(Template)-1)

	sent, err := f.history.HasEntry(context.Background(), profile.ID, domain.OffsetDueDate, *profile.TargetDate)
	require.NoError(t, err)
	assert.False(t, sent)

	failing = false
	report = f.scheduler.ScheduleCampaign(context.Background(), profile)
	assert.Equal(t, []domain.OffsetKind{domain.OffsetDueDate}, report.Scheduled)
}

func TestScheduleCampaign_CorruptedHistory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.history.HasEntryFn = func(context.Context, uuid.UUID, domain.OffsetKind, time.Time) (bool, error) {
		return false, store.ErrCorrupted
	}
	f.history.EntriesFn = func(context.Context, uuid.UUID) ([]domain.HistoryEntry, error) {
		return nil, store.ErrCorrupted
	}

	var report ScheduleReport
	assert.NotPanics(t, func() {
		report = f.scheduler.ScheduleCampaign(context.Background(), prenatal(testNow.AddDate(0, 0, 10)))
	})
	assert.Equal(t, allKinds(), report.Scheduled)
}

func TestScheduleCampaign_TargetDateChanged(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	profile := prenatal(testNow.AddDate(0, 0, 10))

	f.scheduler.ScheduleCampaign(ctx, profile)

	moved := profile.Clone()
	newTarget := testNow.AddDate(0, 0, 20)
	moved.TargetDate = &newTarget

	report := f.scheduler.ScheduleCampaign(ctx, moved)

	assert.True(t, report.Retired)
	assert.Equal(t, allKinds(), report.Scheduled)
	assert.Len(t, f.registrar.CancelCalls(), len(Template))

	entries, err := f.history.Entries(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, entries, len(Template))
	for _, e := range entries {
		assert.True(t, domain.SameTargetDate(e.TargetDate, newTarget))
	}
}

func TestScheduleCampaign_NotPrenatal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	origin := testNow.AddDate(0, -1, 0)
	profile := &domain.Profile{
		ID:         uuid.New(),
		Stage:      domain.StageNewborn,
		OriginDate: &origin,
	}

	report := f.scheduler.ScheduleCampaign(context.Background(), profile)

	assert.Empty(t, report.Scheduled)
	assert.Nil(t, report.TargetDate)
	assert.Empty(t, f.registrar.RegisterCalls())

	assert.Empty(t, f.scheduler.ScheduleCampaign(context.Background(), nil).Scheduled)
}

func TestCancelCampaign(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	profile := prenatal(testNow.AddDate(0, 0, 10))
	f.scheduler.ScheduleCampaign(ctx, profile)

	f.registrar.CancelFn = func(ctx context.Context, identity string) error {
		return errors.New("already fired")
	}

	require.NoError(t, f.scheduler.CancelCampaign(ctx, profile.ID))
	assert.Len(t, f.registrar.CancelCalls(), len(Template))
	assert.Zero(t, f.history.Count(profile.ID))
}

func TestCancelCampaign_ClearFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.history.ClearEntriesFn = func(context.Context, uuid.UUID) error {
		return store.ErrDeleteFailed
	}

	err := f.scheduler.CancelCampaign(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrDeleteFailed)
}

func TestHandleProfileUpdate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	profile := prenatal(testNow.AddDate(0, 0, 10))

	require.NoError(t, f.scheduler.HandleProfileUpdate(ctx, profile))
	assert.Len(t, f.registrar.Registered(), len(Template))

	born := profile.Clone()
	origin := *born.TargetDate
	born.Stage = domain.StageNewborn
	born.OriginDate = &origin
	born.TargetDate = nil

	require.NoError(t, f.scheduler.HandleProfileUpdate(ctx, born))
	assert.Empty(t, f.registrar.Registered())
	assert.Zero(t, f.history.Count(profile.ID))

	assert.NoError(t, f.scheduler.HandleProfileUpdate(ctx, nil))
}
