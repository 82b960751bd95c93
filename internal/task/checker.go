package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/platform/logger"
	"github.com/phrazzld/sprout/internal/store"
)

// Updater runs auto-update passes. Satisfied by *autoupdate.Orchestrator.
type Updater interface {
	PerformAutoUpdate(ctx context.Context, profile *domain.Profile) domain.AutoUpdateResult
	NeedsAutoUpdate(ctx context.Context, profile *domain.Profile) bool
}

// Reconciler brings the reminder campaign in line with a profile.
// Satisfied by *reminder.Scheduler.
type Reconciler interface {
	HandleProfileUpdate(ctx context.Context, profile *domain.Profile) error
}

// CheckerConfig holds configuration for the checker
type CheckerConfig struct {
	// Interval is the time between passes. If zero, defaults to one hour
	Interval time.Duration

	// PassTimeout bounds a single pass. If zero, defaults to one minute
	PassTimeout time.Duration
}

// DefaultCheckerConfig returns a CheckerConfig with reasonable defaults
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{
		Interval:    time.Hour,
		PassTimeout: time.Minute,
	}
}

// Checker periodically runs an auto-update pass followed by campaign
// reconciliation for the stored profile.
type Checker struct {
	updater    Updater
	reconciler Reconciler
	profiles   store.ProfileStore
	config     CheckerConfig
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewChecker creates a new Checker
func NewChecker(
	updater Updater,
	reconciler Reconciler,
	profiles store.ProfileStore,
	config CheckerConfig,
	l *slog.Logger,
) *Checker {
	if updater == nil {
		panic("updater cannot be nil")
	}
	if reconciler == nil {
		panic("reconciler cannot be nil")
	}
	if profiles == nil {
		panic("profiles cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}

	defaults := DefaultCheckerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.PassTimeout <= 0 {
		config.PassTimeout = defaults.PassTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Checker{
		updater:    updater,
		reconciler: reconciler,
		profiles:   profiles,
		config:     config,
		logger:     l.With(slog.String("component", "lifecycle_checker")),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start runs one pass immediately and then one per interval until Stop.
func (c *Checker) Start() {
	c.wg.Add(1)
	go c.loop()
}

// Stop ends the loop and waits for an in-flight pass to finish.
func (c *Checker) Stop() {
	c.once.Do(c.cancel)
	c.wg.Wait()
}

func (c *Checker) loop() {
	defer c.wg.Done()

	c.logger.Info("lifecycle checker started", slog.Duration("interval", c.config.Interval))
	c.runPass()

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			c.logger.Info("lifecycle checker stopped")
			return
		case <-ticker.C:
			c.runPass()
		}
	}
}

func (c *Checker) runPass() {
	ctx, cancel := context.WithTimeout(c.ctx, c.config.PassTimeout)
	defer cancel()

	passID := uuid.New().String()
	log := c.logger.With(slog.String("pass_id", passID))
	ctx = logger.WithLogger(logger.WithRequestID(ctx, passID), log)

	if err := c.RunOnce(ctx); err != nil {
		log.Error("lifecycle pass failed", slog.String("error", err.Error()))
	}
}

// RunOnce performs a single pass: update the stored profile when needed,
// then reconcile the campaign with whatever is stored afterwards.
//
// A stale profile with no pending transition keeps NeedsAutoUpdate true, so
// every tick runs an update that writes nothing. That pass is what notices
// the next stage boundary; LastUpdatedAt only moves when the profile does.
func (c *Checker) RunOnce(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if c.updater.NeedsAutoUpdate(ctx, nil) {
		result := c.updater.PerformAutoUpdate(ctx, nil)
		if !result.IsSuccess() {
			return result.Err
		}
		if result.StageChange != nil {
			log.Info(result.StageChange.Message)
		}
	}

	profile, err := c.profiles.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return nil
		}
		return err
	}

	return c.reconciler.HandleProfileUpdate(ctx, profile)
}
