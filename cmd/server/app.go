package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/sprout/internal/api"
	"github.com/phrazzld/sprout/internal/config"
	"github.com/phrazzld/sprout/internal/domain/lifecycle"
	"github.com/phrazzld/sprout/internal/events"
	"github.com/phrazzld/sprout/internal/notify"
	"github.com/phrazzld/sprout/internal/service/autoupdate"
	"github.com/phrazzld/sprout/internal/service/reminder"
	"github.com/phrazzld/sprout/internal/task"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	storage   *storage
	registrar *notify.LocalRegistrar
	emitter   *events.InMemoryEventEmitter

	scheduler    *reminder.Scheduler
	orchestrator *autoupdate.Orchestrator
	checker      *task.Checker

	router http.Handler
}

// newApplication opens storage and wires every component.
func newApplication(ctx context.Context, cfg *config.Config, l *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: l}

	var err error
	app.storage, err = openStorage(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	params, err := lifecycle.NewParams(lifecycle.ParamsConfig{
		MinAttributes: cfg.Lifecycle.MinAttributes,
		StaleAfter:    cfg.Lifecycle.StaleAfter,
	})
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("invalid lifecycle parameters: %w", err)
	}
	lifecycleService, err := lifecycle.NewServiceWithParams(params)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create lifecycle service: %w", err)
	}

	gate := notify.NewSwitchGate(cfg.Reminders.NotificationsEnabled, false)
	app.registrar = notify.NewLocalRegistrar(notify.NewLogSink(l), l,
		notify.WithMaxPending(cfg.Reminders.MaxPending))

	app.scheduler = reminder.NewScheduler(app.storage.history, gate, app.registrar, reminder.Config{
		DeliveryHour: cfg.Reminders.DeliveryHour,
	}, l)

	app.emitter = events.NewInMemoryEventEmitter(l)
	app.emitter.RegisterHandler(reminder.NewProfileEventHandler(app.scheduler, l))

	app.orchestrator = autoupdate.NewOrchestrator(app.storage.profiles, lifecycleService, app.scheduler, l,
		autoupdate.WithEmitter(app.emitter))

	app.checker = task.NewChecker(app.orchestrator, app.scheduler, app.storage.profiles, task.CheckerConfig{
		Interval: cfg.Lifecycle.CheckInterval,
	}, l)

	profileHandler := api.NewProfileHandler(app.storage.profiles, lifecycleService, app.scheduler,
		app.orchestrator, app.emitter, l)
	app.router = api.NewRouter(api.Handlers{
		Profile:   profileHandler,
		Lifecycle: api.NewLifecycleHandler(app.orchestrator),
		Reminder:  api.NewReminderHandler(app.scheduler, app.storage.profiles),
	}, app.storage.health, l)

	l.Info("application initialized")
	return app, nil
}

// Run starts the checker and HTTP server and blocks until ctx is cancelled
// or the server fails. Everything is shut down before it returns.
func (app *application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	app.checker.Start()

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		if runErr == nil {
			runErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	app.cleanup()
	app.logger.Info("server shutdown completed")
	return runErr
}

// cleanup stops background work and releases storage. Safe on a partially
// built application.
func (app *application) cleanup() {
	if app.checker != nil {
		app.checker.Stop()
	}
	if app.registrar != nil {
		app.registrar.Close()
	}
	if app.storage != nil && app.storage.close != nil {
		if err := app.storage.close(); err != nil {
			app.logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}
}
