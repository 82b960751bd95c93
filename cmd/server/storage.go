package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/sprout/internal/config"
	"github.com/phrazzld/sprout/internal/platform/badger"
	"github.com/phrazzld/sprout/internal/platform/postgres"
	"github.com/phrazzld/sprout/internal/store"
)

// storage bundles the stores of one driver with its health check and cleanup.
type storage struct {
	profiles store.ProfileStore
	history  store.HistoryStore
	health   func(r *http.Request) error
	close    func() error
}

// openStorage opens the backend selected by cfg.Storage.Driver. Postgres
// schemas are migrated before the stores are returned.
func openStorage(ctx context.Context, cfg *config.Config, l *slog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, l)
	case config.DriverBadger:
		return openBadger(cfg, l)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, l *slog.Logger) (*storage, error) {
	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := postgres.Migrate(ctx, db, l); err != nil {
		_ = db.Close()
		return nil, err
	}

	l.Info("postgres storage ready")
	return &storage{
		profiles: postgres.NewPostgresProfileStore(db, l),
		history:  postgres.NewPostgresHistoryStore(db, l),
		health: func(r *http.Request) error {
			return db.PingContext(r.Context())
		},
		close: db.Close,
	}, nil
}

func openBadger(cfg *config.Config, l *slog.Logger) (*storage, error) {
	bcfg := badger.DefaultConfig(cfg.Storage.BadgerPath)
	if cfg.Storage.BadgerInMemory {
		bcfg = badger.InMemoryConfig()
	}
	bcfg.Logger = l

	db, err := badger.Open(bcfg)
	if err != nil {
		return nil, err
	}

	l.Info("badger storage ready", slog.Bool("in_memory", db.InMemory()))
	return &storage{
		profiles: badger.NewProfileStore(db, l),
		history:  badger.NewHistoryStore(db, l),
		close:    db.Close,
	}, nil
}
