package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/platform/logger"
	"github.com/phrazzld/sprout/internal/store"
)

// ProfileStore implements store.ProfileStore on BadgerDB. The profile is
// kept as one JSON document under a fixed key.
type ProfileStore struct {
	db     *DB
	logger *slog.Logger
}

var _ store.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates a ProfileStore backed by db.
func NewProfileStore(db *DB, l *slog.Logger) *ProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}
	return &ProfileStore{
		db:     db,
		logger: l.With(slog.String("component", "profile_store"), slog.String("driver", "badger")),
	}
}

// Load implements store.ProfileStore.
func (s *ProfileStore) Load(ctx context.Context) (*domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var raw []byte
	err := s.db.view(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrProfileNotFound
	}
	if err != nil {
		log.Error("failed to read profile", slog.String("error", err.Error()))
		return nil, store.NewStoreError("profile", "load", "read failed", err)
	}

	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn("stored profile cannot be decoded", slog.String("error", err.Error()))
		return nil, store.NewStoreError("profile", "load", err.Error(), store.ErrCorrupted)
	}
	if err := p.Validate(); err != nil {
		log.Warn("stored profile is invalid", slog.String("error", err.Error()))
		return nil, store.NewStoreError("profile", "load", err.Error(), store.ErrCorrupted)
	}
	p.Attributes = domain.NormalizeAttributes(p.Attributes)

	return &p, nil
}

// Save implements store.ProfileStore.
func (s *ProfileStore) Save(ctx context.Context, p *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if p == nil {
		return fmt.Errorf("%w: nil profile", store.ErrInvalidEntity)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return store.NewStoreError("profile", "save", "encode failed", err)
	}

	if err := s.db.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(profileKey, raw)
	}); err != nil {
		log.Error("failed to write profile",
			slog.String("profile_id", p.ID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("profile", "save", "write failed", err)
	}

	log.Debug("profile saved",
		slog.String("profile_id", p.ID.String()),
		slog.String("stage", p.Stage.String()))
	return nil
}

// Delete implements store.ProfileStore.
func (s *ProfileStore) Delete(ctx context.Context) error {
	if err := s.db.update(ctx, func(txn *badger.Txn) error {
		return txn.Delete(profileKey)
	}); err != nil {
		return store.NewStoreError("profile", "delete", "delete failed", err)
	}
	return nil
}
