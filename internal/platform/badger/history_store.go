package badger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/platform/logger"
	"github.com/phrazzld/sprout/internal/store"
)

// HistoryStore implements store.HistoryStore on BadgerDB with one JSON
// document per (profile, offset kind).
type HistoryStore struct {
	db     *DB
	logger *slog.Logger
}

var _ store.HistoryStore = (*HistoryStore)(nil)

// NewHistoryStore creates a HistoryStore backed by db.
func NewHistoryStore(db *DB, l *slog.Logger) *HistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}
	return &HistoryStore{
		db:     db,
		logger: l.With(slog.String("component", "history_store"), slog.String("driver", "badger")),
	}
}

// HasEntry implements store.HistoryStore.
func (s *HistoryStore) HasEntry(
	ctx context.Context,
	profileID uuid.UUID,
	kind domain.OffsetKind,
	targetDate time.Time,
) (bool, error) {
	var raw []byte
	err := s.db.view(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(historyKey(profileID, kind))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, store.NewStoreError("notification_history", "has_entry", "read failed", err)
	}

	var entry domain.HistoryEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return false, store.NewStoreError("notification_history", "has_entry", err.Error(), store.ErrCorrupted)
	}

	return domain.SameTargetDate(entry.TargetDate, targetDate), nil
}

// RecordEntry implements store.HistoryStore.
func (s *HistoryStore) RecordEntry(ctx context.Context, entry domain.HistoryEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if entry.ProfileID == uuid.Nil || !entry.Kind.IsValid() {
		return store.NewStoreError("notification_history", "record", "invalid entry", store.ErrInvalidEntity)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return store.NewStoreError("notification_history", "record", "encode failed", err)
	}

	if err := s.db.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(historyKey(entry.ProfileID, entry.Kind), raw)
	}); err != nil {
		log.Error("failed to record history entry",
			slog.String("profile_id", entry.ProfileID.String()),
			slog.String("kind", string(entry.Kind)),
			slog.String("error", err.Error()))
		return store.NewStoreError("notification_history", "record", "write failed", err)
	}
	return nil
}

// ClearEntries implements store.HistoryStore.
func (s *HistoryStore) ClearEntries(ctx context.Context, profileID uuid.UUID) error {
	prefix := historyPrefix(profileID)

	err := s.db.update(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return store.NewStoreError("notification_history", "clear", "delete failed", err)
	}
	return nil
}

// Entries implements store.HistoryStore.
func (s *HistoryStore) Entries(ctx context.Context, profileID uuid.UUID) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	var decodeErr error

	err := s.db.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = historyPrefix(profileID)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entry domain.HistoryEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					decodeErr = err
					return nil
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, store.NewStoreError("notification_history", "entries", "read failed", err)
	}
	if decodeErr != nil {
		return entries, store.NewStoreError("notification_history", "entries", decodeErr.Error(), store.ErrCorrupted)
	}

	return entries, nil
}

