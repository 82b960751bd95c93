package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/platform/logger"
	"github.com/phrazzld/sprout/internal/store"
)

// dateLayout is how target dates are passed to the DATE column.
const dateLayout = "2006-01-02"

// PostgresHistoryStore implements store.HistoryStore on the
// notification_history table. Target dates are stored at day granularity.
type PostgresHistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresHistoryStore creates a new PostgreSQL implementation of the HistoryStore interface.
func NewPostgresHistoryStore(db store.DBTX, l *slog.Logger) *PostgresHistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}

	return &PostgresHistoryStore{
		db:     db,
		logger: l.With(slog.String("component", "history_store"), slog.String("driver", "postgres")),
	}
}

var _ store.HistoryStore = (*PostgresHistoryStore)(nil)

// HasEntry implements store.HistoryStore.HasEntry
func (s *PostgresHistoryStore) HasEntry(
	ctx context.Context,
	profileID uuid.UUID,
	kind domain.OffsetKind,
	targetDate time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notification_history
			WHERE profile_id = $1 AND kind = $2 AND target_date = $3::date
		)
	`

	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		query,
		profileID,
		string(kind),
		targetDate.UTC().Format(dateLayout),
	).Scan(&exists)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check history entry",
			slog.String("error", err.Error()),
			slog.String("profile_id", profileID.String()),
			slog.String("kind", string(kind)))
		return false, store.NewStoreError("notification_history", "has_entry", "query failed", MapError(err))
	}

	return exists, nil
}

// RecordEntry implements store.HistoryStore.RecordEntry
func (s *PostgresHistoryStore) RecordEntry(ctx context.Context, entry domain.HistoryEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if entry.ProfileID == uuid.Nil || !entry.Kind.IsValid() {
		return store.NewStoreError("notification_history", "record", "invalid entry", store.ErrInvalidEntity)
	}

	query := `
		INSERT INTO notification_history (profile_id, kind, target_date, sent_at)
		VALUES ($1, $2, $3::date, $4)
		ON CONFLICT (profile_id, kind) DO UPDATE SET
			target_date = EXCLUDED.target_date,
			sent_at = EXCLUDED.sent_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ProfileID,
		string(entry.Kind),
		entry.TargetDate.UTC().Format(dateLayout),
		entry.SentAt,
	)
	if err != nil {
		log.Error("failed to record history entry",
			slog.String("error", err.Error()),
			slog.String("profile_id", entry.ProfileID.String()),
			slog.String("kind", string(entry.Kind)))
		return store.NewStoreError("notification_history", "record", "upsert failed", MapError(err))
	}

	return nil
}

// ClearEntries implements store.HistoryStore.ClearEntries
func (s *PostgresHistoryStore) ClearEntries(ctx context.Context, profileID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM notification_history WHERE profile_id = $1`, profileID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to clear history",
			slog.String("error", err.Error()),
			slog.String("profile_id", profileID.String()))
		return store.NewStoreError("notification_history", "clear", "delete failed", MapError(err))
	}
	return nil
}

// Entries implements store.HistoryStore.Entries
func (s *PostgresHistoryStore) Entries(ctx context.Context, profileID uuid.UUID) ([]domain.HistoryEntry, error) {
	query := `
		SELECT profile_id, kind, target_date, sent_at
		FROM notification_history
		WHERE profile_id = $1
		ORDER BY kind
	`

	rows, err := s.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, store.NewStoreError("notification_history", "entries", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var (
		entries []domain.HistoryEntry
		badKind string
	)
	for rows.Next() {
		var (
			e    domain.HistoryEntry
			kind string
		)
		if err := rows.Scan(&e.ProfileID, &kind, &e.TargetDate, &e.SentAt); err != nil {
			return nil, store.NewStoreError("notification_history", "entries", "scan failed", err)
		}

		e.Kind = domain.OffsetKind(kind)
		if !e.Kind.IsValid() {
			badKind = kind
			continue
		}
		e.TargetDate = e.TargetDate.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("notification_history", "entries", "iteration failed", err)
	}

	if badKind != "" {
		return entries, store.NewStoreError(
			"notification_history",
			"entries",
			fmt.Sprintf("unknown offset kind %q", badKind),
			store.ErrCorrupted,
		)
	}
	return entries, nil
}
