package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresHistoryStore_HasEntry(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresHistoryStore(db, nil)

	profileID := uuid.New()
	target := time.Date(2026, 11, 3, 22, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(profileID.String(), "due_date", "2026-11-03").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := s.HasEntry(context.Background(), profileID, domain.OffsetDueDate, target)
	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresHistoryStore_HasEntryError(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresHistoryStore(db, nil)

	mock.ExpectQuery("SELECT EXISTS").WillReturnError(errors.New("timeout"))

	_, err := s.HasEntry(context.Background(), uuid.New(), domain.OffsetDueDate, time.Now())
	var storeErr *store.StoreError
	assert.True(t, errors.As(err, &storeErr))
}

func TestPostgresHistoryStore_RecordEntry(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresHistoryStore(db, nil)

	entry := domain.HistoryEntry{
		ProfileID:  uuid.New(),
		Kind:       domain.OffsetWeekBefore,
		TargetDate: time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
		SentAt:     time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO notification_history").
		WithArgs(entry.ProfileID.String(), "week_before", "2026-11-03", entry.SentAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.RecordEntry(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())

	err := s.RecordEntry(context.Background(), domain.HistoryEntry{Kind: domain.OffsetDueDate})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestPostgresHistoryStore_ClearEntries(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresHistoryStore(db, nil)

	profileID := uuid.New()
	mock.ExpectExec("DELETE FROM notification_history").
		WithArgs(profileID.String()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, s.ClearEntries(context.Background(), profileID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresHistoryStore_Entries(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresHistoryStore(db, nil)

	profileID := uuid.New()
	target := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	sent := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	columns := []string{"profile_id", "kind", "target_date", "sent_at"}
	mock.ExpectQuery("FROM notification_history").
		WithArgs(profileID.String()).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(profileID.String(), "day_before", target, sent).
			AddRow(profileID.String(), "week_before", target, sent))

	entries, err := s.Entries(context.Background(), profileID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.OffsetDayBefore, entries[0].Kind)
	assert.True(t, target.Equal(entries[1].TargetDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresHistoryStore_EntriesCorrupted(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresHistoryStore(db, nil)

	profileID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("FROM notification_history").
		WillReturnRows(sqlmock.NewRows([]string{"profile_id", "kind", "target_date", "sent_at"}).
			AddRow(profileID.String(), "due_date", now, now).
			AddRow(profileID.String(), "fortnight_before", now, now))

	entries, err := s.Entries(context.Background(), profileID)
	assert.ErrorIs(t, err, store.ErrCorrupted)
	assert.Len(t, entries, 1)
}
