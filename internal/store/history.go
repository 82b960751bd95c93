package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprout/internal/domain"
)

// HistoryStore persists markers for campaign points that were already
// delivered or confirmed scheduled. Entries are keyed by profile and offset
// kind; the stored target date tells whether a marker still applies.
type HistoryStore interface {
	// HasEntry reports whether a marker exists for the profile and kind whose
	// target date falls on the same calendar day as targetDate.
	HasEntry(
		ctx context.Context,
		profileID uuid.UUID,
		kind domain.OffsetKind,
		targetDate time.Time,
	) (bool, error)

	// RecordEntry writes or replaces the marker for (entry.ProfileID, entry.Kind).
	RecordEntry(ctx context.Context, entry domain.HistoryEntry) error

	// ClearEntries removes every marker for the profile.
	ClearEntries(ctx context.Context, profileID uuid.UUID) error

	// Entries lists every marker for the profile ordered by kind.
	// Returns an error wrapping ErrCorrupted if any stored marker cannot be decoded.
	Entries(ctx context.Context, profileID uuid.UUID) ([]domain.HistoryEntry, error)
}
