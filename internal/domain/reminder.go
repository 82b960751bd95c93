package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OffsetKind identifies one reminder point within a campaign
type OffsetKind string

// Known offset kinds, ordered from earliest to latest relative to the target date
const (
	OffsetWeekBefore      OffsetKind = "week_before"
	OffsetThreeDaysBefore OffsetKind = "three_days_before"
	OffsetDayBefore       OffsetKind = "day_before"
	OffsetDueDate         OffsetKind = "due_date"
	OffsetDayAfter        OffsetKind = "day_after"
)

// IsValid reports whether the kind is one of the known offset kinds.
func (k OffsetKind) IsValid() bool {
	switch k {
	case OffsetWeekBefore, OffsetThreeDaysBefore, OffsetDayBefore, OffsetDueDate, OffsetDayAfter:
		return true
	default:
		return false
	}
}

// ReminderIdentity is the stable identity a campaign point is registered under.
// Registering the same identity twice replaces the earlier registration.
func ReminderIdentity(profileID uuid.UUID, kind OffsetKind) string {
	return fmt.Sprintf("%s.%s", profileID, kind)
}

// ParseReminderIdentity splits an identity produced by ReminderIdentity.
func ParseReminderIdentity(identity string) (uuid.UUID, OffsetKind, error) {
	idPart, kindPart, ok := strings.Cut(identity, ".")
	if !ok {
		return uuid.Nil, "", fmt.Errorf("%w: %q", ErrInvalidID, identity)
	}

	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	kind := OffsetKind(kindPart)
	if !kind.IsValid() {
		return uuid.Nil, "", fmt.Errorf("%w: %q", ErrInvalidOffsetKind, kindPart)
	}

	return id, kind, nil
}

// CampaignPoint is one concrete reminder instant anchored to a target date.
type CampaignPoint struct {
	ProfileID  uuid.UUID  `json:"profile_id"`
	Kind       OffsetKind `json:"kind"`
	TargetDate time.Time  `json:"target_date"`
	FireAt     time.Time  `json:"fire_at"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
}

// Identity returns the registration identity of the point.
func (p CampaignPoint) Identity() string {
	return ReminderIdentity(p.ProfileID, p.Kind)
}

// HistoryEntry marks a campaign point as delivered or confirmed-scheduled
// for a specific target date.
type HistoryEntry struct {
	ProfileID  uuid.UUID  `json:"profile_id"`
	Kind       OffsetKind `json:"kind"`
	TargetDate time.Time  `json:"target_date"`
	SentAt     time.Time  `json:"sent_at"`
}

// SameTargetDate reports whether two target dates refer to the same calendar day.
// Target dates are compared at day granularity in UTC so that re-saving a
// profile with a different time-of-day does not retire its campaign.
func SameTargetDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
