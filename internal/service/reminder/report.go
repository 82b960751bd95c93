package reminder

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/sprout/internal/domain"
)

// SkipReason explains why a campaign point was not armed in a pass.
type SkipReason string

// Skip reasons
const (
	SkipPast               SkipReason = "past"
	SkipAlreadySent        SkipReason = "already_sent"
	SkipPermissionDenied   SkipReason = "permission_denied"
	SkipRegistrationFailed SkipReason = "registration_failed"
)

// ScheduleReport describes what one scheduling pass did. It is informational
// only: skipped points are expected outcomes, not failures.
type ScheduleReport struct {
	ProfileID  uuid.UUID                        `json:"profile_id"`
	TargetDate *time.Time                       `json:"target_date,omitempty"`
	Scheduled  []domain.OffsetKind              `json:"scheduled"`
	Skipped    map[domain.OffsetKind]SkipReason `json:"skipped"`

	// Retired is set when history for an older target date was found and
	// that campaign was cancelled first.
	Retired bool `json:"retired"`
}

func newReport(profileID uuid.UUID, target time.Time) ScheduleReport {
	return ScheduleReport{
		ProfileID:  profileID,
		TargetDate: &target,
		Scheduled:  []domain.OffsetKind{},
		Skipped:    make(map[domain.OffsetKind]SkipReason),
	}
}

func (r *ScheduleReport) skip(kind domain.OffsetKind, reason SkipReason) {
	r.Skipped[kind] = reason
	decisions.WithLabelValues(string(reason)).Inc()
}

func (r *ScheduleReport) scheduled(kind domain.OffsetKind) {
	r.Scheduled = append(r.Scheduled, kind)
	decisions.WithLabelValues("scheduled").Inc()
}
