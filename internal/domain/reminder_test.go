package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestReminderIdentityRoundTrip(t *testing.T) {
	id := uuid.New()
	identity := ReminderIdentity(id, OffsetDayBefore)

	gotID, gotKind, err := ParseReminderIdentity(identity)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotID != id || gotKind != OffsetDayBefore {
		t.Errorf("Expected (%s, %s), got (%s, %s)", id, OffsetDayBefore, gotID, gotKind)
	}
}

func TestParseReminderIdentityErrors(t *testing.T) {
	if _, _, err := ParseReminderIdentity("no-separator"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Expected ErrInvalidID, got %v", err)
	}
	if _, _, err := ParseReminderIdentity("not-a-uuid.due_date"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Expected ErrInvalidID, got %v", err)
	}
	if _, _, err := ParseReminderIdentity(uuid.NewString() + ".month_before"); !errors.Is(err, ErrInvalidOffsetKind) {
		t.Errorf("Expected ErrInvalidOffsetKind, got %v", err)
	}
}

func TestSameTargetDate(t *testing.T) {
	morning := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 5, 4, 21, 30, 0, 0, time.UTC)
	nextDay := time.Date(2026, 5, 5, 8, 0, 0, 0, time.UTC)

	if !SameTargetDate(morning, evening) {
		t.Error("Expected same calendar day to match")
	}
	if SameTargetDate(morning, nextDay) {
		t.Error("Expected different calendar days not to match")
	}
}

func TestAutoUpdateResultDerivedFields(t *testing.T) {
	var empty AutoUpdateResult
	if empty.HasChanges() || !empty.IsSuccess() {
		t.Error("Expected empty result to be a successful no-op")
	}

	changed := AutoUpdateResult{StageChange: &StageChange{From: StageNewborn, To: StageInfant}}
	if !changed.HasChanges() {
		t.Error("Expected stage change to count as a change")
	}

	metadataOnly := AutoUpdateResult{MetadataChange: &MetadataChange{}}
	if metadataOnly.HasChanges() {
		t.Error("Expected metadata-only result not to count as a change")
	}

	failed := FailedResult(errors.New("disk full"))
	if failed.IsSuccess() || failed.HasChanges() {
		t.Error("Expected failed result to carry only the failure")
	}
}
