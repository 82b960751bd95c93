// Package notify holds the delivery side of reminders: the permission gate
// that says whether reminders may be shown, and the registrar that arms a
// reminder for a future instant under a stable identity.
package notify

import (
	"context"
	"errors"

	"github.com/phrazzld/sprout/internal/domain"
)

// Registrar errors
var (
	// ErrPastInstant is returned when asked to arm a reminder whose instant has passed.
	ErrPastInstant = errors.New("reminder instant is in the past")

	// ErrCapacity is returned when the registrar already holds its maximum
	// number of pending reminders.
	ErrCapacity = errors.New("pending reminder capacity reached")

	// ErrClosed is returned by a registrar that has been shut down.
	ErrClosed = errors.New("registrar is closed")
)

// PermissionGate reports whether reminders can be delivered.
type PermissionGate interface {
	// CanDeliverNow reports the current permission state without prompting.
	CanDeliverNow(ctx context.Context) (bool, error)

	// RequestPermission asks for permission and reports the outcome.
	RequestPermission(ctx context.Context) (bool, error)
}

// Registrar arms and disarms reminders. Registering an identity that is
// already armed replaces the earlier registration.
type Registrar interface {
	// Register arms the point for point.FireAt under point.Identity().
	// A nil error means the reminder is armed.
	Register(ctx context.Context, point domain.CampaignPoint) error

	// Cancel disarms the identity. Unknown identities are ignored.
	Cancel(ctx context.Context, identity string) error
}

// ArmedReporter is implemented by registrars that can tell whether an
// identity is still armed. The scheduler uses it to re-arm points whose
// history survived a restart but whose registration did not.
type ArmedReporter interface {
	IsArmed(ctx context.Context, identity string) (bool, error)
}

// Sink receives reminders when they fire.
type Sink interface {
	Deliver(ctx context.Context, point domain.CampaignPoint) error
}
