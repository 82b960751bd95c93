package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprout/internal/domain"
)

// Event types
const (
	// ProfileUpdated is emitted after a changed profile has been saved.
	ProfileUpdated = "profile.updated"
)

// ProfileEvent carries a snapshot of a profile after a change.
type ProfileEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the event type constants
	Type string `json:"type"`

	// ProfileID identifies the profile the event is about
	ProfileID uuid.UUID `json:"profile_id"`

	// Payload is the JSON encoded profile snapshot
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// NewProfileEvent snapshots the profile into a new event.
func NewProfileEvent(eventType string, profile *domain.Profile) (*ProfileEvent, error) {
	if profile == nil {
		return nil, fmt.Errorf("cannot build %s event for nil profile", eventType)
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}

	return &ProfileEvent{
		ID:        uuid.New(),
		Type:      eventType,
		ProfileID: profile.ID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Profile decodes the snapshot carried by the event.
func (e *ProfileEvent) Profile() (*domain.Profile, error) {
	var p domain.Profile
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile payload: %w", err)
	}
	return &p, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *ProfileEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ProfileEvent) error
}
