package store

import (
	"context"

	"github.com/phrazzld/sprout/internal/domain"
)

// ProfileStore persists the single tracked profile.
type ProfileStore interface {
	// Load returns the stored profile.
	// Returns ErrProfileNotFound if nothing has been saved yet.
	// Returns an error wrapping ErrCorrupted if the record cannot be decoded.
	Load(ctx context.Context) (*domain.Profile, error)

	// Save replaces the stored profile with the given one.
	// Returns an error wrapping ErrInvalidEntity if the profile fails validation.
	Save(ctx context.Context, profile *domain.Profile) error

	// Delete removes the stored profile. Deleting a missing profile is not an error.
	Delete(ctx context.Context) error
}
