package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Profile
var (
	ErrEmptyProfileID       = fmt.Errorf("%w: profile ID cannot be empty", ErrValidation)
	ErrMissingTargetDate    = fmt.Errorf("%w: prenatal profile requires a target date", ErrValidation)
	ErrUnexpectedOriginDate = fmt.Errorf("%w: prenatal profile cannot have an origin date", ErrValidation)
	ErrMissingOriginDate    = fmt.Errorf("%w: profile past prenatal requires an origin date", ErrValidation)
	ErrUnexpectedTargetDate = fmt.Errorf("%w: profile past prenatal cannot have a target date", ErrValidation)
)

// Profile is the tracked entity whose life stage advances over time.
// Exactly one of TargetDate and OriginDate is set, depending on whether the
// profile is still prenatal.
type Profile struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name,omitempty"`
	Stage         Stage      `json:"stage"`
	TargetDate    *time.Time `json:"target_date,omitempty"` // Anticipated due date, prenatal only
	OriginDate    *time.Time `json:"origin_date,omitempty"` // Date age is computed from
	Attributes    []string   `json:"attributes"`            // Interest tags, sorted and unique
	LastUpdatedAt time.Time  `json:"last_updated_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewPrenatalProfile creates a profile that is waiting for its target date.
func NewPrenatalProfile(name string, targetDate time.Time, attributes []string) (*Profile, error) {
	now := time.Now().UTC()
	target := targetDate.UTC()
	p := &Profile{
		ID:            uuid.New(),
		Name:          name,
		Stage:         StagePrenatal,
		TargetDate:    &target,
		Attributes:    NormalizeAttributes(attributes),
		LastUpdatedAt: now,
		CreatedAt:     now,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// NewProfile creates a profile that already has an origin date.
func NewProfile(name string, stage Stage, originDate time.Time, attributes []string) (*Profile, error) {
	now := time.Now().UTC()
	origin := originDate.UTC()
	p := &Profile{
		ID:            uuid.New(),
		Name:          name,
		Stage:         stage,
		OriginDate:    &origin,
		Attributes:    NormalizeAttributes(attributes),
		LastUpdatedAt: now,
		CreatedAt:     now,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks the structural invariants of the profile.
// Vocabulary membership of attributes depends on configuration and is
// checked by the lifecycle package.
func (p *Profile) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProfileID
	}

	if !p.Stage.IsValid() {
		return ErrInvalidStage
	}

	if p.Stage.IsPrenatal() {
		if p.TargetDate == nil {
			return ErrMissingTargetDate
		}
		if p.OriginDate != nil {
			return ErrUnexpectedOriginDate
		}
		return nil
	}

	if p.OriginDate == nil {
		return ErrMissingOriginDate
	}
	if p.TargetDate != nil {
		return ErrUnexpectedTargetDate
	}

	return nil
}

// Clone returns a deep copy suitable for use as a working copy.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	c := *p
	if p.TargetDate != nil {
		t := *p.TargetDate
		c.TargetDate = &t
	}
	if p.OriginDate != nil {
		o := *p.OriginDate
		c.OriginDate = &o
	}
	c.Attributes = append([]string(nil), p.Attributes...)
	return &c
}

// NormalizeAttributes returns a sorted copy of the tags with duplicates and
// empty strings removed. The result is never nil.
func NormalizeAttributes(attrs []string) []string {
	seen := make(map[string]struct{}, len(attrs))
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
