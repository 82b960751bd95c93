package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/sprout/internal/domain"
)

// Common errors
var (
	ErrNilProfile        = errors.New("profile cannot be nil")
	ErrAttributeNotValid = errors.New("attribute not allowed for stage")
)

// Service defines the interface for lifecycle progression operations.
// All methods are pure: they never mutate their inputs and are deterministic
// for a given set of arguments, so callers may retry them freely.
type Service interface {
	// ComputeProgression returns the stage transition the profile is due for
	// as of now, or nil when the profile already reflects its correct stage.
	ComputeProgression(profile *domain.Profile, now time.Time) (*StageTransition, error)

	// MigrateAttributes maps an interest set from oldStage onto newStage.
	// Returns nil when nothing would change.
	MigrateAttributes(
		old []string,
		oldStage domain.Stage,
		newStage domain.Stage,
	) (*domain.AttributeChange, error)

	// StageMessage builds the announcement shown for a transition.
	StageMessage(profile *domain.Profile, transition *StageTransition) string

	// IsStale reports whether the profile has gone longer than the configured
	// staleness window without an update.
	IsStale(profile *domain.Profile, now time.Time) bool

	// ValidateAttributes checks that every attribute is allowed for the stage.
	ValidateAttributes(stage domain.Stage, attributes []string) error
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new lifecycle service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new lifecycle service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, errors.New("params cannot be nil")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lifecycle params: %w", err)
	}

	return &defaultService{
		params: params,
	}, nil
}

// ComputeProgression implements the Service interface
func (s *defaultService) ComputeProgression(
	profile *domain.Profile,
	now time.Time,
) (*StageTransition, error) {
	if profile == nil {
		return nil, ErrNilProfile
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return computeProgression(profile, now, s.params), nil
}

// MigrateAttributes implements the Service interface
func (s *defaultService) MigrateAttributes(
	old []string,
	oldStage domain.Stage,
	newStage domain.Stage,
) (*domain.AttributeChange, error) {
	if !oldStage.IsValid() || !newStage.IsValid() {
		return nil, domain.ErrInvalidStage
	}

	return migrateAttributes(old, oldStage, newStage, s.params), nil
}

// StageMessage implements the Service interface
func (s *defaultService) StageMessage(profile *domain.Profile, transition *StageTransition) string {
	if transition == nil {
		return ""
	}

	name := ""
	if profile != nil {
		name = profile.Name
	}
	return stageMessage(name, transition)
}

// IsStale implements the Service interface
func (s *defaultService) IsStale(profile *domain.Profile, now time.Time) bool {
	if profile == nil {
		return false
	}
	return now.Sub(profile.LastUpdatedAt) > s.params.StaleAfter
}

// ValidateAttributes implements the Service interface
func (s *defaultService) ValidateAttributes(stage domain.Stage, attributes []string) error {
	if !stage.IsValid() {
		return domain.ErrInvalidStage
	}

	for _, a := range attributes {
		if !s.params.IsAllowed(stage, a) {
			return fmt.Errorf("%w: %q for %s", ErrAttributeNotValid, a, stage)
		}
	}
	return nil
}
