package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/sprout/internal/domain"
)

// Bracket maps a stage to the half-open age range [MinMonths, MaxMonths)
// in whole months. A MaxMonths of zero means the bracket is open-ended.
type Bracket struct {
	Stage     domain.Stage
	MinMonths int
	MaxMonths int
}

// Contains reports whether the age falls inside the bracket.
// The lower bound is inclusive so that boundary ages resolve to the later stage.
func (b Bracket) Contains(ageMonths int) bool {
	if ageMonths < b.MinMonths {
		return false
	}
	return b.MaxMonths == 0 || ageMonths < b.MaxMonths
}

// Params defines all configurable parameters for stage progression and
// interest migration
type Params struct {
	// Brackets is the ordered age table for every stage after prenatal
	Brackets []Bracket

	// Vocabulary is the allowed interest set per stage
	Vocabulary map[domain.Stage][]string

	// Suggestions is the priority order used to top up interests after a
	// stage change. Every entry must also appear in the stage vocabulary.
	Suggestions map[domain.Stage][]string

	// MinAttributes is the interest count migration tops up to
	MinAttributes int

	// StaleAfter is how long a profile may go without an update before
	// NeedsAutoUpdate reports true on its own
	StaleAfter time.Duration
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinAttributes int
	StaleAfter    time.Duration

	// Brackets replaces the whole age table when non-empty
	Brackets []Bracket
}

// Validation errors for Params
var (
	ErrNoBrackets         = errors.New("at least one age bracket is required")
	ErrBracketOrder       = errors.New("age brackets must be contiguous and follow stage order")
	ErrPrenatalBracket    = errors.New("prenatal stage cannot have an age bracket")
	ErrSuggestionNotInVoc = errors.New("suggestion is not in stage vocabulary")
	ErrInvalidMinimum     = errors.New("minimum attribute count cannot be negative")
)

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Brackets: []Bracket{
			{Stage: domain.StageNewborn, MinMonths: 0, MaxMonths: 3},
			{Stage: domain.StageInfant, MinMonths: 3, MaxMonths: 12},
			{Stage: domain.StageToddler, MinMonths: 12, MaxMonths: 36},
			{Stage: domain.StagePreschooler, MinMonths: 36, MaxMonths: 0},
		},

		Vocabulary: map[domain.Stage][]string{
			domain.StagePrenatal: {
				"Bonding", "Calm", "Lullabies", "Nature Sounds", "Parent Voice",
			},
			domain.StageNewborn: {
				"Bonding", "Lullabies", "Parent Voice", "Simple Sounds", "Sleep", "Soft Colors",
			},
			domain.StageInfant: {
				"Animals", "Colors", "Discovery", "Movement", "Peekaboo", "Simple Sounds", "Sleep",
			},
			domain.StageToddler: {
				"Animals", "Colors", "Counting", "Discovery", "Friendship", "Movement",
				"Music", "Nature", "Vehicles",
			},
			domain.StagePreschooler: {
				"Adventure", "Animals", "Counting", "Dinosaurs", "Friendship", "Letters",
				"Music", "Nature", "Space", "Vehicles",
			},
		},

		Suggestions: map[domain.Stage][]string{
			domain.StagePrenatal:    {"Lullabies", "Parent Voice", "Calm"},
			domain.StageNewborn:     {"Lullabies", "Simple Sounds", "Soft Colors", "Sleep"},
			domain.StageInfant:      {"Discovery", "Simple Sounds", "Movement", "Peekaboo"},
			domain.StageToddler:     {"Animals", "Colors", "Movement", "Music"},
			domain.StagePreschooler: {"Adventure", "Friendship", "Animals", "Counting"},
		},

		MinAttributes: 3,
		StaleAfter:    24 * time.Hour,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if config.MinAttributes > 0 {
		params.MinAttributes = config.MinAttributes
	}
	if config.StaleAfter > 0 {
		params.StaleAfter = config.StaleAfter
	}
	if len(config.Brackets) > 0 {
		params.Brackets = append([]Bracket(nil), config.Brackets...)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}

// Validate checks that the bracket table is ordered and contiguous and that
// every suggestion is drawn from its stage vocabulary.
func (p *Params) Validate() error {
	if len(p.Brackets) == 0 {
		return ErrNoBrackets
	}

	if p.MinAttributes < 0 {
		return ErrInvalidMinimum
	}

	for i, b := range p.Brackets {
		if b.Stage.IsPrenatal() {
			return ErrPrenatalBracket
		}
		if !b.Stage.IsValid() {
			return fmt.Errorf("%w: bracket %d", domain.ErrInvalidStage, i)
		}
		if i == 0 {
			continue
		}

		prev := p.Brackets[i-1]
		if !prev.Stage.Before(b.Stage) || prev.MaxMonths != b.MinMonths {
			return fmt.Errorf("%w: %s -> %s", ErrBracketOrder, prev.Stage, b.Stage)
		}
	}

	for stage, suggestions := range p.Suggestions {
		for _, s := range suggestions {
			if !p.IsAllowed(stage, s) {
				return fmt.Errorf("%w: %q for %s", ErrSuggestionNotInVoc, s, stage)
			}
		}
	}

	return nil
}

// IsAllowed reports whether the tag is in the stage vocabulary.
func (p *Params) IsAllowed(stage domain.Stage, tag string) bool {
	for _, v := range p.Vocabulary[stage] {
		if v == tag {
			return true
		}
	}
	return false
}

// StageForAge returns the stage whose bracket contains the age. Ages past
// the last bracket resolve to the last stage; negative ages resolve to the first.
func (p *Params) StageForAge(ageMonths int) domain.Stage {
	for _, b := range p.Brackets {
		if b.Contains(ageMonths) {
			return b.Stage
		}
	}

	if ageMonths < p.Brackets[0].MinMonths {
		return p.Brackets[0].Stage
	}
	return p.Brackets[len(p.Brackets)-1].Stage
}
