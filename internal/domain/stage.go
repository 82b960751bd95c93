package domain

import (
	"fmt"
	"strings"
)

// Stage represents an ordered life phase of a tracked profile
type Stage string

// Possible stage values, in progression order
const (
	StagePrenatal    Stage = "prenatal"
	StageNewborn     Stage = "newborn"
	StageInfant      Stage = "infant"
	StageToddler     Stage = "toddler"
	StagePreschooler Stage = "preschooler"
)

// stageOrder is the canonical progression order. Index position is the rank.
var stageOrder = []Stage{
	StagePrenatal,
	StageNewborn,
	StageInfant,
	StageToddler,
	StagePreschooler,
}

// AllStages returns every stage in progression order.
func AllStages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Index returns the rank of the stage in the progression order,
// or -1 if the stage is unknown.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether the stage is one of the known stages.
func (s Stage) IsValid() bool {
	return s.Index() >= 0
}

// Before reports whether s comes strictly earlier than other in the progression.
// Unknown stages are never before anything.
func (s Stage) Before(other Stage) bool {
	i, j := s.Index(), other.Index()
	if i < 0 || j < 0 {
		return false
	}
	return i < j
}

// IsPrenatal reports whether the stage is the one without a birth date.
func (s Stage) IsPrenatal() bool {
	return s == StagePrenatal
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	return string(s)
}

// ParseStage converts a string into a Stage, case-insensitively.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, raw)
	}
	return s, nil
}
