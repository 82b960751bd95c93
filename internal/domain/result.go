package domain

import "time"

// StageChange describes a stage advance applied by an auto-update pass.
type StageChange struct {
	From      Stage  `json:"from"`
	To        Stage  `json:"to"`
	AgeMonths int    `json:"age_months"`
	Message   string `json:"message"`
}

// AttributeChange describes how the interest set moved during a stage change.
type AttributeChange struct {
	Previous []string `json:"previous"`
	Current  []string `json:"current"`
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
}

// MetadataChange records the LastUpdatedAt stamp before and after a pass.
type MetadataChange struct {
	Previous time.Time `json:"previous"`
	Current  time.Time `json:"current"`
}

// AutoUpdateResult is the outcome of one orchestration pass. It is created
// fresh per invocation and never persisted.
//
// When Err is set none of the change fields are populated: the caller must
// treat the profile state as unknown and retry later.
type AutoUpdateResult struct {
	StageChange     *StageChange     `json:"stage_change,omitempty"`
	AttributeChange *AttributeChange `json:"attribute_change,omitempty"`
	MetadataChange  *MetadataChange  `json:"metadata_change,omitempty"`
	Err             error            `json:"-"`
}

// HasChanges reports whether the pass changed the stage or the attributes.
func (r AutoUpdateResult) HasChanges() bool {
	return r.StageChange != nil || r.AttributeChange != nil
}

// IsSuccess reports whether the pass completed without a failure.
func (r AutoUpdateResult) IsSuccess() bool {
	return r.Err == nil
}

// FailedResult builds a result that carries only a failure.
func FailedResult(err error) AutoUpdateResult {
	return AutoUpdateResult{Err: err}
}
