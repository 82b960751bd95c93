package api

import (
	"time"

	"github.com/phrazzld/sprout/internal/domain"
)

// SaveProfileRequest is the body of PUT /v1/profile. It replaces the whole
// stored profile.
type SaveProfileRequest struct {
	Name       string     `json:"name"        validate:"max=64"`
	Stage      string     `json:"stage"       validate:"required,oneof=prenatal newborn infant toddler preschooler"`
	TargetDate *time.Time `json:"target_date" validate:"required_if=Stage prenatal,excluded_unless=Stage prenatal"`
	OriginDate *time.Time `json:"origin_date" validate:"required_unless=Stage prenatal,excluded_if=Stage prenatal"`
	Attributes []string   `json:"attributes"  validate:"max=20,dive,required,max=40"`
}

// ProfileResponse is the wire form of a profile.
type ProfileResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	Stage         string     `json:"stage"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	OriginDate    *time.Time `json:"origin_date,omitempty"`
	Attributes    []string   `json:"attributes"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AutoUpdateResponse is the body returned by POST /v1/auto-update.
type AutoUpdateResponse struct {
	HasChanges      bool                    `json:"has_changes"`
	StageChange     *domain.StageChange     `json:"stage_change,omitempty"`
	AttributeChange *domain.AttributeChange `json:"attribute_change,omitempty"`
	MetadataChange  *domain.MetadataChange  `json:"metadata_change,omitempty"`
}

// NeedsUpdateResponse is the body returned by GET /v1/auto-update/needed.
type NeedsUpdateResponse struct {
	NeedsUpdate bool `json:"needs_update"`
}

func profileToResponse(p *domain.Profile) ProfileResponse {
	attrs := p.Attributes
	if attrs == nil {
		attrs = []string{}
	}
	return ProfileResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Stage:         p.Stage.String(),
		TargetDate:    p.TargetDate,
		OriginDate:    p.OriginDate,
		Attributes:    attrs,
		LastUpdatedAt: p.LastUpdatedAt,
		CreatedAt:     p.CreatedAt,
	}
}

func resultToResponse(r domain.AutoUpdateResult) AutoUpdateResponse {
	return AutoUpdateResponse{
		HasChanges:      r.HasChanges(),
		StageChange:     r.StageChange,
		AttributeChange: r.AttributeChange,
		MetadataChange:  r.MetadataChange,
	}
}
