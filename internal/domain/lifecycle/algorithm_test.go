package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bornProfile(stage domain.Stage, origin time.Time, attrs ...string) *domain.Profile {
	return &domain.Profile{
		ID:         uuid.New(),
		Stage:      stage,
		OriginDate: &origin,
		Attributes: domain.NormalizeAttributes(attrs),
	}
}

func prenatalProfile(target time.Time) *domain.Profile {
	return &domain.Profile{
		ID:         uuid.New(),
		Stage:      domain.StagePrenatal,
		TargetDate: &target,
		Attributes: []string{},
	}
}

func TestAgeInMonths(t *testing.T) {
	t.Parallel()
	origin := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		now      time.Time
		expected int
	}{
		{"same day", origin, 0},
		{"before origin", origin.AddDate(0, 0, -3), 0},
		{"one day short of a month", time.Date(2025, 2, 14, 23, 0, 0, 0, time.UTC), 0},
		{"exactly one month", time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), 1},
		{"year boundary", time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC), 11},
		{"fourteen months", time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), 14},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ageInMonths(origin, tc.now))
		})
	}
}

func TestComputeProgressionBoundary(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	origin := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	profile := bornProfile(domain.StageNewborn, origin)

	// Age 2 months: still inside the newborn bracket.
	before := computeProgression(profile, time.Date(2025, 4, 14, 12, 0, 0, 0, time.UTC), params)
	assert.Nil(t, before, "one day before the boundary should not advance")

	// Age exactly 3 months: lower bound of the infant bracket.
	at := computeProgression(profile, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), params)
	require.NotNil(t, at, "boundary age should resolve to the later stage")
	assert.Equal(t, domain.StageInfant, at.To)
	assert.Equal(t, 3, at.AgeMonths)
	assert.False(t, at.Birth)
}

func TestComputeProgressionScenarios(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	newborn := bornProfile(domain.StageNewborn, now.AddDate(0, -8, 0))
	transition := computeProgression(newborn, now, params)
	require.NotNil(t, transition)
	assert.Equal(t, domain.StageNewborn, transition.From)
	assert.Equal(t, domain.StageInfant, transition.To)

	infant := bornProfile(domain.StageInfant, now.AddDate(0, -14, 0))
	transition = computeProgression(infant, now, params)
	require.NotNil(t, transition)
	assert.Equal(t, domain.StageToddler, transition.To)
	assert.Equal(t, 14, transition.AgeMonths)

	// A profile already on a later stage than its age never regresses.
	ahead := bornProfile(domain.StageToddler, now.AddDate(0, -5, 0))
	assert.Nil(t, computeProgression(ahead, now, params))
}

func TestComputeProgressionPrenatal(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	target := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	t.Run("before target date", func(t *testing.T) {
		p := prenatalProfile(target)
		assert.Nil(t, computeProgression(p, target.Add(-time.Second), params))
	})

	t.Run("on target date", func(t *testing.T) {
		p := prenatalProfile(target)
		transition := computeProgression(p, target, params)
		require.NotNil(t, transition)
		assert.True(t, transition.Birth)
		assert.Equal(t, domain.StageNewborn, transition.To)
		assert.True(t, transition.OriginDate.Equal(target))

		transition.Apply(p)
		assert.Equal(t, domain.StageNewborn, p.Stage)
		assert.Nil(t, p.TargetDate)
		require.NotNil(t, p.OriginDate)
		assert.True(t, p.OriginDate.Equal(target))
		assert.NoError(t, p.Validate())
	})

	t.Run("target date long past", func(t *testing.T) {
		p := prenatalProfile(target)
		transition := computeProgression(p, target.AddDate(0, 5, 0), params)
		require.NotNil(t, transition)
		assert.True(t, transition.Birth)
		assert.Equal(t, domain.StageInfant, transition.To)

		// Applying it leaves nothing further to do at the same instant.
		transition.Apply(p)
		assert.Nil(t, computeProgression(p, target.AddDate(0, 5, 0), params))
	})
}

func TestComputeProgressionMonotonic(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	origin := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	profile := bornProfile(domain.StageNewborn, origin)

	previous := profile.Stage
	for month := 0; month <= 80; month++ {
		now := origin.AddDate(0, month, 0)
		if transition := computeProgression(profile, now, params); transition != nil {
			transition.Apply(profile)
		}

		assert.False(t, profile.Stage.Before(previous),
			"stage regressed from %s to %s at month %d", previous, profile.Stage, month)
		previous = profile.Stage

		// Idempotent at the same instant.
		assert.Nil(t, computeProgression(profile, now, params))
	}

	assert.Equal(t, domain.StagePreschooler, profile.Stage)
}

func TestMigrateAttributes(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	t.Run("same stage is a no-op", func(t *testing.T) {
		change := migrateAttributes([]string{"Sleep"}, domain.StageInfant, domain.StageInfant, params)
		assert.Nil(t, change)
	})

	t.Run("infant to toddler tops up to minimum", func(t *testing.T) {
		old := []string{"Discovery", "Simple Sounds", "Movement"}
		change := migrateAttributes(old, domain.StageInfant, domain.StageToddler, params)
		require.NotNil(t, change)

		assert.Equal(t, []string{"Discovery", "Movement", "Simple Sounds"}, change.Previous)
		assert.Equal(t, []string{"Animals", "Discovery", "Movement"}, change.Current)
		assert.Equal(t, []string{"Animals"}, change.Added)
		assert.Equal(t, []string{"Simple Sounds"}, change.Removed)

		for _, a := range change.Current {
			assert.True(t, params.IsAllowed(domain.StageToddler, a), "%q not in toddler vocabulary", a)
		}
	})

	t.Run("already valid set yields nothing", func(t *testing.T) {
		old := []string{"Animals", "Colors", "Music", "Vehicles"}
		assert.Nil(t, migrateAttributes(old, domain.StageInfant, domain.StageToddler, params))
	})

	t.Run("empty set is filled from suggestions", func(t *testing.T) {
		change := migrateAttributes(nil, domain.StagePrenatal, domain.StageNewborn, params)
		require.NotNil(t, change)
		assert.Equal(t, []string{"Lullabies", "Simple Sounds", "Soft Colors"}, change.Current)
		assert.Empty(t, change.Removed)
	})

	t.Run("suggestions exhausted stops below minimum", func(t *testing.T) {
		small := NewDefaultParams()
		small.MinAttributes = 10
		change := migrateAttributes(nil, domain.StageInfant, domain.StageToddler, small)
		require.NotNil(t, change)
		assert.Len(t, change.Current, len(small.Suggestions[domain.StageToddler]))
	})

	t.Run("deterministic", func(t *testing.T) {
		old := []string{"Peekaboo", "Sleep", "Colors"}
		first := migrateAttributes(old, domain.StageInfant, domain.StageToddler, params)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, migrateAttributes(old, domain.StageInfant, domain.StageToddler, params))
		}
	})
}

func TestMigrateAttributesSubsetOfVocabulary(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	stages := domain.AllStages()

	for _, from := range stages {
		for _, to := range stages {
			if !from.Before(to) {
				continue
			}
			old := params.Vocabulary[from]
			change := migrateAttributes(old, from, to, params)
			if change == nil {
				continue
			}
			for _, a := range change.Current {
				assert.True(t, params.IsAllowed(to, a), "%s -> %s kept %q", from, to, a)
			}
			expectedMin := params.MinAttributes
			if n := len(params.Vocabulary[to]); n < expectedMin {
				expectedMin = n
			}
			assert.GreaterOrEqual(t, len(change.Current), expectedMin, "%s -> %s", from, to)
		}
	}
}

func TestStageMessage(t *testing.T) {
	t.Parallel()

	birth := &StageTransition{From: domain.StagePrenatal, To: domain.StageNewborn, Birth: true}
	assert.Equal(t, "Robin has arrived! Welcome to the newborn stage.", stageMessage("Robin", birth))

	toddler := &StageTransition{From: domain.StageInfant, To: domain.StageToddler, AgeMonths: 14}
	assert.Equal(t, "Your little one is now in the toddler stage (14 months old).", stageMessage("", toddler))

	preschool := &StageTransition{From: domain.StageToddler, To: domain.StagePreschooler, AgeMonths: 37}
	assert.Equal(t, "Robin is now in the preschooler stage (3 years 1 month old).", stageMessage("Robin", preschool))
}
