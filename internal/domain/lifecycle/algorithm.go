package lifecycle

import (
	"fmt"
	"time"

	"github.com/phrazzld/sprout/internal/domain"
)

// StageTransition is the result of a progression check that found the
// profile behind its correct stage.
type StageTransition struct {
	From      domain.Stage
	To        domain.Stage
	AgeMonths int

	// Birth marks the special prenatal exit: the caller must move the
	// target date into the origin date and clear the target date.
	Birth      bool
	OriginDate time.Time
}

// Apply writes the transition into the given working copy.
func (t *StageTransition) Apply(p *domain.Profile) {
	p.Stage = t.To
	if t.Birth {
		origin := t.OriginDate
		p.OriginDate = &origin
		p.TargetDate = nil
	}
}

// ageInMonths counts whole calendar months elapsed from origin to now.
// A month is complete once the day of month of origin has been reached.
// Times before origin yield zero.
func ageInMonths(origin, now time.Time) int {
	o := origin.UTC()
	n := now.UTC()
	if n.Before(o) {
		return 0
	}

	months := (n.Year()-o.Year())*12 + int(n.Month()) - int(o.Month())
	if n.Day() < o.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// computeProgression determines whether the profile should advance.
//
// For prenatal profiles the bracket table is not consulted to decide
// whether to leave prenatal: reaching the target date is the trigger. The
// destination stage is then resolved from the bracket table using the target
// date as origin, never earlier than newborn, so a profile that was not
// checked for months lands on its correct stage in one pass.
//
// Returns nil when the profile already reflects its correct stage.
func computeProgression(p *domain.Profile, now time.Time, params *Params) *StageTransition {
	if p.Stage.IsPrenatal() {
		target := *p.TargetDate
		if now.Before(target) {
			return nil
		}

		age := ageInMonths(target, now)
		to := params.StageForAge(age)
		if to.Before(domain.StageNewborn) {
			to = domain.StageNewborn
		}

		return &StageTransition{
			From:       p.Stage,
			To:         to,
			AgeMonths:  age,
			Birth:      true,
			OriginDate: target,
		}
	}

	age := ageInMonths(*p.OriginDate, now)
	to := params.StageForAge(age)
	if !p.Stage.Before(to) {
		return nil
	}

	return &StageTransition{
		From:      p.Stage,
		To:        to,
		AgeMonths: age,
	}
}

// migrateAttributes maps an interest set onto the vocabulary of a new stage.
//
// Kept attributes are those still allowed for newStage. If fewer than
// params.MinAttributes remain, suggestions for newStage are appended in
// priority order, skipping duplicates, until the minimum is met or the
// suggestions run out. Returns nil when the stages are equal or the
// resulting set is identical to the input set.
func migrateAttributes(
	old []string,
	oldStage domain.Stage,
	newStage domain.Stage,
	params *Params,
) *domain.AttributeChange {
	if oldStage == newStage {
		return nil
	}

	previous := domain.NormalizeAttributes(old)

	kept := make([]string, 0, len(previous))
	present := make(map[string]struct{}, len(previous))
	for _, a := range previous {
		if params.IsAllowed(newStage, a) {
			kept = append(kept, a)
			present[a] = struct{}{}
		}
	}

	for _, s := range params.Suggestions[newStage] {
		if len(kept) >= params.MinAttributes {
			break
		}
		if _, ok := present[s]; ok {
			continue
		}
		kept = append(kept, s)
		present[s] = struct{}{}
	}

	current := domain.NormalizeAttributes(kept)
	if equalSets(previous, current) {
		return nil
	}

	return &domain.AttributeChange{
		Previous: previous,
		Current:  current,
		Added:    difference(current, previous),
		Removed:  difference(previous, current),
	}
}

// equalSets compares two normalized attribute slices.
func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// difference returns the elements of a that are not in b, preserving a's order.
func difference(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}

	out := make([]string, 0)
	for _, s := range a {
		if _, ok := inB[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// stageMessage builds the human readable announcement for a stage change.
func stageMessage(name string, t *StageTransition) string {
	who := name
	if who == "" {
		who = "Your little one"
	}

	if t.Birth && t.To == domain.StageNewborn {
		return fmt.Sprintf("%s has arrived! Welcome to the newborn stage.", who)
	}

	return fmt.Sprintf("%s is now in the %s stage (%s old).", who, t.To, formatAge(t.AgeMonths))
}

func formatAge(months int) string {
	if months < 24 {
		return plural(months, "month")
	}
	if months%12 == 0 {
		return plural(months/12, "year")
	}
	return plural(months/12, "year") + " " + plural(months%12, "month")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
