package reminder

import (
	"fmt"
	"time"

	"github.com/phrazzld/sprout/internal/domain"
)

// Offset is one point of the campaign template, in whole days relative to
// the target date.
type Offset struct {
	Kind domain.OffsetKind
	Days int
}

// Template is the fixed campaign, ordered from earliest to latest.
var Template = []Offset{
	{Kind: domain.OffsetWeekBefore, Days: -7},
	{Kind: domain.OffsetThreeDaysBefore, Days: -3},
	{Kind: domain.OffsetDayBefore, Days: -1},
	{Kind: domain.OffsetDueDate, Days: 0},
	{Kind: domain.OffsetDayAfter, Days: 1},
}

// FireAt returns the instant the offset fires for the target date: the
// calendar day of target plus the offset, at deliveryHour in loc.
func FireAt(target time.Time, o Offset, deliveryHour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := target.In(loc).Date()
	return time.Date(y, m, d+o.Days, deliveryHour, 0, 0, 0, loc)
}

// Copy returns the title and body shown for the offset.
func Copy(kind domain.OffsetKind, name string) (string, string) {
	who := name
	if who == "" {
		who = "your baby"
	}

	switch kind {
	case domain.OffsetWeekBefore:
		return "One week to go",
			fmt.Sprintf("Only a week until you meet %s. Time to pack the hospital bag.", who)
	case domain.OffsetThreeDaysBefore:
		return "Three days to go",
			fmt.Sprintf("%s could arrive any day now. Rest up and keep your phone close.", capitalize(who))
	case domain.OffsetDayBefore:
		return "Tomorrow's the day",
			fmt.Sprintf("Your due date for %s is tomorrow. You've got this.", who)
	case domain.OffsetDueDate:
		return "Happy due date",
			fmt.Sprintf("Today is the day %s is due. Sending calm thoughts your way.", who)
	case domain.OffsetDayAfter:
		return "Any news?",
			fmt.Sprintf("Has %s arrived? Update the profile to start the newborn stage.", who)
	default:
		return "Reminder", fmt.Sprintf("A reminder about %s.", who)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
