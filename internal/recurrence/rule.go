package recurrence

import (
	"iter"
	"time"

	"plancal/internal/model"
)

// WeekdaySet is a set of weekday indices, bit i set for 0=Monday .. 6=Sunday.
type WeekdaySet uint8

// NewWeekdaySet builds a set from 0..6 indices. Indices outside that range
// are ignored.
func NewWeekdaySet(days []int) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d < 0 || d > 6 {
			continue
		}
		s |= 1 << uint(d)
	}
	return s
}

// Has reports whether index i is in the set.
func (s WeekdaySet) Has(i int) bool {
	if i < 0 || i > 6 {
		return false
	}
	return s&(1<<uint(i)) != 0
}

// Empty reports whether no weekday is selected.
func (s WeekdaySet) Empty() bool {
	return s == 0
}

// Indices lists the members in ascending order.
func (s WeekdaySet) Indices() []int {
	out := make([]int, 0, 7)
	for i := 0; i < 7; i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// Rule is a weekly schedule: every selected weekday from Start through
// Until (both civil dates, inclusive).
type Rule struct {
	Start time.Time
	Until *time.Time
	Days  WeekdaySet
}

// Matches reports whether the rule fires on day.
func (r Rule) Matches(day time.Time) bool {
	day = model.DateOf(day)
	if day.Before(model.DateOf(r.Start)) {
		return false
	}
	if r.Until != nil && day.After(model.DateOf(*r.Until)) {
		return false
	}
	return r.Days.Has(model.MondayIndex(day.Weekday()))
}

// Dates yields every matching day in [start, end] in ascending order. The
// walk goes day by day; irregular weekday sets clipped by start/until have no
// useful closed form.
func (r Rule) Dates(start, end time.Time) iter.Seq[time.Time] {
	start, end = model.DateOf(start), model.DateOf(end)
	return func(yield func(time.Time) bool) {
		if r.Days.Empty() {
			return
		}
		// Nothing before the rule start or after its until date can match.
		from, to := start, end
		if s := model.DateOf(r.Start); from.Before(s) {
			from = s
		}
		if r.Until != nil {
			if u := model.DateOf(*r.Until); to.After(u) {
				to = u
			}
		}
		for d := from; !d.After(to); d = model.AddDays(d, 1) {
			if r.Matches(d) && !yield(d) {
				return
			}
		}
	}
}
