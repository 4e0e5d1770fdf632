package agenda

import (
	"time"

	"plancal/internal/model"
	"plancal/internal/recurrence"
)

// HabitProgress summarises one habit for the week containing "today".
type HabitProgress struct {
	HabitID    string
	WeekTarget int
	WeekDone   int
	Streak     int
}

// Progress reports week target, week completions and the current streak
// for every active habit. Weeks follow the calendar's week start.
//
// The streak counts scheduled days with a completion, walking back from
// today. Unscheduled days are skipped; the first scheduled day without a
// completion, or the habit's start or until bound, ends the walk.
func (c *Calendar) Progress(today time.Time) []HabitProgress {
	today = model.DateOf(today)
	weekStart := model.WeekStartOf(today, c.opts.WeekStart)
	weekEnd := model.AddDays(weekStart, 6)

	res := make([]HabitProgress, 0, len(c.habits))
	for _, h := range c.habits {
		if !h.Active {
			continue
		}
		p := HabitProgress{HabitID: h.ID}
		for range recurrence.Expand(h, weekStart, weekEnd) {
			p.WeekTarget++
		}
		p.WeekDone = c.done.CountBetween(h.ID, weekStart, weekEnd)
		p.Streak = c.streak(h, recurrence.RuleOf(h), today)
		res = append(res, p)
	}
	return res
}

func (c *Calendar) streak(h model.HabitRecord, rule recurrence.Rule, today time.Time) int {
	if h.StartDate.IsZero() || rule.Days.Empty() {
		return 0
	}
	n := 0
	for d := today; ; d = model.AddDays(d, -1) {
		if d.Before(h.StartDate) || (h.RepeatUntil != nil && d.After(*h.RepeatUntil)) {
			return n
		}
		if !rule.Matches(d) {
			continue
		}
		if !c.done.Has(h.ID, d) {
			return n
		}
		n++
	}
}
