package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"

	"plancal/internal/model"
)

var byDay = [7]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// At combines a civil date with a minute-of-day in loc.
func At(day time.Time, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(minute) * time.Minute)
}

// RRule renders h as an RFC 5545 weekly rule (without DTSTART) and returns
// the first real occurrence, which callers must use as DTSTART: a start date
// that falls outside the weekday set would otherwise count as an instance.
// ok is false when h never occurs.
func RRule(h model.HabitRecord, loc *time.Location) (rule string, first time.Time, ok bool) {
	if !Schedulable(h) {
		return "", time.Time{}, false
	}
	r := RuleOf(h)

	var firstDay time.Time
	for d := range r.Dates(h.StartDate, model.AddDays(h.StartDate, 6)) {
		firstDay = d
		break
	}
	if firstDay.IsZero() {
		return "", time.Time{}, false
	}

	minute := ParseClock(h.TimeOfDay)
	opt := rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: At(firstDay, minute, loc),
		Wkst:    rrule.MO,
	}
	for _, i := range r.Days.Indices() {
		opt.Byweekday = append(opt.Byweekday, byDay[i])
	}
	if h.RepeatUntil != nil {
		opt.Until = At(*h.RepeatUntil, minute, loc)
	}
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", time.Time{}, false
	}
	return opt.RRuleString(), opt.Dtstart, true
}
