// Package recurrence expands habit definitions into dated occurrences.
//
// Everything here is a pure function of its inputs. Malformed definitions
// never occur instead of failing, because half-filled habits exist while a
// form is being edited upstream.
package recurrence

import (
	"iter"
	"strconv"
	"strings"
	"time"

	"plancal/internal/model"
)

const (
	DefaultHabitDuration = 25
	DefaultHabitColor    = "#6fead1"
	DefaultHabitTitle    = "Habit"
)

// RuleOf extracts the schedule of a habit.
func RuleOf(h model.HabitRecord) Rule {
	return Rule{
		Start: h.StartDate,
		Until: h.RepeatUntil,
		Days:  NewWeekdaySet(h.RepeatDays),
	}
}

// Schedulable reports whether h can occur at all: active, with a start date
// and a time of day.
func Schedulable(h model.HabitRecord) bool {
	return h.Active && !h.StartDate.IsZero() && strings.TrimSpace(h.TimeOfDay) != ""
}

// OccursOn reports whether habit h has an occurrence on day.
func OccursOn(h model.HabitRecord, day time.Time) bool {
	if !Schedulable(h) {
		return false
	}
	return RuleOf(h).Matches(day)
}

// Expand yields the dates in [rangeStart, rangeEnd] on which h occurs, in
// ascending order. The sequence can be ranged over any number of times.
func Expand(h model.HabitRecord, rangeStart, rangeEnd time.Time) iter.Seq[time.Time] {
	if !Schedulable(h) {
		return func(func(time.Time) bool) {}
	}
	return RuleOf(h).Dates(rangeStart, rangeEnd)
}

// Materialize turns every expanded date into a calendar event.
func Materialize(h model.HabitRecord, rangeStart, rangeEnd time.Time) iter.Seq[model.CalendarEvent] {
	dates := Expand(h, rangeStart, rangeEnd)
	return func(yield func(model.CalendarEvent) bool) {
		for d := range dates {
			if !yield(Occurrence(h, d)) {
				return
			}
		}
	}
}

// Occurrence builds the event of h on day without checking the schedule.
func Occurrence(h model.HabitRecord, day time.Time) model.CalendarEvent {
	start := ParseClock(h.TimeOfDay)
	dur := h.Duration
	if dur <= 0 {
		dur = DefaultHabitDuration
	}
	color := h.Color
	if color == "" {
		color = DefaultHabitColor
	}
	title := h.Title
	if title == "" {
		title = DefaultHabitTitle
	}
	day = model.DateOf(day)
	return model.CalendarEvent{
		Key:         model.HabitKey(h.ID, day),
		Title:       title,
		Description: h.Description,
		Color:       color,
		Date:        day,
		StartMinute: start,
		EndMinute:   start + dur,
		SourceRef:   h.GoalID,
	}
}

// ParseClock reads "HH:MM" or "HH:MM:SS" as minutes after midnight. Seconds
// are dropped. Anything unparseable yields 0.
func ParseClock(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0
	}
	return hh*60 + mm
}
