// Package agenda assembles day, week and month views from a record
// snapshot: tasks are bucketed by date, habits are expanded through the
// recurrence package and each day is packed into columns.
package agenda

import (
	"cmp"
	"slices"
	"time"

	"plancal/internal/layout"
	"plancal/internal/model"
	"plancal/internal/recurrence"
)

const (
	DefaultTaskDuration = 60
	DefaultTaskColor    = "#c84a5b"
	DefaultTaskTitle    = "Task"

	minutesPerDay = 24 * 60
)

// MidnightPolicy decides what happens to events running past 24:00.
type MidnightPolicy string

const (
	// MidnightClip ends such events at 24:00 of their own day.
	MidnightClip MidnightPolicy = "clip"
	// MidnightOverflow keeps EndMinute above 1440 and leaves rendering to
	// the caller.
	MidnightOverflow MidnightPolicy = "overflow"
)

// Options configure a Calendar.
type Options struct {
	WeekStart  time.Weekday
	ShowHabits bool
	Midnight   MidnightPolicy
}

// DefaultOptions starts weeks on Monday, shows habits and clips at midnight.
func DefaultOptions() Options {
	return Options{WeekStart: time.Monday, ShowHabits: true, Midnight: MidnightClip}
}

// Calendar answers view queries over one snapshot. It is immutable after
// construction and safe for concurrent readers.
type Calendar struct {
	opts   Options
	habits []model.HabitRecord
	done   *model.CompletionSet
	byDay  map[string][]model.TaskRecord
}

// New indexes snap. The snapshot's slices are not retained for mutation.
func New(snap model.Snapshot, opts Options) *Calendar {
	if opts.Midnight == "" {
		opts.Midnight = MidnightClip
	}
	c := &Calendar{
		opts:   opts,
		habits: slices.Clone(snap.Habits),
		done:   model.NewCompletionSet(snap.Logs),
		byDay:  make(map[string][]model.TaskRecord),
	}
	for _, t := range snap.Tasks {
		if t.Time == nil {
			continue
		}
		key := model.DateKey(model.DateOf(*t.Time))
		c.byDay[key] = append(c.byDay[key], t)
	}
	return c
}

// Options returns the options the calendar was built with.
func (c *Calendar) Options() Options {
	return c.opts
}

// EventsOn lists the unlaid events of day: its tasks first, then habit
// occurrences, each group in input order.
func (c *Calendar) EventsOn(day time.Time) []model.CalendarEvent {
	day = model.DateOf(day)
	var out []model.CalendarEvent
	for _, t := range c.byDay[model.DateKey(day)] {
		out = append(out, c.clip(taskEvent(t)))
	}
	if !c.opts.ShowHabits {
		return out
	}
	for _, h := range c.habits {
		for ev := range recurrence.Materialize(h, day, day) {
			ev.Done = c.done.Has(h.ID, day)
			out = append(out, c.clip(ev))
		}
	}
	return out
}

func (c *Calendar) clip(ev model.CalendarEvent) model.CalendarEvent {
	if c.opts.Midnight == MidnightClip && ev.EndMinute > minutesPerDay {
		ev.EndMinute = minutesPerDay
	}
	return ev
}

func taskEvent(t model.TaskRecord) model.CalendarEvent {
	at := *t.Time
	start := at.Hour()*60 + at.Minute()
	dur := t.Duration
	if dur <= 0 {
		dur = DefaultTaskDuration
	}
	color := t.Color
	if color == "" {
		color = DefaultTaskColor
	}
	title := t.Title
	if title == "" {
		title = DefaultTaskTitle
	}
	return model.CalendarEvent{
		Key:         model.TaskKey(t.ID),
		Title:       title,
		Description: t.Description,
		Color:       color,
		Date:        model.DateOf(at),
		StartMinute: start,
		EndMinute:   start + dur,
		Done:        t.Status,
		SeriesID:    t.SeriesID,
		SourceRef:   t.ProjectID,
	}
}

// DayLayout is one day of packed events.
type DayLayout struct {
	Date   time.Time
	Events []model.LaidOutEvent
}

// Day lays out a single day.
func (c *Calendar) Day(day time.Time) DayLayout {
	day = model.DateOf(day)
	return DayLayout{Date: day, Events: layout.Layout(c.EventsOn(day))}
}

// Week lays out the seven days of the week containing day.
func (c *Calendar) Week(day time.Time) []DayLayout {
	start := model.WeekStartOf(day, c.opts.WeekStart)
	out := make([]DayLayout, 7)
	for i := range out {
		out[i] = c.Day(model.AddDays(start, i))
	}
	return out
}

// MonthDay is one cell of a month grid.
type MonthDay struct {
	Date    time.Time
	InMonth bool
	Items   []model.CalendarEvent
}

// MonthGrid covers whole weeks around one month.
type MonthGrid struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
	Days  []MonthDay
}

// Month builds the grid for the month containing anchor, padded to whole
// weeks. Items of each day are ordered by start minute.
func (c *Calendar) Month(anchor time.Time) MonthGrid {
	y, m, _ := anchor.Date()
	first := model.Day(y, m, 1)
	last := model.AddDays(first.AddDate(0, 1, 0), -1)

	g := MonthGrid{
		Year:  y,
		Month: m,
		Start: model.WeekStartOf(first, c.opts.WeekStart),
		End:   model.AddDays(model.WeekStartOf(last, c.opts.WeekStart), 6),
	}
	for d := g.Start; !d.After(g.End); d = model.AddDays(d, 1) {
		items := c.EventsOn(d)
		slices.SortStableFunc(items, func(a, b model.CalendarEvent) int {
			return cmp.Compare(a.StartMinute, b.StartMinute)
		})
		g.Days = append(g.Days, MonthDay{Date: d, InMonth: d.Month() == m, Items: items})
	}
	return g
}
