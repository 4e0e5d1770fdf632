// Package ics publishes tasks and habits as an iCalendar feed.
package ics

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"plancal/internal/agenda"
	appLog "plancal/internal/log"
	"plancal/internal/model"
	"plancal/internal/recurrence"
)

const (
	defaultProductID = "-//plancal//calendar export//EN"
	uidDomain        = "@plancal"
)

var propertyColor = ical.ComponentProperty("COLOR")

// ExportOptions controls how wall-clock values are anchored.
type ExportOptions struct {
	// Location interprets the naive wall-clock times of tasks and habits.
	// If nil, time.Local is used.
	Location *time.Location

	ProductID string

	// Now stamps DTSTAMP. If zero, time.Now() is used.
	Now time.Time
}

// Export writes snap as a VCALENDAR:
//
//   - every scheduled task becomes a single VEVENT
//   - every habit that can occur becomes one VEVENT with a weekly RRULE
//     whose DTSTART is its first real occurrence
//
// Unscheduled tasks and paused or incomplete habits are left out.
func Export(w io.Writer, snap model.Snapshot, opts ExportOptions) error {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ProductID == "" {
		opts.ProductID = defaultProductID
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetProductId(opts.ProductID)
	cal.SetMethod(ical.MethodPublish)

	tasks, habits := 0, 0
	for _, t := range snap.Tasks {
		if t.Time == nil {
			continue
		}
		addTask(cal, t, opts)
		tasks++
	}
	for _, h := range snap.Habits {
		if addHabit(cal, h, opts) {
			habits++
		}
	}

	appLog.Debug("ics export built", "tasks", tasks, "habits", habits)
	_, err := io.WriteString(w, cal.Serialize())
	return err
}

func addTask(cal *ical.Calendar, t model.TaskRecord, opts ExportOptions) {
	wall := *t.Time
	start := recurrence.At(model.DateOf(wall), wall.Hour()*60+wall.Minute(), opts.Location)
	dur := t.Duration
	if dur <= 0 {
		dur = agenda.DefaultTaskDuration
	}

	ev := cal.AddEvent(model.TaskKey(t.ID).String() + uidDomain)
	ev.SetDtStampTime(opts.Now)
	ev.SetStartAt(start)
	ev.SetEndAt(start.Add(time.Duration(dur) * time.Minute))
	ev.SetSummary(orDefault(t.Title, agenda.DefaultTaskTitle))
	if t.Description != "" {
		ev.SetDescription(t.Description)
	}
	if t.Color != "" {
		ev.SetProperty(propertyColor, t.Color)
	}
}

func addHabit(cal *ical.Calendar, h model.HabitRecord, opts ExportOptions) bool {
	rule, first, ok := recurrence.RRule(h, opts.Location)
	if !ok {
		return false
	}
	occ := recurrence.Occurrence(h, first)

	ev := cal.AddEvent("habit:" + h.ID + uidDomain)
	ev.SetDtStampTime(opts.Now)
	ev.SetStartAt(first)
	ev.SetEndAt(first.Add(time.Duration(occ.EndMinute-occ.StartMinute) * time.Minute))
	ev.SetSummary(occ.Title)
	if h.Description != "" {
		ev.SetDescription(h.Description)
	}
	ev.SetProperty(propertyColor, occ.Color)
	ev.AddProperty(ical.ComponentPropertyRrule, rule)
	return true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
