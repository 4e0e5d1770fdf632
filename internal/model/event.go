package model

import (
	"time"
)

// Kind tells where a calendar event came from.
type Kind string

const (
	KindTask  Kind = "task"
	KindHabit Kind = "habit"
)

// EventKey identifies one occurrence. Tasks are identified by id alone;
// habit occurrences need the date as well, since one definition yields many.
type EventKey struct {
	Kind Kind
	ID   string
	Date time.Time // zero for tasks
}

// TaskKey builds the key of a task occurrence.
func TaskKey(id string) EventKey {
	return EventKey{Kind: KindTask, ID: id}
}

// HabitKey builds the key of a habit occurrence on day.
func HabitKey(id string, day time.Time) EventKey {
	return EventKey{Kind: KindHabit, ID: id, Date: DateOf(day)}
}

// String renders the key for display and external identifiers (JSON, ICS
// UIDs). It is never parsed back.
func (k EventKey) String() string {
	if k.Kind == KindHabit {
		return string(k.Kind) + ":" + k.ID + ":" + DateKey(k.Date)
	}
	return string(k.Kind) + ":" + k.ID
}

// CalendarEvent is one occurrence placed on a single day, in minutes from
// local midnight.
type CalendarEvent struct {
	Key         EventKey
	Title       string
	Description string
	Color       string
	Date        time.Time
	StartMinute int
	EndMinute   int
	Done        bool
	SeriesID    string

	// SourceRef is the owning project (tasks) or goal (habits).
	SourceRef string
}

// Kind is shorthand for e.Key.Kind.
func (e CalendarEvent) Kind() Kind {
	return e.Key.Kind
}

// LaidOutEvent is a CalendarEvent with its column assignment.
// Col is always in [0, ColCount).
type LaidOutEvent struct {
	CalendarEvent
	Col      int
	ColCount int
}
