package model

import "time"

// TaskRecord is a one-off task as delivered by the backend.
type TaskRecord struct {
	ID          string
	Title       string
	Description string
	Color       string

	// Time is the naive wall-clock start (date + time of day). Nil means the
	// task is unscheduled and never shows up on the calendar.
	Time *time.Time

	// Duration in minutes; zero means "use the default".
	Duration int

	Status    bool
	ProjectID string
	Priority  int

	// SeriesID links tasks generated from the same recurring request.
	SeriesID string
}

// HabitRecord is a recurring habit definition.
type HabitRecord struct {
	ID          string
	Title       string
	Description string
	Color       string
	GoalID      string

	// StartDate is the first civil date the habit may occur on. The zero
	// value means the definition is incomplete.
	StartDate time.Time
	// RepeatUntil is the last civil date (inclusive), if any.
	RepeatUntil *time.Time

	// TimeOfDay is the raw "HH:MM" or "HH:MM:SS" string; empty when absent.
	TimeOfDay string
	Duration  int

	// RepeatDays holds weekday indices, 0=Monday .. 6=Sunday.
	RepeatDays []int

	Active bool
}

// CompletionLog marks one habit as done on one date.
type CompletionLog struct {
	HabitID string
	DoneOn  time.Time
}

// Snapshot is one consistent fetch of all records the calendar needs.
type Snapshot struct {
	Tasks     []TaskRecord
	Habits    []HabitRecord
	Logs      []CompletionLog
	FetchedAt time.Time
}
