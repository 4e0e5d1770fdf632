// Package series creates recurring task series and resolves which tasks
// belong to one. Membership is an explicit series id, never title matching.
package series

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"plancal/internal/model"
	"plancal/internal/recurrence"
)

const (
	DefaultColor    = "#CCCCCC"
	DefaultDuration = 60

	// openEndedDays bounds a series without an until date so a single
	// request cannot flood the backend.
	openEndedDays = 7
)

var (
	ErrTitleRequired = errors.New("series: title is required")
	ErrDateRequired  = errors.New("series: date is required")
)

// Request describes a task to create, optionally repeating weekly.
type Request struct {
	Title       string
	Description string
	Color       string
	ProjectID   string
	Priority    int

	Date      time.Time
	TimeOfDay string
	Duration  int

	// RepeatDays uses 0=Monday .. 6=Sunday. Empty means a single task.
	RepeatDays  []int
	RepeatUntil *time.Time
}

// Generate expands req into task records. Without repeat days the result is
// one task on req.Date. Otherwise every matching weekday from req.Date
// through RepeatUntil (inclusive) gets a task, or the first week when no
// until date is given. All tasks of a series share one fresh series id.
// IDs are left empty for the backend to assign.
func Generate(req Request) ([]model.TaskRecord, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if req.Date.IsZero() {
		return nil, ErrDateRequired
	}

	start := model.DateOf(req.Date)
	days := recurrence.NewWeekdaySet(req.RepeatDays)
	if days.Empty() {
		return []model.TaskRecord{req.task(start, "")}, nil
	}

	end := model.AddDays(start, openEndedDays-1)
	if req.RepeatUntil != nil {
		end = model.DateOf(*req.RepeatUntil)
	}
	rule := recurrence.Rule{Start: start, Until: req.RepeatUntil, Days: days}

	id := uuid.NewString()
	var out []model.TaskRecord
	for d := range rule.Dates(start, end) {
		out = append(out, req.task(d, id))
	}
	return out, nil
}

func (req Request) task(day time.Time, seriesID string) model.TaskRecord {
	minute := recurrence.ParseClock(req.TimeOfDay)
	at := day.Add(time.Duration(minute) * time.Minute)
	color := req.Color
	if color == "" {
		color = DefaultColor
	}
	dur := req.Duration
	if dur <= 0 {
		dur = DefaultDuration
	}
	return model.TaskRecord{
		Title:       req.Title,
		Description: req.Description,
		Color:       color,
		Time:        &at,
		Duration:    dur,
		ProjectID:   req.ProjectID,
		Priority:    req.Priority,
		SeriesID:    seriesID,
	}
}

// Members returns the tasks of one series in input order.
func Members(tasks []model.TaskRecord, seriesID string) []model.TaskRecord {
	if seriesID == "" {
		return nil
	}
	var out []model.TaskRecord
	for _, t := range tasks {
		if t.SeriesID == seriesID {
			out = append(out, t)
		}
	}
	return out
}

// DeletionSet lists the ids to delete when the user removes target. With
// wholeSeries set, every task of target's series goes; a task outside any
// series only removes itself.
func DeletionSet(tasks []model.TaskRecord, target model.TaskRecord, wholeSeries bool) []string {
	if !wholeSeries || target.SeriesID == "" {
		return []string{target.ID}
	}
	members := Members(tasks, target.SeriesID)
	ids := make([]string, 0, len(members))
	for _, t := range members {
		ids = append(ids, t.ID)
	}
	return ids
}
