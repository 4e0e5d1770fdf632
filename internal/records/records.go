// Package records turns loosely typed backend payloads into typed records.
//
// Structural problems (wrong JSON types, unparseable dates, weekdays outside
// 0..6) are reported as *ValidationError. Fields that are merely absent are
// not errors: a habit without a start date or time of day simply never
// occurs, and missing durations fall back to defaults later on.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"plancal/internal/model"
)

var (
	errMissing    = errors.New("missing value")
	errNotAnArray = errors.New("expected a JSON array")
)

type taskJSON struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Color       *string         `json:"color"`
	Time        *string         `json:"time"`
	Date        *string         `json:"date"`
	Duration    json.RawMessage `json:"duration"`
	Status      *bool           `json:"status"`
	ProjectID   json.RawMessage `json:"project_id"`
	SeriesID    *string         `json:"series_id"`
	Priority    json.RawMessage `json:"priority"`
}

type habitJSON struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Color       *string         `json:"color"`
	GoalID      json.RawMessage `json:"goal_id"`
	StartDate   *string         `json:"start_date"`
	RepeatUntil *string         `json:"repeat_until"`
	TimeOfDay   *string         `json:"time_of_day"`
	Duration    json.RawMessage `json:"duration"`
	RepeatDays  []int           `json:"repeat_days"`
	Active      *bool           `json:"active"`
}

type logJSON struct {
	HabitID json.RawMessage `json:"habit_id"`
	DoneOn  string          `json:"done_on"`
}

type snapshotJSON struct {
	Tasks  json.RawMessage `json:"tasks"`
	Habits json.RawMessage `json:"habits"`
	Logs   json.RawMessage `json:"logs"`
}

// ParseTasks parses a JSON array of task payloads.
func ParseTasks(body []byte) ([]model.TaskRecord, error) {
	raw, err := decodeArray[taskJSON]("task", body)
	if err != nil {
		return nil, err
	}
	out := make([]model.TaskRecord, 0, len(raw))
	for i, r := range raw {
		t, err := r.toRecord(i)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ParseHabits parses a JSON array of habit payloads.
func ParseHabits(body []byte) ([]model.HabitRecord, error) {
	raw, err := decodeArray[habitJSON]("habit", body)
	if err != nil {
		return nil, err
	}
	out := make([]model.HabitRecord, 0, len(raw))
	for i, r := range raw {
		h, err := r.toRecord(i)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// ParseLogs parses a JSON array of {habit_id, done_on} completion logs.
func ParseLogs(body []byte) ([]model.CompletionLog, error) {
	raw, err := decodeArray[logJSON]("log", body)
	if err != nil {
		return nil, err
	}
	out := make([]model.CompletionLog, 0, len(raw))
	for i, r := range raw {
		id, err := parseID(r.HabitID)
		if err != nil {
			return nil, invalid("log", i, "habit_id", string(r.HabitID), err)
		}
		if id == "" {
			return nil, invalid("log", i, "habit_id", "", errMissing)
		}
		d, err := model.ParseDate(r.DoneOn)
		if err != nil {
			return nil, invalid("log", i, "done_on", r.DoneOn, err)
		}
		out = append(out, model.CompletionLog{HabitID: id, DoneOn: d})
	}
	return out, nil
}

// ParseSnapshot parses {"tasks": [...], "habits": [...], "logs": [...]}.
// Missing sections are empty.
func ParseSnapshot(body []byte) (model.Snapshot, error) {
	var raw snapshotJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.Snapshot{}, invalid("snapshot", -1, "", "", err)
	}
	var snap model.Snapshot
	var err error
	if present(raw.Tasks) {
		if snap.Tasks, err = ParseTasks(raw.Tasks); err != nil {
			return model.Snapshot{}, err
		}
	}
	if present(raw.Habits) {
		if snap.Habits, err = ParseHabits(raw.Habits); err != nil {
			return model.Snapshot{}, err
		}
	}
	if present(raw.Logs) {
		if snap.Logs, err = ParseLogs(raw.Logs); err != nil {
			return model.Snapshot{}, err
		}
	}
	return snap, nil
}

func (r taskJSON) toRecord(i int) (model.TaskRecord, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return model.TaskRecord{}, invalid("task", i, "id", string(r.ID), err)
	}
	if id == "" {
		return model.TaskRecord{}, invalid("task", i, "id", "", errMissing)
	}
	t := model.TaskRecord{
		ID:          id,
		Title:       r.Title,
		Description: deref(r.Description),
		Color:       deref(r.Color),
		Status:      r.Status != nil && *r.Status,
		SeriesID:    deref(r.SeriesID),
	}

	if t.Time, err = taskTime(r.Date, r.Time); err != nil {
		if strings.TrimSpace(deref(r.Time)) == "" {
			return model.TaskRecord{}, invalid("task", i, "date", deref(r.Date), err)
		}
		return model.TaskRecord{}, invalid("task", i, "time", deref(r.Time), err)
	}
	if t.Duration, err = parseInt(r.Duration); err != nil {
		return model.TaskRecord{}, invalid("task", i, "duration", string(r.Duration), err)
	}
	if t.Priority, err = parseInt(r.Priority); err != nil {
		return model.TaskRecord{}, invalid("task", i, "priority", string(r.Priority), err)
	}
	if t.ProjectID, err = parseID(r.ProjectID); err != nil {
		return model.TaskRecord{}, invalid("task", i, "project_id", string(r.ProjectID), err)
	}
	return t, nil
}

func (r habitJSON) toRecord(i int) (model.HabitRecord, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return model.HabitRecord{}, invalid("habit", i, "id", string(r.ID), err)
	}
	if id == "" {
		return model.HabitRecord{}, invalid("habit", i, "id", "", errMissing)
	}
	h := model.HabitRecord{
		ID:          id,
		Title:       r.Title,
		Description: deref(r.Description),
		Color:       deref(r.Color),
		TimeOfDay:   strings.TrimSpace(deref(r.TimeOfDay)),
		Active:      r.Active == nil || *r.Active,
	}
	if h.GoalID, err = parseID(r.GoalID); err != nil {
		return model.HabitRecord{}, invalid("habit", i, "goal_id", string(r.GoalID), err)
	}
	if s := deref(r.StartDate); s != "" {
		if h.StartDate, err = model.ParseDate(s); err != nil {
			return model.HabitRecord{}, invalid("habit", i, "start_date", s, err)
		}
	}
	if s := deref(r.RepeatUntil); s != "" {
		until, err := model.ParseDate(s)
		if err != nil {
			return model.HabitRecord{}, invalid("habit", i, "repeat_until", s, err)
		}
		h.RepeatUntil = &until
	}
	if h.Duration, err = parseInt(r.Duration); err != nil {
		return model.HabitRecord{}, invalid("habit", i, "duration", string(r.Duration), err)
	}
	for _, d := range r.RepeatDays {
		if d < 0 || d > 6 {
			return model.HabitRecord{}, invalid("habit", i, "repeat_days", strconv.Itoa(d), errors.New("weekday must be within 0..6"))
		}
	}
	h.RepeatDays = r.RepeatDays
	return h, nil
}

func decodeArray[T any](kind string, body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil, invalid(kind, -1, "", "", errNotAnArray)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, invalid(kind, -1, "", "", err)
	}
	out := make([]T, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &out[i]); err != nil {
			field := ""
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				field = typeErr.Field
			}
			return nil, invalid(kind, i, field, "", err)
		}
	}
	return out, nil
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// parseID accepts a JSON string or integer. Null and absent give "".
func parseID(raw json.RawMessage) (string, error) {
	if !present(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errors.New("expected a string or number")
	}
	if _, err := n.Int64(); err != nil {
		return "", errors.New("expected an integer id")
	}
	return n.String(), nil
}

// parseInt accepts a JSON number or a numeric string. Null and absent give 0.
func parseInt(raw json.RawMessage) (int, error) {
	if !present(raw) {
		return 0, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		return strconv.Atoi(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errors.New("expected a number")
	}
	v, err := n.Int64()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// taskTime reads the task start as a naive wall-clock time. Offsets in
// RFC 3339 values are dropped rather than converted. A bare "HH:MM" time
// is combined with the separate date field; without a time, the date field
// must carry the full datetime. Neither field set means unscheduled.
func taskTime(date, clock *string) (*time.Time, error) {
	c := strings.TrimSpace(deref(clock))
	d := strings.TrimSpace(deref(date))
	if c == "" {
		if d == "" {
			return nil, nil
		}
		if !strings.ContainsAny(d, "T ") {
			return nil, errors.New("date without a time of day")
		}
		c, d = d, ""
	}
	if !strings.ContainsAny(c, "T ") && strings.Count(c, "-") < 2 {
		if d == "" {
			return nil, errors.New("time of day without a date")
		}
		c = d + "T" + c
	}
	if t, err := time.Parse(time.RFC3339Nano, c); err == nil {
		naive := wallClock(t)
		return &naive, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, c, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("unrecognised datetime")
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
