package records

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plancal/internal/model"
)

func TestParseTasks(t *testing.T) {
	body := []byte(`[
		{"id": 12, "title": "Write report", "time": "2025-01-06T09:30:00", "duration": 90, "color": "#112233", "status": true, "project_id": 3},
		{"id": "13", "title": "Call", "date": "2025-01-07", "time": "14:00", "series_id": "abc"},
		{"id": 14, "title": "Someday", "time": null, "duration": "45"},
		{"id": 15, "title": "Offset", "time": "2025-01-08T23:15:00+02:00"}
	]`)

	tasks, err := ParseTasks(body)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	assert.Equal(t, "12", tasks[0].ID)
	require.NotNil(t, tasks[0].Time)
	assert.Equal(t, time.Date(2025, time.January, 6, 9, 30, 0, 0, time.UTC), *tasks[0].Time)
	assert.Equal(t, 90, tasks[0].Duration)
	assert.True(t, tasks[0].Status)
	assert.Equal(t, "3", tasks[0].ProjectID)

	require.NotNil(t, tasks[1].Time)
	assert.Equal(t, time.Date(2025, time.January, 7, 14, 0, 0, 0, time.UTC), *tasks[1].Time)
	assert.Equal(t, "abc", tasks[1].SeriesID)
	assert.False(t, tasks[1].Status)

	assert.Nil(t, tasks[2].Time)
	assert.Equal(t, 45, tasks[2].Duration)

	require.NotNil(t, tasks[3].Time)
	assert.Equal(t, 23, tasks[3].Time.Hour(), "offsets are dropped, wall clock kept")
}

func TestParseTasksDateTimeInDateField(t *testing.T) {
	tasks, err := ParseTasks([]byte(`[{"id": 1, "date": "2025-01-06T10:00:00", "duration": 30}]`))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].Time)
	assert.Equal(t, time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC), *tasks[0].Time)
	assert.Equal(t, 30, tasks[0].Duration)
}

func TestParseTasksInvalid(t *testing.T) {
	tests := map[string]struct {
		body  string
		field string
	}{
		"missing id":      {`[{"title": "x"}]`, "id"},
		"bad time":        {`[{"id": 1, "time": "yesterday-ish"}]`, "time"},
		"clock only":      {`[{"id": 1, "time": "09:00"}]`, "time"},
		"date only":       {`[{"id": 1, "date": "2025-01-06"}]`, "date"},
		"bad date time":   {`[{"id": 1, "date": "2025-01-06T25:00"}]`, "date"},
		"bad duration":    {`[{"id": 1, "duration": "long"}]`, "duration"},
		"status type":     {`[{"id": 1, "status": "yes"}]`, "status"},
		"fractional id":   {`[{"id": 1.5}]`, "id"},
		"not an array":    {`{"id": 1}`, ""},
		"truncated array": {`[{"id": 1}`, ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTasks([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRecord)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "task", verr.Kind)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParseHabits(t *testing.T) {
	body := []byte(`[
		{"id": 7, "title": "Stretch", "goal_id": 2, "start_date": "2025-01-06", "repeat_until": "2025-01-17",
		 "time_of_day": "07:30:00", "duration": 20, "repeat_days": [0, 2, 4], "color": "#00ff00"},
		{"id": 8, "title": "Draft", "start_date": null, "time_of_day": null, "repeat_days": [], "active": false}
	]`)

	habits, err := ParseHabits(body)
	require.NoError(t, err)
	require.Len(t, habits, 2)

	h := habits[0]
	assert.Equal(t, "7", h.ID)
	assert.Equal(t, "2", h.GoalID)
	assert.Equal(t, model.Day(2025, time.January, 6), h.StartDate)
	require.NotNil(t, h.RepeatUntil)
	assert.Equal(t, model.Day(2025, time.January, 17), *h.RepeatUntil)
	assert.Equal(t, "07:30:00", h.TimeOfDay)
	assert.Equal(t, []int{0, 2, 4}, h.RepeatDays)
	assert.True(t, h.Active, "absent active means active")

	draft := habits[1]
	assert.True(t, draft.StartDate.IsZero())
	assert.Empty(t, draft.TimeOfDay)
	assert.Nil(t, draft.RepeatUntil)
	assert.False(t, draft.Active)
}

func TestParseHabitsInvalid(t *testing.T) {
	tests := map[string]struct {
		body  string
		field string
	}{
		"weekday out of range": {`[{"id": 1, "repeat_days": [0, 7]}]`, "repeat_days"},
		"bad start":            {`[{"id": 1, "start_date": "06/01/2025"}]`, "start_date"},
		"bad until":            {`[{"id": 1, "repeat_until": "soon"}]`, "repeat_until"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseHabits([]byte(tt.body))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, "habit", verr.Kind)
			assert.Equal(t, 0, verr.Index)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParseLogs(t *testing.T) {
	logs, err := ParseLogs([]byte(`[{"habit_id": 7, "done_on": "2025-01-06"}]`))
	require.NoError(t, err)
	assert.Equal(t, []model.CompletionLog{{HabitID: "7", DoneOn: model.Day(2025, time.January, 6)}}, logs)

	_, err = ParseLogs([]byte(`[{"habit_id": 7, "done_on": "today"}]`))
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestParseSnapshot(t *testing.T) {
	snap, err := ParseSnapshot([]byte(`{
		"tasks": [{"id": 1, "title": "a", "time": "2025-01-06T10:00:00"}],
		"habits": [{"id": 2, "start_date": "2025-01-01", "time_of_day": "08:00", "repeat_days": [1]}],
		"logs": null
	}`))
	require.NoError(t, err)
	assert.Len(t, snap.Tasks, 1)
	assert.Len(t, snap.Habits, 1)
	assert.Empty(t, snap.Logs)

	_, err = ParseSnapshot([]byte(`{"habits": [{"id": 2, "repeat_days": [9]}]}`))
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestValidationErrorMessage(t *testing.T) {
	err := invalid("habit", 3, "start_date", "x", errors.New("boom"))
	assert.Equal(t, `records: invalid habit[3].start_date ("x"): boom`, err.Error())
}
