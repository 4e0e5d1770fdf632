package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plancal/internal/model"
)

func snapshot() model.Snapshot {
	start := time.Date(2025, time.January, 6, 9, 30, 0, 0, time.UTC)
	until := model.Day(2025, time.January, 17)
	return model.Snapshot{
		Tasks: []model.TaskRecord{
			{ID: "1", Title: "Standup", Time: &start, Duration: 15, Description: "daily sync", Color: "#c84a5b"},
			{ID: "2", Title: "Unscheduled"},
		},
		Habits: []model.HabitRecord{
			{
				ID: "7", Title: "Stretch",
				StartDate: model.Day(2025, time.January, 4), RepeatUntil: &until,
				TimeOfDay: "07:30", Duration: 20, RepeatDays: []int{0, 2, 4}, Active: true,
			},
			{ID: "8", Title: "Paused", StartDate: model.Day(2025, time.January, 1), TimeOfDay: "06:00", RepeatDays: []int{1}},
			{ID: "9", Title: "Draft", RepeatDays: []int{1}, Active: true},
		},
	}
}

func parse(t *testing.T, body []byte) map[string]*ical.VEvent {
	t.Helper()
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	require.NoError(t, err)
	out := map[string]*ical.VEvent{}
	for _, ev := range cal.Events() {
		out[ev.GetProperty(ical.ComponentPropertyUniqueId).Value] = ev
	}
	return out
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, snapshot(), ExportOptions{
		Location: time.UTC,
		Now:      time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	events := parse(t, buf.Bytes())
	require.Len(t, events, 2)

	task := events["task:1@plancal"]
	require.NotNil(t, task)
	start, err := task.GetStartAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 6, 9, 30, 0, 0, time.UTC), start.UTC())
	end, err := task.GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, end.Sub(start))
	assert.Equal(t, "Standup", task.GetProperty(ical.ComponentPropertySummary).Value)

	habit := events["habit:7@plancal"]
	require.NotNil(t, habit)
	hstart, err := habit.GetStartAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 6, 7, 30, 0, 0, time.UTC), hstart.UTC(), "first real occurrence, not the saturday start date")

	rrule := habit.GetProperty(ical.ComponentPropertyRrule)
	require.NotNil(t, rrule)
	assert.True(t, strings.Contains(rrule.Value, "BYDAY=MO,WE,FR"), rrule.Value)
	assert.True(t, strings.Contains(rrule.Value, "UNTIL=20250117T073000Z"), rrule.Value)
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, model.Snapshot{}, ExportOptions{Location: time.UTC}))
	assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
	assert.Empty(t, parse(t, buf.Bytes()))
}
