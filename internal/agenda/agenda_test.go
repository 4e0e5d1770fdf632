package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plancal/internal/model"
)

func at(y int, m time.Month, d, hh, mm int) *time.Time {
	t := time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	return &t
}

func fixture() model.Snapshot {
	until := model.Day(2025, time.January, 17)
	return model.Snapshot{
		Tasks: []model.TaskRecord{
			{ID: "1", Title: "Standup", Time: at(2025, time.January, 6, 9, 0), Duration: 60, ProjectID: "p1"},
			{ID: "2", Title: "", Time: at(2025, time.January, 6, 9, 30), Status: true},
			{ID: "3", Title: "Deploy", Time: at(2025, time.January, 6, 23, 30), Duration: 90},
			{ID: "4", Title: "Someday"},
			{ID: "5", Title: "Review", Time: at(2025, time.January, 7, 10, 0), Duration: 30, Color: "#123456"},
		},
		Habits: []model.HabitRecord{
			{
				ID: "7", Title: "Stretch", GoalID: "g1",
				StartDate: model.Day(2025, time.January, 6), RepeatUntil: &until,
				TimeOfDay: "07:30", Duration: 20, RepeatDays: []int{0, 2, 4}, Active: true,
			},
			{
				ID: "8", Title: "Paused",
				StartDate: model.Day(2025, time.January, 1),
				TimeOfDay: "06:00", RepeatDays: []int{0, 1, 2, 3, 4, 5, 6}, Active: false,
			},
		},
		Logs: []model.CompletionLog{
			{HabitID: "7", DoneOn: model.Day(2025, time.January, 6)},
			{HabitID: "7", DoneOn: model.Day(2025, time.January, 8)},
		},
	}
}

func find(t *testing.T, events []model.LaidOutEvent, key model.EventKey) model.LaidOutEvent {
	t.Helper()
	for _, e := range events {
		if e.Key == key {
			return e
		}
	}
	require.Failf(t, "event not found", "%v", key)
	return model.LaidOutEvent{}
}

func TestDay(t *testing.T) {
	c := New(fixture(), DefaultOptions())
	day := c.Day(model.Day(2025, time.January, 6))

	require.Len(t, day.Events, 4)

	habit := find(t, day.Events, model.HabitKey("7", model.Day(2025, time.January, 6)))
	assert.Equal(t, 450, habit.StartMinute)
	assert.Equal(t, 470, habit.EndMinute)
	assert.True(t, habit.Done)
	assert.Equal(t, 1, habit.ColCount)

	standup := find(t, day.Events, model.TaskKey("1"))
	second := find(t, day.Events, model.TaskKey("2"))
	assert.Equal(t, 2, standup.ColCount)
	assert.Equal(t, 2, second.ColCount)
	assert.NotEqual(t, standup.Col, second.Col)
	assert.Equal(t, "p1", standup.SourceRef)

	assert.Equal(t, DefaultTaskTitle, second.Title)
	assert.Equal(t, DefaultTaskColor, second.Color)
	assert.Equal(t, 570+DefaultTaskDuration, second.EndMinute)
	assert.True(t, second.Done)

	deploy := find(t, day.Events, model.TaskKey("3"))
	assert.Equal(t, 1440, deploy.EndMinute, "clipped at midnight")
}

func TestDayOverflowPolicy(t *testing.T) {
	opts := DefaultOptions()
	opts.Midnight = MidnightOverflow
	day := New(fixture(), opts).Day(model.Day(2025, time.January, 6))
	deploy := find(t, day.Events, model.TaskKey("3"))
	assert.Equal(t, 1500, deploy.EndMinute)
}

func TestDayWithoutHabits(t *testing.T) {
	opts := DefaultOptions()
	opts.ShowHabits = false
	day := New(fixture(), opts).Day(model.Day(2025, time.January, 6))
	for _, e := range day.Events {
		assert.Equal(t, model.KindTask, e.Kind())
	}
	assert.Len(t, day.Events, 3)
}

func TestDayIgnoresPausedHabit(t *testing.T) {
	c := New(fixture(), DefaultOptions())
	for _, e := range c.EventsOn(model.Day(2025, time.January, 4)) {
		assert.NotEqual(t, "8", e.Key.ID)
	}
}

func TestWeek(t *testing.T) {
	c := New(fixture(), DefaultOptions())
	week := c.Week(model.Day(2025, time.January, 8))

	require.Len(t, week, 7)
	assert.Equal(t, model.Day(2025, time.January, 6), week[0].Date)
	assert.Equal(t, model.Day(2025, time.January, 12), week[6].Date)

	require.Len(t, week[1].Events, 1)
	assert.Equal(t, model.TaskKey("5"), week[1].Events[0].Key)
	assert.Len(t, week[2].Events, 1, "wednesday habit")
	assert.Empty(t, week[5].Events)

	opts := DefaultOptions()
	opts.WeekStart = time.Sunday
	sunday := New(fixture(), opts).Week(model.Day(2025, time.January, 8))
	assert.Equal(t, model.Day(2025, time.January, 5), sunday[0].Date)
}

func TestMonth(t *testing.T) {
	c := New(fixture(), DefaultOptions())
	g := c.Month(model.Day(2025, time.January, 15))

	assert.Equal(t, model.Day(2024, time.December, 30), g.Start)
	assert.Equal(t, model.Day(2025, time.February, 2), g.End)
	require.Len(t, g.Days, 35)
	assert.False(t, g.Days[0].InMonth)
	assert.True(t, g.Days[2].InMonth)

	jan6 := g.Days[7]
	require.Equal(t, model.Day(2025, time.January, 6), jan6.Date)
	require.Len(t, jan6.Items, 4)
	assert.Equal(t, model.HabitKey("7", jan6.Date), jan6.Items[0].Key, "sorted by start")
	for i := 1; i < len(jan6.Items); i++ {
		assert.LessOrEqual(t, jan6.Items[i-1].StartMinute, jan6.Items[i].StartMinute)
	}
}

func TestProgress(t *testing.T) {
	snap := fixture()
	c := New(snap, DefaultOptions())

	p := c.Progress(model.Day(2025, time.January, 10))
	require.Len(t, p, 1, "paused habits are skipped")
	assert.Equal(t, HabitProgress{HabitID: "7", WeekTarget: 3, WeekDone: 2, Streak: 0}, p[0])

	snap.Logs = append(snap.Logs, model.CompletionLog{HabitID: "7", DoneOn: model.Day(2025, time.January, 10)})
	c = New(snap, DefaultOptions())

	p = c.Progress(model.Day(2025, time.January, 10))
	assert.Equal(t, 3, p[0].Streak)
	assert.Equal(t, 3, p[0].WeekDone)

	p = c.Progress(model.Day(2025, time.January, 11))
	assert.Equal(t, 3, p[0].Streak, "unscheduled saturday is skipped")

	p = c.Progress(model.Day(2025, time.January, 20))
	assert.Equal(t, 0, p[0].Streak, "past the until date")
	assert.Equal(t, 0, p[0].WeekTarget)
}
