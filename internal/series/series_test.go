package series

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plancal/internal/model"
)

func TestGenerateSingle(t *testing.T) {
	tasks, err := Generate(Request{Title: "Dentist", Date: model.Day(2025, time.March, 3), TimeOfDay: "15:45"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Empty(t, task.SeriesID)
	assert.Equal(t, time.Date(2025, time.March, 3, 15, 45, 0, 0, time.UTC), *task.Time)
	assert.Equal(t, DefaultDuration, task.Duration)
	assert.Equal(t, DefaultColor, task.Color)
}

func TestGenerateUntil(t *testing.T) {
	until := model.Day(2025, time.January, 17)
	tasks, err := Generate(Request{
		Title:       "Gym",
		Date:        model.Day(2025, time.January, 4),
		TimeOfDay:   "18:00",
		Duration:    45,
		RepeatDays:  []int{1, 3},
		RepeatUntil: &until,
	})
	require.NoError(t, err)

	var dates []time.Time
	for _, task := range tasks {
		dates = append(dates, model.DateOf(*task.Time))
		assert.Equal(t, 18, task.Time.Hour())
		assert.Equal(t, 45, task.Duration)
	}
	assert.Equal(t, []time.Time{
		model.Day(2025, time.January, 7),
		model.Day(2025, time.January, 9),
		model.Day(2025, time.January, 14),
		model.Day(2025, time.January, 16),
	}, dates)

	id := tasks[0].SeriesID
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	for _, task := range tasks {
		assert.Equal(t, id, task.SeriesID)
	}
}

func TestGenerateOpenEndedCoversOneWeek(t *testing.T) {
	tasks, err := Generate(Request{
		Title:      "Walk",
		Date:       model.Day(2025, time.January, 6),
		RepeatDays: []int{0, 1, 2, 3, 4, 5, 6},
	})
	require.NoError(t, err)
	require.Len(t, tasks, 7)
	assert.Equal(t, model.Day(2025, time.January, 12), model.DateOf(*tasks[6].Time))
}

func TestGenerateSeriesIDsDiffer(t *testing.T) {
	req := Request{Title: "x", Date: model.Day(2025, time.January, 6), RepeatDays: []int{0}}
	a, err := Generate(req)
	require.NoError(t, err)
	b, err := Generate(req)
	require.NoError(t, err)
	assert.NotEqual(t, a[0].SeriesID, b[0].SeriesID)
}

func TestGenerateValidation(t *testing.T) {
	_, err := Generate(Request{Title: "  ", Date: model.Day(2025, time.January, 6)})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = Generate(Request{Title: "x"})
	assert.ErrorIs(t, err, ErrDateRequired)
}

func TestDeletionSet(t *testing.T) {
	tasks := []model.TaskRecord{
		{ID: "1", Title: "Gym", SeriesID: "s1"},
		{ID: "2", Title: "Gym", SeriesID: "s1"},
		{ID: "3", Title: "Gym"},
		{ID: "4", Title: "Gym", SeriesID: "s2"},
	}

	assert.Equal(t, []string{"1", "2"}, DeletionSet(tasks, tasks[1], true))
	assert.Equal(t, []string{"2"}, DeletionSet(tasks, tasks[1], false))
	assert.Equal(t, []string{"3"}, DeletionSet(tasks, tasks[2], true), "same title, no series")
	assert.Len(t, Members(tasks, "s2"), 1)
	assert.Nil(t, Members(tasks, ""))
}
