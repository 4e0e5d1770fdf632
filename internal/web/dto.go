package web

import (
	"time"

	"plancal/internal/agenda"
	"plancal/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

type configResponse struct {
	Timezone    string    `json:"timezone"`
	WeekStart   string    `json:"week_start"`
	DefaultView string    `json:"default_view"`
	ShowHabits  bool      `json:"show_habits"`
	Midnight    string    `json:"midnight"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// eventDTO is the JSON view of one occurrence. Col and ColCount are only
// present on laid-out events.
type eventDTO struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	SourceID    string `json:"source_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Date        string `json:"date"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Col         *int   `json:"col,omitempty"`
	ColCount    *int   `json:"col_count,omitempty"`
	Done        bool   `json:"done"`
	SeriesID    string `json:"series_id,omitempty"`
	SourceRef   string `json:"source_ref,omitempty"`
}

type dayDTO struct {
	Date   string     `json:"date"`
	Events []eventDTO `json:"events"`
}

type weekResponse struct {
	WeekStart string   `json:"week_start"`
	Days      []dayDTO `json:"days"`
}

type monthDayDTO struct {
	Date    string     `json:"date"`
	InMonth bool       `json:"in_month"`
	Items   []eventDTO `json:"items"`
}

type monthResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Start string        `json:"start"`
	End   string        `json:"end"`
	Days  []monthDayDTO `json:"days"`
}

type progressDTO struct {
	HabitID    string `json:"habit_id"`
	WeekTarget int    `json:"week_target"`
	WeekDone   int    `json:"week_done"`
	Streak     int    `json:"streak"`
}

type progressResponse struct {
	Date   string        `json:"date"`
	Habits []progressDTO `json:"habits"`
}

func toEventDTO(ev model.CalendarEvent) eventDTO {
	return eventDTO{
		ID:          ev.Key.String(),
		Kind:        string(ev.Key.Kind),
		SourceID:    ev.Key.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Color:       ev.Color,
		Date:        model.DateKey(ev.Date),
		StartMinute: ev.StartMinute,
		EndMinute:   ev.EndMinute,
		Done:        ev.Done,
		SeriesID:    ev.SeriesID,
		SourceRef:   ev.SourceRef,
	}
}

func toLaidOutDTO(ev model.LaidOutEvent) eventDTO {
	dto := toEventDTO(ev.CalendarEvent)
	col, count := ev.Col, ev.ColCount
	dto.Col = &col
	dto.ColCount = &count
	return dto
}

func toDayDTO(d agenda.DayLayout) dayDTO {
	out := dayDTO{Date: model.DateKey(d.Date), Events: make([]eventDTO, 0, len(d.Events))}
	for _, ev := range d.Events {
		out.Events = append(out.Events, toLaidOutDTO(ev))
	}
	return out
}

// taskDTO is the JSON view of a stored task record. Time is the naive
// wall-clock start, omitted for unscheduled tasks.
type taskDTO struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Time        string `json:"time,omitempty"`
	Duration    int    `json:"duration"`
	Status      bool   `json:"status"`
	ProjectID   string `json:"project_id,omitempty"`
	Priority    int    `json:"priority"`
	SeriesID    string `json:"series_id,omitempty"`
}

type quadrantDTO struct {
	Priority  int       `json:"priority"`
	Urgent    bool      `json:"urgent"`
	Important bool      `json:"important"`
	Tasks     []taskDTO `json:"tasks"`
}

type matrixResponse struct {
	Quadrants []quadrantDTO `json:"quadrants"`
	Unsorted  []taskDTO     `json:"unsorted"`
}

type seriesResponse struct {
	SeriesID string    `json:"series_id,omitempty"`
	Tasks    []taskDTO `json:"tasks"`
}

type deletionResponse struct {
	TaskID      string   `json:"task_id"`
	WholeSeries bool     `json:"whole_series"`
	IDs         []string `json:"ids"`
}

type seriesRequestDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	ProjectID   string `json:"project_id"`
	Priority    int    `json:"priority"`
	Date        string `json:"date"`
	TimeOfDay   string `json:"time_of_day"`
	Duration    int    `json:"duration"`
	RepeatDays  []int  `json:"repeat_days"`
	RepeatUntil string `json:"repeat_until"`
}

const taskTimeLayout = "2006-01-02T15:04:05"

func toTaskDTOs(tasks []model.TaskRecord) []taskDTO {
	out := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		dto := taskDTO{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Color:       t.Color,
			Duration:    t.Duration,
			Status:      t.Status,
			ProjectID:   t.ProjectID,
			Priority:    t.Priority,
			SeriesID:    t.SeriesID,
		}
		if t.Time != nil {
			dto.Time = t.Time.Format(taskTimeLayout)
		}
		out = append(out, dto)
	}
	return out
}
