package agenda

import "plancal/internal/model"

// Quadrant is one cell of the urgent/important matrix. Priority 1..4 maps
// to Q1 (urgent, important), Q2 (not urgent, important), Q3 (urgent, not
// important) and Q4 (neither).
type Quadrant struct {
	Priority  int
	Urgent    bool
	Important bool
	Tasks     []model.TaskRecord
}

// PriorityMatrix groups tasks by priority. Tasks without a priority in 1..4
// land in Unsorted.
type PriorityMatrix struct {
	Quadrants [4]Quadrant
	Unsorted  []model.TaskRecord
}

// Matrix groups every task, scheduled or not, keeping input order within a
// quadrant.
func Matrix(tasks []model.TaskRecord) PriorityMatrix {
	var m PriorityMatrix
	for i := range m.Quadrants {
		p := i + 1
		m.Quadrants[i] = Quadrant{
			Priority:  p,
			Urgent:    p == 1 || p == 3,
			Important: p <= 2,
			Tasks:     []model.TaskRecord{},
		}
	}
	m.Unsorted = []model.TaskRecord{}
	for _, t := range tasks {
		if t.Priority < 1 || t.Priority > 4 {
			m.Unsorted = append(m.Unsorted, t)
			continue
		}
		q := &m.Quadrants[t.Priority-1]
		q.Tasks = append(q.Tasks, t)
	}
	return m
}
