package model

import "time"

type completionKey struct {
	habitID string
	date    string
}

// CompletionSet answers "was habit X done on day D". Presence means done.
type CompletionSet struct {
	m map[completionKey]struct{}
}

// NewCompletionSet indexes logs.
func NewCompletionSet(logs []CompletionLog) *CompletionSet {
	s := &CompletionSet{m: make(map[completionKey]struct{}, len(logs))}
	for _, l := range logs {
		s.Add(l.HabitID, l.DoneOn)
	}
	return s
}

func keyFor(habitID string, day time.Time) completionKey {
	return completionKey{habitID: habitID, date: DateKey(DateOf(day))}
}

// Has reports whether the habit is marked done on day.
func (s *CompletionSet) Has(habitID string, day time.Time) bool {
	if s == nil {
		return false
	}
	_, ok := s.m[keyFor(habitID, day)]
	return ok
}

// Add marks the habit done on day. Adding twice is a no-op.
func (s *CompletionSet) Add(habitID string, day time.Time) {
	if s.m == nil {
		s.m = make(map[completionKey]struct{})
	}
	s.m[keyFor(habitID, day)] = struct{}{}
}

// Remove clears the mark, if any.
func (s *CompletionSet) Remove(habitID string, day time.Time) {
	delete(s.m, keyFor(habitID, day))
}

// Toggle flips the mark and returns the new state.
func (s *CompletionSet) Toggle(habitID string, day time.Time) bool {
	if s.Has(habitID, day) {
		s.Remove(habitID, day)
		return false
	}
	s.Add(habitID, day)
	return true
}

// CountBetween counts marks for habitID on dates in [from, to].
func (s *CompletionSet) CountBetween(habitID string, from, to time.Time) int {
	n := 0
	for d := DateOf(from); !d.After(to); d = AddDays(d, 1) {
		if s.Has(habitID, d) {
			n++
		}
	}
	return n
}

// Len returns the number of marks.
func (s *CompletionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}
