// Package layout packs the events of one day into side-by-side columns.
//
// Events are grouped into clusters of transitively overlapping intervals.
// Inside a cluster each event takes the lowest free column, and every event
// of the cluster reports the same column count so the renderer can give them
// equal widths. Touching intervals ([0,30) and [30,60)) do not overlap.
package layout

import (
	"cmp"
	"slices"

	"plancal/internal/model"
)

// Layout assigns Col and ColCount to every event. The input slice is not
// modified. Ties in (StartMinute, EndMinute) keep their input order, so the
// same input always produces the same assignment.
func Layout(events []model.CalendarEvent) []model.LaidOutEvent {
	if len(events) == 0 {
		return []model.LaidOutEvent{}
	}

	sorted := make([]model.LaidOutEvent, len(events))
	for i, ev := range events {
		sorted[i] = model.LaidOutEvent{CalendarEvent: ev}
	}
	slices.SortStableFunc(sorted, func(a, b model.LaidOutEvent) int {
		return cmp.Or(
			cmp.Compare(a.StartMinute, b.StartMinute),
			cmp.Compare(a.EndMinute, b.EndMinute),
		)
	})

	for _, c := range Clusters(sorted) {
		assignColumns(sorted[c.From:c.To])
	}
	return sorted
}

// Cluster is the half-open index range [From, To) of one overlap cluster in
// a slice sorted by start.
type Cluster struct {
	From, To int
}

// Clusters splits events, already sorted by start, into maximal runs of
// chained overlaps. A new run starts when an event starts at or after the
// latest end seen so far in the current run.
func Clusters(sorted []model.LaidOutEvent) []Cluster {
	var out []Cluster
	from := 0
	runEnd := 0
	for i, ev := range sorted {
		if i > from && ev.StartMinute >= runEnd {
			out = append(out, Cluster{From: from, To: i})
			from = i
		}
		if end := occupiedUntil(ev); i == from || end > runEnd {
			runEnd = end
		}
	}
	if len(sorted) > 0 {
		out = append(out, Cluster{From: from, To: len(sorted)})
	}
	return out
}

// assignColumns runs first-fit over one cluster: an event reuses the lowest
// column whose last event ended at or before its start, otherwise it opens a
// new column.
func assignColumns(cluster []model.LaidOutEvent) {
	var columnEnd []int
	for i := range cluster {
		ev := &cluster[i]
		col := slices.IndexFunc(columnEnd, func(end int) bool { return end <= ev.StartMinute })
		if col < 0 {
			col = len(columnEnd)
			columnEnd = append(columnEnd, occupiedUntil(*ev))
		} else {
			columnEnd[col] = occupiedUntil(*ev)
		}
		ev.Col = col
	}
	for i := range cluster {
		cluster[i].ColCount = len(columnEnd)
	}
}

// occupiedUntil is the end of an event for packing purposes. An event whose
// end is not after its start occupies no time, so it never frees a column
// earlier than its own start.
func occupiedUntil(ev model.LaidOutEvent) int {
	return max(ev.StartMinute, ev.EndMinute)
}
