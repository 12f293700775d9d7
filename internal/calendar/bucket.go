package calendar

import (
	"sort"
	"time"

	"taskcal/internal/model"
)

// Bucket returns a copy of cells with events and tasks assigned. cells must
// be ordered by Start, as Cells and each WeekHours column are.
//
// Every event and task lands in at most one cell:
//   - an event goes to the cell containing its start; cells it merely
//     overlaps get nothing, its length is carried by Placement.Span
//   - a task with a TimeSlot goes to the cell containing the slot start;
//     day slots never land in hour cells
//   - a task without a slot falls back to its due date, in day cells only
func (r Resolver) Bucket(cells []Cell, events []model.Event, tasks []model.Task) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		c.Events = nil
		c.Tasks = nil
		out[i] = c
	}
	if len(out) == 0 {
		return out
	}

	for _, ev := range events {
		i := find(out, ev.Start)
		if i < 0 {
			continue
		}
		c := &out[i]
		unit := c.End.Sub(c.Start)
		c.Events = append(c.Events, Placement{
			Event:  ev,
			Offset: float64(ev.Start.Sub(c.Start)) / float64(unit),
			Span:   float64(ev.Duration) / float64(unit),
		})
	}

	for _, t := range tasks {
		if i := r.taskCell(out, t); i >= 0 {
			out[i].Tasks = append(out[i].Tasks, t)
		}
	}

	for i := range out {
		sort.SliceStable(out[i].Events, func(a, b int) bool {
			return out[i].Events[a].Event.Start.Before(out[i].Events[b].Event.Start)
		})
	}
	return out
}

func (r Resolver) taskCell(cells []Cell, t model.Task) int {
	if t.TimeSlot != "" {
		start, kind, ok := ParseSlot(t.TimeSlot, r.loc())
		if !ok {
			return -1
		}
		if kind == HourCell {
			if i := findSlot(cells, t.TimeSlot); i >= 0 {
				return i
			}
		}
		i := find(cells, start)
		if i < 0 || (kind == DayCell && cells[i].Kind == HourCell) {
			return -1
		}
		return i
	}
	if t.DueDate == nil {
		return -1
	}
	i := find(cells, *t.DueDate)
	if i < 0 || cells[i].Kind != DayCell {
		return -1
	}
	return i
}

// find returns the index of the cell containing t, or -1.
func find(cells []Cell, t time.Time) int {
	// first cell whose End is after t
	i := sort.Search(len(cells), func(i int) bool { return cells[i].End.After(t) })
	if i < len(cells) && cells[i].Contains(t) {
		return i
	}
	return -1
}

// findSlot matches an hour slot id against hour cells by label, so slots
// naming a skipped or repeated wall-clock hour still resolve to their row.
func findSlot(cells []Cell, id string) int {
	for i, c := range cells {
		if c.Kind == HourCell && c.SlotID() == id {
			return i
		}
	}
	return -1
}

// EventsIn filters events to those starting inside [start, end).
func EventsIn(events []model.Event, start, end time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if !ev.Start.Before(start) && ev.Start.Before(end) {
			out = append(out, ev)
		}
	}
	return out
}
