// Package calendar computes the cells a month, week or day view renders and
// buckets events and tasks into them. Everything here is pure: the same
// reference date, granularity and clock always yield the same cells.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"taskcal/internal/model"
)

// Granularity selects the calendar rendering mode.
type Granularity int

const (
	Month Granularity = iota + 1
	Week
	Day
)

func (g Granularity) String() string {
	switch g {
	case Month:
		return "month"
	case Week:
		return "week"
	case Day:
		return "day"
	}
	return fmt.Sprintf("granularity(%d)", int(g))
}

func (g Granularity) Valid() bool {
	return g == Month || g == Week || g == Day
}

func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "month":
		return Month, nil
	case "week":
		return Week, nil
	case "day":
		return Day, nil
	}
	return 0, fmt.Errorf("unknown calendar view %q", s)
}

// ParseWeekStart accepts "sunday" or "monday".
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	}
	return time.Sunday, fmt.Errorf("unsupported week start %q", s)
}

type CellKind int

const (
	DayCell CellKind = iota + 1
	HourCell
)

// Placement is an event assigned to the cell it starts in.
type Placement struct {
	Event model.Event

	// Offset is the fraction of the cell already elapsed when the event
	// starts, in [0, 1).
	Offset float64

	// Span is the event duration measured in cells; renderers scale the
	// row height by it.
	Span float64
}

// Cell is one renderable unit: a day square or an hour row. Start is
// inclusive and End exclusive.
type Cell struct {
	Start time.Time
	End   time.Time
	Kind  CellKind

	// Hour is the wall-clock hour of an hour cell.
	Hour int

	InPeriod bool
	Today    bool
	Selected bool

	Events []Placement
	Tasks  []model.Task
}

// Contains reports whether t falls inside [Start, End).
func (c Cell) Contains(t time.Time) bool {
	return !t.Before(c.Start) && t.Before(c.End)
}

// Resolver maps (reference date, granularity) to cells.
//
// WeekStart is fixed at construction. The zero Resolver starts weeks on
// Sunday in time.Local and reads the wall clock for "today".
type Resolver struct {
	WeekStart time.Weekday
	Location  *time.Location
	Now       func() time.Time
}

func NewResolver(weekStart time.Weekday, loc *time.Location) Resolver {
	return Resolver{WeekStart: weekStart, Location: loc}
}

func (r Resolver) loc() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// Today returns the current instant in the resolver's location.
func (r Resolver) Today() time.Time {
	if r.Now != nil {
		return r.Now().In(r.loc())
	}
	return time.Now().In(r.loc())
}

func (r Resolver) StartOfDay(t time.Time) time.Time {
	t = t.In(r.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (r Resolver) StartOfWeek(t time.Time) time.Time {
	d := r.StartOfDay(t)
	diff := (int(d.Weekday()) - int(r.WeekStart) + 7) % 7
	return d.AddDate(0, 0, -diff)
}

func (r Resolver) StartOfMonth(t time.Time) time.Time {
	t = t.In(r.loc())
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Period returns the [start, end) range covered by the unit of g that
// contains ref. For Month this is the calendar month, not the padded grid.
func (r Resolver) Period(ref time.Time, g Granularity) (time.Time, time.Time) {
	switch g {
	case Month:
		start := r.StartOfMonth(ref)
		return start, start.AddDate(0, 1, 0)
	case Week:
		start := r.StartOfWeek(ref)
		return start, start.AddDate(0, 0, 7)
	default:
		start := r.StartOfDay(ref)
		return start, r.StartOfDay(start.AddDate(0, 0, 1))
	}
}

// Range returns the [start, end) range spanned by the cells of g, including
// the leading and trailing days a month grid borrows from its neighbours.
func (r Resolver) Range(ref time.Time, g Granularity) (time.Time, time.Time) {
	if g != Month {
		return r.Period(ref, g)
	}
	first, next := r.Period(ref, Month)
	last := next.AddDate(0, 0, -1)
	return r.StartOfWeek(first), r.StartOfWeek(last).AddDate(0, 0, 7)
}

// Cells returns the cells to render for ref at granularity g, in order.
// selected may be nil. An invalid granularity yields nil.
func (r Resolver) Cells(ref time.Time, g Granularity, selected *time.Time) []Cell {
	switch g {
	case Month:
		return r.monthCells(ref, selected)
	case Week:
		return r.weekCells(ref, selected)
	case Day:
		return r.hourCells(ref, selected)
	}
	return nil
}

func (r Resolver) monthCells(ref time.Time, selected *time.Time) []Cell {
	target := r.StartOfMonth(ref)
	start, end := r.Range(ref, Month)
	cells := make([]Cell, 0, 42)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		c := r.dayCell(d, selected)
		c.InPeriod = d.Year() == target.Year() && d.Month() == target.Month()
		cells = append(cells, c)
	}
	return cells
}

func (r Resolver) weekCells(ref time.Time, selected *time.Time) []Cell {
	start := r.StartOfWeek(ref)
	cells := make([]Cell, 0, 7)
	for i := 0; i < 7; i++ {
		c := r.dayCell(start.AddDate(0, 0, i), selected)
		c.InPeriod = true
		cells = append(cells, c)
	}
	return cells
}

// hourCells builds one row per wall-clock hour of the civil day. The rows
// partition [midnight, next midnight): on a fall-back day hour 1 covers two
// elapsed hours, on a spring-forward day the skipped hour is an empty row.
func (r Resolver) hourCells(ref time.Time, selected *time.Time) []Cell {
	day := r.StartOfDay(ref)
	today := r.StartOfDay(r.Today()).Equal(day)
	bounds := hourBounds(day, r.StartOfDay(day.AddDate(0, 0, 1)))
	cells := make([]Cell, 0, 24)
	for h := 0; h < 24; h++ {
		c := Cell{
			Start:    bounds[h],
			End:      bounds[h+1],
			Kind:     HourCell,
			Hour:     h,
			InPeriod: true,
			Today:    today,
		}
		if selected != nil {
			c.Selected = c.Contains(*selected)
		}
		cells = append(cells, c)
	}
	return cells
}

// hourBounds returns, for each wall-clock hour h, the first instant of the
// day whose local hour is at least h. bounds[24] is next.
func hourBounds(day, next time.Time) [25]time.Time {
	var bounds [25]time.Time
	t := day
	for h := 0; h < 24; h++ {
		for t.Before(next) && t.Hour() < h {
			t = t.Add(time.Hour)
		}
		if t.After(next) {
			t = next
		}
		bounds[h] = t
	}
	bounds[24] = next
	return bounds
}

func (r Resolver) dayCell(d time.Time, selected *time.Time) Cell {
	c := Cell{
		Start: d,
		End:   d.AddDate(0, 0, 1),
		Kind:  DayCell,
		Today: sameDay(d, r.Today()),
	}
	if selected != nil {
		c.Selected = sameDay(d, selected.In(r.loc()))
	}
	return c
}

// WeekHours returns the week-with-time grid: one column of 24 hour cells
// per day of the week containing ref.
func (r Resolver) WeekHours(ref time.Time, selected *time.Time) [][]Cell {
	days := r.weekCells(ref, selected)
	cols := make([][]Cell, 0, len(days))
	for _, d := range days {
		cols = append(cols, r.hourCells(d.Start, selected))
	}
	return cols
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
