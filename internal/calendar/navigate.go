package calendar

import (
	"fmt"
	"strings"
	"time"
)

type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prev", "previous":
		return Prev, nil
	case "next":
		return Next, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Step moves ref one full unit of g. Month steps keep the day of month,
// clamped to the length of the target month (Jan 31 -> Feb 29).
//
// Step keeps no memory of the clamp, so Prev after Next is not always the
// identity (Jan 31 -> Feb 29 -> Jan 29). Navigator carries the anchor that
// makes the pair invert.
func Step(ref time.Time, g Granularity, dir Direction) time.Time {
	return step(ref, g, dir, ref.Day())
}

func step(ref time.Time, g Granularity, dir Direction, anchorDay int) time.Time {
	switch g {
	case Month:
		return addMonthsClamped(ref, int(dir), anchorDay)
	case Week:
		return ref.AddDate(0, 0, 7*int(dir))
	case Day:
		return ref.AddDate(0, 0, int(dir))
	}
	return ref
}

func addMonthsClamped(t time.Time, n, day int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Navigator is the header/sidebar state: the reference date, the active
// view and the selected date.
//
// The reference is held as local midnight of its civil day, and the
// navigator remembers the day of month the user started from, so stepping
// through a short month or a DST transition and back lands on the original
// date.
type Navigator struct {
	resolver  Resolver
	ref       time.Time
	view      Granularity
	selected  *time.Time
	anchorDay int
}

func NewNavigator(r Resolver, view Granularity, ref time.Time) *Navigator {
	if !view.Valid() {
		view = Month
	}
	ref = r.StartOfDay(ref)
	return &Navigator{resolver: r, ref: ref, view: view, anchorDay: ref.Day()}
}

func (n *Navigator) Ref() time.Time { return n.ref }
func (n *Navigator) Granularity() Granularity { return n.view }
func (n *Navigator) Resolver() Resolver { return n.resolver }

func (n *Navigator) Selected() (time.Time, bool) {
	if n.selected == nil {
		return time.Time{}, false
	}
	return *n.selected, true
}

func (n *Navigator) Next() time.Time { return n.move(Next) }
func (n *Navigator) Prev() time.Time { return n.move(Prev) }

func (n *Navigator) move(dir Direction) time.Time {
	n.ref = n.resolver.StartOfDay(step(n.ref, n.view, dir, n.anchorDay))
	if n.view != Month {
		n.anchorDay = n.ref.Day()
	}
	return n.ref
}

// Today jumps back to the current date without changing the view.
// The returned reference is local midnight of today.
func (n *Navigator) Today() time.Time {
	n.SetRef(n.resolver.Today())
	return n.ref
}

func (n *Navigator) SetRef(t time.Time) {
	n.ref = n.resolver.StartOfDay(t)
	n.anchorDay = n.ref.Day()
}

// SetGranularity switches views; an invalid value is ignored.
func (n *Navigator) SetGranularity(g Granularity) {
	if g.Valid() {
		n.view = g
	}
}

func (n *Navigator) Select(t time.Time) {
	t = t.In(n.resolver.loc())
	n.selected = &t
}

func (n *Navigator) ClearSelection() { n.selected = nil }

// Cells resolves the current view.
func (n *Navigator) Cells() []Cell {
	return n.resolver.Cells(n.ref, n.view, n.selected)
}

func (n *Navigator) Title() string {
	return Title(n.ref, n.view)
}

// Title is the header label for ref in view g.
func Title(ref time.Time, g Granularity) string {
	switch g {
	case Week:
		return ref.Format("Jan 02, 2006")
	case Day:
		return ref.Format("Monday, Jan 02, 2006")
	default:
		return ref.Format("January 2006")
	}
}
