package calendar

import (
	"fmt"
	"time"
)

const (
	daySlotLayout  = "2006-01-02"
	hourSlotLayout = "2006-01-02T15"
)

// SlotID is the drop-target identifier of the cell. Tasks moved onto the
// cell store this value in their TimeSlot.
func (c Cell) SlotID() string {
	if c.Kind == HourCell {
		return fmt.Sprintf("%sT%02d", c.Start.Format(daySlotLayout), c.Hour)
	}
	return DaySlot(c.Start)
}

// ParseSlot decodes an id produced by Cell.SlotID into the start of the slot
// in loc. Ids of any other shape report ok=false; callers keep them verbatim.
func ParseSlot(id string, loc *time.Location) (start time.Time, kind CellKind, ok bool) {
	if loc == nil {
		loc = time.Local
	}
	switch len(id) {
	case len(hourSlotLayout):
		t, err := time.ParseInLocation(hourSlotLayout, id, loc)
		if err != nil {
			return time.Time{}, 0, false
		}
		return t, HourCell, true
	case len(daySlotLayout):
		t, err := time.ParseInLocation(daySlotLayout, id, loc)
		if err != nil {
			return time.Time{}, 0, false
		}
		return t, DayCell, true
	}
	return time.Time{}, 0, false
}

// HourSlot returns the slot id of the hour containing t.
func HourSlot(t time.Time) string {
	return t.Format(hourSlotLayout)
}

// DaySlot returns the slot id of the day containing t.
func DaySlot(t time.Time) string {
	return t.Format(daySlotLayout)
}
