package ics

import (
	"sort"
	"time"

	"taskcal/internal/calendar"
	appLog "taskcal/internal/log"
	"taskcal/internal/model"
)

// Feed combines the demo events with anything parsed from a local calendar
// file and hands out the events for one rendered range at a time.
type Feed struct {
	Resolver calendar.Resolver

	// Mock adds MockEvents anchored on the reference date.
	Mock bool

	// Parsed holds VEVENTs from LoadFile. Recurrences are expanded per call
	// so only the visible range is materialised.
	Parsed []ParsedEvent

	MaxOccurrencesPerEvent int
}

// Events returns the events starting in [start, end), sorted by start.
func (f *Feed) Events(ref, start, end time.Time) []model.Event {
	var out []model.Event
	if f.Mock {
		out = append(out, calendar.EventsIn(MockEvents(f.Resolver, ref), start, end)...)
	}

	if len(f.Parsed) > 0 {
		res, err := ExpandOccurrences(f.Parsed, ExpandConfig{
			DisplayLocation:        f.Resolver.Location,
			RangeStart:             start,
			RangeEnd:               end,
			MaxOccurrencesPerEvent: f.MaxOccurrencesPerEvent,
		})
		if err != nil {
			appLog.Error("expand events failed", err,
				"range_start", start.Format(time.RFC3339),
				"range_end", end.Format(time.RFC3339),
			)
		} else {
			if len(res.TruncatedEvents) > 0 {
				appLog.Warn("recurrence expansion truncated", "uids", len(res.TruncatedEvents))
			}
			out = append(out, res.Events...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
