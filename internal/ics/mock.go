package ics

import (
	"time"

	"taskcal/internal/calendar"
	"taskcal/internal/model"
)

// MockEvents returns demo events anchored on the week and month containing
// ref, so they stay visible wherever the user navigates.
func MockEvents(r calendar.Resolver, ref time.Time) []model.Event {
	day := r.StartOfDay(ref)
	week := r.StartOfWeek(ref)
	month := r.StartOfMonth(ref)

	// at places an event at a wall-clock time on d.
	at := func(d time.Time, hour, minute int) time.Time {
		return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
	}
	ev := func(uid, title string, start time.Time, d time.Duration, c model.Color) model.Event {
		return model.Event{
			SourceID:    "mock",
			UID:         uid,
			InstanceKey: start.Format(time.RFC3339),
			Title:       title,
			Color:       c,
			Kind:        model.KindMeeting,
			Start:       start,
			Duration:    d,
		}
	}

	return []model.Event{
		ev("standup", "Morning Standup", at(day, 9, 0), time.Hour, model.ColorBlue),
		ev("review", "Project Review", at(day, 11, 0), 2*time.Hour, model.ColorGreen),
		ev("client-meeting", "Client Meeting", at(day, 14, 0), time.Hour, model.ColorPurple),
		ev("sync", "Team Sync", at(day, 16, 0), 90*time.Minute, model.ColorOrange),
		ev("team-meeting", "Team Meeting", at(week.AddDate(0, 0, 1), 9, 0), 2*time.Hour, model.ColorBlue),
		ev("client-call", "Client Call", at(week.AddDate(0, 0, 3), 14, 0), time.Hour, model.ColorGreen),
		ev("planning", "Sprint Planning", at(month.AddDate(0, 0, 14), 10, 0), time.Hour, model.ColorPurple),
		ev("retro", "Quarterly Retro", at(month.AddDate(0, 0, 19), 15, 0), time.Hour, model.ColorPink),
	}
}
