package ics

import (
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"taskcal/internal/calendar"
	"taskcal/internal/model"
)

const productID = "-//taskcal//Task Export//EN"

var ErrNoSchedule = errors.New("task has neither a due date nor an hour slot")

// ExportTask builds a single-event VCALENDAR for a task.
//
// A task sitting in an hour slot exports as a timed event lasting its
// Duration (one hour when unset); otherwise its due date becomes an all-day
// event.
func ExportTask(t model.Task, now time.Time, loc *time.Location) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	uid := "task-" + strings.TrimSpace(t.ID) + "@taskcal"
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(now.UTC())

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Task"
	}
	ev.SetSummary(title)
	if desc := strings.TrimSpace(t.Description); desc != "" {
		ev.SetDescription(desc)
	}
	if len(t.Tags) > 0 {
		ev.SetProperty(ical.ComponentPropertyCategories, strings.Join(t.Tags, ","))
	}
	ev.SetProperty(ical.ComponentPropertyPriority, priorityValue(t.Priority))

	start, kind, ok := calendar.ParseSlot(t.TimeSlot, loc)
	switch {
	case ok && kind == calendar.HourCell:
		d := t.Duration
		if d <= 0 {
			d = time.Hour
		}
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(d))
	case ok && kind == calendar.DayCell:
		ev.SetAllDayStartAt(start)
		ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
	case t.DueDate != nil:
		due := *t.DueDate
		if loc != nil {
			due = due.In(loc)
		}
		day := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
	default:
		return "", ErrNoSchedule
	}

	return cal.Serialize(), nil
}

// priorityValue maps to the RFC 5545 PRIORITY scale (1 highest, 9 lowest).
func priorityValue(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "1"
	case model.PriorityLow:
		return "9"
	default:
		return "5"
	}
}
