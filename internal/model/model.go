package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency of a task as shown in the task panel.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every valid priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// ParsePriority accepts any casing of a priority name.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// Color is one of the fixed tag colors offered in the event and task modals.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorPink   Color = "pink"
)

// Palette is the ordered color palette.
var Palette = []Color{ColorBlue, ColorGreen, ColorPurple, ColorRed, ColorOrange, ColorPink}

func (c Color) Valid() bool {
	return slices.Contains(Palette, c)
}

// ParseColor accepts a bare palette name or the class-style form
// ("bg-red-500") that older seed data carries.
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(v, "bg-") {
		v = strings.TrimPrefix(v, "bg-")
		if i := strings.LastIndexByte(v, '-'); i > 0 {
			v = v[:i]
		}
	}
	c := Color(v)
	if !c.Valid() {
		return "", fmt.Errorf("unknown color %q", s)
	}
	return c, nil
}

// Subtask is a checklist item owned by a single task.
type Subtask struct {
	ID        string `json:"id" yaml:"id" validate:"required"`
	Title     string `json:"title" yaml:"title" validate:"required"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Task is a user to-do item.
//
// Completed is independent of subtask completion: a completed task may still
// carry open subtasks.
type Task struct {
	ID          string        `json:"id" yaml:"id" validate:"required"`
	Title       string        `json:"title" yaml:"title" validate:"required"`
	Priority    Priority      `json:"priority" yaml:"priority" validate:"required,oneof=low medium high"`
	Completed   bool          `json:"completed" yaml:"completed"`
	DueDate     *time.Time    `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Color       Color         `json:"color" yaml:"color" validate:"required,oneof=blue green purple red orange pink"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	TimeSlot    string        `json:"time_slot,omitempty" yaml:"time_slot,omitempty"`
	Duration    time.Duration `json:"duration,omitempty" yaml:"duration,omitempty" validate:"gte=0"`
	Subtasks    []Subtask     `json:"subtasks,omitempty" yaml:"subtasks,omitempty" validate:"dive"`
}

// Clone returns a deep copy so callers can edit a task without touching the
// store's copy.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	out.Tags = slices.Clone(t.Tags)
	out.Subtasks = slices.Clone(t.Subtasks)
	return out
}

func (t *Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// AddTag appends a trimmed, non-empty tag that is not already present.
func (t *Task) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" || t.HasTag(tag) {
		return
	}
	t.Tags = append(t.Tags, tag)
}

func (t *Task) RemoveTag(tag string) {
	t.Tags = slices.DeleteFunc(t.Tags, func(s string) bool { return s == tag })
}

// AddSubtask appends a new open subtask and returns it.
func (t *Task) AddSubtask(title string) (Subtask, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Subtask{}, false
	}
	st := Subtask{ID: uuid.NewString(), Title: title}
	t.Subtasks = append(t.Subtasks, st)
	return st, true
}

// ToggleSubtask flips the completion of the subtask with id.
func (t *Task) ToggleSubtask(id string) bool {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			return true
		}
	}
	return false
}

// RemoveSubtask deletes the subtask with id and reports whether it existed.
func (t *Task) RemoveSubtask(id string) bool {
	n := len(t.Subtasks)
	t.Subtasks = slices.DeleteFunc(t.Subtasks, func(s Subtask) bool { return s.ID == id })
	return len(t.Subtasks) != n
}

// SubtaskProgress returns how many subtasks are done out of the total.
func (t Task) SubtaskProgress() (done, total int) {
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// EventKind distinguishes plain tasks from scheduled meetings in the add
// event modal.
type EventKind string

const (
	KindTask    EventKind = "task"
	KindMeeting EventKind = "meeting"
)

// Event is a concrete calendar entry to render: a mock entry, a single ICS
// occurrence after recurrence expansion, or a meeting from the add modal.
type Event struct {
	SourceID string
	UID      string

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// event.
	InstanceKey string

	Title       string
	Description string
	Location    string
	Color       Color
	Kind        EventKind

	AllDay bool

	// Start is in the display timezone.
	Start    time.Time
	Duration time.Duration
}

// End is the exclusive end of the event.
func (e Event) End() time.Time {
	return e.Start.Add(e.Duration)
}
