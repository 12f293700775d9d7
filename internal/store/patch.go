package store

import (
	"slices"
	"time"

	"taskcal/internal/model"
)

// Patch represents a partial update.
// nil pointer => "no change"
// zero DueDate or empty TimeSlot => clear
type Patch struct {
	Title       *string
	Priority    *model.Priority
	Completed   *bool
	DueDate     *time.Time
	Color       *model.Color
	Description *string
	Tags        *[]string
	TimeSlot    *string
	Duration    *time.Duration
	Subtasks    *[]model.Subtask
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Priority == nil && p.Completed == nil &&
		p.DueDate == nil && p.Color == nil && p.Description == nil &&
		p.Tags == nil && p.TimeSlot == nil && p.Duration == nil && p.Subtasks == nil
}

// Diff builds the patch that turns before into after. The details modal
// edits a copy of a task and saves it back through this.
func Diff(before, after model.Task) Patch {
	var p Patch
	if before.Title != after.Title {
		p.Title = &after.Title
	}
	if before.Priority != after.Priority {
		p.Priority = &after.Priority
	}
	if before.Completed != after.Completed {
		p.Completed = &after.Completed
	}
	if !sameTime(before.DueDate, after.DueDate) {
		d := time.Time{}
		if after.DueDate != nil {
			d = *after.DueDate
		}
		p.DueDate = &d
	}
	if before.Color != after.Color {
		p.Color = &after.Color
	}
	if before.Description != after.Description {
		p.Description = &after.Description
	}
	if !slices.Equal(before.Tags, after.Tags) {
		tags := slices.Clone(after.Tags)
		p.Tags = &tags
	}
	if before.TimeSlot != after.TimeSlot {
		p.TimeSlot = &after.TimeSlot
	}
	if before.Duration != after.Duration {
		p.Duration = &after.Duration
	}
	if !slices.Equal(before.Subtasks, after.Subtasks) {
		subs := slices.Clone(after.Subtasks)
		p.Subtasks = &subs
	}
	return p
}

// apply returns a merged copy of t; t itself is left untouched.
func (p Patch) apply(t model.Task) model.Task {
	out := t.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Completed != nil {
		out.Completed = *p.Completed
	}
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			out.DueDate = nil
		} else {
			d := *p.DueDate
			out.DueDate = &d
		}
	}
	if p.Color != nil {
		out.Color = *p.Color
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Tags != nil {
		out.Tags = slices.Clone(*p.Tags)
	}
	if p.TimeSlot != nil {
		out.TimeSlot = *p.TimeSlot
	}
	if p.Duration != nil {
		out.Duration = *p.Duration
	}
	if p.Subtasks != nil {
		out.Subtasks = slices.Clone(*p.Subtasks)
	}
	return out
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
