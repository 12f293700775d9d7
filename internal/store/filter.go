package store

import (
	"fmt"
	"strings"
	"time"

	"taskcal/internal/model"
)

type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusPending:
		return StatusPending, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Filter selects tasks for the search and filter panel. Zero values match
// everything.
type Filter struct {
	// Query matches title, description or any tag, case-insensitively.
	Query string

	// Priority restricts to one priority; empty means all.
	Priority model.Priority

	Status Status

	// Tags must all be present on the task.
	Tags []string

	// DueFrom / DueTo bound the due date as [DueFrom, DueTo). When either
	// is set, tasks without a due date are excluded.
	DueFrom time.Time
	DueTo   time.Time
}

// Active counts the filters that narrow the result, matching the badge on
// the filter button.
func (f Filter) Active() int {
	n := 0
	if f.Priority != "" {
		n++
	}
	if f.Status != "" && f.Status != StatusAll {
		n++
	}
	if len(f.Tags) > 0 {
		n++
	}
	if !f.DueFrom.IsZero() || !f.DueTo.IsZero() {
		n++
	}
	return n
}

func (f Filter) Match(t model.Task) bool {
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}

	switch f.Status {
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	case StatusPending:
		if t.Completed {
			return false
		}
	}

	for _, tag := range f.Tags {
		if !t.HasTag(tag) {
			return false
		}
	}

	if !f.DueFrom.IsZero() || !f.DueTo.IsZero() {
		if t.DueDate == nil {
			return false
		}
		d := *t.DueDate
		if !f.DueFrom.IsZero() && d.Before(f.DueFrom) {
			return false
		}
		if !f.DueTo.IsZero() && !d.Before(f.DueTo) {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return matchesQuery(t, q)
	}
	return true
}

func matchesQuery(t model.Task, q string) bool {
	if strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Filter returns the matching tasks in insertion order.
func (s *Store) Filter(f Filter) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}
