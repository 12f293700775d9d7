package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"taskcal/internal/model"
)

// MockTasks returns the demo tasks the UI starts with. Due dates land on
// the day of now.
func MockTasks(now time.Time) []model.Task {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := func() *time.Time { d := today; return &d }

	return []model.Task{
		{
			ID:          "1",
			Title:       "Review project proposal",
			Priority:    model.PriorityHigh,
			DueDate:     due(),
			Color:       model.ColorRed,
			Description: "Need to review the Q4 project proposal and provide feedback.",
			Tags:        []string{"Work", "Urgent"},
			Subtasks: []model.Subtask{
				{ID: "sub1", Title: "Read proposal document", Completed: true},
				{ID: "sub2", Title: "Schedule team meeting"},
			},
		},
		{
			ID:          "2",
			Title:       "Update team documentation",
			Priority:    model.PriorityMedium,
			Completed:   true,
			DueDate:     due(),
			Color:       model.ColorBlue,
			Description: "Update the team documentation with latest procedures.",
			Tags:        []string{"Work", "Documentation"},
			Subtasks: []model.Subtask{
				{ID: "sub3", Title: "Review current docs", Completed: true},
				{ID: "sub4", Title: "Add new procedures", Completed: true},
			},
		},
		{
			ID:          "3",
			Title:       "Schedule client follow-up",
			Priority:    model.PriorityLow,
			Color:       model.ColorGreen,
			Description: "Follow up with client about project status.",
			Tags:        []string{"Work", "Client"},
		},
	}
}

// seedFile is the on-disk YAML layout of a task seed.
//
//	tasks:
//	  - id: "1"
//	    title: Review project proposal
//	    priority: high
//	    color: bg-red-500
//	    due: 2024-12-16
//	    duration: 1h30m
type seedFile struct {
	Tasks []seedTask `yaml:"tasks"`
}

type seedTask struct {
	ID          string          `yaml:"id"`
	Title       string          `yaml:"title"`
	Priority    string          `yaml:"priority"`
	Completed   bool            `yaml:"completed"`
	Due         string          `yaml:"due"`
	Color       string          `yaml:"color"`
	Description string          `yaml:"description"`
	Tags        []string        `yaml:"tags"`
	Slot        string          `yaml:"slot"`
	Duration    string          `yaml:"duration"`
	Subtasks    []model.Subtask `yaml:"subtasks"`
}

// ParseSeed decodes a YAML task seed. Due dates without a time are
// interpreted as midnight in loc.
func ParseSeed(data []byte, loc *time.Location) ([]model.Task, error) {
	if loc == nil {
		loc = time.Local
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse task seed: %w", err)
	}

	out := make([]model.Task, 0, len(f.Tasks))
	for i, st := range f.Tasks {
		t, err := st.toTask(loc)
		if err != nil {
			return nil, fmt.Errorf("task seed entry %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// LoadSeedFile reads a YAML task seed from path.
func LoadSeedFile(path string, loc *time.Location) ([]model.Task, error) {
	if path == "" {
		return nil, errors.New("task seed path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data, loc)
}

func (st seedTask) toTask(loc *time.Location) (model.Task, error) {
	t := model.Task{
		ID:          st.ID,
		Title:       st.Title,
		Completed:   st.Completed,
		Description: st.Description,
		Tags:        st.Tags,
		TimeSlot:    st.Slot,
		Subtasks:    st.Subtasks,
		Priority:    model.PriorityMedium,
		Color:       model.ColorBlue,
	}

	if st.Priority != "" {
		p, err := model.ParsePriority(st.Priority)
		if err != nil {
			return t, err
		}
		t.Priority = p
	}
	if st.Color != "" {
		c, err := model.ParseColor(st.Color)
		if err != nil {
			return t, err
		}
		t.Color = c
	}
	if st.Due != "" {
		d, err := parseDue(st.Due, loc)
		if err != nil {
			return t, err
		}
		t.DueDate = &d
	}
	if st.Duration != "" {
		d, err := time.ParseDuration(st.Duration)
		if err != nil {
			return t, fmt.Errorf("duration %q: %w", st.Duration, err)
		}
		t.Duration = d
	}
	return t, nil
}

func parseDue(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("due date %q must be YYYY-MM-DD or RFC3339", v)
	}
	return t.In(loc), nil
}
