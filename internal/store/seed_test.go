package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskcal/internal/model"
)

const seedYAML = `
tasks:
  - id: "a"
    title: Review project proposal
    priority: high
    color: bg-red-500
    due: 2024-12-16
    tags: [Work, Urgent]
    subtasks:
      - id: s1
        title: Read proposal document
        completed: true
  - title: Standup
    slot: 2024-12-16T09
    duration: 15m
`

func TestParseSeed(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)

	tasks, err := ParseSeed([]byte(seedYAML), loc)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	a := tasks[0]
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, model.PriorityHigh, a.Priority)
	assert.Equal(t, model.ColorRed, a.Color)
	require.NotNil(t, a.DueDate)
	assert.True(t, a.DueDate.Equal(time.Date(2024, 12, 16, 0, 0, 0, 0, loc)))
	assert.Equal(t, []model.Subtask{{ID: "s1", Title: "Read proposal document", Completed: true}}, a.Subtasks)

	b := tasks[1]
	assert.Empty(t, b.ID)
	assert.Equal(t, model.PriorityMedium, b.Priority)
	assert.Equal(t, model.ColorBlue, b.Color)
	assert.Equal(t, "2024-12-16T09", b.TimeSlot)
	assert.Equal(t, 15*time.Minute, b.Duration)

	s, err := New(tasks)
	require.NoError(t, err)
	assert.NotEmpty(t, s.GetAll()[1].ID)
}

func TestParseSeedErrors(t *testing.T) {
	cases := map[string]string{
		"priority": "tasks:\n  - title: x\n    priority: urgent\n",
		"color":    "tasks:\n  - title: x\n    color: teal\n",
		"due":      "tasks:\n  - title: x\n    due: tomorrow\n",
		"duration": "tasks:\n  - title: x\n    duration: forever\n",
		"yaml":     "tasks: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed([]byte(body), time.UTC)
			assert.Error(t, err)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	tasks, err := LoadSeedFile(path, nil)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadSeedFile("", nil)
	assert.Error(t, err)
}
