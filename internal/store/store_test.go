package store

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskcal/internal/model"
)

var refNow = time.Date(2024, 12, 16, 10, 30, 0, 0, time.UTC)

func newMockStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(MockTasks(refNow))
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T { return &v }

func TestGetAllKeepsInsertionOrder(t *testing.T) {
	s := newMockStore(t)

	got := s.GetAll()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestGetAllReturnsCopy(t *testing.T) {
	s := newMockStore(t)

	got := s.GetAll()
	got[0].Title = "mutated"
	got[0].Tags[0] = "mutated"
	got[0].Subtasks[0].Completed = false

	again := s.GetAll()
	assert.Equal(t, "Review project proposal", again[0].Title)
	assert.Equal(t, "Work", again[0].Tags[0])
	assert.True(t, again[0].Subtasks[0].Completed)
}

func TestUpdateCompletesTaskAndKeepsOtherFields(t *testing.T) {
	s := newMockStore(t)
	before := s.GetAll()

	require.NoError(t, s.Update("1", Patch{Completed: ptr(true)}))

	after := s.GetAll()
	require.Len(t, after, len(before))

	want := before[0]
	want.Completed = true
	assert.Equal(t, want, after[0])
	assert.Equal(t, model.PriorityHigh, after[0].Priority)
	assert.Equal(t, before[1:], after[1:])
}

func TestUpdateEveryTaskCompleted(t *testing.T) {
	s := newMockStore(t)
	for _, task := range s.GetAll() {
		before := s.GetAll()

		require.NoError(t, s.Update(task.ID, Patch{Completed: ptr(true)}))

		for i, got := range s.GetAll() {
			want := before[i]
			if want.ID == task.ID {
				want.Completed = true
			}
			assert.Equal(t, want, got)
		}
	}
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	s := newMockStore(t)
	before := s.GetAll()
	version := s.Version()
	miss := testutil.ToFloat64(mutationCount.WithLabelValues("update", "not_found"))

	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	err := s.Update("does-not-exist", Patch{Completed: ptr(true), Title: ptr("x")})

	assert.NoError(t, err)
	assert.Equal(t, before, s.GetAll())
	assert.Equal(t, version, s.Version())
	assert.Zero(t, calls)
	assert.Equal(t, miss+1, testutil.ToFloat64(mutationCount.WithLabelValues("update", "not_found")))
}

func TestUpdateMergesSeveralFields(t *testing.T) {
	s := newMockStore(t)
	due := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Update("3", Patch{
		Title:       ptr("Call the client"),
		Priority:    ptr(model.PriorityHigh),
		DueDate:     &due,
		Color:       ptr(model.ColorPurple),
		Description: ptr(""),
		Tags:        &[]string{"Client"},
		Duration:    ptr(90 * time.Minute),
		Subtasks:    &[]model.Subtask{{ID: "a", Title: "Find number"}},
	}))

	got, ok := s.Get("3")
	require.True(t, ok)
	assert.Equal(t, "Call the client", got.Title)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	assert.Equal(t, model.ColorPurple, got.Color)
	assert.Empty(t, got.Description)
	assert.Equal(t, []string{"Client"}, got.Tags)
	assert.Equal(t, 90*time.Minute, got.Duration)
	assert.Len(t, got.Subtasks, 1)
	assert.False(t, got.Completed)
}

func TestUpdateZeroDueDateClears(t *testing.T) {
	s := newMockStore(t)

	require.NoError(t, s.Update("1", Patch{DueDate: &time.Time{}}))

	got, _ := s.Get("1")
	assert.Nil(t, got.DueDate)
}

func TestUpdateRejectsInvalidPatch(t *testing.T) {
	cases := map[string]Patch{
		"blank title":   {Title: ptr("   ")},
		"empty title":   {Title: ptr("")},
		"bad priority":  {Priority: ptr(model.Priority("urgent"))},
		"bad color":     {Color: ptr(model.Color("teal"))},
		"dup subtasks":  {Subtasks: &[]model.Subtask{{ID: "a", Title: "x"}, {ID: "a", Title: "y"}}},
		"anon subtask":  {Subtasks: &[]model.Subtask{{Title: "x"}}},
		"negative span": {Duration: ptr(-time.Minute)},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			s := newMockStore(t)
			before := s.GetAll()

			err := s.Update("1", p)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "1", verr.TaskID)
			assert.Equal(t, before, s.GetAll())
		})
	}
}

func TestMoveToSlot(t *testing.T) {
	s := newMockStore(t)
	before := s.GetAll()

	require.NoError(t, s.MoveToSlot("2", "2024-12-16T09"))

	after := s.GetAll()
	assert.Equal(t, "2024-12-16T09", after[1].TimeSlot)
	after[1].TimeSlot = ""
	assert.Equal(t, before, after)

	assert.NoError(t, s.MoveToSlot("nope", "2024-12-16T09"))
}

func TestMutationsReplaceCollection(t *testing.T) {
	s := newMockStore(t)
	var snaps []Snapshot
	cancel := s.Subscribe(func(snap Snapshot) { snaps = append(snaps, snap) })

	require.NoError(t, s.Update("1", Patch{Completed: ptr(true)}))
	require.NoError(t, s.MoveToSlot("3", "backlog"))

	require.Len(t, snaps, 2)
	assert.Equal(t, uint64(1), snaps[0].Version)
	assert.Equal(t, uint64(2), snaps[1].Version)
	assert.True(t, snaps[0].Tasks[0].Completed)
	assert.Empty(t, snaps[0].Tasks[2].TimeSlot)
	assert.Equal(t, "backlog", snaps[1].Tasks[2].TimeSlot)

	cancel()
	require.NoError(t, s.Update("2", Patch{Completed: ptr(false)}))
	assert.Len(t, snaps, 2)
	assert.Equal(t, uint64(3), s.Version())
}

func TestAdd(t *testing.T) {
	s := newMockStore(t)

	created, err := s.Add(model.Task{Title: "Book venue", Priority: model.PriorityMedium, Color: model.ColorOrange})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	all := s.GetAll()
	require.Len(t, all, 4)
	assert.Equal(t, created.ID, all[3].ID)

	_, err = s.Add(model.Task{ID: "1", Title: "dup", Priority: model.PriorityLow, Color: model.ColorBlue})
	assert.True(t, errors.Is(err, ErrDuplicateID))

	_, err = s.Add(model.Task{Title: "no color", Priority: model.PriorityLow})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "Task.Color")
	assert.Equal(t, 4, s.Len())
}

func TestNewRejectsDuplicateSeed(t *testing.T) {
	seed := MockTasks(refNow)
	seed = append(seed, seed[0])

	_, err := New(seed)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestAvailableTags(t *testing.T) {
	s := newMockStore(t)
	assert.Equal(t, []string{"Client", "Documentation", "Urgent", "Work"}, s.AvailableTags())
}

func TestDiffRoundTrip(t *testing.T) {
	s := newMockStore(t)
	before, _ := s.Get("1")

	edited := before.Clone()
	edited.AddTag("Q4")
	edited.RemoveTag("Urgent")
	edited.ToggleSubtask("sub2")
	_, ok := edited.AddSubtask("Send feedback")
	require.True(t, ok)
	edited.DueDate = nil

	p := Diff(before, edited)
	assert.Nil(t, p.Title)
	assert.NotNil(t, p.Tags)
	assert.NotNil(t, p.Subtasks)
	require.NotNil(t, p.DueDate)
	assert.True(t, p.DueDate.IsZero())

	require.NoError(t, s.Update("1", p))
	got, _ := s.Get("1")
	assert.Equal(t, edited, got)

	assert.True(t, Diff(got, got).Empty())
}
