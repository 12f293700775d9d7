package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskcal/internal/model"
)

func event(title string, start time.Time, d time.Duration) model.Event {
	return model.Event{UID: title, Title: title, Start: start, Duration: d, Color: model.ColorBlue}
}

func TestBucketMonthByDate(t *testing.T) {
	r := testResolver(time.Sunday)
	events := []model.Event{
		event("Team Meeting", date(2024, 12, 15).Add(9*time.Hour), time.Hour),
		event("Project Review", date(2024, 12, 20).Add(14*time.Hour), 2*time.Hour),
		event("Client Call", date(2024, 12, 25), 0),
		event("Out of range", date(2025, 2, 1), time.Hour),
	}

	cells := r.Bucket(r.Cells(date(2024, 12, 1), Month, nil), events, nil)

	counts := map[int]string{}
	total := 0
	for i, c := range cells {
		for _, p := range c.Events {
			counts[i] = p.Event.Title
			total++
		}
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, map[int]string{14: "Team Meeting", 19: "Project Review", 24: "Client Call"}, counts)
}

func TestBucketMultiHourEventOnlyInStartCell(t *testing.T) {
	r := testResolver(time.Sunday)
	day := date(2024, 12, 16)
	events := []model.Event{
		event("Project Review", day.Add(11*time.Hour), 2*time.Hour),
		event("Team Sync", day.Add(16*time.Hour), 90*time.Minute),
		event("Late start", day.Add(9*time.Hour+30*time.Minute), 30*time.Minute),
	}

	cells := r.Bucket(r.Cells(day, Day, nil), events, nil)

	require.Len(t, cells, 24)
	require.Len(t, cells[11].Events, 1)
	assert.Empty(t, cells[12].Events)
	assert.InDelta(t, 2.0, cells[11].Events[0].Span, 1e-9)
	assert.Zero(t, cells[11].Events[0].Offset)

	require.Len(t, cells[16].Events, 1)
	assert.Empty(t, cells[17].Events)
	assert.InDelta(t, 1.5, cells[16].Events[0].Span, 1e-9)

	require.Len(t, cells[9].Events, 1)
	assert.InDelta(t, 0.5, cells[9].Events[0].Offset, 1e-9)

	n := 0
	for _, c := range cells {
		n += len(c.Events)
	}
	assert.Equal(t, len(events), n)
}

func TestBucketWeekSpanInDays(t *testing.T) {
	r := testResolver(time.Sunday)
	ev := event("Offsite", date(2024, 12, 16).Add(12*time.Hour), 36*time.Hour)

	cells := r.Bucket(r.Cells(date(2024, 12, 16), Week, nil), []model.Event{ev}, nil)

	require.Len(t, cells[1].Events, 1)
	assert.Empty(t, cells[2].Events)
	assert.InDelta(t, 0.5, cells[1].Events[0].Offset, 1e-9)
	assert.InDelta(t, 1.5, cells[1].Events[0].Span, 1e-9)
}

func TestBucketEventsSortedByStart(t *testing.T) {
	r := testResolver(time.Sunday)
	day := date(2024, 12, 16)
	events := []model.Event{
		event("b", day.Add(15*time.Hour), time.Hour),
		event("a", day.Add(9*time.Hour), time.Hour),
	}

	cells := r.Bucket(r.Cells(day, Week, nil), events, nil)

	require.Len(t, cells[1].Events, 2)
	assert.Equal(t, "a", cells[1].Events[0].Event.Title)
	assert.Equal(t, "b", cells[1].Events[1].Event.Title)
}

func TestBucketTasks(t *testing.T) {
	r := testResolver(time.Sunday)
	day := date(2024, 12, 16)
	due := day
	tasks := []model.Task{
		{ID: "hour", TimeSlot: "2024-12-16T09"},
		{ID: "day", TimeSlot: "2024-12-17"},
		{ID: "due", DueDate: &due},
		{ID: "slot-wins", TimeSlot: "2024-12-18T10", DueDate: &due},
		{ID: "backlog", TimeSlot: "backlog", DueDate: &due},
		{ID: "nothing"},
	}

	week := r.Bucket(r.Cells(day, Week, nil), nil, tasks)
	assert.Equal(t, []string{"hour", "due"}, taskIDs(week[1].Tasks))
	assert.Equal(t, []string{"day"}, taskIDs(week[2].Tasks))
	assert.Equal(t, []string{"slot-wins"}, taskIDs(week[3].Tasks))

	hours := r.Bucket(r.Cells(day, Day, nil), nil, tasks)
	placed := map[int][]string{}
	for i, c := range hours {
		if len(c.Tasks) > 0 {
			placed[i] = taskIDs(c.Tasks)
		}
	}
	assert.Equal(t, map[int][]string{9: {"hour"}}, placed)
}

func TestBucketDoesNotMutateInput(t *testing.T) {
	r := testResolver(time.Sunday)
	cells := r.Cells(date(2024, 12, 16), Week, nil)

	_ = r.Bucket(cells, []model.Event{event("x", date(2024, 12, 16), time.Hour)}, nil)

	for _, c := range cells {
		assert.Empty(t, c.Events)
	}
	assert.Empty(t, r.Bucket(nil, nil, nil))
}

func TestSlotRoundTrip(t *testing.T) {
	r := testResolver(time.Sunday)
	for _, c := range r.Cells(date(2024, 12, 16), Day, nil) {
		start, kind, ok := ParseSlot(c.SlotID(), time.UTC)
		require.True(t, ok)
		assert.Equal(t, HourCell, kind)
		assert.True(t, start.Equal(c.Start))
	}
	for _, c := range r.Cells(date(2024, 12, 16), Month, nil) {
		start, kind, ok := ParseSlot(c.SlotID(), time.UTC)
		require.True(t, ok)
		assert.Equal(t, DayCell, kind)
		assert.True(t, start.Equal(c.Start))
	}

	_, _, ok := ParseSlot("backlog", time.UTC)
	assert.False(t, ok)
	_, _, ok = ParseSlot("2024-13-40", time.UTC)
	assert.False(t, ok)

	assert.Equal(t, "2024-12-16T09", HourSlot(date(2024, 12, 16).Add(9*time.Hour+20*time.Minute)))
	assert.Equal(t, "2024-12-16", DaySlot(date(2024, 12, 16)))
}

func TestEventsIn(t *testing.T) {
	events := []model.Event{
		event("before", date(2024, 12, 14), time.Hour),
		event("inside", date(2024, 12, 15), time.Hour),
		event("end", date(2024, 12, 22), time.Hour),
	}
	got := EventsIn(events, date(2024, 12, 15), date(2024, 12, 22))
	require.Len(t, got, 1)
	assert.Equal(t, "inside", got[0].Title)
}

func taskIDs(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
