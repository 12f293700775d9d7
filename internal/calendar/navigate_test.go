package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep(t *testing.T) {
	ref := time.Date(2024, 12, 16, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 1, 16, 9, 30, 0, 0, time.UTC), Step(ref, Month, Next))
	assert.Equal(t, time.Date(2024, 11, 16, 9, 30, 0, 0, time.UTC), Step(ref, Month, Prev))
	assert.Equal(t, time.Date(2024, 12, 23, 9, 30, 0, 0, time.UTC), Step(ref, Week, Next))
	assert.Equal(t, time.Date(2024, 12, 9, 9, 30, 0, 0, time.UTC), Step(ref, Week, Prev))
	assert.Equal(t, time.Date(2024, 12, 17, 9, 30, 0, 0, time.UTC), Step(ref, Day, Next))
	assert.Equal(t, time.Date(2024, 12, 15, 9, 30, 0, 0, time.UTC), Step(ref, Day, Prev))
}

func TestStepMonthClamps(t *testing.T) {
	assert.Equal(t, date(2024, 2, 29), Step(date(2024, 1, 31), Month, Next))
	assert.Equal(t, date(2023, 2, 28), Step(date(2023, 3, 31), Month, Prev))
	assert.Equal(t, date(2025, 1, 31), Step(date(2024, 12, 31), Month, Next))

	// without an anchor the clamp is not undone
	assert.Equal(t, date(2024, 1, 29), Step(Step(date(2024, 1, 31), Month, Next), Month, Prev))
}

func TestNavigatorRoundTrip(t *testing.T) {
	r := testResolver(time.Sunday)
	for _, g := range []Granularity{Month, Week, Day} {
		for _, ref := range everyDay(date(2024, 1, 1), date(2025, 12, 31)) {
			n := NewNavigator(r, g, ref)
			want := n.Ref()
			require.True(t, want.Equal(r.StartOfDay(ref)))

			n.Next()
			n.Prev()
			require.True(t, n.Ref().Equal(want), "%s %s -> %s", g, ref, n.Ref())

			n.Prev()
			n.Next()
			require.True(t, n.Ref().Equal(want), "%s %s -> %s", g, ref, n.Ref())
		}
	}
}

func TestNavigatorRoundTripAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	r := Resolver{Location: loc, Now: func() time.Time { return time.Date(2024, 3, 9, 2, 30, 0, 0, loc) }}

	refs := []time.Time{
		time.Date(2024, 3, 9, 2, 30, 0, 0, loc),
		time.Date(2024, 3, 10, 1, 45, 0, 0, loc),
		time.Date(2024, 11, 2, 1, 30, 0, 0, loc),
		time.Date(2024, 11, 3, 1, 30, 0, 0, loc),
		time.Date(2024, 10, 3, 23, 0, 0, 0, loc),
	}
	for _, g := range []Granularity{Month, Week, Day} {
		for _, ref := range refs {
			n := NewNavigator(r, g, ref)
			y, m, d := ref.Date()

			n.Next()
			n.Prev()
			assert.Equal(t, time.Date(y, m, d, 0, 0, 0, 0, loc), n.Ref(), "%s %s", g, ref)

			n.Prev()
			n.Next()
			assert.Equal(t, time.Date(y, m, d, 0, 0, 0, 0, loc), n.Ref(), "%s %s", g, ref)
		}
	}

	n := NewNavigator(r, Day, time.Date(2024, 3, 1, 0, 0, 0, 0, loc))
	n.Today()
	n.Next()
	n.Prev()
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, loc), n.Ref())

	n.SetRef(time.Date(2024, 3, 9, 2, 30, 0, 0, loc))
	assert.Equal(t, 0, n.Ref().Hour())
}

func TestNavigatorAnchorsMonthDay(t *testing.T) {
	n := NewNavigator(testResolver(time.Sunday), Month, date(2024, 1, 31))

	assert.Equal(t, date(2024, 2, 29), n.Next())
	assert.Equal(t, date(2024, 3, 31), n.Next())
	assert.Equal(t, date(2024, 4, 30), n.Next())
	assert.Equal(t, date(2024, 1, 31), func() time.Time { n.Prev(); n.Prev(); return n.Prev() }())
}

func TestNavigatorToday(t *testing.T) {
	n := NewNavigator(testResolver(time.Sunday), Week, date(2023, 5, 4))
	n.Next()

	assert.Equal(t, date(2024, 12, 16), n.Today())
	assert.Equal(t, Week, n.Granularity())
}

func TestNavigatorViewAndSelection(t *testing.T) {
	n := NewNavigator(testResolver(time.Sunday), Granularity(42), date(2024, 12, 16))
	assert.Equal(t, Month, n.Granularity())
	assert.Len(t, n.Cells(), 35)

	n.SetGranularity(Day)
	assert.Len(t, n.Cells(), 24)
	n.SetGranularity(Granularity(0))
	assert.Equal(t, Day, n.Granularity())

	_, ok := n.Selected()
	assert.False(t, ok)

	n.SetGranularity(Week)
	n.Select(date(2024, 12, 18))
	sel, ok := n.Selected()
	require.True(t, ok)
	assert.Equal(t, date(2024, 12, 18), sel)
	assert.True(t, n.Cells()[3].Selected)

	n.ClearSelection()
	assert.False(t, n.Cells()[3].Selected)
}

func TestTitle(t *testing.T) {
	ref := date(2024, 12, 16)
	assert.Equal(t, "December 2024", Title(ref, Month))
	assert.Equal(t, "Dec 16, 2024", Title(ref, Week))
	assert.Equal(t, "Monday, Dec 16, 2024", Title(ref, Day))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Next, must(ParseDirection("next")))
	assert.Equal(t, Prev, must(ParseDirection("PREV")))
	_, err := ParseDirection("up")
	assert.Error(t, err)
}
