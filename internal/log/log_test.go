package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	prevNow := now
	now = func() time.Time { return time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
		now = prevNow
	})
	return &buf
}

func TestInfoFormatsKeyValues(t *testing.T) {
	buf := capture(t)

	Info("task moved", "id", "1", "slot", "2024-12-16T09")

	assert.Equal(t, "2024-12-15T09:00:00Z [INFO] task moved id=1 slot=2024-12-16T09\n", buf.String())
}

func TestQuotesValuesWithSpaces(t *testing.T) {
	buf := capture(t)

	Info("seeded", "title", "Review project proposal")

	assert.Contains(t, buf.String(), `title="Review project proposal"`)
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelWarn)

	Debug("hidden")
	Info("hidden")
	Warn("shown")
	Error("also shown", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[WARN] shown")
	assert.Contains(t, lines[1], "[ERROR] also shown err=boom")
}

func TestOddKeyValuesDropTrailing(t *testing.T) {
	buf := capture(t)

	Info("odd", "a", 1, "dangling")

	assert.True(t, strings.HasSuffix(buf.String(), "odd a=1\n"))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		"Info":    LevelInfo,
		"warning": LevelWarn,
		"ERROR":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
