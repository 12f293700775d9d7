package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"taskcal/internal/calendar"
	"taskcal/internal/model"
	"taskcal/internal/store"
)

const (
	monthCellWidth = 12
	monthCellLines = 3
	weekColWidth   = 16
)

// Renderer turns bucketed cells into terminal frames.
type Renderer struct {
	Styles Styles
}

func New() *Renderer {
	return &Renderer{Styles: NewStyles(TokyoNight)}
}

// View renders cells for granularity g under a title line.
func (r *Renderer) View(title string, g calendar.Granularity, cells []calendar.Cell) string {
	var body string
	switch g {
	case calendar.Month:
		body = r.Month(cells)
	case calendar.Week:
		body = r.Week(cells)
	case calendar.Day:
		body = r.Day(cells)
	default:
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, r.Styles.Title.Render(title), body)
}

// Month draws a weekday header and one row per week. Cells must come from a
// month resolution, so their count is a multiple of seven.
func (r *Renderer) Month(cells []calendar.Cell) string {
	if len(cells) == 0 {
		return ""
	}
	header := make([]string, 0, 7)
	for i := 0; i < 7 && i < len(cells); i++ {
		name := cells[i].Start.Weekday().String()[:3]
		header = append(header, r.Styles.Header.Width(monthCellWidth+2).Render(name))
	}

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}
	for w := 0; w+7 <= len(cells); w += 7 {
		row := make([]string, 0, 7)
		for _, c := range cells[w : w+7] {
			row = append(row, r.monthCell(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (r *Renderer) monthCell(c calendar.Cell) string {
	lines := []string{fmt.Sprintf("%2d", c.Start.Day())}
	lines = append(lines, r.entries(c, monthCellWidth, monthCellLines-1)...)
	for len(lines) < monthCellLines {
		lines = append(lines, "")
	}
	return r.cellStyle(c).Width(monthCellWidth).Render(strings.Join(lines, "\n"))
}

// Week draws seven columns, one per day, listing events then tasks.
func (r *Renderer) Week(cells []calendar.Cell) string {
	cols := make([]string, 0, len(cells))
	for _, c := range cells {
		head := r.Styles.Header.Render(c.Start.Format("Mon 02"))
		lines := []string{head}
		lines = append(lines, r.entries(c, weekColWidth, 0)...)
		cols = append(cols, r.cellStyle(c).Width(weekColWidth).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// Day draws the agenda: one line per hour with its events and tasks.
func (r *Renderer) Day(cells []calendar.Cell) string {
	lines := make([]string, 0, len(cells))
	for _, c := range cells {
		label := r.Styles.HourLabel.Render(fmt.Sprintf("%02d:00", c.Hour))
		var items []string
		for _, p := range c.Events {
			ev := p.Event
			items = append(items, r.Styles.Color(ev.Color).Render(
				fmt.Sprintf("%s %s (%s)", ev.Start.Format("15:04"), ev.Title, shortDuration(ev.Duration))))
		}
		for _, t := range c.Tasks {
			items = append(items, r.taskLine(t))
		}
		line := label + "│ " + strings.Join(items, "  ")
		if c.Selected {
			line = r.Styles.Highlight.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// entries lists a cell's events and tasks, truncated to width. limit > 0
// caps the line count and summarises the rest as "+N more".
func (r *Renderer) entries(c calendar.Cell, width, limit int) []string {
	var out []string
	for _, p := range c.Events {
		ev := p.Event
		text := ev.Title
		if !ev.AllDay {
			text = ev.Start.Format("15:04") + " " + text
		}
		out = append(out, r.Styles.Color(ev.Color).Render(truncate(text, width)))
	}
	for _, t := range c.Tasks {
		out = append(out, r.taskLineWidth(t, width))
	}
	if limit > 0 && len(out) > limit {
		more := len(out) - (limit - 1)
		out = append(out[:limit-1], r.Styles.Muted.Render(fmt.Sprintf("+%d more", more)))
	}
	return out
}

func (r *Renderer) cellStyle(c calendar.Cell) lipgloss.Style {
	switch {
	case c.Selected:
		return r.Styles.CellSel
	case c.Today:
		return r.Styles.CellToday
	case !c.InPeriod:
		return r.Styles.CellDim
	}
	return r.Styles.Cell
}

// TaskPanel renders the sidebar list with a completion bar underneath.
func (r *Renderer) TaskPanel(tasks []model.Task) string {
	st := store.Summarize(tasks)
	lines := make([]string, 0, len(tasks)+2)
	lines = append(lines, r.Styles.Header.Render("Tasks"))
	for _, t := range tasks {
		line := r.taskLine(t)
		if t.DueDate != nil {
			line += r.Styles.Muted.Render("  due " + t.DueDate.Format("Jan 02"))
		}
		if done, total := t.SubtaskProgress(); total > 0 {
			line += r.Styles.Muted.Render(fmt.Sprintf("  %d/%d", done, total))
		}
		lines = append(lines, line)
	}
	lines = append(lines, r.ProgressBar(st, 20))
	return r.Styles.Panel.Render(strings.Join(lines, "\n"))
}

// ProgressBar draws width blocks filled by the completed share.
func (r *Renderer) ProgressBar(st store.Stats, width int) string {
	filled := 0
	if st.Total > 0 {
		filled = st.Completed * width / st.Total
	}
	return r.Styles.BarFull.Render(strings.Repeat("█", filled)) +
		r.Styles.BarEmpty.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %d/%d (%.0f%%)", st.Completed, st.Total, st.Percent)
}

func (r *Renderer) taskLine(t model.Task) string {
	return r.taskLineWidth(t, 0)
}

func (r *Renderer) taskLineWidth(t model.Task, width int) string {
	box := "[ ] "
	if t.Completed {
		box = "[x] "
	}
	text := box + t.Title
	if width > 0 {
		text = truncate(text, width)
	}
	if t.Completed {
		return r.Styles.Done.Render(text)
	}
	return r.Styles.Color(t.Color).Render(text)
}

// truncate shortens s to at most n cells, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func shortDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0m"
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d > time.Hour:
		return fmt.Sprintf("%dh%02dm", d/time.Hour, (d%time.Hour)/time.Minute)
	}
	return fmt.Sprintf("%dm", d/time.Minute)
}
