// Package render draws calendar views and the task panel for the terminal.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"taskcal/internal/model"
)

// Theme is the color scheme used by every view.
type Theme struct {
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	Primary       lipgloss.Color
	Accent        lipgloss.Color
	Success       lipgloss.Color
	Border        lipgloss.Color
	Selection     lipgloss.Color

	// Palette maps task and event colors onto terminal colors.
	Palette map[model.Color]lipgloss.Color
}

var TokyoNight = Theme{
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),
	Primary:       lipgloss.Color("#7aa2f7"),
	Accent:        lipgloss.Color("#7dcfff"),
	Success:       lipgloss.Color("#9ece6a"),
	Border:        lipgloss.Color("#3b4261"),
	Selection:     lipgloss.Color("#33467c"),
	Palette: map[model.Color]lipgloss.Color{
		model.ColorBlue:   lipgloss.Color("#7aa2f7"),
		model.ColorGreen:  lipgloss.Color("#9ece6a"),
		model.ColorPurple: lipgloss.Color("#bb9af7"),
		model.ColorRed:    lipgloss.Color("#f7768e"),
		model.ColorOrange: lipgloss.Color("#ff9e64"),
		model.ColorPink:   lipgloss.Color("#ff7eb6"),
	},
}

// Styles holds the pre-computed styles for one theme.
type Styles struct {
	theme Theme

	Title     lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
	CellDim   lipgloss.Style
	CellToday lipgloss.Style
	CellSel   lipgloss.Style
	HourLabel lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Done      lipgloss.Style
	Panel     lipgloss.Style
	BarFull   lipgloss.Style
	BarEmpty  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	cell := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		Foreground(t.Foreground)

	return Styles{
		theme:     t,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(t.Accent).Align(lipgloss.Center),
		Cell:      cell,
		CellDim:   cell.Foreground(t.ForegroundDim),
		CellToday: cell.BorderForeground(t.Primary).Bold(true),
		CellSel:   cell.BorderForeground(t.Accent).Background(t.Selection),
		HourLabel: lipgloss.NewStyle().Foreground(t.ForegroundDim).Width(6),
		Highlight: lipgloss.NewStyle().Background(t.Selection),
		Muted:     lipgloss.NewStyle().Foreground(t.ForegroundDim),
		Done:      lipgloss.NewStyle().Foreground(t.ForegroundDim).Strikethrough(true),
		Panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1),
		BarFull:   lipgloss.NewStyle().Foreground(t.Success),
		BarEmpty:  lipgloss.NewStyle().Foreground(t.Border),
	}
}

// Color returns the style for an item of color c.
func (s Styles) Color(c model.Color) lipgloss.Style {
	if fg, ok := s.theme.Palette[c]; ok {
		return lipgloss.NewStyle().Foreground(fg)
	}
	return lipgloss.NewStyle().Foreground(s.theme.Foreground)
}
