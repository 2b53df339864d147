package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Warning: lipgloss.Color("#e3b341"),
	Error:   lipgloss.Color("#f85149"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Border  lipgloss.Style
	Cell    lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Border:  lipgloss.NewStyle().Foreground(t.Dim),
		Cell:    lipgloss.NewStyle().Padding(0, 1),
		Dim:     lipgloss.NewStyle().Foreground(t.Dim),
		Success: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

// DefaultStyles are the styles of DefaultTheme.
var DefaultStyles = NewStyles(DefaultTheme)

// Table is a titled grid of strings.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string

	// Footer is printed dimmed below the grid.
	Footer string
}

// Render renders the table with DefaultStyles.
func (t *Table) Render() string {
	return t.RenderStyles(DefaultStyles)
}

// RenderStyles renders the table with s.
func (t *Table) RenderStyles(s Styles) string {
	grid := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		})

	parts := make([]string, 0, 3)
	if t.Title != "" {
		parts = append(parts, s.Title.Render(t.Title))
	}
	parts = append(parts, grid.Render())
	if t.Footer != "" {
		parts = append(parts, s.Dim.Render(t.Footer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
