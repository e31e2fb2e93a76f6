package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains pre-configured lipgloss styles for the TUI.
type Styles struct {
	Title    lipgloss.Style
	Prompt   lipgloss.Style
	Result   lipgloss.Style
	Selected lipgloss.Style
	Meta     lipgloss.Style
	Snippet  lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Preview  lipgloss.Style
}

// DefaultStyles returns the default styling.
func DefaultStyles() *Styles {
	var (
		primary = lipgloss.Color("#7C3AED")
		muted   = lipgloss.Color("#6C7086")
		errCol  = lipgloss.Color("#F38BA8")
		border  = lipgloss.Color("#45475A")
	)

	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Prompt:   lipgloss.NewStyle().Foreground(primary),
		Result:   lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().PaddingLeft(0).Bold(true).Foreground(primary),
		Meta:     lipgloss.NewStyle().Foreground(muted),
		Snippet:  lipgloss.NewStyle().PaddingLeft(4).Foreground(muted),
		Error:    lipgloss.NewStyle().Foreground(errCol),
		Help:     lipgloss.NewStyle().Foreground(muted),
		Preview: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}
