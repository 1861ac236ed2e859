package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles shared by the decodeur screens.
type Theme struct {
	Title     lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Correct   lipgloss.Style
	Incorrect lipgloss.Style
	Selected  lipgloss.Style
	Footer    lipgloss.Style
	Box       lipgloss.Style
}

// NewTheme returns the default palette, or a high-contrast one.
func NewTheme(highContrast bool) Theme {
	if highContrast {
		return Theme{
			Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")),
			Text:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
			Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0")),
			Accent:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFF00")),
			Correct:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00")),
			Incorrect: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")),
			Selected:  lipgloss.NewStyle().Bold(true).Reverse(true),
			Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
			Box:       lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("#FFFFFF")).Padding(0, 1),
		}
	}
	return Theme{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")),
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
		Correct:   lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
		Incorrect: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true),
		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E")).Padding(0, 1),
	}
}
