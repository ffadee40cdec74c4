package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Palette adapts to light and dark terminals
var (
	accent = lipgloss.AdaptiveColor{Light: "25", Dark: "75"}   // Blue
	muted  = lipgloss.AdaptiveColor{Light: "245", Dark: "243"} // Gray
	text   = lipgloss.AdaptiveColor{Light: "235", Dark: "253"}
	green  = lipgloss.AdaptiveColor{Light: "28", Dark: "78"}
	red    = lipgloss.AdaptiveColor{Light: "124", Dark: "203"}
	amber  = lipgloss.AdaptiveColor{Light: "130", Dark: "221"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(text)

	// Metadata lines under list items
	DimStyle = lipgloss.NewStyle().
			Foreground(muted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(green)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(red)

	WarningStyle = lipgloss.NewStyle().
			Foreground(amber)

	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(accent)
)

// FormatSize formats bytes into human readable format
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
