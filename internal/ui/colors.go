package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Percentage thresholds shared by bars and sparklines.
const (
	WarningPercent  = 60.0
	CriticalPercent = 80.0
)

var colorsEnabled = true

// DisableColors switches every renderer in the package to plain text.
func DisableColors() { colorsEnabled = false }

// EnableColors undoes DisableColors.
func EnableColors() { colorsEnabled = true }

// style returns a foreground style, or a plain one when colors are off.
func style(c lipgloss.Color) lipgloss.Style {
	if !colorsEnabled {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(c)
}

// ThresholdColor returns the color for a 0-100 value:
// green below WarningPercent, yellow below CriticalPercent, red above.
func ThresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalPercent:
		return ColorError
	case percent >= WarningPercent:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// Colored renders s in c.
func Colored(c lipgloss.Color, s string) string { return style(c).Render(s) }

// Muted renders s in the muted color.
func Muted(s string) string { return style(ColorMuted).Render(s) }

// Bold renders s in bold.
func Bold(s string) string {
	if !colorsEnabled {
		return s
	}
	return lipgloss.NewStyle().Bold(true).Render(s)
}
