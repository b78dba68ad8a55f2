package ui

import (
	"fmt"
	"strings"
)

// Progress bar block characters.
const (
	progressFilled = '█'
	progressEmpty  = '░'
)

// RenderProgressBar draws percent (clamped to 0-100) as a bar width cells
// wide followed by the rounded value: ████████░░░░  67%
func RenderProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	filled := int((percent / 100.0) * float64(width))

	var sb strings.Builder
	sb.Grow(width * 3)
	for i := 0; i < width; i++ {
		if i < filled {
			sb.WriteRune(progressFilled)
		} else {
			sb.WriteRune(progressEmpty)
		}
	}

	return style(ThresholdColor(percent)).Render(sb.String()) + fmt.Sprintf(" %3.0f%%", percent)
}
