package ui

import "strings"

// Sparkline block characters representing 8 vertical levels (lowest to highest).
var sparklineBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline draws the last width values. Levels are scaled between
// the minimum and maximum of the window; a flat window sits at mid height.
// The color follows the last value's percentage threshold.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	levels := len(sparklineBlocks)
	span := hi - lo

	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for _, v := range data {
		level := levels / 2
		if span > 0 {
			level = int((v - lo) / span * float64(levels-1))
			level = max(0, min(level, levels-1))
		}
		sb.WriteRune(sparklineBlocks[level])
	}

	return style(ThresholdColor(data[len(data)-1])).Render(sb.String())
}

// RenderRateSparkline draws byte rates, scaled against the window maximum
// so the color reflects how close the last value is to the recent peak.
func RenderRateSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	peak := 0.0
	for _, v := range data {
		peak = max(peak, v)
	}
	if peak == 0 {
		return style(ColorSuccess).Render(strings.Repeat(string(sparklineBlocks[0]), min(len(data), width)))
	}
	scaled := make([]float64, len(data))
	for i, v := range data {
		scaled[i] = v / peak * 100
	}
	return RenderSparkline(scaled, width)
}
