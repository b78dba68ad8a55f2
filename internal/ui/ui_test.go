package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trayd/trayd/internal/telemetry"
)

func plain(t *testing.T) {
	t.Helper()
	DisableColors()
	t.Cleanup(EnableColors)
}

func TestThresholdColor(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, string(ColorSuccess)},
		{59.9, string(ColorSuccess)},
		{60, string(ColorWarning)},
		{80, string(ColorError)},
		{120, string(ColorError)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(ThresholdColor(tt.percent)), "percent %v", tt.percent)
	}
}

func TestRenderProgressBar(t *testing.T) {
	plain(t)

	tests := []struct {
		name    string
		percent float64
		width   int
		want    string
	}{
		{"half", 50, 10, "█████░░░░░  50%"},
		{"clamped high", 150, 4, "████ 100%"},
		{"clamped low", -5, 4, "░░░░   0%"},
		{"zero width", 50, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderProgressBar(tt.percent, tt.width))
		})
	}
}

func TestRenderSparkline(t *testing.T) {
	plain(t)

	assert.Equal(t, "", RenderSparkline(nil, 5))
	assert.Equal(t, "▁█", RenderSparkline([]float64{0, 100}, 5))
	assert.Equal(t, "▅▅▅", RenderSparkline([]float64{7, 7, 7}, 5), "flat data sits mid height")
	assert.Equal(t, "▁█", RenderSparkline([]float64{90, 0, 100}, 2), "only the last width values")
	assert.Equal(t, "▁▁", RenderRateSparkline([]float64{0, 0}, 4))
	assert.Equal(t, "▁█", RenderRateSparkline([]float64{10, 2000}, 4))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "0 B", FormatBytes(-3))
	assert.Equal(t, "2.0 kB/s", FormatRate(2000))
	assert.Equal(t, "12.3%", FormatPercent(12.34))
	assert.Equal(t, "-", FormatBattery(telemetry.NoBattery, false))
	assert.Equal(t, "80% "+SymbolCharging, FormatBattery(80, true))
}

func TestProcessTable(t *testing.T) {
	plain(t)

	ps := []telemetry.Process{
		{PID: 42, Name: "Safari", Value: 2048, In: 10, Out: 20},
	}

	rows := ProcessRows(telemetry.MetricRAM, ps)
	assert.Equal(t, []string{"42", "Safari", "2.0 KiB"}, []string(rows[0]))

	rows = ProcessRows(telemetry.MetricNetwork, ps)
	assert.Equal(t, []string{"42", "Safari", "10 B", "20 B"}, []string(rows[0]))

	cols := ProcessColumns(telemetry.MetricCPU)
	assert.Equal(t, "%CPU", cols[len(cols)-1].Title)

	out := RenderProcessTable(telemetry.MetricCPU, ps)
	assert.Contains(t, out, "Safari")
	assert.Contains(t, out, "PID")
	assert.Equal(t, "no processes", RenderProcessTable(telemetry.MetricCPU, nil))
}

func TestRenderStats(t *testing.T) {
	plain(t)

	out := RenderStats(telemetry.Stats{
		CPU:     50,
		Network: telemetry.Rates{UpBps: 1000, DownBps: 2000},
		Battery: telemetry.Battery{Level: telemetry.NoBattery},
	}, 10)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 6)
	assert.Contains(t, lines[0], "CPU")
	assert.Contains(t, lines[0], "█████░░░░░  50%")
	assert.Contains(t, lines[4], "↑ 1.0 kB/s  ↓ 2.0 kB/s")
	assert.True(t, strings.HasSuffix(lines[5], "-"))
}
