package ui

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count with IEC units, e.g. "1.5 GiB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatRate renders a bytes-per-second rate, e.g. "12 KB/s".
func FormatRate(bps int64) string {
	if bps < 0 {
		bps = 0
	}
	return humanize.Bytes(uint64(bps)) + "/s"
}

// FormatPercent renders a 0-100 value with one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatBattery renders a battery level, "-" when there is no battery.
func FormatBattery(level int, charging bool) string {
	if level < 0 {
		return "-"
	}
	s := fmt.Sprintf("%d%%", level)
	if charging {
		s += " " + SymbolCharging
	}
	return s
}
