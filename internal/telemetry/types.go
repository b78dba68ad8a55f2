// Package telemetry samples system load for the tray: CPU, memory, disk,
// GPU, network throughput and battery, plus per-metric process rankings
// and a description of the active network connection. Every query is best
// effort; failures yield a safe default and are logged, never returned.
package telemetry

import (
	"strings"
	"time"

	"github.com/trayd/trayd/internal/errors"
)

// Metric names a process ranking.
type Metric string

const (
	MetricCPU     Metric = "cpu"
	MetricRAM     Metric = "ram"
	MetricDisk    Metric = "disk"
	MetricGPU     Metric = "gpu"
	MetricNetwork Metric = "network"
	// MetricBattery ranks by energy impact.
	MetricBattery Metric = "battery"
)

// Metrics lists every ranking in display order.
var Metrics = []Metric{MetricCPU, MetricRAM, MetricDisk, MetricGPU, MetricNetwork, MetricBattery}

// ParseMetric accepts a metric name or one of its aliases (memory, energy).
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return MetricCPU, nil
	case "ram", "memory", "mem":
		return MetricRAM, nil
	case "disk":
		return MetricDisk, nil
	case "gpu":
		return MetricGPU, nil
	case "network", "net":
		return MetricNetwork, nil
	case "battery", "energy":
		return MetricBattery, nil
	}
	return "", errors.InvalidArgs("unknown metric %q (want one of cpu, ram, disk, gpu, network, battery)", s)
}

// CPUTicks are cumulative CPU time counters.
type CPUTicks struct {
	User   float64
	System float64
	Idle   float64
	Nice   float64
}

// Total is the sum of every counter, idle included.
func (t CPUTicks) Total() float64 {
	return t.User + t.System + t.Idle + t.Nice
}

// Busy is the non-idle share of the counters.
func (t CPUTicks) Busy() float64 {
	return t.User + t.System + t.Nice
}

// NetCounter holds one interface's cumulative byte counters.
type NetCounter struct {
	Sent uint64
	Recv uint64
}

// Rates is network throughput in bytes per second.
type Rates struct {
	UpBps   int64 `json:"upload" yaml:"upload"`
	DownBps int64 `json:"download" yaml:"download"`
}

// NoBattery is the battery level reported when there is none.
const NoBattery = -1

// Battery is the internal battery state. OnACPower is true whenever
// external power is connected, including at 100% when not charging.
type Battery struct {
	Level     int  `json:"level" yaml:"level"`
	OnACPower bool `json:"isCharging" yaml:"is_charging"`
}

// Process is one ranked process. Value is what the ranking sorts by; In and
// Out carry the directional figures of the disk (read/written) and network
// (download/upload) rankings.
type Process struct {
	PID   int     `json:"pid"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	In    int64   `json:"in,omitempty"`
	Out   int64   `json:"out,omitempty"`
}

// Wire returns the map the popover views read for metric m.
func (p Process) Wire(m Metric) map[string]any {
	out := map[string]any{"pid": p.PID, "name": p.Name}
	switch m {
	case MetricCPU:
		out["cpu"] = p.Value
	case MetricRAM:
		out["memory"] = int64(p.Value)
	case MetricGPU:
		out["gpu"] = p.Value
	case MetricBattery:
		out["energy"] = p.Value
	case MetricDisk:
		out["bytesRead"] = p.In
		out["bytesWritten"] = p.Out
	case MetricNetwork:
		out["download"] = p.In
		out["upload"] = p.Out
	}
	return out
}

// WireProcesses converts a ranking for the host.
func WireProcesses(m Metric, ps []Process) []map[string]any {
	out := make([]map[string]any, len(ps))
	for i, p := range ps {
		out[i] = p.Wire(m)
	}
	return out
}

// Stats is every scalar metric sampled at once.
type Stats struct {
	CPU     float64   `json:"cpu" yaml:"cpu"`
	GPU     float64   `json:"gpu" yaml:"gpu"`
	RAM     float64   `json:"ram" yaml:"ram"`
	Disk    float64   `json:"disk" yaml:"disk"`
	Network Rates     `json:"network" yaml:"network"`
	Battery Battery   `json:"battery" yaml:"battery"`
	At      time.Time `json:"at" yaml:"at"`
}

// Wire returns the flat map sent for getAllStats.
func (s Stats) Wire() map[string]any {
	return map[string]any{
		"cpu":               s.CPU,
		"gpu":               s.GPU,
		"ram":               s.RAM,
		"disk":              s.Disk,
		"networkUp":         s.Network.UpBps,
		"networkDown":       s.Network.DownBps,
		"batteryLevel":      s.Battery.Level,
		"isBatteryCharging": s.Battery.OnACPower,
	}
}

// Clock tells time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
