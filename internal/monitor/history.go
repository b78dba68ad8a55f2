package monitor

import (
	"sync"

	"github.com/trayd/trayd/internal/telemetry"
)

// DefaultHistorySize is the number of samples kept per series.
const DefaultHistorySize = 120

// Series names a tracked value.
type Series string

const (
	SeriesCPU  Series = "cpu"
	SeriesGPU  Series = "gpu"
	SeriesRAM  Series = "ram"
	SeriesDisk Series = "disk"
	SeriesUp   Series = "up"
	SeriesDown Series = "down"
)

// History keeps recent telemetry samples in ring buffers for sparklines.
type History struct {
	mu     sync.RWMutex
	size   int
	series map[Series]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
}

// NewHistory creates a history holding size samples per series.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size, series: make(map[Series]*ringBuffer)}
}

// Push records one sample of every series.
func (h *History) Push(s telemetry.Stats) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.push(SeriesCPU, s.CPU)
	h.push(SeriesGPU, s.GPU)
	h.push(SeriesRAM, s.RAM)
	h.push(SeriesDisk, s.Disk)
	h.push(SeriesUp, float64(s.Network.UpBps))
	h.push(SeriesDown, float64(s.Network.DownBps))
}

func (h *History) push(name Series, v float64) {
	r, ok := h.series[name]
	if !ok {
		r = &ringBuffer{data: make([]float64, h.size)}
		h.series[name] = r
	}
	r.push(v)
}

// Last returns up to count values of a series, oldest first.
func (h *History) Last(name Series, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.series[name]
	if !ok {
		return nil
	}
	return r.last(count)
}

// Count returns how many samples have been pushed, capped at the size.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.series[SeriesCPU]; ok {
		return r.count
	}
	return 0
}

func (r *ringBuffer) push(v float64) {
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// last returns the newest count values in chronological order.
func (r *ringBuffer) last(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	count = min(count, r.count)
	size := len(r.data)

	// head is the next write position; the newest value sits at head-1.
	start := (r.head - count + size) % size
	out := make([]float64, count)
	for i := range out {
		out[i] = r.data[(start+i)%size]
	}
	return out
}
