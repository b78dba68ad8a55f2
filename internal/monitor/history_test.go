package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trayd/trayd/internal/telemetry"
)

func TestHistory_LastIsChronological(t *testing.T) {
	h := NewHistory(3)
	for _, v := range []float64{10, 20, 30, 40} {
		h.Push(telemetry.Stats{CPU: v, Network: telemetry.Rates{UpBps: int64(v)}})
	}

	assert.Equal(t, []float64{20, 30, 40}, h.Last(SeriesCPU, 10), "oldest sample evicted")
	assert.Equal(t, []float64{30, 40}, h.Last(SeriesCPU, 2))
	assert.Equal(t, []float64{40}, h.Last(SeriesUp, 1))
	assert.Equal(t, 3, h.Count())
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(0)
	assert.Nil(t, h.Last(SeriesRAM, 5))
	assert.Equal(t, 0, h.Count())

	h.Push(telemetry.Stats{})
	assert.Nil(t, h.Last(SeriesRAM, 0))
	assert.Equal(t, []float64{0}, h.Last(SeriesRAM, 5))
}
