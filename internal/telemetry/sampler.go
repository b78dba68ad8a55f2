package telemetry

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/trayd/trayd/internal/logger"
)

// Counters reads the raw OS counters the sampler derives metrics from.
type Counters interface {
	CPUTicks(ctx context.Context) (CPUTicks, error)
	// Memory returns used and total physical memory in bytes.
	Memory(ctx context.Context) (used, total uint64, err error)
	// Disk returns used and total bytes of the volume holding path.
	Disk(ctx context.Context, path string) (used, total uint64, err error)
	// GPU returns device utilisation in percent.
	GPU(ctx context.Context) (float64, error)
	// Network returns per-interface byte counters.
	Network(ctx context.Context) (map[string]NetCounter, error)
	// Battery returns the internal battery, with Level NoBattery if absent.
	Battery(ctx context.Context) (Battery, error)
}

// SamplerOptions configures a Sampler.
type SamplerOptions struct {
	// InterfacePrefixes selects the interfaces summed for network rates.
	InterfacePrefixes []string
	// DiskPath is the volume reported by DiskPercent.
	DiskPath string
	Clock    Clock
	Logger   logger.Logger
}

// Sampler turns counters into percentages and rates. CPU and network
// results are deltas against the previous call. Each series holds its lock
// from the counter read until its snapshot is stored, so overlapping
// callers are measured one after the other.
type Sampler struct {
	counters Counters
	prefixes []string
	diskPath string
	clock    Clock
	log      logger.Logger

	cpuMu   sync.Mutex
	prevCPU *CPUTicks

	netMu    sync.Mutex
	prevNet  *NetCounter
	prevTime time.Time
	rates    Rates
}

// NewSampler creates a sampler over counters.
func NewSampler(counters Counters, opts SamplerOptions) *Sampler {
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.DiskPath == "" {
		opts.DiskPath = "/"
	}
	return &Sampler{
		counters: counters,
		prefixes: opts.InterfacePrefixes,
		diskPath: opts.DiskPath,
		clock:    opts.Clock,
		log:      logger.OrNoop(opts.Logger),
	}
}

// CPUPercent returns busy time as a percentage of all CPU time since the
// previous call. The first call only records a baseline and returns 0.
// A reading older than the stored one is discarded.
func (s *Sampler) CPUPercent(ctx context.Context) float64 {
	s.cpuMu.Lock()
	defer s.cpuMu.Unlock()

	cur, err := s.counters.CPUTicks(ctx)
	if err != nil {
		s.log.Debug("cpu ticks: %v", err)
		return 0
	}

	prev := s.prevCPU
	if prev != nil && cur.Total() < prev.Total() {
		return 0
	}
	s.prevCPU = &cur
	if prev == nil {
		return 0
	}
	total := cur.Total() - prev.Total()
	if total <= 0 {
		return 0
	}
	busy := cur.Busy() - prev.Busy()
	return clampPercent(busy / total * 100)
}

// RAMPercent returns used physical memory as a percentage of the total.
func (s *Sampler) RAMPercent(ctx context.Context) float64 {
	used, total, err := s.counters.Memory(ctx)
	if err != nil || total == 0 {
		s.log.Debug("memory: %v", err)
		return 0
	}
	return clampPercent(float64(used) / float64(total) * 100)
}

// DiskPercent returns used space on the configured volume.
func (s *Sampler) DiskPercent(ctx context.Context) float64 {
	used, total, err := s.counters.Disk(ctx, s.diskPath)
	if err != nil || total == 0 {
		s.log.Debug("disk %s: %v", s.diskPath, err)
		return 0
	}
	return clampPercent(float64(used) / float64(total) * 100)
}

// GPUPercent returns device utilisation.
func (s *Sampler) GPUPercent(ctx context.Context) float64 {
	pct, err := s.counters.GPU(ctx)
	if err != nil {
		s.log.Debug("gpu: %v", err)
		return 0
	}
	return clampPercent(pct)
}

// NetworkRates returns upload and download throughput since the previous
// call, summed over the interfaces matching the configured prefixes. The
// first call records a baseline and returns zero rates. A counter that
// went backwards (wrap or interface reset) counts as no traffic. When no
// time has passed the previous rates are returned unchanged.
func (s *Sampler) NetworkRates(ctx context.Context) Rates {
	s.netMu.Lock()
	defer s.netMu.Unlock()

	counters, err := s.counters.Network(ctx)
	if err != nil {
		s.log.Debug("network counters: %v", err)
		return s.rates
	}
	cur := s.sum(counters)
	now := s.clock.Now()

	if s.prevNet == nil {
		s.prevNet = &cur
		s.prevTime = now
		return s.rates
	}

	elapsed := now.Sub(s.prevTime).Seconds()
	if elapsed <= 0 {
		return s.rates
	}

	s.rates = Rates{
		UpBps:   int64(float64(delta(cur.Sent, s.prevNet.Sent)) / elapsed),
		DownBps: int64(float64(delta(cur.Recv, s.prevNet.Recv)) / elapsed),
	}
	s.prevNet = &cur
	s.prevTime = now
	return s.rates
}

func (s *Sampler) sum(counters map[string]NetCounter) NetCounter {
	var total NetCounter
	for name, c := range counters {
		if !s.matches(name) {
			continue
		}
		total.Sent += c.Sent
		total.Recv += c.Recv
	}
	return total
}

func (s *Sampler) matches(iface string) bool {
	for _, p := range s.prefixes {
		if strings.HasPrefix(iface, p) {
			return true
		}
	}
	return false
}

func delta(cur, prev uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

// Battery returns the internal battery state, Level NoBattery when absent
// or unreadable.
func (s *Sampler) Battery(ctx context.Context) Battery {
	b, err := s.counters.Battery(ctx)
	if err != nil {
		s.log.Debug("battery: %v", err)
		return Battery{Level: NoBattery}
	}
	return b
}

// AllStats samples every scalar metric. Network rates are sampled once and
// shared by the upload and download figures.
func (s *Sampler) AllStats(ctx context.Context) Stats {
	return Stats{
		Network: s.NetworkRates(ctx),
		Battery: s.Battery(ctx),
		CPU:     s.CPUPercent(ctx),
		GPU:     s.GPUPercent(ctx),
		RAM:     s.RAMPercent(ctx),
		Disk:    s.DiskPercent(ctx),
		At:      s.clock.Now(),
	}
}

// BatteryLevel converts capacities to a whole percentage.
func BatteryLevel(current, max float64) int {
	if max <= 0 {
		return 0
	}
	level := int(math.Round(current * 100 / max))
	if level > 100 {
		level = 100
	}
	if level < 0 {
		level = 0
	}
	return level
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
