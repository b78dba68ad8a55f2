package telemetry

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/trayd/trayd/internal/exec"
	"github.com/trayd/trayd/internal/logger"
	"github.com/trayd/trayd/internal/telemetry/parsers"
)

// ProcSample is one process as read through gopsutil.
type ProcSample struct {
	PID        int
	Name       string
	CPU        float64
	RSS        uint64
	ReadBytes  uint64
	WriteBytes uint64
}

// ProcessSource lists processes without shelling out. It backs the
// rankings when the command line tools are missing or fail.
type ProcessSource interface {
	Processes(ctx context.Context) ([]ProcSample, error)
}

// GopsutilProcesses reads the process table through gopsutil. Fields a
// process does not expose to this user stay zero.
type GopsutilProcesses struct{}

func (GopsutilProcesses) Processes(ctx context.Context) ([]ProcSample, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProcSample, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		s := ProcSample{PID: int(p.Pid), Name: name}
		if pct, err := p.CPUPercentWithContext(ctx); err == nil {
			s.CPU = pct
		}
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			s.RSS = mi.RSS
		}
		if io, err := p.IOCountersWithContext(ctx); err == nil && io != nil {
			s.ReadBytes = io.ReadBytes
			s.WriteBytes = io.WriteBytes
		}
		out = append(out, s)
	}
	return out, nil
}

// RankerOptions configures a Ranker.
type RankerOptions struct {
	// GPUAllowlist holds case-insensitive name fragments of applications
	// assumed to hold a GPU context.
	GPUAllowlist []string
	// GPUCPUThreshold admits any other process whose CPU percentage
	// exceeds it.
	GPUCPUThreshold float64
	// GOOS picks the command line tools. Empty means runtime.GOOS.
	GOOS   string
	Logger logger.Logger
}

// Ranker lists the heaviest processes for a metric.
//
// GPU rankings are an estimate, not a measurement: no per-process GPU
// counter is available, so a process is listed when its name matches the
// GPU allowlist or its CPU usage exceeds GPUCPUThreshold, and its CPU
// percentage is reported as the "gpu" figure. Disk rankings order processes
// by open regular files and report bytes derived from that count.
type Ranker struct {
	run  exec.Runner
	src  ProcessSource
	opts RankerOptions
	goos string
	log  logger.Logger
}

// NewRanker creates a ranker running commands through run. A nil src
// disables the gopsutil fallback.
func NewRanker(run exec.Runner, src ProcessSource, opts RankerOptions) *Ranker {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	return &Ranker{run: run, src: src, opts: opts, goos: goos, log: logger.OrNoop(opts.Logger)}
}

// psArgs holds the ps arguments listing pid, value and command per GOOS.
// BSD ps and procps disagree on most flags (procps reads -r as "running
// only"), so each platform gets its own. Anything missing here ranks from
// the process table.
var psArgs = map[string]map[Metric][]string{
	"darwin": {
		MetricCPU: {"-arcwwxo", "pid,pcpu,comm", "-r"},
		MetricRAM: {"-arcwwxo", "pid,rss,comm", "-m"},
	},
	"linux": {
		MetricCPU: {"-eo", "pid,pcpu,comm", "--sort=-pcpu"},
		MetricRAM: {"-eo", "pid,rss,comm", "--sort=-rss"},
	},
}

var nettopArg = []string{"-P", "-L", "1", "-J", "bytes_in,bytes_out"}

// Top returns at most limit processes ranked by m, heaviest first. Failures
// give an empty list.
func (r *Ranker) Top(ctx context.Context, m Metric, limit int) []Process {
	if limit <= 0 {
		return nil
	}
	var ps []Process
	switch m {
	case MetricCPU:
		ps = r.topCPU(ctx, limit)
	case MetricRAM:
		ps = r.topRAM(ctx, limit)
	case MetricDisk:
		ps = r.topDisk(ctx, limit)
	case MetricGPU:
		ps = r.topGPU(ctx, limit)
	case MetricNetwork:
		ps = r.topNetwork(ctx, limit)
	case MetricBattery:
		ps = r.topEnergy(ctx, limit)
	default:
		r.log.Warn("unknown metric %q", m)
	}
	if len(ps) > limit {
		ps = ps[:limit]
	}
	if ps == nil {
		ps = []Process{}
	}
	return ps
}

func (r *Ranker) psRows(ctx context.Context, m Metric) ([]parsers.ProcessRow, error) {
	args, ok := psArgs[r.goos][m]
	if !ok {
		return nil, fmt.Errorf("no ps ranking for %s on %s", m, r.goos)
	}
	out, err := r.run.Run(ctx, "ps", args...)
	if err != nil {
		return nil, err
	}
	rows := parsers.ParsePS(out)
	if len(rows) == 0 {
		return nil, fmt.Errorf("ps returned no processes")
	}
	return rows, nil
}

func (r *Ranker) topCPU(ctx context.Context, limit int) []Process {
	rows, err := r.psRows(ctx, MetricCPU)
	if err != nil {
		r.log.Debug("ps by cpu: %v", err)
		return r.fallback(ctx, limit, func(s ProcSample) (Process, bool) {
			return Process{PID: s.PID, Name: s.Name, Value: s.CPU}, true
		})
	}
	var ps []Process
	for _, row := range rows {
		ps = append(ps, Process{PID: row.PID, Name: row.Name, Value: row.Value})
	}
	return heaviestFirst(ps)
}

func (r *Ranker) topRAM(ctx context.Context, limit int) []Process {
	rows, err := r.psRows(ctx, MetricRAM)
	if err != nil {
		r.log.Debug("ps by rss: %v", err)
		return r.fallback(ctx, limit, func(s ProcSample) (Process, bool) {
			return Process{PID: s.PID, Name: s.Name, Value: float64(s.RSS)}, s.RSS > 0
		})
	}
	var ps []Process
	for _, row := range rows {
		// ps reports resident size in KiB.
		ps = append(ps, Process{PID: row.PID, Name: row.Name, Value: row.Value * 1024})
	}
	return heaviestFirst(ps)
}

func (r *Ranker) topGPU(ctx context.Context, limit int) []Process {
	candidate := func(name string, cpu float64) bool {
		lower := strings.ToLower(name)
		for _, app := range r.opts.GPUAllowlist {
			if strings.Contains(lower, strings.ToLower(app)) {
				return true
			}
		}
		return cpu > r.opts.GPUCPUThreshold
	}

	rows, err := r.psRows(ctx, MetricCPU)
	if err != nil {
		r.log.Debug("ps for gpu estimate: %v", err)
		return r.fallback(ctx, limit, func(s ProcSample) (Process, bool) {
			return Process{PID: s.PID, Name: s.Name, Value: s.CPU}, candidate(s.Name, s.CPU)
		})
	}
	var ps []Process
	for _, row := range rows {
		if candidate(row.Name, row.Value) {
			ps = append(ps, Process{PID: row.PID, Name: row.Name, Value: row.Value})
		}
	}
	return heaviestFirst(ps)
}

// Disk activity estimates, in bytes per open regular file.
const (
	bytesReadPerFile    = 4096
	bytesWrittenPerFile = 2048
)

func (r *Ranker) topDisk(ctx context.Context, limit int) []Process {
	script := fmt.Sprintf(`lsof -n 2>/dev/null | awk '$5=="REG" {print $2, $1}' | sort | uniq -c | sort -rn | head -%d`, limit*2)
	out, err := exec.Shell(ctx, r.run, script)
	var counts []parsers.FileCount
	if err == nil {
		counts = parsers.ParseLsofCounts(out)
	} else {
		r.log.Debug("lsof: %v", err)
	}
	if len(counts) == 0 {
		return r.fallback(ctx, limit, func(s ProcSample) (Process, bool) {
			return Process{
				PID: s.PID, Name: s.Name,
				Value: float64(s.ReadBytes + s.WriteBytes),
				In:    int64(s.ReadBytes), Out: int64(s.WriteBytes),
			}, s.ReadBytes+s.WriteBytes > 0
		})
	}

	if len(counts) > limit {
		counts = counts[:limit]
	}
	ps := make([]Process, 0, len(counts))
	pids := make([]int, 0, len(counts))
	for _, c := range counts {
		in, outBytes := int64(c.Count*bytesReadPerFile), int64(c.Count*bytesWrittenPerFile)
		ps = append(ps, Process{PID: c.PID, Name: c.Name, Value: float64(in + outBytes), In: in, Out: outBytes})
		pids = append(pids, c.PID)
	}
	r.fullNames(ctx, ps, pids)
	return ps
}

// trafficRows reads per-process byte counters: nettop on macOS, ss on
// Linux. Neither is available elsewhere.
func (r *Ranker) trafficRows(ctx context.Context) ([]parsers.Traffic, error) {
	switch r.goos {
	case "darwin":
		out, err := r.run.Run(ctx, "nettop", nettopArg...)
		if err != nil {
			return nil, err
		}
		return parsers.ParseNettop(out), nil
	case "linux":
		out, err := r.run.Run(ctx, "ss", parsers.SSQuery...)
		if err != nil {
			return nil, err
		}
		return parsers.ParseSS(out), nil
	}
	return nil, fmt.Errorf("no per-process traffic source on %s", r.goos)
}

func (r *Ranker) topNetwork(ctx context.Context, limit int) []Process {
	rows, err := r.trafficRows(ctx)
	if err != nil {
		r.log.Debug("network ranking: %v", err)
		return nil
	}

	// Both tools list a process once per socket; merge by pid.
	byPID := make(map[int]*Process)
	var order []int
	for _, t := range rows {
		p, ok := byPID[t.PID]
		if !ok {
			p = &Process{PID: t.PID, Name: t.Name}
			byPID[t.PID] = p
			order = append(order, t.PID)
		}
		p.In += t.BytesIn
		p.Out += t.BytesOut
		p.Value = float64(p.In + p.Out)
	}

	ps := make([]Process, 0, len(order))
	for _, pid := range order {
		ps = append(ps, *byPID[pid])
	}
	ps = heaviestFirst(ps)
	if len(ps) > limit {
		ps = ps[:limit]
	}
	r.fullNames(ctx, ps, order)
	return ps
}

func (r *Ranker) topEnergy(ctx context.Context, limit int) []Process {
	var ps []Process
	if r.goos == "darwin" {
		script := fmt.Sprintf("top -l 2 -n %d -stats pid,cpu,command -o cpu | tail -%d", limit+5, limit+3)
		out, err := exec.Shell(ctx, r.run, script)
		if err == nil {
			for _, row := range parsers.ParseTop(out) {
				if row.Value > 0 {
					ps = append(ps, Process{PID: row.PID, Name: row.Name, Value: row.Value})
				}
			}
		} else {
			r.log.Debug("top: %v", err)
		}
	}
	if len(ps) > 0 {
		return heaviestFirst(ps)
	}

	// Fall back to instantaneous CPU share.
	for _, p := range r.topCPU(ctx, limit) {
		if p.Value > 0 {
			ps = append(ps, p)
		}
	}
	return ps
}

// fullNames replaces truncated command names with the full ones from ps.
func (r *Ranker) fullNames(ctx context.Context, ps []Process, pids []int) {
	if len(pids) == 0 {
		return
	}
	ids := make([]string, len(pids))
	for i, pid := range pids {
		ids[i] = strconv.Itoa(pid)
	}
	out, err := r.run.Run(ctx, "ps", "-o", "pid=,comm=", "-p", strings.Join(ids, ","))
	if err != nil {
		r.log.Debug("ps names: %v", err)
		return
	}
	names := parsers.ParsePSNames(out)
	for i := range ps {
		if name, ok := names[ps[i].PID]; ok {
			ps[i].Name = name
		}
	}
}

// fallback ranks the gopsutil process table by keep's Value.
func (r *Ranker) fallback(ctx context.Context, limit int, keep func(ProcSample) (Process, bool)) []Process {
	if r.src == nil {
		return nil
	}
	samples, err := r.src.Processes(ctx)
	if err != nil {
		r.log.Debug("process table: %v", err)
		return nil
	}
	var ps []Process
	for _, s := range samples {
		if p, ok := keep(s); ok {
			ps = append(ps, p)
		}
	}
	ps = heaviestFirst(ps)
	if len(ps) > limit {
		ps = ps[:limit]
	}
	return ps
}

// heaviestFirst sorts ps by Value, descending. Ties keep their input order.
func heaviestFirst(ps []Process) []Process {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Value > ps[j].Value })
	return ps
}
