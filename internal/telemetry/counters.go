package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"

	"github.com/trayd/trayd/internal/exec"
	"github.com/trayd/trayd/internal/telemetry/parsers"
)

// DefaultPowerSupplyDir is where Linux publishes batteries and adapters.
const DefaultPowerSupplyDir = "/sys/class/power_supply"

// SystemCounters reads counters from the running machine. Portable figures
// come from gopsutil; on macOS memory, GPU and battery come from vm_stat
// and ioreg, which report what Activity Monitor shows.
type SystemCounters struct {
	Run exec.Runner
	// GOOS selects the platform-specific sources. Defaults to runtime.GOOS.
	GOOS string
	// PowerSupplyDir overrides DefaultPowerSupplyDir.
	PowerSupplyDir string
}

// NewSystemCounters creates counters for this machine.
func NewSystemCounters(run exec.Runner) *SystemCounters {
	return &SystemCounters{Run: run, GOOS: runtime.GOOS, PowerSupplyDir: DefaultPowerSupplyDir}
}

func (c *SystemCounters) darwin() bool { return c.GOOS == "darwin" }

func (c *SystemCounters) CPUTicks(ctx context.Context) (CPUTicks, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return CPUTicks{}, err
	}
	if len(times) == 0 {
		return CPUTicks{}, fmt.Errorf("no cpu times reported")
	}
	t := times[0]
	return CPUTicks{User: t.User, System: t.System, Idle: t.Idle, Nice: t.Nice}, nil
}

func (c *SystemCounters) Memory(ctx context.Context) (uint64, uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	if !c.darwin() {
		return vm.Used, vm.Total, nil
	}

	out, err := c.Run.Run(ctx, "vm_stat")
	if err != nil {
		return vm.Used, vm.Total, nil
	}
	stat, err := parsers.ParseVMStat(out)
	if err != nil {
		return 0, 0, err
	}
	return uint64(stat.UsedBytes()), vm.Total, nil
}

func (c *SystemCounters) Disk(ctx context.Context, path string) (uint64, uint64, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	// Used is everything not available to this user, as Finder counts it.
	return u.Total - u.Free, u.Total, nil
}

func (c *SystemCounters) GPU(ctx context.Context) (float64, error) {
	if c.darwin() {
		out, err := c.Run.Run(ctx, "ioreg", "-a", "-r", "-d", "1", "-c", "IOAccelerator")
		if err != nil {
			return 0, err
		}
		pct, _, err := parsers.ParseAccelerators([]byte(out))
		return pct, err
	}

	out, err := c.Run.Run(ctx, "nvidia-smi", parsers.NvidiaQuery...)
	if err != nil {
		return 0, err
	}
	gpus, err := parsers.ParseNvidiaSMI(out)
	if err != nil || len(gpus) == 0 {
		return 0, err
	}
	best := 0.0
	for _, g := range gpus {
		if g.Percent > best {
			best = g.Percent
		}
	}
	return best, nil
}

func (c *SystemCounters) Network(ctx context.Context) (map[string]NetCounter, error) {
	stats, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make(map[string]NetCounter, len(stats))
	for _, s := range stats {
		out[s.Name] = NetCounter{Sent: s.BytesSent, Recv: s.BytesRecv}
	}
	return out, nil
}

func (c *SystemCounters) Battery(ctx context.Context) (Battery, error) {
	if c.darwin() {
		out, err := c.Run.Run(ctx, "ioreg", "-a", "-r", "-n", "AppleSmartBattery")
		if err != nil {
			return Battery{Level: NoBattery}, err
		}
		b, ok, err := parsers.ParseSmartBattery([]byte(out))
		if err != nil || !ok {
			return Battery{Level: NoBattery}, err
		}
		return Battery{
			Level:     BatteryLevel(b.CurrentCapacity, b.MaxCapacity),
			OnACPower: b.ExternalConnected,
		}, nil
	}
	return readPowerSupplies(c.PowerSupplyDir)
}

// readPowerSupplies scans sysfs for the first battery and any online mains
// adapter.
func readPowerSupplies(dir string) (Battery, error) {
	if dir == "" {
		dir = DefaultPowerSupplyDir
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Battery{Level: NoBattery}, err
	}

	b := Battery{Level: NoBattery}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name(), "uevent"))
		if err != nil {
			continue
		}
		props := parsers.ParseUevent(string(data))
		switch props["TYPE"] {
		case "Battery":
			if b.Level != NoBattery || props["PRESENT"] == "0" {
				continue
			}
			if capacity, err := strconv.Atoi(props["CAPACITY"]); err == nil {
				b.Level = BatteryLevel(float64(capacity), 100)
			} else if now, errNow := strconv.ParseFloat(props["ENERGY_NOW"], 64); errNow == nil {
				full, _ := strconv.ParseFloat(props["ENERGY_FULL"], 64)
				b.Level = BatteryLevel(now, full)
			}
		case "Mains", "USB":
			if props["ONLINE"] == "1" {
				b.OnACPower = true
			}
		}
	}
	if b.Level == NoBattery {
		b.OnACPower = false
	}
	return b, nil
}
