package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"howett.net/plist"
)

// VMStat holds the page counts reported by vm_stat.
type VMStat struct {
	PageSize    int64
	Free        int64
	Active      int64
	Inactive    int64
	Speculative int64
	Wired       int64
	Purgeable   int64
	Compressed  int64
	FileBacked  int64
}

// UsedBytes is active + wired + compressor-occupied memory.
func (v VMStat) UsedBytes() int64 {
	return (v.Active + v.Wired + v.Compressed) * v.PageSize
}

// ParseVMStat parses `vm_stat` output. The page size comes from the header
// line and defaults to 16384 (Apple Silicon) when absent.
func ParseVMStat(output string) (VMStat, error) {
	v := VMStat{PageSize: 16384}
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := scanner.Text()

		// "Mach Virtual Memory Statistics: (page size of 16384 bytes)"
		if i := strings.Index(line, "page size of"); i >= 0 {
			fields := strings.Fields(line[i+len("page size of"):])
			if len(fields) > 0 {
				if size, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
					v.PageSize = size
				}
			}
			continue
		}

		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(line[:colon])
		val, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimSpace(line[colon+1:]), "."), 10, 64)
		if err != nil {
			continue
		}

		switch key {
		case "Pages free":
			v.Free = val
		case "Pages active":
			v.Active = val
		case "Pages inactive":
			v.Inactive = val
		case "Pages speculative":
			v.Speculative = val
		case "Pages wired down":
			v.Wired = val
		case "Pages purgeable":
			v.Purgeable = val
		case "Pages occupied by compressor":
			v.Compressed = val
		case "File-backed pages":
			v.FileBacked = val
		}
	}

	if err := scanner.Err(); err != nil {
		return VMStat{}, fmt.Errorf("error scanning vm_stat output: %w", err)
	}
	return v, nil
}

// ioregEntries decodes `ioreg -a` output, which is a plist array of
// registry entries.
func ioregEntries(data []byte) ([]map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var entries []map[string]any
	if _, err := plist.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode ioreg plist: %w", err)
	}
	return entries, nil
}

// GPUUtilizationKeys are the PerformanceStatistics keys that carry device
// utilisation, in lookup order. Different GPU drivers publish different ones.
var GPUUtilizationKeys = []string{
	"Device Utilization %",
	"GPU Activity(%)",
	"Renderer Utilization %",
}

// ParseAccelerators parses `ioreg -a -r -d 1 -c IOAccelerator` and returns
// the first utilisation figure found, capped at 100. ok is false when no
// accelerator publishes one.
func ParseAccelerators(data []byte) (percent float64, ok bool, err error) {
	entries, err := ioregEntries(data)
	if err != nil {
		return 0, false, err
	}
	for _, e := range entries {
		stats, _ := e["PerformanceStatistics"].(map[string]any)
		for _, key := range GPUUtilizationKeys {
			if n, found := plistNumber(stats[key]); found {
				if n > 100 {
					n = 100
				}
				return n, true, nil
			}
		}
	}
	return 0, false, nil
}

// SmartBattery is the subset of AppleSmartBattery properties trayd uses.
type SmartBattery struct {
	CurrentCapacity   float64
	MaxCapacity       float64
	ExternalConnected bool
}

// ParseSmartBattery parses `ioreg -a -r -n AppleSmartBattery`. ok is false
// when the machine has no internal battery.
func ParseSmartBattery(data []byte) (SmartBattery, bool, error) {
	entries, err := ioregEntries(data)
	if err != nil {
		return SmartBattery{}, false, err
	}
	for _, e := range entries {
		if installed, has := e["BatteryInstalled"].(bool); has && !installed {
			continue
		}
		cur, okCur := plistNumber(e["CurrentCapacity"])
		if !okCur {
			continue
		}
		max, okMax := plistNumber(e["MaxCapacity"])
		if !okMax {
			max = 100
		}
		ext, _ := e["ExternalConnected"].(bool)
		return SmartBattery{CurrentCapacity: cur, MaxCapacity: max, ExternalConnected: ext}, true, nil
	}
	return SmartBattery{}, false, nil
}

func plistNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case uint64:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
