package parsers

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// NvidiaGPU is one line of nvidia-smi CSV output.
type NvidiaGPU struct {
	Name    string
	Percent float64
}

// NvidiaQuery is the nvidia-smi invocation ParseNvidiaSMI expects.
var NvidiaQuery = []string{"--query-gpu=name,utilization.gpu", "--format=csv,noheader,nounits"}

// ParseNvidiaSMI parses `nvidia-smi --query-gpu=name,utilization.gpu
// --format=csv,noheader,nounits`. It returns nil, nil when no GPU is
// available (empty output or a driver error message).
func ParseNvidiaSMI(output string) ([]NvidiaGPU, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}

	lower := strings.ToLower(output)
	for _, marker := range []string{"no devices", "not found", "failed", "error"} {
		if strings.Contains(lower, marker) {
			return nil, nil
		}
	}

	var gpus []NvidiaGPU
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, fmt.Errorf("nvidia-smi output has insufficient fields: expected 2, got %d", len(fields))
		}
		g := NvidiaGPU{Name: strings.TrimSpace(fields[0])}
		util := strings.TrimSpace(fields[1])
		if util != "" && util != "[N/A]" {
			pct, err := strconv.ParseFloat(util, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse GPU utilization '%s': %w", util, err)
			}
			g.Percent = pct
		}
		gpus = append(gpus, g)
	}
	return gpus, nil
}

// ParseUevent parses a sysfs power_supply uevent file into its
// POWER_SUPPLY_* properties, with the prefix removed.
func ParseUevent(content string) map[string]string {
	props := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		props[strings.TrimPrefix(key, "POWER_SUPPLY_")] = val
	}
	return props
}

// SSQuery is the ss invocation ParseSS expects: TCP sockets with their
// owning process and internal counters.
var SSQuery = []string{"-tinp"}

// ParseSS parses `ss -tinp` output into one Traffic row per socket. The
// counters sit on the indented line after the socket line. Sockets whose
// owner is hidden from this user, or that moved no bytes, are dropped.
func ParseSS(output string) []Traffic {
	var out []Traffic
	var cur *Traffic
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			cur = nil
			if name, pid, ok := ssOwner(line); ok {
				cur = &Traffic{PID: pid, Name: name}
			}
			continue
		}
		if cur == nil {
			continue
		}
		for _, field := range strings.Fields(line) {
			key, val, ok := strings.Cut(field, ":")
			if !ok {
				continue
			}
			switch key {
			case "bytes_received":
				cur.BytesIn, _ = strconv.ParseInt(val, 10, 64)
			case "bytes_sent":
				cur.BytesOut, _ = strconv.ParseInt(val, 10, 64)
			}
		}
		if cur.BytesIn+cur.BytesOut > 0 {
			out = append(out, *cur)
		}
		cur = nil
	}
	return out
}

// ssOwner reads the first process of a users:(("name",pid=N,fd=M)) column.
func ssOwner(line string) (string, int, bool) {
	i := strings.Index(line, `users:(("`)
	if i < 0 {
		return "", 0, false
	}
	rest := line[i+len(`users:(("`):]
	name, rest, ok := strings.Cut(rest, `",pid=`)
	if !ok {
		return "", 0, false
	}
	end := strings.IndexAny(rest, ",)")
	if end < 0 {
		return "", 0, false
	}
	pid, err := strconv.Atoi(rest[:end])
	if err != nil || pid <= 0 {
		return "", 0, false
	}
	return name, pid, true
}
