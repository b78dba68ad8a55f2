package parsers

import (
	"bufio"
	"strconv"
	"strings"
)

// ProcessRow is one process line from ps or top.
type ProcessRow struct {
	PID   int
	Value float64
	Name  string
}

// ProcessName reduces an executable path to its last component.
func ProcessName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ParsePS parses `ps -arcwwxo pid,<value>,comm` output. The first line is a
// header. Lines that do not start with a numeric pid and value are skipped.
// The command may contain spaces.
func ParsePS(output string) []ProcessRow {
	var rows []ProcessRow
	scanner := bufio.NewScanner(strings.NewReader(output))
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		if row, ok := parseProcessLine(scanner.Text()); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// ParseTop parses the process lines of `top -stats pid,cpu,command`
// output. Header and summary lines fail the numeric checks and are skipped.
func ParseTop(output string) []ProcessRow {
	var rows []ProcessRow
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		if row, ok := parseProcessLine(scanner.Text()); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func parseProcessLine(line string) (ProcessRow, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return ProcessRow{}, false
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return ProcessRow{}, false
	}
	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return ProcessRow{}, false
	}
	return ProcessRow{PID: pid, Value: value, Name: ProcessName(strings.Join(fields[2:], " "))}, true
}

// ParsePSNames parses `ps -o pid=,comm= -p <pids>` into pid → process name.
func ParsePSNames(output string) map[int]string {
	names := make(map[int]string)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		if name := ProcessName(strings.Join(fields[1:], " ")); name != "" {
			names[pid] = name
		}
	}
	return names
}

// FileCount is one line of the open-regular-file count pipeline
// `lsof -n | awk '$5=="REG" {print $2, $1}' | sort | uniq -c | sort -rn`.
type FileCount struct {
	Count int
	PID   int
	Name  string
}

// ParseLsofCounts parses the counted lsof pipeline, keeping the first
// (highest) line per pid and dropping header echoes.
func ParseLsofCounts(output string) []FileCount {
	var out []FileCount
	seen := make(map[int]bool)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil || count <= 0 {
			continue
		}
		pid, err := strconv.Atoi(fields[1])
		if err != nil || seen[pid] {
			continue
		}
		name := fields[2]
		if name == "COMMAND" || name == "PID" {
			continue
		}
		seen[pid] = true
		out = append(out, FileCount{Count: count, PID: pid, Name: name})
	}
	return out
}

// Traffic is one process row of `nettop -P -L 1 -J bytes_in,bytes_out`.
type Traffic struct {
	PID      int
	Name     string
	BytesIn  int64
	BytesOut int64
}

// ParseNettop parses nettop CSV output. The first line is the header; the
// first column is "<name>.<pid>". Rows with no traffic are dropped.
func ParseNettop(output string) []Traffic {
	var out []Traffic
	scanner := bufio.NewScanner(strings.NewReader(output))
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		cols := strings.Split(strings.TrimSpace(scanner.Text()), ",")
		if len(cols) < 3 {
			continue
		}
		label := strings.TrimSpace(cols[0])
		in, _ := strconv.ParseInt(strings.TrimSpace(cols[1]), 10, 64)
		outBytes, _ := strconv.ParseInt(strings.TrimSpace(cols[2]), 10, 64)
		if in+outBytes <= 0 {
			continue
		}
		dot := strings.LastIndex(label, ".")
		if dot < 0 {
			continue
		}
		pid, err := strconv.Atoi(label[dot+1:])
		if err != nil || pid <= 0 {
			continue
		}
		out = append(out, Traffic{PID: pid, Name: label[:dot], BytesIn: in, BytesOut: outBytes})
	}
	return out
}
