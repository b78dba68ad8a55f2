package doctor

import (
	"context"
	"fmt"
	osexec "os/exec"
	"runtime"

	"github.com/trayd/trayd/internal/util"
)

// TelemetryTools lists the commands telemetry shells out to on each OS.
// Everything else comes from gopsutil and sysfs.
var TelemetryTools = map[string][]string{
	"darwin": {"ps", "lsof", "nettop", "top", "ioreg", "route", "ifconfig", "networksetup"},
	"linux":  {"ps", "lsof", "ss"},
}

// ToolsCheck looks the telemetry commands up on PATH. Missing tools only
// warn: rankings fall back to the gopsutil process table.
type ToolsCheck struct {
	GOOS     string
	LookPath func(string) (string, error)
}

// NewToolsCheck checks the tools for this OS against PATH.
func NewToolsCheck() *ToolsCheck {
	return &ToolsCheck{GOOS: runtime.GOOS, LookPath: osexec.LookPath}
}

func (c *ToolsCheck) Name() string     { return "telemetry_tools" }
func (c *ToolsCheck) Category() string { return "TOOLS" }
func (c *ToolsCheck) Fix() error       { return nil }

func (c *ToolsCheck) Run(_ context.Context) CheckResult {
	tools := TelemetryTools[c.GOOS]
	if len(tools) == 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusWarn,
			Message: fmt.Sprintf("No telemetry commands known for %s", c.GOOS),
		}
	}

	var missing []string
	for _, tool := range tools {
		if _, err := c.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) == 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("All %d telemetry commands found", len(tools)),
		}
	}
	return CheckResult{
		Name:   c.Name(),
		Status: StatusWarn,
		Message: fmt.Sprintf("Missing %s: %s", util.Pluralize(len(missing), "command", "commands"),
			util.JoinOrNone(missing)),
		Suggestion: "Process rankings that need them fall back to less precise estimates",
	}
}
