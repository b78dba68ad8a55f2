// Package doctor diagnoses the environment trayd runs in: its config, the
// external tools telemetry shells out to, the bridge socket and the
// desktop session the tray backend needs.
package doctor

import (
	"context"
	"fmt"
	"sync"

	"github.com/trayd/trayd/internal/config"
	"github.com/trayd/trayd/internal/util"
)

// CheckStatus is the outcome of one check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText reports the status by name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty"` // --fix can address this
}

// Check is one diagnostic.
type Check interface {
	Name() string

	// Category groups checks in the report (CONFIG, TOOLS, BRIDGE, SESSION).
	Category() string

	Run(ctx context.Context) CheckResult

	// Fix repairs what Run reported. Checks that can't fix anything return nil.
	Fix() error
}

// RunAll runs every check concurrently. Results keep the order of checks.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(idx int, c Check) {
			defer wg.Done()
			results[idx] = c.Run(ctx)
		}(i, check)
	}
	wg.Wait()
	return results
}

// FixAll runs Fix for every fixable issue and re-runs the check afterwards.
func FixAll(ctx context.Context, checks []Check, results []CheckResult) []CheckResult {
	for i, r := range results {
		if !r.Fixable || r.Status == StatusPass {
			continue
		}
		if err := checks[i].Fix(); err == nil {
			results[i] = checks[i].Run(ctx)
		}
	}
	return results
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result failed.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result failed or warned.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status != StatusPass {
			return true
		}
	}
	return false
}

// FixableCount returns the number of issues --fix can address.
func FixableCount(results []CheckResult) int {
	count := 0
	for _, r := range results {
		if r.Fixable && r.Status != StatusPass {
			count++
		}
	}
	return count
}

// Summary describes the results in one line.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	total := counts[StatusWarn] + counts[StatusFail]
	if total == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d %s found", total, util.Pluralize(total, "issue", "issues"))
}

// NewChecks builds the standard report for cfg, loaded from cfgPath.
func NewChecks(cfgPath string, cfg *config.Config) []Check {
	return []Check{
		&ConfigCheck{Path: cfgPath},
		NewToolsCheck(),
		&SocketCheck{Path: cfg.Bridge.Socket},
		&SessionCheck{Backend: cfg.Tray.Backend},
	}
}
