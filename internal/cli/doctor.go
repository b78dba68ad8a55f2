package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trayd/trayd/internal/config"
	"github.com/trayd/trayd/internal/doctor"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/ui"
)

var doctorFix bool

// categoryOrder is the order sections appear in the report.
var categoryOrder = []string{"CONFIG", "TOOLS", "BRIDGE", "SESSION"}

// DoctorOutput is the --json form of the report.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput is one section of the report.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput counts the results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the trayd environment",
	Long: `Check the config file, the commands telemetry shells out to, the bridge
socket and the desktop session the tray backend needs.

Exits non-zero when a check fails. Warnings alone don't fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout(), doctorFix)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	rootCmd.AddCommand(doctorCmd)
}

func doctorCommand(ctx context.Context, w io.Writer, fix bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// A broken config is reported by the CONFIG check; the others still
	// run against the defaults.
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	checks := doctor.NewChecks(cfgFile, cfg)
	results := doctor.RunAll(ctx, checks)
	if fix {
		results = doctor.FixAll(ctx, checks, results)
	}

	var failed error
	if doctor.HasFailures(results) {
		failed = errors.New(errors.ErrUnavailable, doctor.Summary(results),
			"Fix the failing checks and run 'trayd doctor' again")
	}

	if machineMode {
		if err := WriteJSONReport(w, doctorOutput(checks, results), failed); err != nil {
			return err
		}
	} else {
		renderDoctor(w, checks, results, fix)
	}
	return reported(failed)
}

func doctorOutput(checks []doctor.Check, results []doctor.CheckResult) DoctorOutput {
	out := DoctorOutput{}
	for _, cat := range categoryOrder {
		section := CategoryOutput{Name: cat}
		for i, c := range checks {
			if c.Category() == cat {
				section.Results = append(section.Results, results[i])
			}
		}
		if len(section.Results) > 0 {
			out.Categories = append(out.Categories, section)
		}
	}

	counts := doctor.CountByStatus(results)
	out.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}
	return out
}

func renderDoctor(w io.Writer, checks []doctor.Check, results []doctor.CheckResult, fixed bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.Bold("trayd diagnostic report"))
	fmt.Fprintln(w)

	for _, cat := range categoryOrder {
		var section []doctor.CheckResult
		for i, c := range checks {
			if c.Category() == cat {
				section = append(section, results[i])
			}
		}
		if len(section) == 0 {
			continue
		}
		fmt.Fprintln(w, ui.Bold(cat))
		for _, r := range section {
			renderCheckResult(w, r)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	if !doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", ui.Colored(ui.ColorSuccess, ui.SymbolSuccess), doctor.Summary(results))
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.Colored(ui.ColorError, ui.SymbolFail), doctor.Summary(results))
	if doctor.FixableCount(results) > 0 && !fixed {
		fmt.Fprintf(w, "\n  Run with %s to attempt automatic fixes.\n", ui.Muted("--fix"))
	}
}

func renderCheckResult(w io.Writer, r doctor.CheckResult) {
	symbol := ui.Colored(ui.ColorSuccess, ui.SymbolSuccess)
	switch r.Status {
	case doctor.StatusWarn:
		symbol = ui.Colored(ui.ColorWarning, ui.SymbolWarning)
	case doctor.StatusFail:
		symbol = ui.Colored(ui.ColorError, ui.SymbolFail)
	}
	fmt.Fprintf(w, "  %s %s\n", symbol, r.Message)

	if r.Suggestion != "" && r.Status != doctor.StatusPass {
		for _, line := range strings.Split(r.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", ui.Muted(line))
		}
	}
}
