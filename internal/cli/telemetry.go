package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trayd/trayd/internal/config"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/exec"
	"github.com/trayd/trayd/internal/logger"
	"github.com/trayd/trayd/internal/telemetry"
	"github.com/trayd/trayd/internal/ui"
)

// minInterval is the shortest sampling interval stats and watch accept.
const minInterval = 100 * time.Millisecond

var (
	statsIntervalFlag string
	statsFormatFlag   string
	topLimitFlag      int
	topFormatFlag     string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print CPU, GPU, RAM, disk, network and battery usage",
	Long: `Sample every metric twice, --interval apart, and print the result.
CPU and network figures are rates over that interval.

Examples:
  trayd stats
  trayd stats --interval 2s --format yaml
  trayd stats --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsCommand(cmd.Context(), cmd.OutOrStdout(), statsIntervalFlag, statsFormatFlag)
	},
}

var topCmd = &cobra.Command{
	Use:   "top <cpu|ram|disk|gpu|network|battery>",
	Short: "List the processes using the most of a resource",
	Long: `Rank processes the way the menu bar popovers do.

Examples:
  trayd top cpu
  trayd top memory --limit 10
  trayd top network --json`,
	ValidArgs: []string{"cpu", "ram", "disk", "gpu", "network", "battery"},
	Args:      cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return topCommand(cmd.Context(), cmd.OutOrStdout(), args[0], topLimitFlag, topFormatFlag)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsIntervalFlag, "interval", "1s", "sampling interval (e.g., 500ms, 2s)")
	statsCmd.Flags().StringVar(&statsFormatFlag, "format", FormatTable, "output format: table, json, yaml")
	topCmd.Flags().IntVarP(&topLimitFlag, "limit", "n", 0, "number of processes (default from config)")
	topCmd.Flags().StringVar(&topFormatFlag, "format", FormatTable, "output format: table, json, yaml")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(topCmd)
}

// newTelemetry builds the sampler and ranker for this machine.
func newTelemetry(cfg *config.Config) (*telemetry.Sampler, *telemetry.Ranker) {
	log := logger.NewEnvLogger("[telemetry]")
	run := &exec.Local{Timeout: cfg.Telemetry.CommandTimeout}
	sampler := telemetry.NewSampler(telemetry.NewSystemCounters(run), telemetry.SamplerOptions{
		InterfacePrefixes: cfg.Telemetry.InterfacePrefixes,
		DiskPath:          cfg.Telemetry.DiskPath,
		Logger:            log,
	})
	ranker := telemetry.NewRanker(run, telemetry.GopsutilProcesses{}, telemetry.RankerOptions{
		GPUAllowlist:    cfg.Telemetry.GPUAllowlist,
		GPUCPUThreshold: cfg.Telemetry.GPUCPUThreshold,
		Logger:          log,
	})
	return sampler, ranker
}

func statsCommand(ctx context.Context, w io.Writer, intervalFlag, formatFlag string) error {
	interval, err := ParseInterval(intervalFlag, minInterval)
	if err != nil {
		return err
	}
	format, err := ResolveFormat(formatFlag)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sampler, _ := newTelemetry(cfg)
	stats, err := sampleStats(ctx, sampler, interval)
	if err != nil {
		return err
	}
	return writeStats(w, format, stats)
}

type statsSampler interface {
	AllStats(ctx context.Context) telemetry.Stats
}

// sampleStats takes a baseline sample, waits interval and returns the
// second sample, whose CPU and network figures cover the interval.
func sampleStats(ctx context.Context, s statsSampler, interval time.Duration) (telemetry.Stats, error) {
	s.AllStats(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return telemetry.Stats{}, errors.WrapWithCode(ctx.Err(), errors.ErrUnavailable, "Sampling interrupted", "")
	}
	return s.AllStats(ctx), nil
}

func writeStats(w io.Writer, format string, s telemetry.Stats) error {
	switch format {
	case FormatJSON:
		return WriteJSONSuccess(w, s)
	case FormatYAML:
		return writeYAML(w, s)
	}
	_, err := fmt.Fprint(w, ui.RenderStats(s, 20))
	return err
}

func topCommand(ctx context.Context, w io.Writer, metricArg string, limit int, formatFlag string) error {
	metric, err := telemetry.ParseMetric(metricArg)
	if err != nil {
		return err
	}
	format, err := ResolveFormat(formatFlag)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = cfg.Telemetry.ProcessLimit
	}

	_, ranker := newTelemetry(cfg)
	return writeProcesses(w, format, metric, ranker.Top(ctx, metric, limit))
}

func writeProcesses(w io.Writer, format string, m telemetry.Metric, ps []telemetry.Process) error {
	switch format {
	case FormatJSON:
		return WriteJSONSuccess(w, telemetry.WireProcesses(m, ps))
	case FormatYAML:
		return writeYAML(w, telemetry.WireProcesses(m, ps))
	}
	_, err := fmt.Fprintln(w, ui.RenderProcessTable(m, ps))
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode YAML", "")
	}
	return enc.Close()
}
