package cli

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/monitor"
	"github.com/trayd/trayd/internal/telemetry"
)

var (
	watchIntervalFlag string
	watchMetricFlag   string
	watchLimitFlag    int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live telemetry dashboard",
	Long: `Show gauges, sparklines and a process ranking that refresh every
--interval. Press ? inside the dashboard for keyboard shortcuts.

Examples:
  trayd watch
  trayd watch --interval 2s --metric ram`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd.Context(), watchIntervalFlag, watchMetricFlag, watchLimitFlag)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchIntervalFlag, "interval", "1s", "refresh interval (e.g., 1s, 5s)")
	watchCmd.Flags().StringVar(&watchMetricFlag, "metric", "cpu", "initial process ranking")
	watchCmd.Flags().IntVarP(&watchLimitFlag, "limit", "n", 0, "processes to list (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func watchCommand(ctx context.Context, intervalFlag, metricFlag string, limit int) error {
	interval, err := ParseInterval(intervalFlag, minInterval)
	if err != nil {
		return err
	}
	metric, err := telemetry.ParseMetric(metricFlag)
	if err != nil {
		return err
	}
	if !isTerminal(os.Stdout) {
		return errors.New(errors.ErrInvalidArgs,
			"watch needs an interactive terminal",
			"Use 'trayd stats' or 'trayd top' for scripted output.")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = cfg.Telemetry.ProcessLimit
	}

	sampler, ranker := newTelemetry(cfg)
	model := monitor.NewModel(sampler, ranker, monitor.Options{
		Interval: interval,
		Limit:    limit,
		Metric:   metric,
	})

	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return errors.WrapWithCode(err, errors.ErrUnavailable, "Dashboard failed", "")
	}
	return nil
}
