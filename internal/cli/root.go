package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trayd/trayd/internal/config"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/logger"
	"github.com/trayd/trayd/internal/ui"
)

// Global flags
var (
	cfgFile     string
	verbose     bool
	machineMode bool
	noColor     bool
)

var rootCmd = &cobra.Command{
	Use:   "trayd",
	Short: "Menu bar companion daemon",
	Long: `trayd owns a host application's menu bar entries, popovers and
system telemetry, and serves them to the host over a local JSON-lines bridge.

Run 'trayd serve' to start the daemon, or use stats, top and watch to look
at the same telemetry from a terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			_ = os.Setenv(logger.DebugEnv, "1")
		}
		if noColor || machineMode || !isTerminal(os.Stdout) {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/trayd/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		switch {
		case isReported(err):
		case machineMode:
			_ = WriteJSONFromError(os.Stdout, err)
		default:
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps error codes to process exit statuses.
func exitCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.ErrConfig, errors.ErrInvalidArgs:
		return 2
	case errors.ErrUnavailable, errors.ErrBridge:
		return 3
	default:
		return 1
	}
}

// loadConfig loads the --config file or the default search path.
func loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(cfgFile)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
