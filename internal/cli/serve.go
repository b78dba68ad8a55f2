package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trayd/trayd/internal/app"
	"github.com/trayd/trayd/internal/bridge"
	"github.com/trayd/trayd/internal/config"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/exec"
	"github.com/trayd/trayd/internal/lock"
	"github.com/trayd/trayd/internal/logger"
	"github.com/trayd/trayd/internal/platform/headless"
	"github.com/trayd/trayd/internal/platform/sni"
	"github.com/trayd/trayd/internal/telemetry"
	"github.com/trayd/trayd/internal/tray"
	"github.com/trayd/trayd/internal/uiloop"
)

var (
	serveBackendFlag string
	serveSocketFlag  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daemon",
	Long: `Start trayd: create the tray backend, listen on the bridge socket and
serve the host until interrupted or asked to exit.

Backends:
  headless  in-memory tray; the host draws entries and popovers from events
  sni       StatusNotifierItem entries on the D-Bus session bus (Linux)

Examples:
  trayd serve
  trayd serve --backend sni
  trayd serve --socket /tmp/trayd.sock`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return serveCommand(ctx, serveBackendFlag, serveSocketFlag)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveBackendFlag, "backend", "", "tray backend: headless or sni (default from config)")
	serveCmd.Flags().StringVar(&serveSocketFlag, "socket", "", "bridge socket path (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func serveCommand(ctx context.Context, backend, socket string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if backend != "" {
		cfg.Tray.Backend = backend
	}
	if socket != "" {
		cfg.Bridge.Socket = config.ExpandPath(socket)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	instance, err := lock.TryAcquire(cfg.Bridge.Socket)
	if err != nil {
		return err
	}
	defer instance.Release()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewEnvLogger("[app]")
	loop := uiloop.New()
	run := &exec.Local{Timeout: cfg.Telemetry.CommandTimeout}

	platform, err := newPlatform(cfg, loop)
	if err != nil {
		return err
	}
	platform.Launcher = app.NewSystemLauncher(run)

	a, err := app.New(app.Options{
		Config:    cfg,
		Platform:  platform,
		Runner:    run,
		Processes: telemetry.GopsutilProcesses{},
		OnExit:    stop,
		Loop:      loop,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	server := bridge.NewServer(cfg.Bridge.Socket, a.Router(), logger.NewEnvLogger("[bridge]"))
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()
	a.Events().Attach(server)

	log.Info("trayd listening on %s (backend %s)", server.Addr(), cfg.Tray.Backend)
	a.Run(ctx)
	log.Info("trayd stopped")
	return nil
}

// newPlatform builds the OS facilities for cfg.Tray.Backend. Popover
// panels are left to the host in both backends.
func newPlatform(cfg *config.Config, loop *uiloop.Loop) (app.Platform, error) {
	displays := headless.DefaultDisplays()
	screen := headless.NewScreen(displays)

	switch cfg.Tray.Backend {
	case "headless":
		return app.Platform{
			Tray:    headless.NewTray(tray.PlacementAppend, displays[0].Bounds),
			Pointer: screen,
			Tap:     screen,
		}, nil
	case "sni":
		// Global input monitoring is not available over D-Bus.
		screen.SetTrusted(false)
		t := sni.New(loop, sni.Options{
			Displays: displays,
			Logger:   logger.NewEnvLogger("[tray]"),
		})
		return app.Platform{Tray: t, Pointer: t, Tap: screen}, nil
	}
	return app.Platform{}, errors.New(errors.ErrConfig,
		"Unknown tray backend: "+cfg.Tray.Backend,
		"Use headless or sni")
}
