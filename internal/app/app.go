// Package app assembles trayd: it builds the registry, coordinator,
// sampler and input monitor around one UI loop and exposes all of them
// through a bridge router.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/trayd/trayd/internal/bridge"
	"github.com/trayd/trayd/internal/config"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/exec"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/input"
	"github.com/trayd/trayd/internal/item"
	"github.com/trayd/trayd/internal/logger"
	"github.com/trayd/trayd/internal/popover"
	"github.com/trayd/trayd/internal/render"
	"github.com/trayd/trayd/internal/telemetry"
	"github.com/trayd/trayd/internal/tray"
	"github.com/trayd/trayd/internal/uiloop"
)

// Platform is the set of OS facilities a backend provides.
type Platform struct {
	Tray tray.Platform
	// Panels is optional. Without it popover surfaces are drawn by the
	// host, driven by surface events (HostPanels).
	Panels  popover.Panels
	Pointer popover.Pointer
	Tap     input.Tap
	// Window and Launcher are optional. Without a Window, window requests
	// are forwarded to the host as events.
	Window   popover.WindowController
	Launcher popover.Launcher
}

// Options configures an App.
type Options struct {
	Config   *config.Config
	Platform Platform
	// Runner runs telemetry commands. Defaults to exec.Local.
	Runner exec.Runner
	// Counters defaults to the machine's counters.
	Counters telemetry.Counters
	// Processes backs process rankings when commands fail.
	Processes telemetry.ProcessSource
	Clock     telemetry.Clock
	// Ticker drives the calendar clock; nil uses a real ticker.
	Ticker popover.Ticker
	// OnExit runs when the host or a popover button asks trayd to quit.
	OnExit func()
	// Loop is the UI loop. Backends that post OS callbacks need it before
	// the App exists; nil creates one.
	Loop   *uiloop.Loop
	Logger logger.Logger
}

// App is a running trayd instance.
type App struct {
	cfg *config.Config
	log logger.Logger

	loop     *uiloop.Loop
	registry *tray.Registry
	coord    *popover.Coordinator
	sampler  *telemetry.Sampler
	ranker   *telemetry.Ranker
	probe    *telemetry.NetworkProbe
	monitor  *input.Monitor
	router   *bridge.Router
	events   *Broadcaster

	classifier item.Classifier
}

// New builds an App. Nothing runs until Run.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Platform.Tray == nil || opts.Platform.Pointer == nil || opts.Platform.Tap == nil {
		return nil, errors.New(errors.ErrConfig, "Incomplete platform backend", "Use --backend headless or sni")
	}
	cfg := opts.Config
	log := logger.OrNoop(opts.Logger)
	if opts.Runner == nil {
		opts.Runner = &exec.Local{Timeout: cfg.Telemetry.CommandTimeout}
	}
	if opts.Counters == nil {
		opts.Counters = telemetry.NewSystemCounters(opts.Runner)
	}
	if opts.Loop == nil {
		opts.Loop = uiloop.New()
	}

	a := &App{
		cfg:        cfg,
		log:        log,
		loop:       opts.Loop,
		router:     bridge.NewRouter(),
		events:     &Broadcaster{},
		classifier: item.NewClassifier(cfg.Popover.LocalItems),
	}

	a.registry = tray.New(opts.Platform.Tray, tray.Options{
		Render: render.Options{BatteryWidth: cfg.Tray.BatteryWidth},
		Logger: log,
	})
	a.sampler = telemetry.NewSampler(opts.Counters, telemetry.SamplerOptions{
		InterfacePrefixes: cfg.Telemetry.InterfacePrefixes,
		DiskPath:          cfg.Telemetry.DiskPath,
		Clock:             opts.Clock,
		Logger:            log,
	})
	a.ranker = telemetry.NewRanker(opts.Runner, opts.Processes, telemetry.RankerOptions{
		GPUAllowlist:    cfg.Telemetry.GPUAllowlist,
		GPUCPUThreshold: cfg.Telemetry.GPUCPUThreshold,
		Logger:          log,
	})
	a.probe = telemetry.NewNetworkProbe(opts.Runner, log)
	a.monitor = input.NewMonitor(opts.Platform.Tap, log)

	panels := opts.Platform.Panels
	if panels == nil {
		panels = &HostPanels{Events: a.events}
	}
	window := opts.Platform.Window
	if window == nil {
		window = &HostWindow{Events: a.events, OnExit: opts.OnExit}
	}
	var now func() time.Time
	if opts.Clock != nil {
		now = opts.Clock.Now
	}
	a.coord = popover.New(popover.Deps{
		Anchors:  a.registry,
		Panels:   panels,
		Notifier: a.events,
		Resolver: &telemetry.Resolver{
			Ranker:  a.ranker,
			Network: a.probe,
			Limit:   cfg.Telemetry.ProcessLimit,
		},
		Poster:   a.loop,
		Pointer:  opts.Platform.Pointer,
		Window:   window,
		Launcher: opts.Platform.Launcher,
	}, popover.Options{
		Gap: cfg.Popover.Gap,
		SizeFor: func(id string) geom.Size {
			s := cfg.Popover.SizeFor(id)
			return geom.Size{Width: s.Width, Height: s.Height}
		},
		PreviewGap: cfg.Preview.Gap,
		Preview: popover.PreviewConfig{
			Width:          cfg.Preview.Width,
			Height:         cfg.Preview.Height,
			TitleBarHeight: cfg.Preview.TitleBarHeight,
		},
		Now:    now,
		Ticker: opts.Ticker,
		Logger: log,
	})
	a.registry.OnClick(func(id string) {
		if err := a.coord.ClickTrayEntry(id); err != nil {
			log.Debug("click %s: %v", id, err)
		}
	})

	a.routes()
	return a, nil
}

// Router returns the bridge router with every method registered.
func (a *App) Router() *bridge.Router { return a.router }

// Events returns the event fan-out. Attach the bridge server to it.
func (a *App) Events() *Broadcaster { return a.events }

// Loop returns the UI loop.
func (a *App) Loop() *uiloop.Loop { return a.loop }

// Run starts the UI loop and the outside-click watcher and blocks until
// ctx is done.
func (a *App) Run(ctx context.Context) {
	if err := a.monitor.WatchClicks(ctx, a.loop, func(p geom.Point) {
		a.coord.HandlePointerDown(p, popover.SourceGlobal)
	}); err != nil {
		a.log.Warn("outside-click watcher: %v", err)
	}
	a.loop.Run(ctx)
	a.coord.Close()
}

// Stop ends Run.
func (a *App) Stop() {
	a.loop.Stop()
}

// onLoop runs fn on the UI loop, bounded by the configured call timeout.
func (a *App) onLoop(ctx context.Context, fn func() error) error {
	if t := a.cfg.Bridge.CallTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	return a.loop.Call(ctx, fn)
}

// Broadcaster fans events out to every attached notifier.
type Broadcaster struct {
	mu    sync.RWMutex
	sinks []popover.Notifier
}

// Attach adds a notifier.
func (b *Broadcaster) Attach(n popover.Notifier) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, n)
}

func (b *Broadcaster) Emit(channel, event string, args map[string]any) {
	b.mu.RLock()
	sinks := append([]popover.Notifier(nil), b.sinks...)
	b.mu.RUnlock()
	for _, s := range sinks {
		s.Emit(channel, event, args)
	}
}
