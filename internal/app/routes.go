package app

import (
	"context"

	"github.com/trayd/trayd/internal/bridge"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/input"
	"github.com/trayd/trayd/internal/item"
	"github.com/trayd/trayd/internal/popover"
	"github.com/trayd/trayd/internal/render"
	"github.com/trayd/trayd/internal/telemetry"
	"github.com/trayd/trayd/internal/tray"
)

// SkippedEntry is a batch entry that was not shown.
type SkippedEntry struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// ReconcileResult answers setMenuBarItems.
type ReconcileResult struct {
	Recreated bool           `json:"recreated"`
	Items     []string       `json:"items"`
	Skipped   []SkippedEntry `json:"skipped,omitempty"`
}

func (a *App) routes() {
	r := a.router

	r.Handle(bridge.ChannelMenuBar, "setMenuBarItems", a.setMenuBarItems)
	r.Handle(bridge.ChannelMenuBar, "clearMenuBarItems", a.loopOK(func(bridge.Args) error {
		a.registry.ClearAll()
		return nil
	}))
	r.Handle(bridge.ChannelMenuBar, "setAttributedTitle", a.loopOK(func(args bridge.Args) error {
		title, err := args.String("title")
		if err != nil {
			return err
		}
		size := args.NumberOr("fontSize", a.cfg.Tray.FontSize)
		weight := item.ParseWeight(args.StringOr("fontWeight", a.cfg.Tray.FontWeight))
		a.registry.SetTitle(title, size, weight)
		return nil
	}))
	r.Handle(bridge.ChannelMenuBar, "setTheme", a.loopOK(func(args bridge.Args) error {
		brightness, err := args.String("brightness")
		if err != nil {
			return err
		}
		a.coord.SetTheme(brightness, args.StringOr("locale", ""))
		return nil
	}))
	for method, action := range map[string]popover.Action{
		"showWindow": popover.ActionShowWindow,
		"hideWindow": popover.ActionHideWindow,
		"exitApp":    popover.ActionExitApp,
	} {
		action := action
		r.Handle(bridge.ChannelMenuBar, method, a.loopOK(func(bridge.Args) error {
			return a.coord.Perform(action)
		}))
	}
	r.Handle(bridge.ChannelMenuBar, "clickItem", a.loopOK(func(args bridge.Args) error {
		id, err := args.String("itemId")
		if err != nil {
			return err
		}
		return a.coord.ClickTrayEntry(id)
	}))
	r.Handle(bridge.ChannelMenuBar, "getState", a.getState)

	r.Handle(bridge.ChannelPopover, "showPopover", a.showPopover)
	r.Handle(bridge.ChannelPopover, "updatePopoverContent", a.updatePopover)
	r.Handle(bridge.ChannelPopover, "hidePopover", a.loopOK(func(bridge.Args) error {
		a.coord.RequestHide()
		return nil
	}))
	r.Handle(bridge.ChannelPopover, "performAction", a.loopOK(func(args bridge.Args) error {
		action, err := args.String("action")
		if err != nil {
			return err
		}
		return a.coord.Perform(popover.Action(action))
	}))
	r.Handle(bridge.ChannelPopover, "navigateCalendar", a.loopOK(func(args bridge.Args) error {
		switch dir := args.StringOr("direction", "today"); dir {
		case "previous":
			a.coord.CalendarPrevious()
		case "next":
			a.coord.CalendarNext()
		case "today":
			a.coord.CalendarToday()
		default:
			return errors.InvalidArgs("direction must be previous, next or today, got %q", dir)
		}
		return nil
	}))
	r.Handle(bridge.ChannelPopover, "pointerDown", a.loopOK(func(args bridge.Args) error {
		x, err := args.Number("x")
		if err != nil {
			return err
		}
		y, err := args.Number("y")
		if err != nil {
			return err
		}
		a.coord.HandlePointerDown(geom.Point{X: x, Y: y}, popover.SourceApp)
		return nil
	}))

	r.Handle(bridge.ChannelTrayPopup, "showTrayPopup", a.loopOK(func(args bridge.Args) error {
		a.coord.ShowTrayPreview(popover.PreviewConfig{
			Width:          args.NumberOr("popupWidth", 0),
			Height:         args.NumberOr("popupHeight", 0),
			TitleBarHeight: args.NumberOr("titleBarHeight", 0),
			Pinned:         args.BoolOr("isPinned", false),
		})
		return nil
	}))
	r.Handle(bridge.ChannelTrayPopup, "hideTrayPopup", a.loopOK(func(bridge.Args) error {
		a.coord.HideTrayPreview()
		return nil
	}))
	r.Handle(bridge.ChannelTrayPopup, "updateFrame", a.updateFrame)

	a.systemInfoRoutes()

	r.Handle(bridge.ChannelAccess, "checkAccessibility", func(context.Context, bridge.Args) (any, error) {
		return a.monitor.Accessibility(false), nil
	})
	r.Handle(bridge.ChannelAccess, "requestAccessibility", func(context.Context, bridge.Args) (any, error) {
		return a.monitor.Accessibility(true), nil
	})
	r.Handle(bridge.ChannelAccess, "openAccessibilitySettings", func(context.Context, bridge.Args) (any, error) {
		if err := a.monitor.Tap().OpenSettings(); err != nil {
			return nil, errors.Wrap(err, "open accessibility settings")
		}
		return true, nil
	})

	r.Handle(bridge.ChannelMouse, "moveMouse", func(_ context.Context, args bridge.Args) (any, error) {
		dx, err := args.Number("dx")
		if err != nil {
			return nil, err
		}
		dy, err := args.Number("dy")
		if err != nil {
			return nil, err
		}
		if err := a.monitor.MovePointer(dx, dy); err != nil {
			return nil, err
		}
		return true, nil
	})

	r.HandleStream(bridge.StreamKeyEvents, func(ctx context.Context) (<-chan any, error) {
		ch, err := a.monitor.StartKeyStream(ctx)
		if err != nil {
			return nil, err
		}
		return wire(ch), nil
	})
	r.HandleStream(bridge.StreamMouseEvents, func(ctx context.Context) (<-chan any, error) {
		ch, err := a.monitor.StartPointerStream(ctx)
		if err != nil {
			return nil, err
		}
		return wire(ch), nil
	})
}

// loopOK wraps a UI loop mutation answering true on success.
func (a *App) loopOK(fn func(args bridge.Args) error) bridge.HandlerFunc {
	return func(ctx context.Context, args bridge.Args) (any, error) {
		if err := a.onLoop(ctx, func() error { return fn(args) }); err != nil {
			return nil, err
		}
		return true, nil
	}
}

func (a *App) setMenuBarItems(ctx context.Context, args bridge.Args) (any, error) {
	batch, skipped, err := item.ParseBatch(args, a.classifier)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		a.log.Debug("setMenuBarItems: skipped entry %d (%s): %s", s.Index, s.ID, s.Reason)
	}

	var rep tray.Report
	var ids []string
	err = a.onLoop(ctx, func() error {
		rep = a.registry.Reconcile(batch)
		ids = a.registry.IDs()
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := ReconcileResult{Recreated: rep.Recreated, Items: ids}
	for _, s := range append(skipped, rep.Skipped...) {
		res.Skipped = append(res.Skipped, SkippedEntry{Index: s.Index, ID: s.ID, Reason: s.Reason})
	}
	if res.Items == nil {
		res.Items = []string{}
	}
	return res, nil
}

func (a *App) showPopover(ctx context.Context, args bridge.Args) (any, error) {
	id, err := args.String("itemId")
	if err != nil {
		return nil, err
	}
	data, err := args.Map("data")
	if err != nil {
		return nil, err
	}
	var shown bool
	err = a.onLoop(ctx, func() error {
		shown = a.coord.RequestShow(id, data)
		return nil
	})
	return shown, err
}

func (a *App) updatePopover(ctx context.Context, args bridge.Args) (any, error) {
	id, err := args.String("itemId")
	if err != nil {
		return nil, err
	}
	data, err := args.Map("data")
	if err != nil {
		return nil, err
	}
	var applied bool
	err = a.onLoop(ctx, func() error {
		applied = a.coord.RequestUpdate(id, data)
		return nil
	})
	return applied, err
}

func (a *App) updateFrame(ctx context.Context, args bridge.Args) (any, error) {
	data, err := args.Bytes("imageData")
	if err != nil {
		return nil, err
	}
	w, err := args.Number("width")
	if err != nil {
		return nil, err
	}
	h, err := args.Number("height")
	if err != nil {
		return nil, err
	}
	// Decode off the loop; frames can be large.
	img, err := render.DecodeFrame(data, int(w), int(h))
	if err != nil {
		return nil, err
	}
	err = a.onLoop(ctx, func() error {
		a.coord.UpdateFrame(popover.Frame{Image: img, Width: int(w), Height: int(h)})
		return nil
	})
	return err == nil, err
}

// StateView answers getState.
type StateView struct {
	Items   []string         `json:"items"`
	Popover popover.Snapshot `json:"popover"`
}

func (a *App) getState(ctx context.Context, _ bridge.Args) (any, error) {
	var v StateView
	err := a.onLoop(ctx, func() error {
		v = StateView{Items: a.registry.IDs(), Popover: a.coord.State()}
		return nil
	})
	return v, err
}

func (a *App) systemInfoRoutes() {
	r := a.router
	scalar := func(fn func(ctx context.Context) any) bridge.HandlerFunc {
		return func(ctx context.Context, _ bridge.Args) (any, error) { return fn(ctx), nil }
	}

	r.Handle(bridge.ChannelSystemInfo, "getCpuUsage", scalar(func(ctx context.Context) any { return a.sampler.CPUPercent(ctx) }))
	r.Handle(bridge.ChannelSystemInfo, "getGpuUsage", scalar(func(ctx context.Context) any { return a.sampler.GPUPercent(ctx) }))
	r.Handle(bridge.ChannelSystemInfo, "getRamUsage", scalar(func(ctx context.Context) any { return a.sampler.RAMPercent(ctx) }))
	r.Handle(bridge.ChannelSystemInfo, "getDiskUsage", scalar(func(ctx context.Context) any { return a.sampler.DiskPercent(ctx) }))
	r.Handle(bridge.ChannelSystemInfo, "getNetworkUpload", scalar(func(ctx context.Context) any { return a.sampler.NetworkRates(ctx).UpBps }))
	r.Handle(bridge.ChannelSystemInfo, "getNetworkDownload", scalar(func(ctx context.Context) any { return a.sampler.NetworkRates(ctx).DownBps }))
	r.Handle(bridge.ChannelSystemInfo, "getBatteryInfo", scalar(func(ctx context.Context) any {
		b := a.sampler.Battery(ctx)
		return map[string]any{"level": b.Level, "isCharging": b.OnACPower}
	}))
	r.Handle(bridge.ChannelSystemInfo, "getAllStats", scalar(func(ctx context.Context) any { return a.sampler.AllStats(ctx).Wire() }))
	r.Handle(bridge.ChannelSystemInfo, "getNetworkInfo", scalar(func(ctx context.Context) any { return a.probe.Info(ctx).Wire() }))

	r.Handle(bridge.ChannelSystemInfo, "getTopCpuProcesses", func(ctx context.Context, args bridge.Args) (any, error) {
		limit := args.IntOr("limit", a.cfg.Telemetry.ProcessLimit)
		return telemetry.WireProcesses(telemetry.MetricCPU, a.ranker.Top(ctx, telemetry.MetricCPU, limit)), nil
	})
	r.Handle(bridge.ChannelSystemInfo, "getTopProcesses", func(ctx context.Context, args bridge.Args) (any, error) {
		m, err := telemetry.ParseMetric(args.StringOr("metric", string(telemetry.MetricCPU)))
		if err != nil {
			return nil, err
		}
		limit := args.IntOr("limit", a.cfg.Telemetry.ProcessLimit)
		return telemetry.WireProcesses(m, a.ranker.Top(ctx, m, limit)), nil
	})
}

// wire converts input events to their bridge form. The result closes
// when in closes.
func wire(in <-chan input.Event) <-chan any {
	out := make(chan any, cap(in))
	go func() {
		defer close(out)
		for ev := range in {
			out <- ev.Wire()
		}
	}()
	return out
}
