// Package popover coordinates the three popover surfaces: the calendar,
// per-item data popovers and the tray window preview. At most one is open
// at a time. The coordinator is confined to the UI loop; the only work it
// starts elsewhere is local data resolution, whose result is posted back
// and applied only if the same popover is still open.
package popover

import (
	"context"
	"time"

	"github.com/trayd/trayd/internal/bridge"
	"github.com/trayd/trayd/internal/calendar"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/item"
	"github.com/trayd/trayd/internal/logger"
)

// Apps opened by actions.
const (
	AppActivityMonitor = "Activity Monitor"
	AppCalendar        = "Calendar"
)

// Deps are the coordinator's collaborators.
type Deps struct {
	Anchors  Anchors
	Panels   Panels
	Notifier Notifier
	Resolver Resolver
	Poster   Poster
	Pointer  Pointer
	Window   WindowController
	Launcher Launcher
}

// Options tunes layout and timing.
type Options struct {
	// Gap separates an entry from the popover below it.
	Gap float64
	// SizeFor returns the item popover size for an id.
	SizeFor func(id string) geom.Size
	// CalendarSize is the calendar panel size.
	CalendarSize geom.Size
	// PreviewGap separates the pointer from the preview below it.
	PreviewGap float64
	// Preview fills in preview dimensions missing from showTrayPopup.
	Preview PreviewConfig

	Now    func() time.Time
	Ticker Ticker
	// Go runs local resolution. Defaults to a new goroutine.
	Go func(fn func())

	Logger logger.Logger
}

// Coordinator is the popover state machine.
type Coordinator struct {
	deps Deps
	opts Options
	log  logger.Logger

	surface Surface
	frame   geom.Rect
	theme   Theme

	// item popover
	itemID  string
	data    map[string]any
	loading bool
	// seq increases on every open so a result from an earlier open of the
	// same id is still recognised as stale.
	seq uint64

	// calendar
	cursor    calendar.Cursor
	stopClock func()

	// preview
	preview   PreviewConfig
	lastFrame *Frame

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a coordinator with everything closed.
func New(deps Deps, opts Options) *Coordinator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Ticker == nil {
		opts.Ticker = systemTicker
	}
	if opts.Go == nil {
		opts.Go = func(fn func()) { go fn() }
	}
	if opts.SizeFor == nil {
		opts.SizeFor = func(string) geom.Size { return geom.Size{Width: 340, Height: 136} }
	}
	if opts.CalendarSize == (geom.Size{}) {
		opts.CalendarSize = geom.Size{Width: 280, Height: 330}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		deps:   deps,
		opts:   opts,
		log:    logger.OrNoop(opts.Logger),
		theme:  Theme{Dark: true, Locale: "en"},
		cursor: calendar.At(opts.Now()),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Close closes any open surface and cancels pending local resolutions.
func (c *Coordinator) Close() {
	c.closeAll()
	c.cancel()
}

// ClickTrayEntry handles a click on the tray entry id. The system time
// entry toggles the calendar; every other entry toggles its item popover.
// A newly opened item popover is shown at once in its loading state; its
// data comes from the local resolver for locally resolvable ids and from
// the host otherwise. Clicking an id with no live entry fails with
// NOT_FOUND and changes nothing.
func (c *Coordinator) ClickTrayEntry(id string) error {
	spec, ok := c.deps.Anchors.Spec(id)
	if !ok {
		return errors.Newf(errors.ErrNotFound, "no tray entry %q", id)
	}

	if spec.Kind == item.KindSystemTime {
		if c.surface == SurfaceCalendar {
			c.closeCalendar()
			return nil
		}
		c.closeAll()
		c.openCalendar(c.anchorFor(id))
		return nil
	}

	if c.surface == SurfaceItem && c.itemID == id {
		c.closeItem()
		return nil
	}

	c.closeAll()
	c.openItem(id, c.anchorFor(id), map[string]any{
		"itemId":     id,
		"brightness": c.brightness(),
		"isLoading":  true,
	})

	if spec.Local {
		c.resolve(id, c.seq)
	} else {
		c.deps.Notifier.Emit(bridge.ChannelMenuBar, bridge.EventItemClicked, map[string]any{"itemId": id})
	}
	return nil
}

// RequestShow opens the item popover for id with host-supplied data. It
// honours the toggle rule and reports false when id has no live entry.
func (c *Coordinator) RequestShow(id string, data map[string]any) bool {
	if c.surface == SurfaceCalendar {
		c.closeCalendar()
	}
	if _, ok := c.deps.Anchors.Spec(id); !ok {
		return false
	}
	if c.surface == SurfaceItem && c.itemID == id {
		c.closeItem()
		return true
	}

	c.closeAll()
	c.openItem(id, c.anchorFor(id), data)
	return true
}

// RequestUpdate replaces the data of the open item popover if it belongs
// to id. It reports whether the data was applied.
func (c *Coordinator) RequestUpdate(id string, data map[string]any) bool {
	if c.surface != SurfaceItem || c.itemID != id {
		c.log.Debug("update for %q ignored, open item is %q", id, c.itemID)
		return false
	}
	c.setItemData(data)
	return true
}

// RequestHide closes whatever is open and tells the host the popover closed.
// This includes the calendar and the tray preview. A preview closed this
// way still emits stopStreaming and trayPopupClosed before popoverClosed,
// so a host tracking the preview sees it go away.
func (c *Coordinator) RequestHide() {
	wasItem := c.surface == SurfaceItem
	c.closeAll()
	if !wasItem {
		c.deps.Notifier.Emit(bridge.ChannelPopover, bridge.EventPopoverClosed, nil)
	}
}

// ShowTrayPreview toggles the window preview. It opens centered under the
// pointer, clamped into the display that contains the pointer, and asks
// the host to start streaming frames.
func (c *Coordinator) ShowTrayPreview(cfg PreviewConfig) {
	if c.surface == SurfacePreview {
		c.closePreview()
		return
	}
	c.closeAll()

	if cfg.Width <= 0 {
		cfg.Width = c.opts.Preview.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = c.opts.Preview.Height
	}
	if cfg.TitleBarHeight <= 0 {
		cfg.TitleBarHeight = c.opts.Preview.TitleBarHeight
	}

	p := c.deps.Pointer.Location()
	frame := geom.Rect{
		X:      p.X - cfg.Width/2,
		Y:      p.Y + c.opts.PreviewGap,
		Width:  cfg.Width,
		Height: cfg.Height,
	}
	if d, ok := geom.DisplayAt(c.deps.Pointer.Displays(), p); ok {
		frame = frame.ClampInto(d.Bounds)
	}

	c.surface = SurfacePreview
	c.frame = frame
	c.preview = cfg
	c.deps.Panels.Show(SurfacePreview, frame, c.previewContent())
	c.deps.Notifier.Emit(bridge.ChannelTrayPopup, bridge.EventStartStreaming, nil)
}

// HideTrayPreview closes the preview if it is open.
func (c *Coordinator) HideTrayPreview() {
	if c.surface == SurfacePreview {
		c.closePreview()
	}
}

// UpdateFrame stores the latest preview frame and shows it if the
// preview is open.
func (c *Coordinator) UpdateFrame(f Frame) {
	c.lastFrame = &f
	if c.surface == SurfacePreview {
		c.deps.Panels.Update(SurfacePreview, c.previewContent())
	}
}

// HandlePointerDown closes the open surface when p is outside it. Both
// global and app-local listeners feed this one hit test. Clicks on a tray
// entry are left to ClickTrayEntry so toggling works, and a pinned
// preview stays open.
func (c *Coordinator) HandlePointerDown(p geom.Point, src ClickSource) {
	if c.surface == SurfaceNone || c.frame.Contains(p) {
		return
	}
	if id, ok := c.deps.Anchors.HitTest(p); ok {
		c.log.Debug("%s click on entry %q left to its handler", src, id)
		return
	}
	if c.surface == SurfacePreview && c.preview.Pinned {
		return
	}
	c.log.Debug("%s click outside %s, closing", src, c.surface)
	c.closeAll()
}

// SetTheme updates the theme of every surface. An empty locale keeps the
// current one.
func (c *Coordinator) SetTheme(brightness, locale string) {
	c.theme.Dark = brightness == "dark"
	if locale != "" {
		c.theme.Locale = locale
	}
	c.refresh()
}

// Theme returns the current theme.
func (c *Coordinator) Theme() Theme { return c.theme }

// CalendarPrevious moves the calendar one month back.
func (c *Coordinator) CalendarPrevious() {
	c.cursor.Previous()
	c.refreshCalendar()
}

// CalendarNext moves the calendar one month forward.
func (c *Coordinator) CalendarNext() {
	c.cursor.Next()
	c.refreshCalendar()
}

// CalendarToday moves the calendar back to the current month.
func (c *Coordinator) CalendarToday() {
	c.cursor.Reset(c.opts.Now())
	c.refreshCalendar()
}

// Perform runs a surface button.
func (c *Coordinator) Perform(a Action) error {
	switch a {
	case ActionShowWindow:
		c.window(func(w WindowController) { w.Show() })
		c.closeAll()
	case ActionHideWindow:
		c.window(func(w WindowController) { w.Hide() })
		c.closeAll()
	case ActionExitApp:
		c.window(func(w WindowController) { w.Exit() })
	case ActionOpenActivityMonitor:
		c.closeAll()
		return c.launch(AppActivityMonitor)
	case ActionOpenCalendar:
		c.closeAll()
		return c.launch(AppCalendar)
	default:
		return errors.InvalidArgs("unknown action %q", a)
	}
	return nil
}

// State returns a snapshot of the current state.
func (c *Coordinator) State() Snapshot {
	s := Snapshot{
		Surface:   c.surface,
		Frame:     c.frame,
		Calendar:  c.cursor,
		HasFrame:  c.lastFrame != nil,
		Theme:     c.theme,
		OpenCount: c.seq,
	}
	if c.surface == SurfaceItem {
		s.ItemID = c.itemID
		s.Loading = c.loading
		s.Data = c.data
	}
	if c.surface == SurfacePreview {
		s.Pinned = c.preview.Pinned
	}
	return s
}

func (c *Coordinator) window(fn func(WindowController)) {
	if c.deps.Window != nil {
		fn(c.deps.Window)
	}
}

func (c *Coordinator) launch(app string) error {
	if c.deps.Launcher == nil {
		return errors.Newf(errors.ErrUnavailable, "cannot open %s here", app)
	}
	return c.deps.Launcher.Open(app)
}

// anchorFor returns the entry frame, or a point-sized rectangle at the
// pointer when the platform cannot report entry frames.
func (c *Coordinator) anchorFor(id string) geom.Rect {
	if r, ok := c.deps.Anchors.Anchor(id); ok {
		return r
	}
	p := c.deps.Pointer.Location()
	return geom.Rect{X: p.X, Y: p.Y}
}

func (c *Coordinator) brightness() string {
	if c.theme.Dark {
		return "dark"
	}
	return "light"
}
