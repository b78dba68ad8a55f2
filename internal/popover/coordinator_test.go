package popover_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trayd/trayd/internal/bridge"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/item"
	"github.com/trayd/trayd/internal/platform/headless"
	"github.com/trayd/trayd/internal/popover"
	"github.com/trayd/trayd/internal/tray"
	"github.com/trayd/trayd/internal/uiloop"
)

type fakeResolver struct {
	calls []string
	data  map[string]map[string]any
}

func (r *fakeResolver) PopoverData(_ context.Context, id string) map[string]any {
	r.calls = append(r.calls, id)
	out := map[string]any{"itemId": id, "isLoading": false}
	for k, v := range r.data[id] {
		out[k] = v
	}
	return out
}

// deferred collects resolution work so tests decide when it finishes.
type deferred struct {
	pending []func()
}

func (d *deferred) Go(fn func()) { d.pending = append(d.pending, fn) }

func (d *deferred) runAll() {
	p := d.pending
	d.pending = nil
	for _, fn := range p {
		fn()
	}
}

type fixture struct {
	reg      *tray.Registry
	tray     *headless.Tray
	panels   *headless.Panels
	notifier *headless.Notifier
	screen   *headless.Screen
	window   *headless.Window
	launcher *headless.Launcher
	resolver *fakeResolver
	work     *deferred
	coord    *popover.Coordinator
}

var now = time.Date(2026, time.October, 16, 9, 41, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		panels:   headless.NewPanels(),
		notifier: headless.NewNotifier(nil),
		screen:   headless.NewScreen(headless.DefaultDisplays()),
		window:   headless.NewWindow(nil),
		launcher: &headless.Launcher{},
		resolver: &fakeResolver{data: map[string]map[string]any{
			item.BatteryID: {"processes": []map[string]any{{"pid": 42, "name": "kernel_task", "energy": 12.5}}},
		}},
		work: &deferred{},
	}
	f.tray = headless.NewTray(tray.PlacementPrepend, geom.R(0, 0, 1440, 900))
	f.reg = tray.New(f.tray, tray.Options{})
	f.coord = popover.New(popover.Deps{
		Anchors:  f.reg,
		Panels:   f.panels,
		Notifier: f.notifier,
		Resolver: f.resolver,
		Poster:   uiloop.Inline{},
		Pointer:  f.screen,
		Window:   f.window,
		Launcher: f.launcher,
	}, popover.Options{
		Gap:        4,
		PreviewGap: 4,
		SizeFor:    func(string) geom.Size { return geom.Size{Width: 300, Height: 120} },
		Preview:    popover.PreviewConfig{Width: 360, Height: 480, TitleBarHeight: 28},
		Now:        func() time.Time { return now },
		Ticker: func(time.Duration) (<-chan time.Time, func()) {
			return make(chan time.Time), func() {}
		},
		Go: f.work.Go,
	})
	t.Cleanup(f.coord.Close)

	f.reg.OnClick(func(id string) { _ = f.coord.ClickTrayEntry(id) })
	f.reg.Reconcile(item.Batch{FontSize: 10, Items: []item.Spec{
		{ID: "cpu", Top: "CPU", Bottom: "5%"},
		{ID: "ram", Top: "RAM", Bottom: "40%", Local: true},
		{ID: item.BatteryID, Top: "BATTERY:80:0", Kind: item.KindBattery, Local: true,
			HasBattery: true, Battery: item.Battery{Level: 80}},
		{ID: item.SystemTimeID, Top: "Fri", Bottom: "09:41", Kind: item.KindSystemTime},
	}})
	return f
}

func TestClickTrayEntry_ToggleLaw(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.tray.Click("cpu"))
	s := f.coord.State()
	assert.Equal(t, popover.SurfaceItem, s.Surface)
	assert.Equal(t, "cpu", s.ItemID)
	assert.True(t, s.Loading, "opens in the loading state without waiting for data")
	assert.Equal(t, 1, f.notifier.Count(bridge.EventItemClicked))

	require.True(t, f.tray.Click("cpu"))
	assert.Equal(t, popover.SurfaceNone, f.coord.State().Surface)
	assert.Equal(t, 1, f.notifier.Count(bridge.EventPopoverClosed))
	assert.Empty(t, f.panels.Visible())
}

func TestClickTrayEntry_SwitchesBetweenItems(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.coord.ClickTrayEntry("cpu"))
	require.NoError(t, f.coord.ClickTrayEntry("ram"))

	s := f.coord.State()
	assert.Equal(t, "ram", s.ItemID)
	assert.True(t, s.Loading)
	assert.Equal(t, []popover.Surface{popover.SurfaceItem}, f.panels.Visible())
	assert.Equal(t, 1, f.notifier.Count(bridge.EventPopoverClosed), "closing cpu is reported")
}

func TestClickTrayEntry_Unknown(t *testing.T) {
	f := newFixture(t)
	err := f.coord.ClickTrayEntry("nope")
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
	assert.Equal(t, popover.SurfaceNone, f.coord.State().Surface)
}

func TestClickTrayEntry_FramedBelowAnchor(t *testing.T) {
	f := newFixture(t)
	anchor, ok := f.reg.Anchor("cpu")
	require.True(t, ok)

	require.NoError(t, f.coord.ClickTrayEntry("cpu"))
	frame := f.coord.State().Frame
	assert.Equal(t, anchor.MidX()-150, frame.X)
	assert.Equal(t, anchor.MaxY()+4, frame.Y)
	assert.Equal(t, geom.Size{Width: 300, Height: 120}, frame.Size())
}

func TestLocalResolution_StaleResultIgnored(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.coord.ClickTrayEntry("ram"))
	require.NoError(t, f.coord.ClickTrayEntry("cpu"))
	f.work.runAll()

	s := f.coord.State()
	assert.Equal(t, "cpu", s.ItemID)
	assert.True(t, s.Loading, "ram's result must not touch cpu's popover")
}

func TestLocalResolution_ReopenedSameIDStillStale(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.coord.ClickTrayEntry("ram"))
	require.NoError(t, f.coord.ClickTrayEntry("ram"))
	require.NoError(t, f.coord.ClickTrayEntry("ram"))
	require.Len(t, f.work.pending, 2)

	// Finish the first open's fetch only.
	first := f.work.pending[0]
	f.work.pending = f.work.pending[1:]
	first()
	assert.True(t, f.coord.State().Loading)

	f.work.runAll()
	assert.False(t, f.coord.State().Loading)
}

func TestLocalResolution_ClosedBeforeResult(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.coord.ClickTrayEntry("ram"))
	f.coord.RequestHide()
	f.work.runAll()

	assert.Equal(t, popover.SurfaceNone, f.coord.State().Surface)
	assert.Empty(t, f.panels.Visible())
}

func TestBatteryClick_ResolvesLocally(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.tray.Click(item.BatteryID))
	s := f.coord.State()
	assert.True(t, s.Loading)
	assert.Equal(t, item.BatteryID, s.Data["itemId"])

	f.work.runAll()

	s = f.coord.State()
	assert.False(t, s.Loading)
	assert.Equal(t, []string{item.BatteryID}, f.resolver.calls)
	assert.NotEmpty(t, s.Data["processes"])
	assert.Zero(t, f.notifier.Count(bridge.EventItemClicked), "no host round trip")

	cur, ok := f.panels.Current(popover.SurfaceItem)
	require.True(t, ok)
	content := cur.Content.(popover.ItemContent)
	assert.False(t, content.Loading)
}

func TestCalendar_Toggle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coord.ClickTrayEntry("cpu"))

	require.NoError(t, f.coord.ClickTrayEntry(item.SystemTimeID))
	assert.Equal(t, popover.SurfaceCalendar, f.coord.State().Surface)
	assert.Equal(t, []popover.Surface{popover.SurfaceCalendar}, f.panels.Visible())
	assert.Equal(t, []string{
		bridge.EventItemClicked,
		bridge.EventPopoverClosed,
		bridge.EventNativePopupShowing,
	}, f.notifier.Names())

	cur, _ := f.panels.Current(popover.SurfaceCalendar)
	content := cur.Content.(popover.CalendarContent)
	assert.Equal(t, "October 2026", content.Title)
	assert.Equal(t, "2026-10-16 09:41:00", content.Clock)

	require.NoError(t, f.coord.ClickTrayEntry(item.SystemTimeID))
	assert.Equal(t, popover.SurfaceNone, f.coord.State().Surface)
}

func TestCalendar_Navigation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coord.ClickTrayEntry(item.SystemTimeID))

	f.coord.CalendarNext()
	f.coord.CalendarNext()
	assert.Equal(t, "December 2026", f.coord.State().Calendar.Title())
	f.coord.CalendarNext()
	assert.Equal(t, "January 2027", f.coord.State().Calendar.Title())
	f.coord.CalendarToday()
	assert.Equal(t, "October 2026", f.coord.State().Calendar.Title())
	f.coord.CalendarPrevious()

	cur, _ := f.panels.Current(popover.SurfaceCalendar)
	assert.Equal(t, "September 2026", cur.Content.(popover.CalendarContent).Title)
}

func TestRequestShow(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.coord.RequestShow("missing", nil))

	require.NoError(t, f.coord.ClickTrayEntry(item.SystemTimeID))
	assert.True(t, f.coord.RequestShow("cpu", map[string]any{"processes": []any{}}))
	s := f.coord.State()
	assert.Equal(t, popover.SurfaceItem, s.Surface)
	assert.Equal(t, "cpu", s.Data["itemId"])
	assert.False(t, s.Loading)

	// Same id again toggles closed.
	assert.True(t, f.coord.RequestShow("cpu", nil))
	assert.Equal(t, popover.SurfaceNone, f.coord.State().Surface)
}

func TestRequestUpdate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coord.ClickTrayEntry("cpu"))

	assert.False(t, f.coord.RequestUpdate("ram", map[string]any{"x": 1}))
	assert.True(t, f.coord.State().Loading)

	assert.True(t, f.coord.RequestUpdate("cpu", map[string]any{"isLoading": false, "processes": []any{"a"}}))
	s := f.coord.State()
	assert.False(t, s.Loading)
	assert.Equal(t, []any{"a"}, s.Data["processes"])
	assert.Equal(t, "cpu", s.Data["itemId"])
}

func TestRequestHide_AlwaysReportsClosed(t *testing.T) {
	f := newFixture(t)

	f.coord.RequestHide()
	assert.Equal(t, 1, f.notifier.Count(bridge.EventPopoverClosed))

	require.NoError(t, f.coord.ClickTrayEntry("cpu"))
	f.notifier.Reset()
	f.coord.RequestHide()
	assert.Equal(t, 1, f.notifier.Count(bridge.EventPopoverClosed))
}

func TestRequestHide_ClosesTrayPreview(t *testing.T) {
	f := newFixture(t)

	f.coord.ShowTrayPreview(popover.PreviewConfig{})
	f.notifier.Reset()
	f.coord.RequestHide()

	assert.Equal(t, popover.SurfaceNone, f.coord.State().Surface)
	assert.Equal(t, 1, f.notifier.Count(bridge.EventStopStreaming))
	assert.Equal(t, 1, f.notifier.Count(bridge.EventTrayPopupClosed))
	assert.Equal(t, 1, f.notifier.Count(bridge.EventPopoverClosed))
}

func TestShowPopover_LeavesCallerDataAlone(t *testing.T) {
	f := newFixture(t)
	data := map[string]any{"isLoading": true}

	require.True(t, f.coord.RequestShow("cpu", data))
	assert.NotContains(t, data, "itemId")
	assert.Equal(t, "cpu", f.coord.State().Data["itemId"])

	update := map[string]any{"processes": []any{}}
	require.True(t, f.coord.RequestUpdate("cpu", update))
	assert.Equal(t, map[string]any{"processes": []any{}}, update)
	assert.Equal(t, "cpu", f.coord.State().Data["itemId"])
}

func TestTrayPreview(t *testing.T) {
	tests := []struct {
		name    string
		pointer geom.Point
		cfg     popover.PreviewConfig
		want    geom.Rect
	}{
		{
			name:    "centered under pointer",
			pointer: geom.Point{X: 700, Y: 10},
			cfg:     popover.PreviewConfig{Width: 200, Height: 100},
			want:    geom.R(600, 14, 200, 100),
		},
		{
			name:    "clamped to right edge",
			pointer: geom.Point{X: 1430, Y: 10},
			cfg:     popover.PreviewConfig{Width: 200, Height: 100},
			want:    geom.R(1240, 14, 200, 100),
		},
		{
			name:    "defaults fill missing size",
			pointer: geom.Point{X: 700, Y: 0},
			cfg:     popover.PreviewConfig{},
			want:    geom.R(520, 4, 360, 480),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.screen.MoveTo(tt.pointer)

			f.coord.ShowTrayPreview(tt.cfg)
			s := f.coord.State()
			assert.Equal(t, popover.SurfacePreview, s.Surface)
			assert.Equal(t, tt.want, s.Frame)
			assert.Equal(t, 1, f.notifier.Count(bridge.EventStartStreaming))

			f.coord.ShowTrayPreview(tt.cfg)
			assert.Equal(t, popover.SurfaceNone, f.coord.State().Surface)
			assert.Equal(t, []string{
				bridge.EventStartStreaming,
				bridge.EventStopStreaming,
				bridge.EventTrayPopupClosed,
			}, f.notifier.Names())
		})
	}
}

func TestUpdateFrame(t *testing.T) {
	f := newFixture(t)
	f.coord.UpdateFrame(popover.Frame{Width: 2, Height: 2})
	assert.True(t, f.coord.State().HasFrame)
	assert.Empty(t, f.panels.Calls(), "nothing shown while closed")

	f.coord.ShowTrayPreview(popover.PreviewConfig{})
	f.coord.UpdateFrame(popover.Frame{Width: 4, Height: 4})
	cur, ok := f.panels.Current(popover.SurfacePreview)
	require.True(t, ok)
	assert.Equal(t, 4, cur.Content.(popover.PreviewContent).Frame.Width)
}

func TestHandlePointerDown(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coord.ClickTrayEntry("cpu"))
	frame := f.coord.State().Frame

	// Inside the popover.
	f.coord.HandlePointerDown(geom.Point{X: frame.MidX(), Y: frame.MidY()}, popover.SourceApp)
	assert.Equal(t, popover.SurfaceItem, f.coord.State().Surface)

	// On a tray entry: left to the entry's click handler.
	ram, _ := f.reg.Anchor("ram")
	f.coord.HandlePointerDown(geom.Point{X: ram.MidX(), Y: ram.MidY()}, popover.SourceGlobal)
	assert.Equal(t, popover.SurfaceItem, f.coord.State().Surface)

	// Anywhere else.
	f.coord.HandlePointerDown(geom.Point{X: 5, Y: 800}, popover.SourceGlobal)
	assert.Equal(t, popover.SurfaceNone, f.coord.State().Surface)
	assert.Equal(t, 1, f.notifier.Count(bridge.EventPopoverClosed))
}

func TestHandlePointerDown_PinnedPreviewStays(t *testing.T) {
	f := newFixture(t)
	f.screen.MoveTo(geom.Point{X: 700, Y: 10})
	f.coord.ShowTrayPreview(popover.PreviewConfig{Pinned: true})

	f.coord.HandlePointerDown(geom.Point{X: 5, Y: 800}, popover.SourceGlobal)
	assert.Equal(t, popover.SurfacePreview, f.coord.State().Surface)
	assert.True(t, f.coord.State().Pinned)
}

func TestSetTheme(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coord.ClickTrayEntry("cpu"))

	f.coord.SetTheme("light", "de")
	assert.Equal(t, popover.Theme{Dark: false, Locale: "de"}, f.coord.Theme())
	cur, _ := f.panels.Current(popover.SurfaceItem)
	assert.False(t, cur.Content.(popover.ItemContent).Theme.Dark)

	f.coord.SetTheme("dark", "")
	assert.Equal(t, "de", f.coord.Theme().Locale)

	require.NoError(t, f.coord.ClickTrayEntry("ram"))
	assert.Equal(t, "dark", f.coord.State().Data["brightness"])
}

func TestPerform(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coord.ClickTrayEntry("cpu"))

	require.NoError(t, f.coord.Perform(popover.ActionOpenActivityMonitor))
	assert.Equal(t, []string{popover.AppActivityMonitor}, f.launcher.Opened())
	assert.Equal(t, popover.SurfaceNone, f.coord.State().Surface)

	require.NoError(t, f.coord.Perform(popover.ActionShowWindow))
	require.NoError(t, f.coord.Perform(popover.ActionHideWindow))
	require.NoError(t, f.coord.Perform(popover.ActionExitApp))
	assert.Equal(t, 1, f.window.Shows)
	assert.Equal(t, 1, f.window.Hides)
	assert.Equal(t, 1, f.window.Exits)

	err := f.coord.Perform("dance")
	assert.True(t, errors.IsCode(err, errors.ErrInvalidArgs))
}
