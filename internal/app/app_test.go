package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trayd/trayd/internal/bridge"
	"github.com/trayd/trayd/internal/config"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/exec"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/input"
	"github.com/trayd/trayd/internal/platform/headless"
	"github.com/trayd/trayd/internal/popover"
	"github.com/trayd/trayd/internal/telemetry"
	"github.com/trayd/trayd/internal/tray"
)

type staticCounters struct{}

func (staticCounters) CPUTicks(context.Context) (telemetry.CPUTicks, error) {
	return telemetry.CPUTicks{User: 10, Idle: 90}, nil
}
func (staticCounters) Memory(context.Context) (uint64, uint64, error) { return 3, 4, nil }
func (staticCounters) Disk(context.Context, string) (uint64, uint64, error) {
	return 1, 4, nil
}
func (staticCounters) GPU(context.Context) (float64, error) { return 7, nil }
func (staticCounters) Network(context.Context) (map[string]telemetry.NetCounter, error) {
	return map[string]telemetry.NetCounter{"en0": {Sent: 1, Recv: 2}}, nil
}
func (staticCounters) Battery(context.Context) (telemetry.Battery, error) {
	return telemetry.Battery{Level: 55, OnACPower: true}, nil
}

const energyScript = "top -l 2 -n 10 -stats pid,cpu,command -o cpu | tail -8"

type harness struct {
	app      *App
	tray     *headless.Tray
	panels   *headless.Panels
	screen   *headless.Screen
	notifier *headless.Notifier
	launcher *headless.Launcher
	exits    int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		tray:     headless.NewTray(tray.PlacementPrepend, geom.R(0, 0, 1440, 900)),
		panels:   headless.NewPanels(),
		screen:   headless.NewScreen(headless.DefaultDisplays()),
		notifier: headless.NewNotifier(nil),
		launcher: &headless.Launcher{},
	}
	run := exec.NewScripted(map[string]string{
		exec.CommandLine("/bin/sh", "-c", energyScript): "PID %CPU COMMAND\n411 22.4 kernel_task\n",
	})
	a, err := New(Options{
		Config: config.DefaultConfig(),
		Platform: Platform{
			Tray:     h.tray,
			Panels:   h.panels,
			Pointer:  h.screen,
			Tap:      h.screen,
			Launcher: h.launcher,
		},
		Runner:   run,
		Counters: staticCounters{},
		Ticker: func(time.Duration) (<-chan time.Time, func()) {
			return make(chan time.Time), func() {}
		},
		OnExit: func() { h.exits++ },
	})
	require.NoError(t, err)
	a.Events().Attach(h.notifier)
	h.app = a

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func (h *harness) call(t *testing.T, channel, method string, args bridge.Args) (any, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.app.Router().Dispatch(ctx, channel, method, args)
}

func (h *harness) state(t *testing.T) StateView {
	t.Helper()
	v, err := h.call(t, bridge.ChannelMenuBar, "getState", nil)
	require.NoError(t, err)
	return v.(StateView)
}

func (h *harness) setItems(t *testing.T, ids ...string) ReconcileResult {
	t.Helper()
	items := make([]any, 0, len(ids))
	for _, id := range ids {
		top := id
		if id == "battery" {
			top = "BATTERY:80:1"
		}
		items = append(items, map[string]any{"id": id, "top": top, "bottom": "1%"})
	}
	res, err := h.call(t, bridge.ChannelMenuBar, "setMenuBarItems", bridge.Args{"items": items, "fontSize": 10.0})
	require.NoError(t, err)
	return res.(ReconcileResult)
}

func TestSetMenuBarItems(t *testing.T) {
	h := newHarness(t)

	res := h.setItems(t, "cpu")
	assert.Equal(t, []string{"cpu"}, res.Items)

	res = h.setItems(t, "cpu", "ram")
	assert.True(t, res.Recreated)
	assert.Equal(t, []string{"cpu", "ram"}, res.Items)
	assert.Equal(t, []string{"cpu", "ram"}, h.tray.Order())
}

func TestSetMenuBarItems_SkipsMalformedEntries(t *testing.T) {
	h := newHarness(t)

	res, err := h.call(t, bridge.ChannelMenuBar, "setMenuBarItems", bridge.Args{
		"fontSize": 10.0,
		"items": []any{
			map[string]any{"id": "cpu", "top": "CPU", "bottom": "3%"},
			map[string]any{"id": "ram", "top": "RAM"},
		},
	})
	require.NoError(t, err)
	r := res.(ReconcileResult)
	assert.Equal(t, []string{"cpu"}, r.Items)
	require.Len(t, r.Skipped, 1)
	assert.Equal(t, 1, r.Skipped[0].Index)
	assert.Equal(t, "ram", r.Skipped[0].ID)
}

func TestSetMenuBarItems_InvalidArgs(t *testing.T) {
	h := newHarness(t)
	_, err := h.call(t, bridge.ChannelMenuBar, "setMenuBarItems", bridge.Args{"items": []any{}})
	assert.True(t, errors.IsCode(err, errors.ErrInvalidArgs))
}

func TestClickItem_LocalBatteryResolves(t *testing.T) {
	h := newHarness(t)
	h.setItems(t, "cpu", "battery")

	_, err := h.call(t, bridge.ChannelMenuBar, "clickItem", bridge.Args{"itemId": "battery"})
	require.NoError(t, err)
	assert.Zero(t, h.notifier.Count(bridge.EventItemClicked))

	require.Eventually(t, func() bool {
		s := h.state(t).Popover
		return s.Surface == popover.SurfaceItem && !s.Loading
	}, 2*time.Second, 10*time.Millisecond)

	s := h.state(t).Popover
	assert.Equal(t, "battery", s.ItemID)
	assert.Equal(t, []map[string]any{{"pid": 411, "name": "kernel_task", "energy": 22.4}}, s.Data["processes"])
}

func TestClickItem_HostResolvedNotifies(t *testing.T) {
	h := newHarness(t)
	h.setItems(t, "todo")

	_, err := h.call(t, bridge.ChannelMenuBar, "clickItem", bridge.Args{"itemId": "todo"})
	require.NoError(t, err)
	assert.Equal(t, 1, h.notifier.Count(bridge.EventItemClicked))
	assert.True(t, h.state(t).Popover.Loading)

	applied, err := h.call(t, bridge.ChannelPopover, "updatePopoverContent", bridge.Args{
		"itemId": "todo",
		"data":   map[string]any{"itemId": "todo", "isLoading": false, "todos": []any{}},
	})
	require.NoError(t, err)
	assert.Equal(t, true, applied)
	assert.False(t, h.state(t).Popover.Loading)

	_, err = h.call(t, bridge.ChannelMenuBar, "clickItem", bridge.Args{"itemId": "nope"})
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestShowAndHidePopover(t *testing.T) {
	h := newHarness(t)
	h.setItems(t, "cpu")

	shown, err := h.call(t, bridge.ChannelPopover, "showPopover", bridge.Args{"itemId": "cpu", "data": map[string]any{"x": 1.0}})
	require.NoError(t, err)
	assert.Equal(t, true, shown)
	assert.Equal(t, popover.SurfaceItem, h.state(t).Popover.Surface)

	shown, err = h.call(t, bridge.ChannelPopover, "showPopover", bridge.Args{"itemId": "missing"})
	require.NoError(t, err)
	assert.Equal(t, false, shown)

	_, err = h.call(t, bridge.ChannelPopover, "hidePopover", nil)
	require.NoError(t, err)
	assert.Equal(t, popover.SurfaceNone, h.state(t).Popover.Surface)
	assert.Equal(t, 1, h.notifier.Count(bridge.EventPopoverClosed))
}

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestTrayPopupFrames(t *testing.T) {
	h := newHarness(t)

	_, err := h.call(t, bridge.ChannelTrayPopup, "showTrayPopup", bridge.Args{"popupWidth": 200.0, "popupHeight": 100.0})
	require.NoError(t, err)
	assert.Equal(t, popover.SurfacePreview, h.state(t).Popover.Surface)
	assert.Equal(t, 1, h.notifier.Count(bridge.EventStartStreaming))

	_, err = h.call(t, bridge.ChannelTrayPopup, "updateFrame", bridge.Args{"imageData": pngBase64(t, 4, 2), "width": 4, "height": 2})
	require.NoError(t, err)
	assert.True(t, h.state(t).Popover.HasFrame)

	_, err = h.call(t, bridge.ChannelTrayPopup, "updateFrame", bridge.Args{"imageData": "AAAA", "width": 4, "height": 2})
	assert.True(t, errors.IsCode(err, errors.ErrInvalidArgs))

	_, err = h.call(t, bridge.ChannelTrayPopup, "hideTrayPopup", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, h.notifier.Count(bridge.EventTrayPopupClosed))
}

func TestPointerDownClosesPopover(t *testing.T) {
	h := newHarness(t)
	h.setItems(t, "cpu")
	_, err := h.call(t, bridge.ChannelPopover, "showPopover", bridge.Args{"itemId": "cpu"})
	require.NoError(t, err)

	h.screen.Click(geom.Point{X: 5, Y: 800})
	require.Eventually(t, func() bool {
		return h.state(t).Popover.Surface == popover.SurfaceNone
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWindowAndExit(t *testing.T) {
	h := newHarness(t)

	_, err := h.call(t, bridge.ChannelMenuBar, "showWindow", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, h.notifier.Count(bridge.EventShowWindow))

	_, err = h.call(t, bridge.ChannelPopover, "performAction", bridge.Args{"action": "openActivityMonitor"})
	require.NoError(t, err)
	assert.Equal(t, []string{popover.AppActivityMonitor}, h.launcher.Opened())

	_, err = h.call(t, bridge.ChannelMenuBar, "exitApp", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, h.notifier.Count(bridge.EventExitApp))
	assert.Equal(t, 1, h.exits)
}

func TestThemeAndCalendar(t *testing.T) {
	h := newHarness(t)

	_, err := h.call(t, bridge.ChannelMenuBar, "setTheme", bridge.Args{"brightness": "light", "locale": "zh"})
	require.NoError(t, err)
	theme := h.state(t).Popover.Theme
	assert.False(t, theme.Dark)
	assert.Equal(t, "zh", theme.Locale)

	_, err = h.call(t, bridge.ChannelMenuBar, "setTheme", nil)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidArgs))

	before := h.state(t).Popover.Calendar
	_, err = h.call(t, bridge.ChannelPopover, "navigateCalendar", bridge.Args{"direction": "next"})
	require.NoError(t, err)
	assert.NotEqual(t, before, h.state(t).Popover.Calendar)

	_, err = h.call(t, bridge.ChannelPopover, "navigateCalendar", bridge.Args{"direction": "sideways"})
	assert.True(t, errors.IsCode(err, errors.ErrInvalidArgs))
}

func TestSystemInfo(t *testing.T) {
	h := newHarness(t)

	stats, err := h.call(t, bridge.ChannelSystemInfo, "getAllStats", nil)
	require.NoError(t, err)
	m := stats.(map[string]any)
	assert.Equal(t, 75.0, m["ram"])
	assert.Equal(t, 25.0, m["disk"])
	assert.Equal(t, 7.0, m["gpu"])
	assert.Equal(t, 55, m["batteryLevel"])
	assert.Equal(t, true, m["isBatteryCharging"])

	bat, err := h.call(t, bridge.ChannelSystemInfo, "getBatteryInfo", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"level": 55, "isCharging": true}, bat)

	_, err = h.call(t, bridge.ChannelSystemInfo, "getTopProcesses", bridge.Args{"metric": "swap"})
	assert.True(t, errors.IsCode(err, errors.ErrInvalidArgs))

	info, err := h.call(t, bridge.ChannelSystemInfo, "getNetworkInfo", nil)
	require.NoError(t, err)
	assert.Equal(t, telemetry.Unknown, info.(map[string]string)["localIp"])
}

func TestAccessibilityAndMouse(t *testing.T) {
	h := newHarness(t)

	ok, err := h.call(t, bridge.ChannelAccess, "checkAccessibility", nil)
	require.NoError(t, err)
	assert.Equal(t, true, ok)

	_, err = h.call(t, bridge.ChannelMouse, "moveMouse", bridge.Args{"dx": 10.0})
	assert.True(t, errors.IsCode(err, errors.ErrInvalidArgs))

	before := h.screen.Location()
	_, err = h.call(t, bridge.ChannelMouse, "moveMouse", bridge.Args{"dx": 10.0, "dy": -5.0})
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: before.X + 10, Y: before.Y - 5}, h.screen.Location())

	_, err = h.call(t, "nowhere", "nothing", nil)
	assert.True(t, errors.IsCode(err, errors.ErrNotImplemented))
}

func TestKeyStream(t *testing.T) {
	h := newHarness(t)
	start, ok := h.app.Router().Stream(bridge.StreamKeyEvents)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := start(ctx)
	require.NoError(t, err)

	h.screen.Inject(input.Raw{Kind: input.RawKeyDown, KeyCode: 8, Mods: input.ModCmd})
	want, _ := input.KeyLabel(8, input.ModCmd)
	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no key event")
	}

	cancel()
	for range ch {
	}
}

func TestNew_IncompletePlatform(t *testing.T) {
	_, err := New(Options{})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
