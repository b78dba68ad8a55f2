package input

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/uiloop"
)

type fakeTap struct {
	mu          sync.Mutex
	trusted     bool
	failInstall bool
	prompts     int
	installs    int
	removed     int
	handlers    []func(Raw)
	location    geom.Point
	displays    []geom.Display
	moved       []geom.Point
}

func (f *fakeTap) Trusted(prompt bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if prompt {
		f.prompts++
	}
	return f.trusted
}

func (f *fakeTap) Install(mask Mask, fn func(Raw)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInstall {
		return nil, fmt.Errorf("tap refused")
	}
	f.installs++
	f.handlers = append(f.handlers, fn)
	return func() {
		f.mu.Lock()
		f.removed++
		f.mu.Unlock()
	}, nil
}

func (f *fakeTap) inject(r Raw) {
	f.mu.Lock()
	hs := append([]func(Raw){}, f.handlers...)
	f.mu.Unlock()
	for _, h := range hs {
		h(r)
	}
}

func (f *fakeTap) Location() geom.Point     { return f.location }
func (f *fakeTap) Displays() []geom.Display { return f.displays }
func (f *fakeTap) OpenSettings() error      { return nil }

func (f *fakeTap) MovePointer(dx, dy float64) error {
	f.moved = append(f.moved, geom.Point{X: dx, Y: dy})
	return nil
}

func twoDisplays() []geom.Display {
	return []geom.Display{
		{ID: "main", Bounds: geom.R(0, 0, 1440, 900), Primary: true},
		{ID: "side", Bounds: geom.R(1440, 0, 1920, 1080)},
	}
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "stream closed early")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestStartKeyStream_DeniedEndsEmpty(t *testing.T) {
	tap := &fakeTap{trusted: false}
	m := NewMonitor(tap, nil)

	ch, err := m.StartKeyStream(context.Background())
	require.NoError(t, err)

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 1, tap.prompts)
	assert.Equal(t, 0, tap.installs)
}

func TestStartKeyStream_InstallFailure(t *testing.T) {
	tap := &fakeTap{trusted: true, failInstall: true}
	m := NewMonitor(tap, nil)

	ch, err := m.StartKeyStream(context.Background())
	require.Error(t, err)
	assert.Nil(t, ch)
	assert.True(t, errors.IsCode(err, errors.ErrRegistration))
}

func TestStartKeyStream_Events(t *testing.T) {
	tap := &fakeTap{trusted: true}
	m := NewMonitor(tap, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := m.StartKeyStream(ctx)
	require.NoError(t, err)

	tap.inject(Raw{Kind: RawFlagsChanged, Mods: ModCmd})
	tap.inject(Raw{Kind: RawFlagsChanged, Mods: ModCmd | ModShift})
	tap.inject(Raw{Kind: RawFlagsChanged, Mods: ModCmd})
	tap.inject(Raw{Kind: RawKeyDown, KeyCode: 1, Mods: ModCmd})
	tap.inject(Raw{Kind: RawFlagsChanged, Mods: 0})
	tap.inject(Raw{Kind: RawPointerMove})

	assert.Equal(t, Event{Kind: KindModifier, Label: "Cmd"}, receive(t, ch))
	assert.Equal(t, Event{Kind: KindModifier, Label: "Cmd + Shift"}, receive(t, ch))
	assert.Equal(t, Event{Kind: KindKey, Label: "Cmd + S"}, receive(t, ch))

	cancel()
	for range ch {
		t.Fatal("unexpected extra event")
	}
	assert.Equal(t, 1, tap.removed)
}

func TestStartPointerStream(t *testing.T) {
	tap := &fakeTap{trusted: true, location: geom.Point{X: 10, Y: 20}, displays: twoDisplays()}
	m := NewMonitor(tap, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := m.StartPointerStream(ctx)
	require.NoError(t, err)

	first := receive(t, ch)
	assert.Equal(t, KindPointerMove, first.Kind)
	assert.Equal(t, geom.Point{X: 10, Y: 20}, first.Position)
	assert.Equal(t, geom.R(0, 0, 1440, 900), first.Screen)

	tap.inject(Raw{Kind: RawPointerDown, Position: geom.Point{X: 2000, Y: 100}})
	click := receive(t, ch)
	assert.Equal(t, KindPointerClick, click.Kind)
	assert.Equal(t, geom.R(1440, 0, 1920, 1080), click.Screen)

	// Off every display falls back to the primary.
	tap.inject(Raw{Kind: RawPointerDrag, Position: geom.Point{X: -50, Y: -50}})
	off := receive(t, ch)
	assert.Equal(t, KindPointerMove, off.Kind)
	assert.Equal(t, geom.R(0, 0, 1440, 900), off.Screen)
}

func TestStartPointerStream_DeniedEmitsNothing(t *testing.T) {
	tap := &fakeTap{trusted: false, displays: twoDisplays()}
	ch, err := NewMonitor(tap, nil).StartPointerStream(context.Background())
	require.NoError(t, err)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestStream_DropsWhenFull(t *testing.T) {
	tap := &fakeTap{trusted: true}
	m := NewMonitor(tap, nil)
	m.buffer = 2
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := m.StartKeyStream(ctx)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		tap.inject(Raw{Kind: RawKeyDown, KeyCode: 0})
	}
	assert.Len(t, ch, 2)
}

func TestWatchClicks(t *testing.T) {
	tap := &fakeTap{trusted: true}
	m := NewMonitor(tap, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []geom.Point
	require.NoError(t, m.WatchClicks(ctx, uiloop.Inline{}, func(p geom.Point) {
		got = append(got, p)
	}))

	tap.inject(Raw{Kind: RawPointerMove, Position: geom.Point{X: 1, Y: 1}})
	tap.inject(Raw{Kind: RawPointerDown, Position: geom.Point{X: 5, Y: 6}})
	assert.Equal(t, []geom.Point{{X: 5, Y: 6}}, got)
	assert.Equal(t, 0, tap.prompts, "click watcher never prompts")
}

func TestEventWire(t *testing.T) {
	assert.Equal(t, "Cmd + A", Event{Kind: KindKey, Label: "Cmd + A"}.Wire())

	w := Event{Kind: KindPointerClick, Position: geom.Point{X: 3, Y: 4}, Screen: geom.R(0, 0, 100, 50)}.Wire()
	assert.Equal(t, map[string]any{
		"type": "click", "x": 3.0, "y": 4.0,
		"screenMinX": 0.0, "screenMinY": 0.0, "screenWidth": 100.0, "screenHeight": 50.0,
	}, w)
}

func TestMovePointer(t *testing.T) {
	tap := &fakeTap{}
	require.NoError(t, NewMonitor(tap, nil).MovePointer(3, -2))
	assert.Equal(t, []geom.Point{{X: 3, Y: -2}}, tap.moved)
}
