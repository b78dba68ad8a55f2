package input

import (
	"context"
	"sync"

	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/logger"
)

// DefaultBuffer is the per-stream channel capacity. Events that arrive
// while the buffer is full are dropped; the tap thread never blocks.
const DefaultBuffer = 256

// Monitor opens input streams over a Tap.
type Monitor struct {
	tap    Tap
	log    logger.Logger
	buffer int
}

// NewMonitor creates a monitor. A nil logger discards output.
func NewMonitor(tap Tap, log logger.Logger) *Monitor {
	return &Monitor{tap: tap, log: logger.OrNoop(log), buffer: DefaultBuffer}
}

// Tap returns the underlying tap.
func (m *Monitor) Tap() Tap { return m.tap }

// StartKeyStream opens a key event stream that runs until ctx is done.
// Events are emitted for key-downs and for increases in the number of held
// modifiers. Without permission the returned channel is already closed and
// the error is nil; if the tap cannot be installed the error is
// EVENT_TAP_FAILED. A stream cannot be restarted once it ends.
func (m *Monitor) StartKeyStream(ctx context.Context) (<-chan Event, error) {
	var tracker ModifierTracker
	return m.start(ctx, MaskKeys, "key", func(r Raw) (Event, bool) {
		switch r.Kind {
		case RawKeyDown:
			label, ok := KeyLabel(r.KeyCode, r.Mods)
			return Event{Kind: KindKey, Label: label}, ok
		case RawFlagsChanged:
			label, ok := tracker.Change(r.Mods)
			return Event{Kind: KindModifier, Label: label}, ok
		}
		return Event{}, false
	}, nil)
}

// StartPointerStream opens a pointer event stream that runs until ctx is
// done. The first event is the current pointer position. Permission and
// installation failures behave as for StartKeyStream.
func (m *Monitor) StartPointerStream(ctx context.Context) (<-chan Event, error) {
	initial := m.pointerEvent(KindPointerMove, m.tap.Location())
	return m.start(ctx, MaskPointer|MaskPointerDown, "pointer", func(r Raw) (Event, bool) {
		switch r.Kind {
		case RawPointerMove, RawPointerDrag:
			return m.pointerEvent(KindPointerMove, r.Position), true
		case RawPointerDown:
			return m.pointerEvent(KindPointerClick, r.Position), true
		}
		return Event{}, false
	}, &initial)
}

func (m *Monitor) pointerEvent(kind Kind, p geom.Point) Event {
	ev := Event{Kind: kind, Position: p}
	if d, ok := geom.DisplayAt(m.tap.Displays(), p); ok {
		ev.Screen = d.Bounds
	}
	return ev
}

func (m *Monitor) start(ctx context.Context, mask Mask, name string, convert func(Raw) (Event, bool), first *Event) (<-chan Event, error) {
	out := make(chan Event, m.buffer)

	if !m.tap.Trusted(true) {
		m.log.Debug("%s stream: not trusted, ending empty", name)
		close(out)
		return out, nil
	}

	var (
		mu     sync.Mutex
		closed bool
	)
	send := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- ev:
		default:
			m.log.Debug("%s stream: consumer behind, dropping %s", name, ev.Kind)
		}
	}

	if first != nil {
		send(*first)
	}

	uninstall, err := m.tap.Install(mask, func(r Raw) {
		mu.Lock()
		ev, ok := convert(r)
		mu.Unlock()
		if ok {
			send(ev)
		}
	})
	if err != nil {
		close(out)
		return nil, errors.WrapWithCode(err, errors.ErrRegistration,
			"Failed to create "+name+" event tap",
			"Check that trayd has input monitoring access")
	}

	go func() {
		<-ctx.Done()
		uninstall()
		mu.Lock()
		closed = true
		close(out)
		mu.Unlock()
	}()
	return out, nil
}

// Poster hands work to the UI loop.
type Poster interface {
	Post(fn func()) bool
}

// WatchClicks installs a pointer-down tap whose positions are posted to
// fn on the UI loop, until ctx is done. Without permission it does
// nothing and returns nil.
func (m *Monitor) WatchClicks(ctx context.Context, poster Poster, fn func(geom.Point)) error {
	if !m.tap.Trusted(false) {
		m.log.Debug("click watcher: not trusted")
		return nil
	}
	uninstall, err := m.tap.Install(MaskPointerDown, func(r Raw) {
		if r.Kind != RawPointerDown {
			return
		}
		p := r.Position
		poster.Post(func() { fn(p) })
	})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRegistration, "Failed to create click watcher", "")
	}
	go func() {
		<-ctx.Done()
		uninstall()
	}()
	return nil
}

// Accessibility reports whether global monitoring is permitted, prompting
// the user when prompt is set.
func (m *Monitor) Accessibility(prompt bool) bool {
	return m.tap.Trusted(prompt)
}

// MovePointer moves the pointer by (dx, dy).
func (m *Monitor) MovePointer(dx, dy float64) error {
	if err := m.tap.MovePointer(dx, dy); err != nil {
		return errors.Wrap(err, "move pointer")
	}
	return nil
}
