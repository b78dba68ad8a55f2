package headless

import (
	"sync"

	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/popover"
)

// PanelCall is one recorded Panels call.
type PanelCall struct {
	Op      string // show, update, hide
	Surface popover.Surface
	Frame   geom.Rect
	Content any
}

// Panels records popover presentation.
type Panels struct {
	mu      sync.Mutex
	calls   []PanelCall
	visible map[popover.Surface]PanelCall
}

// NewPanels creates an empty recorder.
func NewPanels() *Panels {
	return &Panels{visible: make(map[popover.Surface]PanelCall)}
}

func (p *Panels) Show(s popover.Surface, frame geom.Rect, content any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := PanelCall{Op: "show", Surface: s, Frame: frame, Content: content}
	p.calls = append(p.calls, c)
	p.visible[s] = c
}

func (p *Panels) Update(s popover.Surface, content any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := PanelCall{Op: "update", Surface: s, Content: content}
	p.calls = append(p.calls, c)
	if v, ok := p.visible[s]; ok {
		v.Content = content
		p.visible[s] = v
	}
}

func (p *Panels) Hide(s popover.Surface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, PanelCall{Op: "hide", Surface: s})
	delete(p.visible, s)
}

// Visible returns the surfaces currently shown.
func (p *Panels) Visible() []popover.Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []popover.Surface
	for _, s := range []popover.Surface{popover.SurfaceCalendar, popover.SurfaceItem, popover.SurfacePreview} {
		if _, ok := p.visible[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Current returns the latest show or update for a visible surface.
func (p *Panels) Current(s popover.Surface) (PanelCall, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.visible[s]
	return c, ok
}

// Calls returns every recorded call.
func (p *Panels) Calls() []PanelCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PanelCall(nil), p.calls...)
}

// Event is one notification sent to the host.
type Event struct {
	Channel string
	Name    string
	Args    map[string]any
}

// Notifier records host events and optionally forwards them.
type Notifier struct {
	mu      sync.Mutex
	events  []Event
	forward func(channel, event string, args map[string]any)
}

// NewNotifier creates a recorder. A non-nil forward also receives every
// event.
func NewNotifier(forward func(channel, event string, args map[string]any)) *Notifier {
	return &Notifier{forward: forward}
}

func (n *Notifier) Emit(channel, event string, args map[string]any) {
	n.mu.Lock()
	n.events = append(n.events, Event{Channel: channel, Name: event, Args: args})
	fwd := n.forward
	n.mu.Unlock()
	if fwd != nil {
		fwd(channel, event, args)
	}
}

// Events returns the recorded events.
func (n *Notifier) Events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.events...)
}

// Names returns the recorded event names in order.
func (n *Notifier) Names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, len(n.events))
	for i, e := range n.events {
		names[i] = e.Name
	}
	return names
}

// Count returns how many times event was emitted.
func (n *Notifier) Count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.Name == event {
			c++
		}
	}
	return c
}

// Reset clears the recorded events.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

// Window records main window control.
type Window struct {
	mu                  sync.Mutex
	Shows, Hides, Exits int
	onExit              func()
}

// NewWindow creates a recorder. onExit, if set, runs on Exit.
func NewWindow(onExit func()) *Window {
	return &Window{onExit: onExit}
}

func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Shows++
}

func (w *Window) Hide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Hides++
}

func (w *Window) Exit() {
	w.mu.Lock()
	w.Exits++
	fn := w.onExit
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Launcher records opened applications.
type Launcher struct {
	mu     sync.Mutex
	opened []string
}

func (l *Launcher) Open(app string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, app)
	return nil
}

// Opened returns the applications opened so far.
func (l *Launcher) Opened() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.opened...)
}
