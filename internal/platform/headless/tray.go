// Package headless provides in-memory platform backends. They record every
// call, lay out tray entries deterministically and let callers inject
// clicks and input, so the daemon can run without a desktop and tests can
// observe exactly what the core asked the OS to do.
package headless

import (
	"fmt"
	"sync"

	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/render"
	"github.com/trayd/trayd/internal/tray"
)

// Menu bar layout used for entry frames.
const (
	BarHeight   = 24
	RightInset  = 200
	EntryMargin = 8
	// CharWidth approximates the width of one character for content-sized
	// entries.
	CharWidth = 7
)

// Op is one recorded tray operation.
type Op struct {
	Kind   string // create, apply, remove
	ID     string
	Handle tray.Handle
}

func (o Op) String() string {
	return fmt.Sprintf("%s %s#%d", o.Kind, o.ID, o.Handle)
}

type trayEntry struct {
	id      string
	onClick func()
	payload render.Payload
	length  float64
}

// Tray is an in-memory tray.Platform.
type Tray struct {
	mu        sync.Mutex
	placement tray.Placement
	screen    geom.Rect

	next    tray.Handle
	row     []tray.Handle
	entries map[tray.Handle]*trayEntry
	ops     []Op
	failing map[string]bool
}

// NewTray creates a tray that places new entries per placement on a menu
// bar spanning screen's top edge.
func NewTray(placement tray.Placement, screen geom.Rect) *Tray {
	return &Tray{
		placement: placement,
		screen:    screen,
		entries:   make(map[tray.Handle]*trayEntry),
		failing:   make(map[string]bool),
	}
}

// FailCreate makes Create fail for id.
func (t *Tray) FailCreate(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failing[id] = true
}

func (t *Tray) Placement() tray.Placement { return t.placement }

func (t *Tray) Create(id string, onClick func()) (tray.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failing[id] {
		return 0, fmt.Errorf("create %s: refused", id)
	}
	t.next++
	h := t.next
	t.entries[h] = &trayEntry{id: id, onClick: onClick, length: render.VariableLength}
	if t.placement == tray.PlacementPrepend {
		t.row = append([]tray.Handle{h}, t.row...)
	} else {
		t.row = append(t.row, h)
	}
	t.ops = append(t.ops, Op{Kind: "create", ID: id, Handle: h})
	return h, nil
}

func (t *Tray) Apply(h tray.Handle, p render.Payload, length float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[h]
	if !ok {
		return fmt.Errorf("apply: unknown handle %d", h)
	}
	e.payload = p
	e.length = length
	t.ops = append(t.ops, Op{Kind: "apply", ID: e.id, Handle: h})
	return nil
}

func (t *Tray) Remove(h tray.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[h]
	if !ok {
		return
	}
	delete(t.entries, h)
	for i, rh := range t.row {
		if rh == h {
			t.row = append(t.row[:i], t.row[i+1:]...)
			break
		}
	}
	t.ops = append(t.ops, Op{Kind: "remove", ID: e.id, Handle: h})
}

// Frame lays the row out right-aligned against the menu bar's right inset.
func (t *Tray) Frame(h tray.Handle) (geom.Rect, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	right := t.screen.MaxX() - RightInset
	for i := len(t.row) - 1; i >= 0; i-- {
		e := t.entries[t.row[i]]
		w := entryWidth(e)
		right -= w
		if t.row[i] == h {
			return geom.R(right, t.screen.Y, w, BarHeight), true
		}
	}
	return geom.Rect{}, false
}

func entryWidth(e *trayEntry) float64 {
	if e.length > 0 {
		return e.length
	}
	n := 0
	for _, r := range e.payload.Rows {
		if l := len([]rune(r.Text)); l > n {
			n = l
		}
	}
	return float64(n*CharWidth + EntryMargin)
}

// Order returns the ids shown left to right.
func (t *Tray) Order() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.row))
	for _, h := range t.row {
		ids = append(ids, t.entries[h].id)
	}
	return ids
}

// Payload returns what the entry for id currently shows.
func (t *Tray) Payload(id string) (render.Payload, float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range t.row {
		if e := t.entries[h]; e.id == id {
			return e.payload, e.length, true
		}
	}
	return render.Payload{}, 0, false
}

// Click activates the entry for id as a user click would. It reports
// false when no such entry is shown.
func (t *Tray) Click(id string) bool {
	t.mu.Lock()
	var fn func()
	for _, h := range t.row {
		if e := t.entries[h]; e.id == id {
			fn = e.onClick
			break
		}
	}
	t.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Ops returns the recorded operations.
func (t *Tray) Ops() []Op {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Op(nil), t.ops...)
}

// ResetOps clears the operation log.
func (t *Tray) ResetOps() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops = nil
}
