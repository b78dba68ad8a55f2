// Package sni is a tray backend for Linux desktops implementing the
// StatusNotifierItem protocol over the D-Bus session bus. Each entry owns
// its own bus connection, so hosts list entries in registration order.
package sni

import (
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/logger"
	"github.com/trayd/trayd/internal/render"
	"github.com/trayd/trayd/internal/tray"
)

// IconHeight is the height entries are rasterised to.
const IconHeight = 22

// Poster hands clicks to the UI loop.
type Poster interface {
	Post(fn func()) bool
}

// Options configures a Tray.
type Options struct {
	// Connect opens a private session bus connection. Defaults to
	// dbus.ConnectSessionBus.
	Connect func() (*dbus.Conn, error)
	// Displays are reported to the popover coordinator. Defaults to one
	// 1920x1080 display.
	Displays []geom.Display
	Logger   logger.Logger
}

type entry struct {
	id   string
	conn *dbus.Conn
	obj  *itemObject
	// last activation point, the only geometry hosts reveal
	at      geom.Point
	clicked bool
}

// Tray implements tray.Platform and popover.Pointer.
type Tray struct {
	poster Poster
	opts   Options
	log    logger.Logger

	mu      sync.Mutex
	next    tray.Handle
	entries map[tray.Handle]*entry
	pointer geom.Point
}

// New creates an SNI tray posting clicks to poster.
func New(poster Poster, opts Options) *Tray {
	if opts.Connect == nil {
		opts.Connect = func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() }
	}
	if len(opts.Displays) == 0 {
		opts.Displays = []geom.Display{{ID: "main", Bounds: geom.R(0, 0, 1920, 1080), Primary: true}}
	}
	return &Tray{
		poster:  poster,
		opts:    opts,
		log:     logger.OrNoop(opts.Logger),
		entries: make(map[tray.Handle]*entry),
	}
}

func (t *Tray) Placement() tray.Placement { return tray.PlacementAppend }

func (t *Tray) Create(id string, onClick func()) (tray.Handle, error) {
	conn, err := t.opts.Connect()
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrUnavailable, "Cannot connect to the session bus", "Run inside a desktop session or use --backend headless")
	}

	t.mu.Lock()
	t.next++
	h := t.next
	e := &entry{id: id, conn: conn}
	t.entries[h] = e
	t.mu.Unlock()

	e.obj = &itemObject{id: id, onClick: func(x, y int32) {
		t.activated(h, geom.Point{X: float64(x), Y: float64(y)})
		t.poster.Post(onClick)
	}}

	if err := t.export(e); err != nil {
		t.Remove(h)
		return 0, err
	}
	return h, nil
}

func (t *Tray) export(e *entry) error {
	if err := e.conn.Export(e.obj, ItemPath, ItemInterface); err != nil {
		return errors.WrapWithCode(err, errors.ErrUnavailable, "Cannot export tray entry "+e.id, "")
	}
	props, err := prop.Export(e.conn, ItemPath, initialProps(e.id))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrUnavailable, "Cannot export tray entry properties", "")
	}
	e.obj.props = props
	if err := e.conn.Export(introspect.NewIntrospectable(&introspection), ItemPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return errors.WrapWithCode(err, errors.ErrUnavailable, "Cannot export introspection data", "")
	}

	names := e.conn.Names()
	if len(names) == 0 {
		return errors.New(errors.ErrUnavailable, "Session bus gave no unique name", "")
	}
	call := e.conn.Object(WatcherName, WatcherPath).Call(WatcherInterface+".RegisterStatusNotifierItem", 0, names[0])
	if call.Err != nil {
		return errors.WrapWithCode(call.Err, errors.ErrUnavailable,
			"No StatusNotifierWatcher on the session bus",
			"Enable a tray host (e.g. the AppIndicator extension) or use --backend headless")
	}
	return nil
}

// Apply rasterises p and publishes it as the entry's icon and title.
func (t *Tray) Apply(h tray.Handle, p render.Payload, length float64) error {
	e, ok := t.entry(h)
	if !ok {
		return errors.Newf(errors.ErrNotFound, "no tray entry #%d", h)
	}
	pix := PixmapFor(p)
	e.obj.mu.Lock()
	defer e.obj.mu.Unlock()
	if e.obj.props == nil {
		return nil
	}
	e.obj.props.SetMust(ItemInterface, "IconPixmap", []Pixmap{pix})
	e.obj.props.SetMust(ItemInterface, "Title", p.Text())
	_ = e.conn.Emit(ItemPath, ItemInterface+".NewIcon")
	_ = e.conn.Emit(ItemPath, ItemInterface+".NewTitle")
	return nil
}

// Remove drops the entry's bus connection; the watcher unregisters it
// when the name vanishes.
func (t *Tray) Remove(h tray.Handle) {
	t.mu.Lock()
	e, ok := t.entries[h]
	delete(t.entries, h)
	t.mu.Unlock()
	if ok && e.conn != nil {
		if err := e.conn.Close(); err != nil {
			t.log.Debug("close %s: %v", e.id, err)
		}
	}
}

// Frame is known only after the entry has been clicked: hosts pass the
// click position, which is used as a point-sized anchor.
func (t *Tray) Frame(h tray.Handle) (geom.Rect, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[h]
	if !ok || !e.clicked {
		return geom.Rect{}, false
	}
	return geom.Rect{X: e.at.X, Y: e.at.Y}, true
}

// Location returns the last activation point.
func (t *Tray) Location() geom.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pointer
}

func (t *Tray) Displays() []geom.Display { return t.opts.Displays }

func (t *Tray) activated(h tray.Handle, p geom.Point) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pointer = p
	if e, ok := t.entries[h]; ok {
		e.at = p
		e.clicked = true
	}
}

func (t *Tray) entry(h tray.Handle) (*entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[h]
	return e, ok
}

// PixmapFor rasterises p at IconHeight.
func PixmapFor(p render.Payload) Pixmap {
	w, h, data := render.ARGB32(render.Rasterize(p, IconHeight))
	return Pixmap{Width: w, Height: h, Data: data}
}
