// Package tray owns the ordered set of menu bar entries and reconciles it
// against the desired state pushed by the host.
package tray

import (
	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/item"
	"github.com/trayd/trayd/internal/logger"
	"github.com/trayd/trayd/internal/render"
)

// Entry is a live tray entry bound to one id. Only the registry mutates it.
type Entry struct {
	id      string
	handle  Handle
	spec    item.Spec
	payload render.Payload
	length  float64
}

// ID returns the entry's id.
func (e *Entry) ID() string { return e.id }

// Report summarises one Reconcile call.
type Report struct {
	// Recreated is true when the whole row was torn down and rebuilt.
	Recreated bool
	Created   []string
	Updated   []string
	Removed   []string
	Skipped   []item.Skip
}

// Options configures a Registry.
type Options struct {
	Render render.Options
	Logger logger.Logger
}

// Registry is the Status Item Registry. It is not safe for concurrent use;
// every call must come from the UI loop.
type Registry struct {
	platform Platform
	opts     render.Options
	log      logger.Logger

	entries map[string]*Entry
	order   []string
	onClick func(id string)
}

// New creates an empty registry over platform.
func New(platform Platform, opts Options) *Registry {
	return &Registry{
		platform: platform,
		opts:     opts.Render,
		log:      logger.OrNoop(opts.Logger),
		entries:  make(map[string]*Entry),
	}
}

// OnClick sets the dispatcher every entry's click is routed to. Entries
// created before the call pick it up as well.
func (r *Registry) OnClick(fn func(id string)) {
	r.onClick = fn
}

func (r *Registry) dispatch(id string) {
	if r.onClick != nil {
		r.onClick(id)
	}
}

// Reconcile moves the live row to batch. If batch holds any id that is not
// live yet, every entry is destroyed and recreated in an order that makes
// the final left-to-right row equal batch order. Otherwise entries missing
// from batch are removed and the rest are patched in place, keeping their
// platform handles.
func (r *Registry) Reconcile(batch item.Batch) Report {
	var rep Report

	desired := make(map[string]bool, len(batch.Items))
	hasNew := false
	for _, spec := range batch.Items {
		desired[spec.ID] = true
		if _, ok := r.entries[spec.ID]; !ok {
			hasNew = true
		}
	}

	if hasNew {
		rep.Recreated = true
		for _, id := range r.order {
			r.remove(id)
		}
		r.order = nil

		created := r.createAll(batch, &rep)
		r.order = created
		r.log.Debug("recreated %d entries", len(created))
		return rep
	}

	for _, id := range append([]string(nil), r.order...) {
		if !desired[id] {
			r.remove(id)
			rep.Removed = append(rep.Removed, id)
		}
	}

	order := make([]string, 0, len(batch.Items))
	for _, spec := range batch.Items {
		e := r.entries[spec.ID]
		if err := r.apply(e, spec, batch); err != nil {
			r.log.Warn("patch %s: %v", spec.ID, err)
			rep.Skipped = append(rep.Skipped, item.Skip{ID: spec.ID, Reason: errors.Summary(err)})
		} else {
			rep.Updated = append(rep.Updated, spec.ID)
		}
		order = append(order, spec.ID)
	}
	r.order = order
	return rep
}

// createAll creates batch's entries and returns the ids that made it, in
// batch order.
func (r *Registry) createAll(batch item.Batch, rep *Report) []string {
	n := len(batch.Items)
	indexes := make([]int, n)
	for i := range indexes {
		if r.platform.Placement() == PlacementPrepend {
			indexes[i] = n - 1 - i
		} else {
			indexes[i] = i
		}
	}

	ok := make([]bool, n)
	for _, i := range indexes {
		spec := batch.Items[i]
		id := spec.ID
		h, err := r.platform.Create(id, func() { r.dispatch(id) })
		if err != nil {
			r.log.Warn("create %s: %v", id, err)
			rep.Skipped = append(rep.Skipped, item.Skip{Index: i, ID: id, Reason: errors.Summary(err)})
			continue
		}
		e := &Entry{id: id, handle: h}
		r.entries[id] = e
		if err := r.apply(e, spec, batch); err != nil {
			r.log.Warn("render %s: %v", id, err)
		}
		rep.Created = append(rep.Created, id)
		ok[i] = true
	}

	var order []string
	for i, spec := range batch.Items {
		if ok[i] {
			order = append(order, spec.ID)
		}
	}
	return order
}

func (r *Registry) apply(e *Entry, spec item.Spec, batch item.Batch) error {
	payload, length := render.Build(spec, batch.FontSize, batch.FontWeight, r.opts)
	e.spec = spec
	e.payload = payload
	e.length = length
	return r.platform.Apply(e.handle, payload, length)
}

func (r *Registry) remove(id string) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	r.platform.Remove(e.handle)
	delete(r.entries, id)
}

// ClearAll removes every entry.
func (r *Registry) ClearAll() {
	for _, id := range r.order {
		r.remove(id)
	}
	r.order = nil
}

// SetTitle replaces the content of every live entry with a single centered
// line.
func (r *Registry) SetTitle(title string, fontSize float64, weight item.Weight) {
	p := render.Title(title, fontSize, weight)
	for _, id := range r.order {
		e := r.entries[id]
		e.payload = p
		if err := r.platform.Apply(e.handle, p, e.length); err != nil {
			r.log.Warn("title %s: %v", id, err)
		}
	}
}

// IDs returns live ids in left-to-right order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of live entries.
func (r *Registry) Len() int { return len(r.order) }

// Lookup returns the live entry for id.
func (r *Registry) Lookup(id string) (*Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Spec returns the spec the entry for id was last rendered from.
func (r *Registry) Spec(id string) (item.Spec, bool) {
	e, ok := r.entries[id]
	if !ok {
		return item.Spec{}, false
	}
	return e.spec, true
}

// Handle returns the platform handle for id.
func (r *Registry) Handle(id string) (Handle, bool) {
	e, ok := r.entries[id]
	if !ok {
		return 0, false
	}
	return e.handle, true
}

// Anchor returns the on-screen frame of the entry for id.
func (r *Registry) Anchor(id string) (geom.Rect, bool) {
	e, ok := r.entries[id]
	if !ok {
		return geom.Rect{}, false
	}
	return r.platform.Frame(e.handle)
}

// HitTest returns the id of the entry whose frame contains p.
func (r *Registry) HitTest(p geom.Point) (string, bool) {
	for _, id := range r.order {
		if f, ok := r.platform.Frame(r.entries[id].handle); ok && f.Contains(p) {
			return id, true
		}
	}
	return "", false
}
