package tray

import (
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/render"
)

// Placement describes where a platform puts a newly created entry.
type Placement int

const (
	// PlacementPrepend: every new entry lands leftmost of this app's
	// entries (the macOS status bar). Inserting one entry into an existing
	// row therefore breaks the order, so the registry recreates the whole
	// row in reverse whenever an id is added.
	PlacementPrepend Placement = iota
	// PlacementAppend: new entries land rightmost (registration order).
	PlacementAppend
)

// Handle identifies one live tray entry on the platform.
type Handle uint64

// Platform is the OS tray. All methods are called from the UI loop.
type Platform interface {
	Placement() Placement
	// Create adds an entry. onClick must be invoked on every activation.
	Create(id string, onClick func()) (Handle, error)
	// Apply sets the entry's content and length (render.VariableLength
	// for content-sized entries).
	Apply(h Handle, p render.Payload, length float64) error
	Remove(h Handle)
	// Frame returns the entry's on-screen rectangle, if known.
	Frame(h Handle) (geom.Rect, bool)
}
