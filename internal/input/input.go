// Package input turns raw global input callbacks into normalised key and
// pointer event streams. The OS event tap is behind the Tap interface;
// callbacks arrive on the tap's own thread and are handed to stream
// consumers through buffered channels.
package input

import (
	"github.com/trayd/trayd/internal/geom"
)

// Kind is the kind of a normalised event.
type Kind string

const (
	KindKey          Kind = "key"
	KindModifier     Kind = "modifierChange"
	KindPointerMove  Kind = "pointerMove"
	KindPointerClick Kind = "pointerClick"
)

// Event is one element of an input stream.
type Event struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label,omitempty"`

	Position geom.Point `json:"position"`
	// Screen is the bounds of the display containing Position.
	Screen geom.Rect `json:"screen"`
}

// Wire returns the payload sent to the host: the label string for key
// events and a flat map for pointer events.
func (e Event) Wire() any {
	switch e.Kind {
	case KindKey, KindModifier:
		return e.Label
	}
	typ := "move"
	if e.Kind == KindPointerClick {
		typ = "click"
	}
	return map[string]any{
		"type":         typ,
		"x":            e.Position.X,
		"y":            e.Position.Y,
		"screenMinX":   e.Screen.X,
		"screenMinY":   e.Screen.Y,
		"screenWidth":  e.Screen.Width,
		"screenHeight": e.Screen.Height,
	}
}

// RawKind is the kind of a raw tap callback.
type RawKind int

const (
	RawKeyDown RawKind = iota
	RawFlagsChanged
	RawPointerMove
	RawPointerDrag
	RawPointerDown
)

// Raw is an unprocessed tap callback.
type Raw struct {
	Kind     RawKind
	KeyCode  int
	Mods     Modifiers
	Position geom.Point
}

// Mask selects the raw events a tap delivers.
type Mask uint8

const (
	MaskKeys Mask = 1 << iota
	MaskPointer
	MaskPointerDown
)

// Tap is the OS global input facility.
type Tap interface {
	// Trusted reports whether global monitoring is permitted. With prompt
	// set the OS may ask the user.
	Trusted(prompt bool) bool
	// Install starts delivering raw events matching mask to fn, on a
	// thread of the tap's choosing.
	Install(mask Mask, fn func(Raw)) (uninstall func(), err error)
	Location() geom.Point
	Displays() []geom.Display
	// MovePointer moves the pointer by a relative offset.
	MovePointer(dx, dy float64) error
	// OpenSettings opens the OS accessibility permission page.
	OpenSettings() error
}
