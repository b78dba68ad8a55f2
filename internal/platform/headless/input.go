package headless

import (
	"fmt"
	"sync"

	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/input"
)

// Screen is a fixed set of displays and a movable pointer. It serves as
// both popover.Pointer and input.Tap.
type Screen struct {
	mu       sync.Mutex
	displays []geom.Display
	location geom.Point

	trusted     bool
	failInstall bool
	prompts     int
	settings    int
	nextTap     int
	taps        map[int]tapHandler
}

type tapHandler struct {
	mask input.Mask
	fn   func(input.Raw)
}

// DefaultDisplays is one 1440x900 primary display.
func DefaultDisplays() []geom.Display {
	return []geom.Display{{ID: "main", Bounds: geom.R(0, 0, 1440, 900), Primary: true}}
}

// NewScreen creates a trusted screen with the pointer at the origin.
func NewScreen(displays []geom.Display) *Screen {
	return &Screen{displays: displays, trusted: true, taps: make(map[int]tapHandler)}
}

// SetTrusted grants or revokes input monitoring permission.
func (s *Screen) SetTrusted(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trusted = v
}

// SetFailInstall makes subsequent tap installs fail.
func (s *Screen) SetFailInstall(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failInstall = v
}

// MoveTo places the pointer at p without emitting an event.
func (s *Screen) MoveTo(p geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = p
}

// Prompts returns how many permission prompts were requested.
func (s *Screen) Prompts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompts
}

// Taps returns the number of installed taps.
func (s *Screen) Taps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.taps)
}

func (s *Screen) Location() geom.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

func (s *Screen) Displays() []geom.Display {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]geom.Display(nil), s.displays...)
}

func (s *Screen) Trusted(prompt bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prompt {
		s.prompts++
	}
	return s.trusted
}

func (s *Screen) Install(mask input.Mask, fn func(input.Raw)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInstall {
		return nil, fmt.Errorf("event tap unavailable")
	}
	s.nextTap++
	id := s.nextTap
	s.taps[id] = tapHandler{mask: mask, fn: fn}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.taps, id)
	}, nil
}

func (s *Screen) MovePointer(dx, dy float64) error {
	s.mu.Lock()
	s.location = geom.Point{X: s.location.X + dx, Y: s.location.Y + dy}
	p := s.location
	s.mu.Unlock()
	s.Inject(input.Raw{Kind: input.RawPointerMove, Position: p})
	return nil
}

func (s *Screen) OpenSettings() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings++
	return nil
}

// Inject delivers r to every installed tap whose mask selects it. Pointer
// events also move the pointer.
func (s *Screen) Inject(r input.Raw) {
	want := maskFor(r.Kind)
	s.mu.Lock()
	if want != input.MaskKeys {
		s.location = r.Position
	}
	var fns []func(input.Raw)
	for _, h := range s.taps {
		if h.mask&want != 0 {
			fns = append(fns, h.fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(r)
	}
}

// Click injects a pointer-down at p.
func (s *Screen) Click(p geom.Point) {
	s.Inject(input.Raw{Kind: input.RawPointerDown, Position: p})
}

func maskFor(k input.RawKind) input.Mask {
	switch k {
	case input.RawKeyDown, input.RawFlagsChanged:
		return input.MaskKeys
	case input.RawPointerDown:
		return input.MaskPointerDown
	default:
		return input.MaskPointer
	}
}
