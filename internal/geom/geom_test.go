package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Contains(t *testing.T) {
	r := R(0, 0, 100, 50)

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{10, 10}, true},
		{"min corner", Point{0, 0}, true},
		{"max x edge", Point{100, 10}, false},
		{"max y edge", Point{10, 50}, false},
		{"left of", Point{-1, 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.p))
		})
	}
}

func TestRect_Below(t *testing.T) {
	anchor := R(200, 0, 40, 24)
	got := anchor.Below(Size{Width: 340, Height: 136}, 4)

	assert.Equal(t, R(50, 28, 340, 136), got)
	assert.InDelta(t, anchor.MidX(), got.MidX(), 0.0001)
}

func TestRect_ClampInto(t *testing.T) {
	screen := R(0, 0, 1440, 900)

	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"already inside", R(100, 100, 200, 200), R(100, 100, 200, 200)},
		{"off left", R(-50, 30, 200, 200), R(0, 30, 200, 200)},
		{"off right", R(1400, 30, 200, 200), R(1240, 30, 200, 200)},
		{"off bottom", R(100, 850, 200, 200), R(100, 700, 200, 200)},
		{"larger than screen", R(-10, -10, 2000, 1000), R(0, 0, 2000, 1000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.ClampInto(screen))
		})
	}
}

func TestRect_ClampIntoOffsetDisplay(t *testing.T) {
	second := R(1440, -200, 1920, 1080)
	got := R(3300, 0, 200, 100).ClampInto(second)
	assert.Equal(t, R(3160, 0, 200, 100), got)
}

func TestDisplayAt(t *testing.T) {
	main := Display{ID: "main", Bounds: R(0, 0, 1440, 900), Primary: true}
	side := Display{ID: "side", Bounds: R(1440, 0, 1920, 1080)}
	displays := []Display{side, main}

	tests := []struct {
		name string
		p    Point
		want string
	}{
		{"on main", Point{10, 10}, "main"},
		{"on side", Point{2000, 500}, "side"},
		{"seam belongs to side", Point{1440, 10}, "side"},
		{"below main falls back to primary", Point{100, 1000}, "main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := DisplayAt(displays, tt.p)
			assert.True(t, ok)
			assert.Equal(t, tt.want, d.ID)
		})
	}

	_, ok := DisplayAt(nil, Point{})
	assert.False(t, ok)

	d, ok := DisplayAt([]Display{side}, Point{-5, -5})
	assert.True(t, ok)
	assert.Equal(t, "side", d.ID, "first display when none is primary")
}
