// Package geom holds the screen geometry shared by the tray, popover and
// input packages. Coordinates are in points with the origin at the top-left
// of the primary display and y growing downward.
package geom

import "math"

// Point is a screen coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// R is shorthand for building a Rect.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func (r Rect) MinX() float64 { return r.X }
func (r Rect) MinY() float64 { return r.Y }
func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MaxY() float64 { return r.Y + r.Height }
func (r Rect) MidX() float64 { return r.X + r.Width/2 }
func (r Rect) MidY() float64 { return r.Y + r.Height/2 }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r. The minimum edges are
// inclusive and the maximum edges exclusive, so adjacent displays never
// both claim a point on their shared seam.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// Below returns a rectangle of size s centered horizontally under r,
// separated from it by gap.
func (r Rect) Below(s Size, gap float64) Rect {
	return Rect{
		X:      r.MidX() - s.Width/2,
		Y:      r.MaxY() + gap,
		Width:  s.Width,
		Height: s.Height,
	}
}

// ClampInto moves r the minimum distance needed to lie fully inside
// bounds. When r is larger than bounds it is aligned to bounds' minimum edge.
func (r Rect) ClampInto(bounds Rect) Rect {
	out := r
	out.X = clampAxis(r.X, r.Width, bounds.X, bounds.Width)
	out.Y = clampAxis(r.Y, r.Height, bounds.Y, bounds.Height)
	return out
}

func clampAxis(pos, length, min, span float64) float64 {
	max := min + span - length
	if max < min {
		return min
	}
	return math.Max(min, math.Min(pos, max))
}

// Display is one attached screen.
type Display struct {
	ID      string `json:"id"`
	Bounds  Rect   `json:"bounds"`
	Primary bool   `json:"primary"`
}

// DisplayAt returns the display containing p. When no display contains the
// point (seams, or a stale pointer position) the primary display is
// returned; when none is marked primary the first display is used. ok is
// false only when displays is empty.
func DisplayAt(displays []Display, p Point) (Display, bool) {
	for _, d := range displays {
		if d.Bounds.Contains(p) {
			return d, true
		}
	}
	for _, d := range displays {
		if d.Primary {
			return d, true
		}
	}
	if len(displays) > 0 {
		return displays[0], true
	}
	return Display{}, false
}
