package render

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Battery glyph geometry in points at 1x.
const (
	batteryHeight    = 22
	bodyWidth        = 26
	bodyHeight       = 12
	tipWidth         = 2
	tipHeight        = 5
	boltSpace        = 10
	levelInset       = 2
	chargingBoltSize = 12
)

// Battery draws the battery glyph: an outlined body with a terminal nub,
// filled proportionally to level, the level printed inside and a bolt to
// the left while charging. The image is width x 22.
func Battery(level int, charging bool, width int) *image.NRGBA {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	if width < bodyWidth+tipWidth {
		width = bodyWidth + tipWidth
	}

	img := imaging.New(width, batteryHeight, color.Transparent)
	white := image.NewUniform(color.White)

	extra := 0
	if charging {
		extra = boltSpace
	}
	x0 := (width - bodyWidth - tipWidth + extra) / 2
	y0 := (batteryHeight - bodyHeight) / 2

	strokeRect(img, image.Rect(x0, y0, x0+bodyWidth, y0+bodyHeight), color.White)

	tipY := y0 + (bodyHeight-tipHeight)/2
	draw.Draw(img, image.Rect(x0+bodyWidth, tipY, x0+bodyWidth+tipWidth, tipY+tipHeight), white, image.Point{}, draw.Over)

	fill := (bodyWidth - levelInset*2) * level / 100
	if fill > 0 {
		draw.Draw(img, image.Rect(x0+levelInset, y0+levelInset, x0+levelInset+fill, y0+bodyHeight-levelInset), white, image.Point{}, draw.Over)
	}

	if charging {
		img = imaging.Overlay(img, bolt(), image.Pt(x0-boltSpace+1, (batteryHeight-chargingBoltSize)/2), 1.0)
	}

	drawLevel(img, strconv.Itoa(level), x0, y0)
	return img
}

// drawLevel prints the level centered in the body: white outline first,
// then black text on top so it reads on both filled and empty parts.
func drawLevel(img draw.Image, text string, x0, y0 int) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Face: face}
	w := d.MeasureString(text).Ceil()
	x := x0 + (bodyWidth-w)/2
	// basicfont ascent is 11 of 13; baseline sits so the digits are centred.
	y := y0 + (bodyHeight+face.Ascent-3)/2

	d.Src = image.NewUniform(color.White)
	for _, off := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		d.Dot = fixed.P(x+off[0], y+off[1])
		d.DrawString(text)
	}
	d.Src = image.NewUniform(color.Black)
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

func strokeRect(img draw.Image, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// bolt draws a lightning bolt as a filled polygon.
func bolt() *image.NRGBA {
	img := imaging.New(chargingBoltSize/2+2, chargingBoltSize, color.Transparent)
	poly := []fpt{{4.5, 0}, {0.5, 6.5}, {2.5, 6.5}, {1.5, 12}, {5.5, 5.5}, {3.5, 5.5}}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if inside(poly, float64(x)+0.5, float64(y)+0.5) {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

type fpt struct{ x, y float64 }

// inside is the even-odd point-in-polygon test.
func inside(poly []fpt, x, y float64) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.y > y) != (b.y > y) && x < (b.x-a.x)*(y-a.y)/(b.y-a.y)+a.x {
			in = !in
		}
	}
	return in
}
