// Package render turns item specs into tray payloads: two stacked text
// rows, a single line, or a bitmap. Platform backends decide how to show a
// payload; text-only trays rasterise it with Rasterize.
package render

import (
	"image"

	"github.com/trayd/trayd/internal/item"
)

// VariableLength asks the tray to size an entry to its content.
const VariableLength = -1

// SystemTimeFontSize is the size of the single-line system time entry.
const SystemTimeFontSize = 13

// Layout identifies a payload shape.
type Layout int

const (
	LayoutTwoRow Layout = iota
	LayoutSingleLine
	LayoutBitmap
)

func (l Layout) String() string {
	switch l {
	case LayoutSingleLine:
		return "single-line"
	case LayoutBitmap:
		return "bitmap"
	default:
		return "two-row"
	}
}

// Row is one line of text with its style.
type Row struct {
	Text      string
	FontSize  float64
	Weight    item.Weight
	MonoDigit bool
}

// Payload is what a tray entry displays.
type Payload struct {
	Layout    Layout
	Rows      []Row
	Alignment item.Alignment
	Image     image.Image
}

// Text returns the rows joined by a newline, the fallback representation
// for trays that only take a tooltip or title string.
func (p Payload) Text() string {
	switch len(p.Rows) {
	case 0:
		return ""
	case 1:
		return p.Rows[0].Text
	}
	s := p.Rows[0].Text
	for _, r := range p.Rows[1:] {
		s += "\n" + r.Text
	}
	return s
}

// Options carries batch-independent rendering settings.
type Options struct {
	// BatteryWidth is the battery entry length when no fixed width is set.
	BatteryWidth float64
}

// Build renders spec using the batch-wide font settings. It returns the
// payload and the entry length (VariableLength when not fixed).
func Build(spec item.Spec, fontSize float64, weight item.Weight, opts Options) (Payload, float64) {
	length := float64(VariableLength)
	if spec.FixedWidth > 0 {
		length = spec.FixedWidth
	}

	switch {
	case spec.Kind == item.KindBattery && spec.HasBattery:
		w := opts.BatteryWidth
		if spec.FixedWidth > 0 {
			w = spec.FixedWidth
		}
		if w <= 0 {
			w = 38
		}
		img := Battery(spec.Battery.Level, spec.Battery.Charging, int(w+0.5))
		return Payload{Layout: LayoutBitmap, Image: img, Alignment: item.AlignCenter}, w

	case spec.Kind == item.KindSystemTime:
		return Payload{
			Layout:    LayoutSingleLine,
			Alignment: spec.Alignment,
			Rows: []Row{{
				Text:      spec.Top + " " + spec.Bottom,
				FontSize:  SystemTimeFontSize,
				Weight:    item.WeightMedium,
				MonoDigit: true,
			}},
		}, length
	}

	top := fontSize
	if spec.TopFontSize > 0 {
		top = spec.TopFontSize
	}
	bottom := fontSize
	if spec.BottomFontSize > 0 {
		bottom = spec.BottomFontSize
	}
	return Payload{
		Layout:    LayoutTwoRow,
		Alignment: spec.Alignment,
		Rows: []Row{
			{Text: spec.Top, FontSize: top, Weight: weight},
			{Text: spec.Bottom, FontSize: bottom, Weight: weight},
		},
	}, length
}

// Title renders a setAttributedTitle call.
func Title(title string, fontSize float64, weight item.Weight) Payload {
	return Payload{
		Layout:    LayoutSingleLine,
		Alignment: item.AlignCenter,
		Rows:      []Row{{Text: title, FontSize: fontSize, Weight: weight}},
	}
}
