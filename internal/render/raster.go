package render

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	// Frame formats accepted by DecodeFrame besides png, gif and jpeg.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/item"
)

const rowPadding = 2

// Rasterize draws p into an image height pixels tall, for trays that only
// accept icons. Text is drawn with a fixed bitmap face at its natural size
// and then scaled, so font sizes only affect relative row heights.
func Rasterize(p Payload, height int) image.Image {
	if height <= 0 {
		height = batteryHeight
	}
	if p.Layout == LayoutBitmap && p.Image != nil {
		if p.Image.Bounds().Dy() == height {
			return p.Image
		}
		return imaging.Resize(p.Image, 0, height, imaging.Lanczos)
	}

	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	width := 1
	for _, r := range p.Rows {
		if w := font.MeasureString(face, r.Text).Ceil(); w > width {
			width = w
		}
	}
	natural := imaging.New(width+rowPadding*2, lineH*max(len(p.Rows), 1), color.Transparent)

	d := &font.Drawer{Dst: natural, Src: image.NewUniform(color.White), Face: face}
	for i, r := range p.Rows {
		w := font.MeasureString(face, r.Text).Ceil()
		x := rowPadding
		switch p.Alignment {
		case item.AlignCenter:
			x = rowPadding + (width-w)/2
		case item.AlignRight:
			x = rowPadding + width - w
		}
		d.Dot = fixed.P(x, i*lineH+face.Ascent)
		d.DrawString(r.Text)
		if r.Weight >= item.WeightSemibold {
			// Fake bold: overdraw one pixel to the right.
			d.Dot = fixed.P(x+1, i*lineH+face.Ascent)
			d.DrawString(r.Text)
		}
	}
	return imaging.Resize(natural, 0, height, imaging.Box)
}

// DecodeFrame decodes an encoded preview frame. When width and height are
// positive and differ from the decoded size, the frame is scaled to fit.
func DecodeFrame(data []byte, width, height int) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.InvalidArgs("imageData is empty")
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrInvalidArgs, "imageData is not a decodable image", "")
	}
	b := img.Bounds()
	if width > 0 && height > 0 && (b.Dx() != width || b.Dy() != height) {
		return imaging.Fit(img, width, height, imaging.Lanczos), nil
	}
	return img, nil
}

// ARGB32 encodes img as big-endian ARGB rows, the StatusNotifierItem
// IconPixmap format.
func ARGB32(img image.Image) (int32, int32, []byte) {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := nrgba.PixOffset(x, y)
			px := nrgba.Pix[i : i+4]
			out = append(out, px[3], px[0], px[1], px[2])
		}
	}
	return int32(b.Dx()), int32(b.Dy()), out
}
