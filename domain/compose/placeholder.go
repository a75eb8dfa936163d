package compose

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/soocke/oshicam-go/domain/overlay"
)

// PlaceholderCaption is written on outputs made without a camera frame.
const PlaceholderCaption = "Oshi Camera"

var (
	placeholderTop    = color.RGBA{R: 0xfd, G: 0xe2, B: 0xf3, A: 0xff}
	placeholderBottom = color.RGBA{R: 0xe0, G: 0xe7, B: 0xff, A: 0xff}
	placeholderInk    = color.NRGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
)

// DrawPlaceholder fills dst with a vertical gradient and a centered caption.
// The output depends only on the bounds of dst.
func DrawPlaceholder(dst *image.RGBA) {
	b := dst.Bounds()
	h := b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y-b.Min.Y) / float64(h-1)
		}
		c := mix(placeholderTop, placeholderBottom, t)
		row := dst.Pix[dst.PixOffset(b.Min.X, y):dst.PixOffset(b.Max.X-1, y)+4]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
	px := min(b.Dx(), b.Dy()) / 18
	text := overlay.Text(PlaceholderCaption, px, placeholderInk)
	tb := text.Bounds()
	p := image.Pt(b.Min.X+(b.Dx()-tb.Dx())/2, b.Min.Y+(b.Dy()-tb.Dy())/2)
	draw.Draw(dst, image.Rectangle{Min: p, Max: p.Add(tb.Size())}, text, tb.Min, draw.Over)
}

func mix(a, b color.RGBA, t float64) color.RGBA {
	l := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5) }
	return color.RGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}
