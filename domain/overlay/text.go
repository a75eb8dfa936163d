package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Text rasterizes s with the built-in bitmap face and scales the
// result so that glyphs are roughly px pixels tall.
func Text(s string, px int, c color.Color) image.Image {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(s).Ceil()
	h := face.Metrics().Height.Ceil()
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}
	small := image.NewNRGBA(image.Rect(0, 0, w, h))
	d.Dst = small
	d.Src = image.NewUniform(c)
	d.Dot = fixed.P(0, face.Metrics().Ascent.Ceil())
	d.DrawString(s)
	if px <= h {
		return small
	}
	scale := float64(px) / float64(h)
	return imaging.Resize(small, int(float64(w)*scale), px, imaging.NearestNeighbor)
}

// drawText centers text at (cx, cy).
func drawText(dst draw.Image, cx, cy int, text image.Image) {
	b := text.Bounds()
	p := image.Pt(cx-b.Dx()/2, cy-b.Dy()/2)
	draw.Draw(dst, image.Rectangle{Min: p, Max: p.Add(b.Size())}, text, b.Min, draw.Over)
}

// pill draws a rounded label around text centered at (cx, cy).
func pill(dst draw.Image, cx, cy int, label string, px int, bg image.Image, fg color.Color) {
	text := Text(label, px, fg)
	b := text.Bounds()
	padX, padY := px*3/4, px/3
	r := image.Rect(cx-b.Dx()/2-padX, cy-b.Dy()/2-padY, cx+b.Dx()/2+padX, cy+b.Dy()/2+padY)
	if g, ok := bg.(hGradient); ok {
		g.r = r
		bg = g
	}
	fillRounded(dst, r, float64(r.Dy())/2, bg)
	drawText(dst, cx, cy, text)
}
