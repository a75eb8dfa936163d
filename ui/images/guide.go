package images

import (
	"image"
	"image/color"
	"image/draw"
)

// GuideColor is the default rule-of-thirds line color.
var GuideColor = color.NRGBA{R: 255, G: 255, B: 255, A: 110}

// DrawGuide blends rule-of-thirds lines over dst. Line width scales with the
// shorter side so the guide stays visible on large canvases.
func DrawGuide(dst draw.Image, c color.Color) {
	if dst == nil {
		return
	}
	if c == nil {
		c = GuideColor
	}
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	lw := max(min(b.Dx(), b.Dy())/300, 1)
	src := image.NewUniform(c)
	for i := 1; i <= 2; i++ {
		x := b.Min.X + b.Dx()*i/3
		y := b.Min.Y + b.Dy()*i/3
		draw.Draw(dst, image.Rect(x-lw/2, b.Min.Y, x-lw/2+lw, b.Max.Y), src, image.Point{}, draw.Over)
		draw.Draw(dst, image.Rect(b.Min.X, y-lw/2, b.Max.X, y-lw/2+lw), src, image.Point{}, draw.Over)
	}
}
