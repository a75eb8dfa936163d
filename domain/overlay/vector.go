package overlay

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	white   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	pink    = color.NRGBA{R: 0xf4, G: 0x72, B: 0xb6, A: 255}
	blush   = color.NRGBA{R: 0xf9, G: 0xa8, B: 0xd4, A: 255}
	cyan    = color.NRGBA{R: 0x22, G: 0xd3, B: 0xee, A: 255}
	magenta = color.NRGBA{R: 0xd9, G: 0x46, B: 0xef, A: 255}
	ink     = color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 255}
)

// unit is one hundredth of the shorter output side; vector frames are laid
// out in units so they look the same at every aspect.
func unit(b image.Rectangle) float64 {
	s := b.Dx()
	if b.Dy() < s {
		s = b.Dy()
	}
	return float64(s) / 100
}

func inset(b image.Rectangle, n float64) image.Rectangle {
	return b.Inset(int(n))
}

// Vector is an overlay drawn procedurally; it never fails and ignores the
// aspect key.
type Vector struct {
	id   string
	draw func(dst draw.Image)
}

func (v Vector) ID() string { return v.id }

func (v Vector) Draw(dst draw.Image, _ string) error {
	v.draw(dst)
	return nil
}

// Sparkle is a thin white border with soft glows in each corner.
func Sparkle() Vector { return Vector{id: "sparkle", draw: drawSparkle} }

// Ribbon is a pink border with a caption pill on top and a tag at the
// bottom right.
func Ribbon() Vector { return Vector{id: "ribbon", draw: drawRibbon} }

// Neon is a layered cyan glow border with a gradient caption.
func Neon() Vector { return Vector{id: "neon", draw: drawNeon} }

func drawSparkle(dst draw.Image) {
	b := dst.Bounds()
	u := unit(b)
	strokeRounded(dst, inset(b, 2*u), 4*u, 1.5*u, withAlpha(white, 0.7))
	r := int(8 * u)
	off := int(3*u) + r
	for _, p := range []image.Point{
		{b.Min.X + off, b.Min.Y + off},
		{b.Max.X - off, b.Min.Y + off},
		{b.Min.X + off, b.Max.Y - off},
		{b.Max.X - off, b.Max.Y - off},
	} {
		radialGlow(dst, p, r, withAlpha(white, 0.9))
	}
}

func drawRibbon(dst draw.Image) {
	b := dst.Bounds()
	u := unit(b)
	strokeRounded(dst, inset(b, 3*u), 6*u, 2*u, withAlpha(blush, 0.8))
	px := int(4 * u)
	cx := (b.Min.X + b.Max.X) / 2
	pill(dst, cx, b.Min.Y+int(9*u), "With <3 from Oshi", px, image.NewUniform(pink), white)
	tag := Text("#Today", px, ink)
	tx := b.Max.X - int(8*u) - tag.Bounds().Dx()/2
	pill(dst, tx, b.Max.Y-int(9*u), "#Today", px, image.NewUniform(withAlpha(white, 0.85)), ink)
}

func drawNeon(dst draw.Image) {
	b := dst.Bounds()
	u := unit(b)
	for i, a := range []float64{0.15, 0.3, 0.6, 0.9} {
		w := (4 - float64(i)) * 0.8 * u
		strokeRounded(dst, inset(b, 4*u-w/2), 5*u, w, withAlpha(cyan, a))
	}
	cx := (b.Min.X + b.Max.X) / 2
	pill(dst, cx, b.Max.Y-int(10*u), "Oshi Camera", int(4.5*u),
		hGradient{from: withAlpha(cyan, 0.9), to: withAlpha(magenta, 0.9)}, white)
}
