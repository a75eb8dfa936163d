package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// roundedMask returns an alpha mask covering r with corner radius rad.
// When width > 0 only a stroke of that width along the edge is covered.
func roundedMask(r image.Rectangle, rad, width float64) *image.Alpha {
	m := image.NewAlpha(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			d := roundedDist(r, rad, px, py)
			if d > 0 {
				continue
			}
			if width > 0 && d < -width {
				continue
			}
			m.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	return m
}

// roundedDist is the signed distance from (px, py) to the rounded rect
// outline; negative inside.
func roundedDist(r image.Rectangle, rad, px, py float64) float64 {
	cx := (float64(r.Min.X) + float64(r.Max.X)) / 2
	cy := (float64(r.Min.Y) + float64(r.Max.Y)) / 2
	hw := float64(r.Dx())/2 - rad
	hh := float64(r.Dy())/2 - rad
	qx := math.Abs(px-cx) - hw
	qy := math.Abs(py-cy) - hh
	outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
	inside := math.Min(math.Max(qx, qy), 0)
	return outside + inside - rad
}

func fillRounded(dst draw.Image, r image.Rectangle, rad float64, src image.Image) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.DrawMask(dst, r, src, r.Min, roundedMask(r, rad, 0), r.Min, draw.Over)
}

func strokeRounded(dst draw.Image, r image.Rectangle, rad, width float64, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, roundedMask(r, rad, width), r.Min, draw.Over)
}

// radialGlow paints c fading from full strength at the center to clear at
// radius.
func radialGlow(dst draw.Image, center image.Point, radius int, c color.NRGBA) {
	r := image.Rect(center.X-radius, center.Y-radius, center.X+radius, center.Y+radius).Intersect(dst.Bounds())
	if r.Empty() || radius <= 0 {
		return
	}
	m := image.NewAlpha(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			d := math.Hypot(float64(x-center.X), float64(y-center.Y)) / float64(radius)
			if d >= 1 {
				continue
			}
			m.SetAlpha(x, y, color.Alpha{A: uint8(255 * (1 - d) * (1 - d))})
		}
	}
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, m, r.Min, draw.Over)
}

// hGradient is a horizontal two-stop gradient spanning r.
type hGradient struct {
	r        image.Rectangle
	from, to color.NRGBA
}

func (g hGradient) ColorModel() color.Model { return color.NRGBAModel }
func (g hGradient) Bounds() image.Rectangle { return g.r }
func (g hGradient) At(x, _ int) color.Color {
	t := 0.0
	if g.r.Dx() > 1 {
		t = float64(x-g.r.Min.X) / float64(g.r.Dx()-1)
	}
	t = math.Max(0, math.Min(1, t))
	lerp := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5) }
	return color.NRGBA{
		R: lerp(g.from.R, g.to.R),
		G: lerp(g.from.G, g.to.G),
		B: lerp(g.from.B, g.to.B),
		A: lerp(g.from.A, g.to.A),
	}
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Max(0, math.Min(1, a)) * 255)
	return c
}
