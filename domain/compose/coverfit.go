package compose

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Placement is where a source frame lands on the output.
type Placement struct {
	Scale   float64
	Width   float64 // scaled frame width
	Height  float64 // scaled frame height
	OffsetX float64 // left edge of the scaled frame, unmirrored
	OffsetY float64
}

// CoverFit computes the centered placement that makes a frameW×frameH source
// cover targetW×targetH, multiplied by a software zoom factor. The same
// placement is used for mirrored and unmirrored draws.
func CoverFit(frameW, frameH, targetW, targetH int, zoom float64) Placement {
	if frameW <= 0 || frameH <= 0 {
		return Placement{}
	}
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = 1
	}
	s := math.Max(float64(targetW)/float64(frameW), float64(targetH)/float64(frameH)) * zoom
	w, h := float64(frameW)*s, float64(frameH)*s
	return Placement{
		Scale:   s,
		Width:   w,
		Height:  h,
		OffsetX: (float64(targetW) - w) / 2,
		OffsetY: (float64(targetH) - h) / 2,
	}
}

// Affine returns the source-to-output matrix for p. srcMinX/srcMinY is the
// source bounds origin. When mirror is set the origin is translated to the
// output's right edge and flipped horizontally before the scaled draw.
func (p Placement) Affine(srcMinX, srcMinY, targetW int, mirror bool) f64.Aff3 {
	s := p.Scale
	tx := p.OffsetX - s*float64(srcMinX)
	ty := p.OffsetY - s*float64(srcMinY)
	if mirror {
		return f64.Aff3{
			-s, 0, float64(targetW) - tx,
			0, s, ty,
		}
	}
	return f64.Aff3{
		s, 0, tx,
		0, s, ty,
	}
}
