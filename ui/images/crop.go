package images

import (
	"errors"
	"image"
	"image/draw"
)

// CropAround cuts a w x h region centered at (cx, cy) in frame coordinates.
// The region is shifted to stay inside the frame, then clamped, and is at
// least 1x1. The result is always a fresh *image.RGBA at origin (0,0).
func CropAround(frame image.Image, cx, cy, w, h int) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	b := frame.Bounds()
	if b.Empty() {
		return nil, image.Rectangle{}, errors.New("empty frame")
	}
	w = clampInt(w, 1, b.Dx())
	h = clampInt(h, 1, b.Dy())
	x0 := clampInt(cx-w/2, b.Min.X, b.Max.X-w)
	y0 := clampInt(cy-h/2, b.Min.Y, b.Max.Y-h)
	roi := image.Rect(x0, y0, x0+w, y0+h)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), frame, roi.Min, draw.Src)
	return out, roi, nil
}

// CropCenter cuts the largest centered region of frame with the given aspect
// ratio (aw:ah).
func CropCenter(frame image.Image, aw, ah int) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	b := frame.Bounds()
	if aw <= 0 || ah <= 0 {
		aw, ah = b.Dx(), b.Dy()
	}
	w, h := b.Dx(), b.Dx()*ah/aw
	if h > b.Dy() {
		w, h = b.Dy()*aw/ah, b.Dy()
	}
	c := image.Pt((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2)
	return CropAround(frame, c.X, c.Y, w, h)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
