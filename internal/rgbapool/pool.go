// Package rgbapool recycles RGBA buffers between frames of the same or
// smaller size.
package rgbapool

import (
	"image"
	"sync"
)

// Pool is safe for concurrent use. The zero value is ready.
type Pool struct {
	p sync.Pool // stores *image.RGBA
}

// Get returns an RGBA image covering rect. Pix length is exactly
// rect area * 4 and Stride is width*4. Contents are unspecified.
func (p *Pool) Get(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := p.p.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		return &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	}
	img.Stride = w * 4
	img.Rect = rect
	img.Pix = img.Pix[:needed]
	return img
}

// GetZeroed is Get with every pixel cleared to transparent black.
func (p *Pool) GetZeroed(rect image.Rectangle) *image.RGBA {
	img := p.Get(rect)
	clear(img.Pix)
	return img
}

// Put returns img to the pool. The caller must not touch img afterwards.
func (p *Pool) Put(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	p.p.Put(img)
}
