package rgbapool

import (
	"image"
	"testing"
)

func TestGetSizesBuffer(t *testing.T) {
	var p Pool
	img := p.Get(image.Rect(2, 3, 6, 5))
	if len(img.Pix) != 32 || img.Stride != 16 || img.Rect != image.Rect(2, 3, 6, 5) {
		t.Fatalf("pix=%d stride=%d rect=%v", len(img.Pix), img.Stride, img.Rect)
	}
	if empty := p.Get(image.Rect(0, 0, 0, 4)); len(empty.Pix) != 0 {
		t.Fatalf("empty rect got pix=%d", len(empty.Pix))
	}
}

func TestGetZeroedClearsReusedBuffer(t *testing.T) {
	var p Pool
	a := p.Get(image.Rect(0, 0, 4, 4))
	for i := range a.Pix {
		a.Pix[i] = 9
	}
	p.Put(a)
	b := p.GetZeroed(image.Rect(0, 0, 2, 2))
	if len(b.Pix) != 16 || b.Stride != 8 {
		t.Fatalf("pix=%d stride=%d", len(b.Pix), b.Stride)
	}
	for _, v := range b.Pix {
		if v != 0 {
			t.Fatalf("buffer not cleared")
		}
	}
	p.Put(nil)
	p.Put(&image.RGBA{})
}
