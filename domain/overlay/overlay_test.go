package overlay

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestRegistry_OrderAndUnknown(t *testing.T) {
	r := NewRegistry(Sparkle(), Ribbon(), Neon())
	ids := r.IDs()
	want := []string{"sparkle", "ribbon", "neon"}
	if len(ids) != len(want) {
		t.Fatalf("ids=%v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids[%d]=%s want %s", i, ids[i], want[i])
		}
	}
	if r.First() != "sparkle" {
		t.Fatalf("first=%s", r.First())
	}
	if _, err := r.Get("nope"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
	r.Register(Ribbon())
	if len(r.IDs()) != 3 {
		t.Fatalf("re-register must not duplicate: %v", r.IDs())
	}
}

func TestVector_DrawsAtEveryAspect(t *testing.T) {
	sizes := map[string]image.Rectangle{
		"3x4":  image.Rect(0, 0, 900, 1200),
		"1x1":  image.Rect(0, 0, 900, 900),
		"16x9": image.Rect(0, 0, 1280, 720),
	}
	for _, o := range []Overlay{Sparkle(), Ribbon(), Neon()} {
		for key, rect := range sizes {
			dst := image.NewRGBA(rect)
			if err := o.Draw(dst, key); err != nil {
				t.Fatalf("%s %s: %v", o.ID(), key, err)
			}
			touched := false
			for i := 3; i < len(dst.Pix); i += 4 {
				if dst.Pix[i] != 0 {
					touched = true
					break
				}
			}
			if !touched {
				t.Fatalf("%s %s drew nothing", o.ID(), key)
			}
		}
	}
}

func TestImage_StretchesAndCaches(t *testing.T) {
	fsys := fstest.MapFS{
		AssetPath("stars", "1x1"): {Data: pngBytes(t, 10, 10, color.NRGBA{R: 255, A: 255})},
	}
	src, err := NewAssetSource(fsys, 4)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	o := NewImage("stars", src)
	dst := image.NewRGBA(image.Rect(0, 0, 90, 90))
	for i := 0; i < 2; i++ {
		if err := o.Draw(dst, "1x1"); err != nil {
			t.Fatalf("draw: %v", err)
		}
	}
	if src.Len() != 1 {
		t.Fatalf("expected one cached image, got %d", src.Len())
	}
	if c := dst.RGBAAt(89, 89); c.R != 255 || c.A != 255 {
		t.Fatalf("asset not stretched to corner: %v", c)
	}
}

func TestImage_MissingAspectFails(t *testing.T) {
	fsys := fstest.MapFS{
		AssetPath("stars", "1x1"): {Data: pngBytes(t, 4, 4, color.White)},
	}
	src, _ := NewAssetSource(fsys, 2)
	dst := image.NewRGBA(image.Rect(0, 0, 16, 9))
	if err := NewImage("stars", src).Draw(dst, "16x9"); err == nil {
		t.Fatalf("expected error for missing asset")
	}
}

func TestDefault_DiscoversImageOverlays(t *testing.T) {
	fsys := fstest.MapFS{
		"frames/stars_3x4.png":    {Data: pngBytes(t, 3, 4, color.White)},
		"frames/stars_1x1.png":    {Data: pngBytes(t, 1, 1, color.White)},
		"frames/polaroid_1x1.png": {Data: pngBytes(t, 1, 1, color.White)},
		"frames/readme.txt":       {Data: []byte("x")},
	}
	src, _ := NewAssetSource(fsys, 2)
	r := Default(src)
	ids := r.IDs()
	want := []string{"sparkle", "ribbon", "neon", "polaroid", "stars"}
	if len(ids) != len(want) {
		t.Fatalf("ids=%v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids=%v want %v", ids, want)
		}
	}
}
