package view

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/soocke/oshicam-go/ui/model"
)

func TestConsoleView_WritesThrottledPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewfinder.png")
	v := NewConsoleView(path, nil)
	v.UpdatePreview(image.NewRGBA(image.Rect(0, 0, 8, 6)))
	// within the throttle window: ignored
	v.UpdatePreview(image.NewRGBA(image.Rect(0, 0, 2, 2)))

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("preview not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Fatalf("throttled write replaced the first preview: %v", b)
	}
}

func TestConsoleView_RecordsState(t *testing.T) {
	v := NewConsoleView("", nil)
	v.UpdatePreview(image.NewRGBA(image.Rect(0, 0, 1, 1))) // no path: no-op
	v.SetStateLabel("Smile")
	v.SetSession(model.SessionValues{Shots: 2})
	v.SetGallery([]image.Image{image.NewRGBA(image.Rect(0, 0, 1, 1))})
	if v.Label() != "Smile" || v.Session().Shots != 2 || v.Thumbnails() != 1 {
		t.Fatalf("label=%q session=%+v thumbs=%d", v.Label(), v.Session(), v.Thumbnails())
	}
}
