package preview

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// reusingSampler hands out the same buffer every time, like device handles do.
type reusingSampler struct {
	mu  sync.Mutex
	buf *image.RGBA
	n   uint8
}

func (r *reusingSampler) LatestFrame() (image.Image, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	r.buf.SetRGBA(r.buf.Rect.Min.X, r.buf.Rect.Min.Y, color.RGBA{R: r.n, A: 255})
	return r.buf, true
}

type emptySampler struct{}

func (emptySampler) LatestFrame() (image.Image, bool) { return nil, false }

func TestService_CopiesDeviceFrames(t *testing.T) {
	src := &reusingSampler{buf: image.NewRGBA(image.Rect(10, 10, 14, 13))}
	s := NewService(src, time.Millisecond, nil)
	img, ok := s.LatestFrame()
	if !ok {
		t.Fatalf("expected frame")
	}
	rgba := img.(*image.RGBA)
	if rgba.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("copy bounds=%v", rgba.Bounds())
	}
	first := rgba.RGBAAt(0, 0).R
	src.LatestFrame()
	if rgba.RGBAAt(0, 0).R != first {
		t.Fatalf("leased frame changed when the device buffer was reused")
	}
}

func TestService_RecyclesOnlyUnleasedFrames(t *testing.T) {
	src := &reusingSampler{buf: image.NewRGBA(image.Rect(0, 0, 2, 2))}
	s := NewService(src, time.Millisecond, nil)
	s.sample()
	s.sample()
	if got := s.Stats().Recycled; got != 1 {
		t.Fatalf("recycled=%d want 1", got)
	}
	snap := s.Snapshot()
	s.sample()
	if got := s.Stats().Recycled; got != 1 {
		t.Fatalf("leased frame was recycled (recycled=%d)", got)
	}
	if snap.Sequence != 2 || s.Stats().Sequence != 3 {
		t.Fatalf("sequence snap=%d latest=%d", snap.Sequence, s.Stats().Sequence)
	}
}

func TestService_StartStop(t *testing.T) {
	src := &reusingSampler{buf: image.NewRGBA(image.Rect(0, 0, 2, 2))}
	s := NewService(src, time.Millisecond, nil)
	s.Start(context.Background())
	s.Start(context.Background())
	deadline := time.Now().Add(time.Second)
	for s.Stats().Samples < 3 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if s.Stats().Samples < 3 {
		t.Fatalf("loop did not sample")
	}
	s.Stop()
	s.Stop()
	if s.Running() {
		t.Fatalf("still running after Stop")
	}
}

func TestService_PlaceholderMode(t *testing.T) {
	s := NewService(emptySampler{}, 0, nil)
	if _, ok := s.LatestFrame(); ok {
		t.Fatalf("expected no frame")
	}
	if s.Stats().Skipped != 1 {
		t.Fatalf("skipped=%d", s.Stats().Skipped)
	}
	if _, ok := NewService(nil, 0, nil).LatestFrame(); ok {
		t.Fatalf("nil sampler must yield no frame")
	}
}

// switchSampler delivers frames until it is turned off.
type switchSampler struct {
	off atomic.Bool
	buf *image.RGBA
}

func (s *switchSampler) LatestFrame() (image.Image, bool) {
	if s.off.Load() {
		return nil, false
	}
	return s.buf, true
}

func TestService_DropsFrameWhenDeviceGoesAway(t *testing.T) {
	src := &switchSampler{buf: image.NewRGBA(image.Rect(0, 0, 2, 2))}
	s := NewService(src, time.Millisecond, nil)
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { _, ok := s.LatestFrame(); return ok })
	src.off.Store(true)
	waitFor(t, func() bool { _, ok := s.LatestFrame(); return !ok })
	if snap := s.Snapshot(); snap.Image != nil {
		t.Fatalf("snapshot still holds frame %d after the device went away", snap.Sequence)
	}

	src.off.Store(false)
	waitFor(t, func() bool { _, ok := s.LatestFrame(); return ok })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within 1s")
}
