// Package preview samples the live device into a private frame buffer for
// the viewfinder and the shutter grab.
package preview

import (
	"context"
	"image"
	"image/draw"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soocke/oshicam-go/internal/rgbapool"
)

const statsLogInterval = 5 * time.Second

// A frame is recycled only when it is replaced without ever having been
// handed out.
var framePool rgbapool.Pool

// DefaultInterval is the viewfinder sampling period (~30 fps).
const DefaultInterval = 33 * time.Millisecond

// Sampler reads one frame from the device. ok is false in placeholder mode.
type Sampler interface {
	LatestFrame() (image.Image, bool)
}

// Service copies device frames into pooled buffers on its own goroutine and
// exposes the newest one. Device handles may reuse their frame buffer, so
// consumers only ever see these copies.
type Service struct {
	src      Sampler
	interval time.Duration
	logger   *slog.Logger

	running     atomic.Bool
	cancel      atomic.Pointer[context.CancelFunc]
	latest      atomic.Pointer[frame]
	samples     atomic.Uint64
	skipped     atomic.Uint64
	recycled    atomic.Uint64
	sampleNanos atomic.Uint64
	sequence    atomic.Uint64
}

// NewService constructs a sampler over src. interval <= 0 uses DefaultInterval.
func NewService(src Sampler, interval time.Duration, logger *slog.Logger) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{src: src, interval: interval, logger: logger}
}

func (s *Service) Running() bool { return s.running.Load() }

func (s *Service) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel.Store(&cancel)
	go s.loop(ctx)
}

func (s *Service) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	if c := s.cancel.Swap(nil); c != nil {
		(*c)()
	}
}

// Snapshot returns the newest sampled frame, or the zero value. The image
// stays valid for as long as the caller holds it.
func (s *Service) Snapshot() FrameSnapshot {
	for {
		f := s.latest.Load()
		if f == nil {
			return FrameSnapshot{}
		}
		if f.lease() {
			return f.FrameSnapshot
		}
	}
}

// LatestFrame returns the newest sampled frame. When the loop is not running
// it samples the device once on the caller's goroutine.
func (s *Service) LatestFrame() (image.Image, bool) {
	if !s.running.Load() {
		if !s.sample() {
			return nil, false
		}
	}
	snap := s.Snapshot()
	if snap.Image == nil {
		return nil, false
	}
	return snap.Image, true
}

func (s *Service) Stats() Stats {
	samples := s.samples.Load()
	total := s.sampleNanos.Load()
	var avg time.Duration
	if samples > 0 && total > 0 {
		avg = time.Duration(total / samples)
	}
	var last time.Time
	var seq uint64
	if f := s.latest.Load(); f != nil {
		last, seq = f.CapturedAt, f.Sequence
	}
	age := time.Duration(0)
	if !last.IsZero() {
		age = time.Since(last)
	}
	return Stats{
		Samples:        samples,
		Skipped:        s.skipped.Load(),
		Recycled:       s.recycled.Load(),
		AvgSample:      avg,
		LastSample:     last,
		LatestFrameAge: age,
		Sequence:       seq,
	}
}

func (s *Service) loop(ctx context.Context) {
	tick := time.NewTicker(s.interval)
	defer tick.Stop()
	logTicker := time.NewTicker(statsLogInterval)
	defer logTicker.Stop()
	for {
		s.sample()
		select {
		case <-ctx.Done():
			return
		case <-logTicker.C:
			s.logStats()
		case <-tick.C:
		}
	}
}

// sample copies one device frame into a pooled buffer and publishes it.
func (s *Service) sample() bool {
	if s.src == nil {
		s.skipped.Add(1)
		return false
	}
	start := time.Now()
	img, ok := s.src.LatestFrame()
	if !ok || img == nil || img.Bounds().Empty() {
		s.skipped.Add(1)
		s.drop()
		return false
	}
	b := img.Bounds()
	dst := framePool.Get(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	s.sampleNanos.Add(uint64(time.Since(start).Nanoseconds()))
	s.samples.Add(1)
	next := &frame{FrameSnapshot: FrameSnapshot{Image: dst, CapturedAt: time.Now(), Sequence: s.sequence.Add(1)}}
	if prev := s.latest.Swap(next); prev != nil && prev.reclaim() {
		framePool.Put(prev.Image)
		s.recycled.Add(1)
	}
	return true
}

// drop unpublishes the last frame once the device stops delivering, so no
// consumer keeps seeing a camera that is gone.
func (s *Service) drop() {
	if prev := s.latest.Swap(nil); prev != nil && prev.reclaim() {
		framePool.Put(prev.Image)
		s.recycled.Add(1)
	}
}

func (s *Service) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("preview.stats",
		"samples", stats.Samples,
		"skipped", stats.Skipped,
		"recycled", stats.Recycled,
		"avg_sample", stats.AvgSample,
		"age", stats.LatestFrameAge,
	)
}
