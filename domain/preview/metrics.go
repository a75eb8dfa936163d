package preview

import (
	"image"
	"sync/atomic"
	"time"
)

// FrameSnapshot carries the latest sampled frame and metadata.
type FrameSnapshot struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Sequence   uint64
}

const (
	frameFree int32 = iota
	frameLeased
	frameRecycled
)

// frame is the internal holder. Once the image escapes to a consumer it is
// leased and its buffer is never recycled underneath it.
type frame struct {
	FrameSnapshot
	state atomic.Int32
}

// lease marks f as handed out. It fails only when f was already recycled.
func (f *frame) lease() bool {
	if f.state.CompareAndSwap(frameFree, frameLeased) {
		return true
	}
	return f.state.Load() == frameLeased
}

// reclaim claims f for recycling. It fails once f has been leased.
func (f *frame) reclaim() bool { return f.state.CompareAndSwap(frameFree, frameRecycled) }

// Stats summarises sampling loop behaviour for instrumentation.
type Stats struct {
	Samples        uint64
	Skipped        uint64
	Recycled       uint64
	AvgSample      time.Duration
	LastSample     time.Time
	LatestFrameAge time.Duration
	Sequence       uint64
}
