// Package gocvdev opens capture handles through OpenCV. It is the only
// backend that reports hardware zoom, focus and exposure controls.
package gocvdev

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/soocke/oshicam-go/domain/device"
)

// maxProbeIndex bounds the any-device scan, as most hosts expose fewer.
const maxProbeIndex = 5

// Backend maps facing to device indices: the built-in camera (index
// FrontIndex) is front facing, the next index is treated as back facing.
type Backend struct {
	FrontIndex int
	// ZoomSpan multiplies the probed base zoom to form the reported range.
	ZoomSpan float64
}

func New(frontIndex int) *Backend { return &Backend{FrontIndex: frontIndex, ZoomSpan: 4} }

func (b *Backend) Name() string { return "gocv" }

func (b *Backend) Open(ctx context.Context, c device.Constraint) (device.Handle, error) {
	var indices []int
	switch {
	case c.AnyDevice:
		for i := 0; i < maxProbeIndex; i++ {
			indices = append(indices, i)
		}
	case c.ExactFacing:
		indices = []int{b.indexFor(c.Facing)}
	default:
		indices = []int{b.indexFor(c.Facing), b.indexFor(c.Facing.Opposite())}
	}
	var errs []error
	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, err := b.openIndex(idx, c)
		if err == nil {
			return h, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

func (b *Backend) indexFor(f device.Facing) int {
	if f == device.FacingBack {
		return b.FrontIndex + 1
	}
	return b.FrontIndex
}

func (b *Backend) openIndex(idx int, c device.Constraint) (*handle, error) {
	vc, err := gocv.OpenVideoCapture(idx)
	if err != nil {
		return nil, fmt.Errorf("gocvdev: open %d: %w", idx, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("gocvdev: camera %d is not open", idx)
	}
	if c.Width > 0 && c.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(c.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(c.Height))
	}
	facing := c.Facing
	if c.AnyDevice {
		facing = device.FacingFront
		if idx != b.FrontIndex {
			facing = device.FacingBack
		}
	}
	h := &handle{
		vc:     vc,
		mat:    gocv.NewMat(),
		label:  fmt.Sprintf("Camera %d", idx),
		facing: facing,
		width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
	}
	if c.Width > 0 && c.ExactFacing && (h.width != c.Width || h.height != c.Height) {
		_ = h.Close()
		return nil, fmt.Errorf("gocvdev: camera %d resolution %dx%d, want %dx%d", idx, h.width, h.height, c.Width, c.Height)
	}
	h.caps = probe(vc, b.ZoomSpan)
	return h, nil
}

// probe derives typed capabilities once. A property counts as supported when
// the driver reports it and accepts a write.
func probe(vc *gocv.VideoCapture, span float64) device.Capabilities {
	var caps device.Capabilities
	if z := vc.Get(gocv.VideoCaptureZoom); z > 0 {
		vc.Set(gocv.VideoCaptureZoom, z)
		if vc.Get(gocv.VideoCaptureZoom) == z {
			if span < 1 {
				span = 1
			}
			caps.Zoom = &device.Range{Min: z, Max: z * span}
		}
	}
	if vc.Get(gocv.VideoCaptureAutoFocus) >= 0 {
		caps.FocusModes = []string{"continuous", "manual"}
	}
	if vc.Get(gocv.VideoCaptureAutoExposure) >= 0 {
		caps.ExposureModes = []string{"continuous", "manual"}
	}
	return caps
}

type handle struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	label  string
	facing device.Facing
	width  int
	height int
	caps   device.Capabilities
}

func (h *handle) Info() device.Info {
	return device.Info{Label: h.label, Facing: h.facing, Width: h.width, Height: h.height}
}

func (h *handle) Capabilities() device.Capabilities { return h.caps }

func (h *handle) Frame() (image.Image, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ok := h.vc.Read(&h.mat); !ok || h.mat.Empty() {
		return nil, errors.New("gocvdev: empty frame")
	}
	return h.mat.ToImage()
}

func (h *handle) Apply(_ context.Context, s device.Setting) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.Torch != nil || s.PointOfInterest != nil {
		return device.ErrUnsupported
	}
	if s.Zoom != nil {
		if h.caps.Zoom == nil {
			return device.ErrUnsupported
		}
		want := h.caps.Zoom.Clamp(*s.Zoom)
		h.vc.Set(gocv.VideoCaptureZoom, want)
		if got := h.vc.Get(gocv.VideoCaptureZoom); got != want {
			return fmt.Errorf("gocvdev: zoom %.2f not applied (driver reports %.2f)", want, got)
		}
	}
	if s.FocusMode != "" {
		auto := 0.0
		if s.FocusMode == "continuous" {
			auto = 1
		}
		h.vc.Set(gocv.VideoCaptureAutoFocus, auto)
	}
	return nil
}

func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.mat.Close()
	return h.vc.Close()
}
