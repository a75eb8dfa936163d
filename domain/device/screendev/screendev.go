// Package screendev exposes the desktop as a virtual camera. A screen has no
// facing direction, so it only satisfies loose and any-device candidates.
package screendev

import (
	"context"
	"errors"
	"image"

	"github.com/vova616/screenshot"

	"github.com/soocke/oshicam-go/domain/device"
)

var errNoFacing = errors.New("screendev: virtual camera has no facing")

type Backend struct{}

func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "screen" }

func (b *Backend) Open(ctx context.Context, c device.Constraint) (device.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.ExactFacing {
		return nil, errNoFacing
	}
	r, err := screenshot.ScreenRect()
	if err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, errors.New("screendev: empty screen")
	}
	return &handle{rect: r, facing: c.Facing}, nil
}

type handle struct {
	rect   image.Rectangle
	facing device.Facing
}

func (h *handle) Info() device.Info {
	return device.Info{Label: "Screen", Facing: h.facing, Width: h.rect.Dx(), Height: h.rect.Dy()}
}

func (h *handle) Capabilities() device.Capabilities { return device.Capabilities{} }

func (h *handle) Frame() (image.Image, error) { return screenshot.CaptureRect(h.rect) }

func (h *handle) Apply(context.Context, device.Setting) error { return device.ErrUnsupported }

func (h *handle) Close() error { return nil }
