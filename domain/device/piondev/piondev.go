// Package piondev opens capture handles through pion/mediadevices, which
// mirrors the browser getUserMedia constraint model.
package piondev

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/io/video"
	"github.com/pion/mediadevices/pkg/prop"

	"github.com/soocke/oshicam-go/domain/device"
)

// Backend resolves constraints against enumerated video inputs.
type Backend struct{}

func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "pion" }

func (b *Backend) Open(ctx context.Context, c device.Constraint) (device.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, label, err := pick(c)
	if err != nil {
		return nil, err
	}
	stream, err := mediadevices.GetUserMedia(mediadevices.MediaStreamConstraints{
		Video: func(tc *mediadevices.MediaTrackConstraints) {
			if id != "" {
				tc.DeviceID = prop.String(id)
			}
			if c.Width > 0 && c.Height > 0 {
				tc.Width = prop.Int(c.Width)
				tc.Height = prop.Int(c.Height)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	tracks := stream.GetVideoTracks()
	if len(tracks) == 0 {
		return nil, errors.New("piondev: stream has no video track")
	}
	vt, ok := tracks[0].(*mediadevices.VideoTrack)
	if !ok {
		for _, t := range tracks {
			_ = t.Close()
		}
		return nil, fmt.Errorf("piondev: unexpected track type %T", tracks[0])
	}
	h := &handle{track: vt, reader: vt.NewReader(false), label: label, facing: c.Facing}
	// First read settles the natural frame size.
	if _, err := h.Frame(); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("piondev: first frame: %w", err)
	}
	return h, nil
}

// pick chooses a device id for c. Exact requires a label match, a hint
// prefers one, any-device lets the driver choose.
func pick(c device.Constraint) (string, string, error) {
	var first mediadevices.MediaDeviceInfo
	found := false
	for _, d := range mediadevices.EnumerateDevices() {
		if d.Kind != mediadevices.VideoInput {
			continue
		}
		if !found {
			first, found = d, true
		}
		if c.AnyDevice {
			return "", d.Label, nil
		}
		if f, ok := device.MatchFacing(d.Label); ok && f == c.Facing {
			return d.DeviceID, d.Label, nil
		}
	}
	if !found {
		return "", "", errors.New("piondev: no video inputs")
	}
	if c.ExactFacing {
		return "", "", fmt.Errorf("piondev: no %s-facing input", c.Facing)
	}
	return first.DeviceID, first.Label, nil
}

type handle struct {
	mu     sync.Mutex
	track  *mediadevices.VideoTrack
	reader video.Reader
	label  string
	facing device.Facing
	buf    *image.RGBA
}

func (h *handle) Info() device.Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	info := device.Info{Label: h.label, Facing: h.facing}
	if h.buf != nil {
		info.Width, info.Height = h.buf.Rect.Dx(), h.buf.Rect.Dy()
	}
	return info
}

// Capabilities is empty: mediadevices exposes no zoom, torch or focus
// controls, so zoom falls back to software scaling.
func (h *handle) Capabilities() device.Capabilities { return device.Capabilities{} }

func (h *handle) Frame() (image.Image, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	img, release, err := h.reader.Read()
	if err != nil {
		return nil, err
	}
	defer release()
	b := img.Bounds()
	if h.buf == nil || h.buf.Rect.Dx() != b.Dx() || h.buf.Rect.Dy() != b.Dy() {
		h.buf = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(h.buf, h.buf.Rect, img, b.Min, draw.Src)
	return h.buf, nil
}

func (h *handle) Apply(context.Context, device.Setting) error { return device.ErrUnsupported }

func (h *handle) Close() error { return h.track.Close() }
