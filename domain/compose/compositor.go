// Package compose renders a grabbed camera frame into a fixed-aspect,
// overlaid, encoded snapshot.
package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/soocke/oshicam-go/domain/overlay"
	"github.com/soocke/oshicam-go/domain/snapshot"
	"github.com/soocke/oshicam-go/domain/zoom"
	"github.com/soocke/oshicam-go/internal/rgbapool"
)

// Output canvases are large and short-lived: each one is drawn, encoded and
// dropped, so they are pooled across captures.
var canvasPool rgbapool.Pool

// ErrNoFrame marks outputs rendered from the placeholder.
var ErrNoFrame = errors.New("compose: no camera frame")

// MIME is the encoding of every composed snapshot.
const MIME = "image/png"

// Request is the per-capture composition input, fixed for one shot.
type Request struct {
	Aspect    Aspect
	OverlayID string
	Zoom      zoom.State
	Mirror    bool
}

// Overlays resolves overlay ids (small for DI).
type Overlays interface {
	Get(id string) (overlay.Overlay, error)
}

// Minter turns encoded bytes into a referenced snapshot.
type Minter interface {
	New(data []byte, mime string, w, h int, at time.Time) snapshot.Snapshot
}

// Compositor is safe for concurrent use.
type Compositor struct {
	overlays Overlays
	minter   Minter
	logger   *slog.Logger
	interp   xdraw.Interpolator
	now      func() time.Time
}

type Option func(*Compositor)

// WithInterpolator replaces the default bilinear frame scaler.
func WithInterpolator(i xdraw.Interpolator) Option {
	return func(c *Compositor) {
		if i != nil {
			c.interp = i
		}
	}
}

// WithClock sets the time source for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Compositor) {
		if now != nil {
			c.now = now
		}
	}
}

func New(overlays Overlays, minter Minter, logger *slog.Logger, opts ...Option) *Compositor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Compositor{
		overlays: overlays,
		minter:   minter,
		logger:   logger,
		interp:   xdraw.ApproxBiLinear,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compose renders frame for req and encodes it. A nil frame, a failed draw
// or a failed overlay never prevents a snapshot; the placeholder or the
// overlay-less image is used instead.
func (c *Compositor) Compose(req Request, frame image.Image) snapshot.Snapshot {
	w, h := req.Aspect.Size()
	canvas := canvasPool.GetZeroed(image.Rect(0, 0, w, h))
	c.render(canvas, req, frame)
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	err := enc.Encode(&buf, canvas)
	canvasPool.Put(canvas)
	if err != nil {
		c.logger.Error("compose encode failed", "error", err)
	}
	if c.minter == nil {
		return snapshot.Snapshot{Data: buf.Bytes(), MIME: MIME, Width: w, Height: h, CreatedAt: c.now()}
	}
	return c.minter.New(buf.Bytes(), MIME, w, h, c.now())
}

// Render returns the unencoded output image for req.
func (c *Compositor) Render(req Request, frame image.Image) *image.RGBA {
	w, h := req.Aspect.Size()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	c.render(dst, req, frame)
	return dst
}

func (c *Compositor) render(dst *image.RGBA, req Request, frame image.Image) {
	if err := c.drawFrame(dst, req, frame); err != nil {
		c.logger.Debug("compose placeholder", "error", err)
		DrawPlaceholder(dst)
	}
	if req.OverlayID == "" || c.overlays == nil {
		return
	}
	if err := c.drawOverlay(dst, req); err != nil {
		c.logger.Warn("overlay draw failed", "overlay", req.OverlayID, "error", err)
	}
}

func (c *Compositor) drawFrame(dst *image.RGBA, req Request, frame image.Image) (err error) {
	if frame == nil || frame.Bounds().Empty() {
		return ErrNoFrame
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: draw panic: %v", ErrNoFrame, r)
		}
	}()
	b := dst.Bounds()
	fb := frame.Bounds()
	xdraw.Draw(dst, b, image.NewUniform(color.Black), image.Point{}, xdraw.Src)
	p := CoverFit(fb.Dx(), fb.Dy(), b.Dx(), b.Dy(), req.Zoom.SoftwareFactor())
	m := p.Affine(fb.Min.X, fb.Min.Y, b.Dx(), req.Mirror)
	c.interp.Transform(dst, m, frame, fb, xdraw.Src, nil)
	return nil
}

func (c *Compositor) drawOverlay(dst *image.RGBA, req Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("overlay panic: %v", r)
		}
	}()
	o, err := c.overlays.Get(req.OverlayID)
	if err != nil {
		return err
	}
	return o.Draw(dst, req.Aspect.Key())
}
