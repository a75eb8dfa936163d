package device

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
)

// LostAfterFailures is the number of consecutive frame read errors after
// which the live handle is treated as lost and released.
const LostAfterFailures = 60

// Negotiator owns the single live capture handle. Consumers reach the device
// only through its accessors; the handle itself is never handed out.
type Negotiator struct {
	mu      sync.Mutex
	backend Backend
	logger  *slog.Logger
	width   int
	height  int

	handle  Handle
	info    Info
	caps    Capabilities
	facing  Facing
	torchOn bool

	// failures counts consecutive frame read errors on the live handle.
	failures int
}

// NewNegotiator constructs a negotiator over backend. width and height are
// the preferred resolution used by the most specific candidate.
func NewNegotiator(backend Backend, width, height int, logger *slog.Logger) *Negotiator {
	return &Negotiator{backend: backend, width: width, height: height, logger: logger}
}

// Acquire releases any live handle, then tries each candidate for facing in
// order and keeps the first success. When every candidate fails it returns an
// error wrapping ErrUnavailable and the negotiator stays in placeholder mode.
func (n *Negotiator) Acquire(ctx context.Context, facing Facing) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.releaseLocked()
	n.facing = facing

	if n.backend == nil {
		n.logf(slog.LevelWarn, "device unavailable", "reason", "no backend")
		return ErrUnavailable
	}

	var errs []error
	for _, c := range Candidates(facing, n.width, n.height) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		h, err := n.open(ctx, c)
		if err != nil {
			n.logf(slog.LevelDebug, "device candidate failed", "candidate", c.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
			continue
		}
		n.handle = h
		n.info = h.Info()
		n.caps = h.Capabilities()
		n.logf(slog.LevelInfo, "device.acquired",
			"backend", n.backend.Name(),
			"candidate", c.String(),
			"label", n.info.Label,
			"width", n.info.Width,
			"height", n.info.Height,
			"zoom", n.caps.Zoom != nil,
			"torch", n.caps.Torch,
		)
		return nil
	}
	n.logf(slog.LevelWarn, "device unavailable", "backend", n.backend.Name(), "attempts", len(errs))
	return fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

// open isolates backend panics so a misbehaving driver degrades to a failed
// candidate.
func (n *Negotiator) open(ctx context.Context, c Constraint) (h Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("backend panic: %v", r)
		}
	}()
	h, err = n.backend.Open(ctx, c)
	if err == nil && h == nil {
		err = errors.New("backend returned nil handle")
	}
	return h, err
}

// Release stops the live handle and clears references. Idempotent.
func (n *Negotiator) Release() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.releaseLocked()
}

func (n *Negotiator) releaseLocked() {
	if n.handle == nil {
		return
	}
	if err := n.handle.Close(); err != nil {
		n.logf(slog.LevelWarn, "device close failed", "error", err)
	}
	n.handle = nil
	n.failures = 0
	n.info = Info{}
	n.caps = Capabilities{}
	n.torchOn = false
}

// SwitchFacing releases the current handle and acquires the opposite facing.
func (n *Negotiator) SwitchFacing(ctx context.Context) (Facing, error) {
	next := n.Facing().Opposite()
	return next, n.Acquire(ctx, next)
}

// Available reports whether a live handle exists.
func (n *Negotiator) Available() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.handle != nil
}

// Facing returns the most recently requested facing direction.
func (n *Negotiator) Facing() Facing {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.facing
}

// Capabilities returns the capability set probed at acquisition.
func (n *Negotiator) Capabilities() Capabilities {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.caps
}

// FrameSize returns the natural frame dimensions of the live handle.
func (n *Negotiator) FrameSize() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.info.Width, n.info.Height
}

// LatestFrame samples the live handle. ok is false in placeholder mode or
// when the handle yields no frame.
func (n *Negotiator) LatestFrame() (image.Image, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.handle == nil {
		return nil, false
	}
	img, err := n.handle.Frame()
	if err != nil {
		n.failures++
		n.logf(slog.LevelDebug, "frame read failed", "error", err, "consecutive", n.failures)
		if n.failures >= LostAfterFailures {
			n.logf(slog.LevelWarn, "device lost", "label", n.info.Label, "failures", n.failures)
			n.releaseLocked()
		}
		return nil, false
	}
	n.failures = 0
	if img == nil || img.Bounds().Empty() {
		return nil, false
	}
	return img, true
}

// ApplyZoom applies a hardware zoom constraint.
func (n *Negotiator) ApplyZoom(ctx context.Context, v float64) error {
	return n.apply(ctx, Setting{Zoom: &v})
}

// TorchOn reports the last successfully applied torch state.
func (n *Negotiator) TorchOn() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.torchOn
}

// SetTorch toggles the torch when supported. Failures are logged and
// leave the recorded state unchanged.
func (n *Negotiator) SetTorch(ctx context.Context, on bool) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.handle == nil || !n.caps.Torch {
		return n.torchOn
	}
	if err := n.handle.Apply(ctx, Setting{Torch: &on}); err != nil {
		n.logf(slog.LevelWarn, "torch apply failed", "error", err)
		return n.torchOn
	}
	n.torchOn = on
	return n.torchOn
}

// FocusAt sets a normalized point of interest, switching to single-shot
// focus when the device offers it. No-op without the capability.
func (n *Negotiator) FocusAt(ctx context.Context, x, y float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.handle == nil || !n.caps.PointOfInterest {
		return
	}
	p := Point{X: clamp01(x), Y: clamp01(y)}
	s := Setting{PointOfInterest: &p}
	if n.caps.HasFocusMode("single-shot") {
		s.FocusMode = "single-shot"
	}
	if err := n.handle.Apply(ctx, s); err != nil {
		n.logf(slog.LevelWarn, "focus apply failed", "error", err)
	}
}

func (n *Negotiator) apply(ctx context.Context, s Setting) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.handle == nil {
		return ErrUnavailable
	}
	return n.handle.Apply(ctx, s)
}

func (n *Negotiator) logf(level slog.Level, msg string, args ...any) {
	if n.logger != nil {
		n.logger.Log(context.Background(), level, msg, args...)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
