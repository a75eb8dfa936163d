package zoom

import (
	"context"
	"log/slog"
	"sync"

	"github.com/soocke/oshicam-go/domain/device"
)

// SoftwareCeiling is the UI maximum for software zoom.
const SoftwareCeiling = 3.0

// Mode selects how zoom is realized for a device session.
type Mode int

const (
	ModeSoftware Mode = iota
	ModeHardware
)

func (m Mode) String() string {
	if m == ModeHardware {
		return "hardware"
	}
	return "software"
}

// State is a point-in-time zoom snapshot.
type State struct {
	Mode    Mode
	Min     float64
	Max     float64
	Current float64
}

// SoftwareFactor is the multiplier the compositor and preview apply. Hardware
// zoom already altered the frame at the source, so it contributes exactly 1.
func (s State) SoftwareFactor() float64 {
	if s.Mode == ModeHardware || s.Current <= 0 {
		return 1
	}
	return s.Current
}

// Applier pushes a hardware zoom value to the live device.
type Applier interface {
	ApplyZoom(ctx context.Context, v float64) error
}

// Controller presents one zoom abstraction over hardware or software zoom.
// The mode is fixed at construction for the lifetime of the device session.
type Controller struct {
	mu      sync.Mutex
	state   State
	applier Applier
	logger  *slog.Logger
}

// New decides the mode from caps: a declared zoom range selects hardware.
func New(caps device.Capabilities, applier Applier, logger *slog.Logger) *Controller {
	st := State{Mode: ModeSoftware, Min: 1, Max: SoftwareCeiling, Current: 1}
	if caps.Zoom != nil && applier != nil && caps.Zoom.Max > caps.Zoom.Min {
		st = State{Mode: ModeHardware, Min: caps.Zoom.Min, Max: caps.Zoom.Max, Current: caps.Zoom.Min}
	}
	return &Controller{state: st, applier: applier, logger: logger}
}

// SetZoom clamps v and records it as the current value. In hardware mode the
// value is also applied to the device; an apply failure is logged and the
// recorded value is kept.
func (c *Controller) SetZoom(ctx context.Context, v float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v = device.Range{Min: c.state.Min, Max: c.state.Max}.Clamp(v)
	c.state.Current = v
	if c.state.Mode == ModeHardware {
		if err := c.applier.ApplyZoom(ctx, v); err != nil && c.logger != nil {
			c.logger.Warn("zoom apply failed", "value", v, "error", err)
		}
	}
	return v
}

// State returns a snapshot of the zoom state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SoftwareFactor is shorthand for State().SoftwareFactor().
func (c *Controller) SoftwareFactor() float64 { return c.State().SoftwareFactor() }
