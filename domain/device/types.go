package device

import (
	"context"
	"errors"
	"image"
	"strings"
)

// ErrUnavailable reports that no constraint candidate produced a device.
var ErrUnavailable = errors.New("device: unavailable")

// ErrUnsupported is returned by a Handle for a setting its capability set lacks.
var ErrUnsupported = errors.New("device: setting unsupported")

// Facing enumerates which physical camera a device represents.
type Facing int

const (
	FacingFront Facing = iota
	FacingBack
)

func (f Facing) String() string {
	switch f {
	case FacingFront:
		return "front"
	case FacingBack:
		return "back"
	default:
		return "unknown"
	}
}

// Opposite returns the other facing direction.
func (f Facing) Opposite() Facing {
	if f == FacingBack {
		return FacingFront
	}
	return FacingBack
}

// Mirrored reports the preview/compose mirror convention for f.
func (f Facing) Mirrored() bool { return f == FacingFront }

// ParseFacing accepts front/back and the user/environment aliases.
func ParseFacing(s string) (Facing, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front", "user":
		return FacingFront, true
	case "back", "environment", "rear":
		return FacingBack, true
	}
	return FacingFront, false
}

// Range is an inclusive numeric range.
type Range struct{ Min, Max float64 }

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Capabilities is the typed capability set probed once after acquisition.
// Absent features are zero values, never errors.
type Capabilities struct {
	Zoom            *Range
	Torch           bool
	FocusModes      []string
	ExposureModes   []string
	PointOfInterest bool
}

// HasFocusMode reports whether mode is listed in FocusModes.
func (c Capabilities) HasFocusMode(mode string) bool {
	for _, m := range c.FocusModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Constraint is one acquisition candidate.
type Constraint struct {
	Facing      Facing
	AnyDevice   bool // ignore facing entirely
	ExactFacing bool // require a facing match rather than hint it
	Width       int  // preferred resolution, zero means unspecified
	Height      int
}

func (c Constraint) String() string {
	switch {
	case c.AnyDevice:
		return "any"
	case c.ExactFacing:
		return "exact:" + c.Facing.String()
	default:
		return "hint:" + c.Facing.String()
	}
}

// Info describes an open handle.
type Info struct {
	Label  string
	Facing Facing
	Width  int
	Height int
}

// Setting is a post-acquisition constraint applied to a live handle.
type Setting struct {
	Zoom  *float64
	Torch *bool
	// PointOfInterest is normalized to [0,1] on both axes.
	PointOfInterest *Point
	FocusMode       string
}

// Point is a normalized frame coordinate.
type Point struct{ X, Y float64 }

// Handle is one open video source. Implementations live in backend packages.
type Handle interface {
	Info() Info
	Capabilities() Capabilities
	// Frame returns the most recent frame. The image must not be retained
	// past the next Frame call.
	Frame() (image.Image, error)
	Apply(ctx context.Context, s Setting) error
	Close() error
}

// Backend opens handles for constraints.
type Backend interface {
	Name() string
	Open(ctx context.Context, c Constraint) (Handle, error)
}

// Candidates returns the ordered constraint list for facing, from most to
// least specific.
func Candidates(facing Facing, width, height int) []Constraint {
	return []Constraint{
		{Facing: facing, ExactFacing: true, Width: width, Height: height},
		{Facing: facing},
		{AnyDevice: true},
	}
}
