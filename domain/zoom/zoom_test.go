package zoom

import (
	"context"
	"errors"
	"testing"

	"github.com/soocke/oshicam-go/domain/device"
)

type recordingApplier struct {
	values []float64
	err    error
}

func (a *recordingApplier) ApplyZoom(_ context.Context, v float64) error {
	a.values = append(a.values, v)
	return a.err
}

func TestHardwareZoom_ClampsToRange(t *testing.T) {
	a := &recordingApplier{}
	c := New(device.Capabilities{Zoom: &device.Range{Min: 1, Max: 4}}, a, nil)
	if c.State().Mode != ModeHardware {
		t.Fatalf("expected hardware mode")
	}
	c.SetZoom(context.Background(), 2)
	got := c.SetZoom(context.Background(), 10)
	if got != 4 || c.State().Current != 4 {
		t.Fatalf("expected clamp to 4, got %v (state %v)", got, c.State().Current)
	}
	if len(a.values) != 2 || a.values[0] != 2 || a.values[1] != 4 {
		t.Fatalf("applied values %v", a.values)
	}
}

func TestHardwareZoom_FailureKeepsOptimisticValue(t *testing.T) {
	a := &recordingApplier{err: errors.New("overconstrained")}
	c := New(device.Capabilities{Zoom: &device.Range{Min: 1, Max: 4}}, a, nil)
	if got := c.SetZoom(context.Background(), 3); got != 3 {
		t.Fatalf("got %v", got)
	}
	if c.State().Current != 3 {
		t.Fatalf("value rolled back: %v", c.State().Current)
	}
}

func TestHardwareZoom_SoftwareFactorIsOne(t *testing.T) {
	c := New(device.Capabilities{Zoom: &device.Range{Min: 1, Max: 4}}, &recordingApplier{}, nil)
	for _, v := range []float64{1, 2.5, 4} {
		c.SetZoom(context.Background(), v)
		if f := c.SoftwareFactor(); f != 1 {
			t.Fatalf("hardware zoom %v leaked software factor %v", v, f)
		}
	}
}

func TestSoftwareZoom_CeilingAndFactor(t *testing.T) {
	a := &recordingApplier{}
	c := New(device.Capabilities{}, a, nil)
	if c.State().Mode != ModeSoftware {
		t.Fatalf("expected software mode")
	}
	if got := c.SetZoom(context.Background(), 2); got != 2 || c.SoftwareFactor() != 2 {
		t.Fatalf("got %v factor %v", got, c.SoftwareFactor())
	}
	if got := c.SetZoom(context.Background(), 9); got != SoftwareCeiling {
		t.Fatalf("expected ceiling, got %v", got)
	}
	if got := c.SetZoom(context.Background(), 0.2); got != 1 {
		t.Fatalf("expected floor 1, got %v", got)
	}
	if len(a.values) != 0 {
		t.Fatalf("software mode touched the device: %v", a.values)
	}
}

func TestDegenerateRangeFallsBackToSoftware(t *testing.T) {
	c := New(device.Capabilities{Zoom: &device.Range{Min: 1, Max: 1}}, &recordingApplier{}, nil)
	if c.State().Mode != ModeSoftware {
		t.Fatalf("expected software mode for empty range")
	}
}
