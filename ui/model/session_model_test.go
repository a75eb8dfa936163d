package model

import (
	"testing"
	"time"
)

func TestSessionModel_RitualTiming(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(0, 0)

	m.OnTick(true, base)
	m.OnTick(true, base.Add(4*time.Second))
	v := m.Values()
	if v.LastRitual != 4*time.Second || v.Total != 4*time.Second {
		t.Fatalf("ongoing ritual: %+v", v)
	}

	m.OnTick(false, base.Add(5*time.Second))
	v = m.Values()
	if v.LastRitual != 5*time.Second || v.Total != 5*time.Second {
		t.Fatalf("finished ritual: %+v", v)
	}

	// Idle ticks change nothing.
	m.OnTick(false, base.Add(9*time.Second))
	if m.Values() != v {
		t.Fatalf("idle tick changed values: %+v", m.Values())
	}

	m.OnTick(true, base.Add(10*time.Second))
	m.OnTick(true, base.Add(12*time.Second))
	if got := m.Values().Total; got != 7*time.Second {
		t.Fatalf("total should include the ongoing ritual, got %v", got)
	}
}

func TestSessionModel_Counters(t *testing.T) {
	m := NewSessionModel()
	at := time.Unix(100, 0)
	m.OnShot(at)
	m.OnShot(at.Add(time.Second))
	m.OnDelivered()
	v := m.Values()
	if v.Shots != 2 || v.Delivered != 1 || !v.LastShot.Equal(at.Add(time.Second)) {
		t.Fatalf("unexpected counters %+v", v)
	}
	var nilModel *SessionModel
	nilModel.OnShot(at)
	if nilModel.Values() != (SessionValues{}) {
		t.Fatalf("nil model should be inert")
	}
}

func TestCaptureModel_ZeroValue(t *testing.T) {
	var m CaptureModel
	if m.Busy() || m.Flash() || m.Placeholder() || m.Countdown() != 0 || m.Status() != "" {
		t.Fatalf("zero value should be idle")
	}
	m.SetCountdown(-2)
	if m.Countdown() != 0 {
		t.Fatalf("negative countdown should clamp to 0")
	}
	m.SetCountdown(3)
	m.SetStatus("Saved")
	if m.Countdown() != 3 || m.Status() != "Saved" {
		t.Fatalf("got countdown=%d status=%q", m.Countdown(), m.Status())
	}
}
