package model

import (
	"sync/atomic"
)

// CaptureModel holds what the viewfinder shows about the shutter ritual.
// The zero value is idle and usable. Concurrency-safe via atomics because
// sequencer listeners and presenter ticks run on different goroutines.
type CaptureModel struct {
	busy        atomic.Bool
	flash       atomic.Bool
	placeholder atomic.Bool
	countdown   atomic.Int32
	status      atomic.Pointer[string]
}

// Busy reports whether a capture is in flight.
func (m *CaptureModel) Busy() bool {
	if m == nil {
		return false
	}
	return m.busy.Load()
}

// SetBusy stores the busy flag.
func (m *CaptureModel) SetBusy(b bool) {
	if m == nil {
		return
	}
	m.busy.Store(b)
}

// Flash reports whether the shutter flash is visible.
func (m *CaptureModel) Flash() bool {
	if m == nil {
		return false
	}
	return m.flash.Load()
}

func (m *CaptureModel) SetFlash(on bool) {
	if m == nil {
		return
	}
	m.flash.Store(on)
}

// Placeholder reports whether no device is live.
func (m *CaptureModel) Placeholder() bool {
	if m == nil {
		return false
	}
	return m.placeholder.Load()
}

func (m *CaptureModel) SetPlaceholder(b bool) {
	if m == nil {
		return
	}
	m.placeholder.Store(b)
}

// Countdown is the remaining whole seconds; zero hides the digit.
func (m *CaptureModel) Countdown() int {
	if m == nil {
		return 0
	}
	return int(m.countdown.Load())
}

func (m *CaptureModel) SetCountdown(n int) {
	if m == nil {
		return
	}
	if n < 0 {
		n = 0
	}
	m.countdown.Store(int32(n))
}

// Status is the last user-facing message (delivery acks, errors).
func (m *CaptureModel) Status() string {
	if m == nil {
		return ""
	}
	if s := m.status.Load(); s != nil {
		return *s
	}
	return ""
}

func (m *CaptureModel) SetStatus(s string) {
	if m == nil {
		return
	}
	m.status.Store(&s)
}
