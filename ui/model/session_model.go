package model

import (
	"time"
)

// SessionModel tracks shots taken and the time spent inside shutter rituals.
// It is decoupled from the UI; presenters should poll Values() and update views.
// The zero value is ready to use. Not synchronized: call from the tick goroutine.
type SessionModel struct {
	active      bool
	ritualStart time.Time
	lastRitual  time.Duration
	accumulated time.Duration
	shots       int
	delivered   int
	lastShot    time.Time
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates ritual timing from the busy flag at now.
func (m *SessionModel) OnTick(busy bool, now time.Time) {
	if m == nil {
		return
	}
	switch {
	case busy && !m.active:
		m.active = true
		m.ritualStart = now
		m.lastRitual = 0
	case busy:
		m.lastRitual = now.Sub(m.ritualStart)
	case m.active:
		m.lastRitual = now.Sub(m.ritualStart)
		m.accumulated += m.lastRitual
		m.active = false
	}
}

// OnShot counts a stored snapshot.
func (m *SessionModel) OnShot(at time.Time) {
	if m == nil {
		return
	}
	m.shots++
	m.lastShot = at
}

// OnDelivered counts a successful delivery.
func (m *SessionModel) OnDelivered() {
	if m == nil {
		return
	}
	m.delivered++
}

// SessionValues is a point-in-time copy of the counters.
type SessionValues struct {
	Shots      int
	Delivered  int
	LastShot   time.Time
	LastRitual time.Duration
	// Total includes the ongoing ritual when one is active.
	Total time.Duration
}

// Values returns the current counters.
func (m *SessionModel) Values() SessionValues {
	if m == nil {
		return SessionValues{}
	}
	v := SessionValues{
		Shots:      m.shots,
		Delivered:  m.delivered,
		LastShot:   m.lastShot,
		LastRitual: m.lastRitual,
		Total:      m.accumulated,
	}
	if m.active {
		v.Total += m.lastRitual
	}
	return v
}
