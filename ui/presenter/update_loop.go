package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Gallery    *GalleryPresenter
	State      *StatePresenter
	Viewfinder *ViewfinderPresenter
	Schedule   func()
}

func NewLoop(gallery *GalleryPresenter, state *StatePresenter, viewfinder *ViewfinderPresenter, schedule func()) *Loop {
	return &Loop{Gallery: gallery, State: state, Viewfinder: viewfinder, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// Flush pending sequencer transitions first so labels lead the preview.
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Gallery != nil {
		l.Gallery.Tick(now)
	}
	if l.Viewfinder != nil {
		l.Viewfinder.ProcessFrame()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
