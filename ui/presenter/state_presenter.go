package presenter

import (
	"sync"
	"time"

	"github.com/soocke/oshicam-go/domain/capture"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatePresenter receives sequencer transitions and reflects the latest one
// in the view on the next Tick.
type StatePresenter struct {
	src    capture.StateSource
	view   StateView
	latest capture.State // last reflected state

	mu      sync.Mutex
	pending []capture.State
}

func NewStatePresenter(src capture.StateSource, view StateView) *StatePresenter {
	return &StatePresenter{src: src, view: view}
}

// OnState queues a transitioned state. It is a capture.StateListener and may
// be called from the sequencer goroutine.
func (p *StatePresenter) OnState(_, next capture.State) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick processes queued states and updates the view with the most recent one.
func (p *StatePresenter) Tick(time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	var last capture.State
	if n := len(p.pending); n > 0 {
		last = p.pending[n-1]
		p.pending = p.pending[:0]
	}
	p.mu.Unlock()
	if last == "" && p.latest == "" && p.src != nil {
		last = p.src.Current()
	}
	if last != "" && last != p.latest {
		p.latest = last
		p.view.SetStateLabel(Label(last))
	}
}

// Label is the user-facing text for a sequencer state.
func Label(s capture.State) string {
	switch s {
	case capture.StateIdle:
		return "Ready"
	case capture.StatePriming, capture.StatePreRoll:
		return "Get ready"
	case capture.StateCountdown:
		return "Smile"
	case capture.StateShutter:
		return "Snap"
	case capture.StatePostRoll:
		return "Nice shot"
	default:
		return string(s)
	}
}
