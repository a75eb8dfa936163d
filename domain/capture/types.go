package capture

import (
	"context"
	"errors"
	"image"

	"github.com/soocke/oshicam-go/domain/audio"
	"github.com/soocke/oshicam-go/domain/compose"
	"github.com/soocke/oshicam-go/domain/snapshot"
)

// ErrBusy is returned when Capture is invoked while a capture is running.
var ErrBusy = errors.New("capture: sequencer busy")

// State enumerates the phases of one capture.
type State string

const (
	StateIdle      State = "idle"
	StatePriming   State = "priming"
	StatePreRoll   State = "preroll"
	StateCountdown State = "countdown"
	StateShutter   State = "shutter"
	StatePostRoll  State = "postroll"
)

func (s State) String() string { return string(s) }

// Request is built once per capture from the current settings and zoom, so a
// setting changed mid-countdown does not affect the shot in flight.
type Request struct {
	compose.Request
	CountdownSeconds int
	AudioEnabled     bool
}

// StateListener is called on each transition.
type StateListener func(prev, next State)

// CountdownListener receives the remaining seconds; 0 means cleared.
type CountdownListener func(remaining int)

// FlashListener is called when the flash turns on and off.
type FlashListener func(on bool)

// Player is the audio surface used by the sequencer.
type Player interface {
	Prime(ctx context.Context, cues ...audio.Cue)
	Play(ctx context.Context, cue audio.Cue, opts audio.PlayOptions) audio.Result
	Start(ctx context.Context, cue audio.Cue) audio.Playback
}

// FrameSource yields the frame grabbed at the shutter tick.
type FrameSource interface {
	LatestFrame() (image.Image, bool)
}

// Composer renders and encodes a grabbed frame.
type Composer interface {
	Compose(req compose.Request, frame image.Image) snapshot.Snapshot
}

// Sink receives finished snapshots.
type Sink interface {
	Push(s snapshot.Snapshot) []snapshot.Snapshot
}

// Interface slices for presenters.
type StateSource interface{ Current() State }
type Trigger interface {
	Capture(ctx context.Context, req Request) (snapshot.Snapshot, error)
}
