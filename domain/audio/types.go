package audio

import (
	"context"
	"errors"
	"time"
)

// ErrMissing marks a cue whose asset is absent.
var ErrMissing = errors.New("audio: asset missing")

// Cue names a sound used by the shutter ritual.
type Cue string

const (
	CueShutter  Cue = "shutter"
	CuePreRoll  Cue = "preroll"
	CuePostRoll Cue = "postroll"
)

// Clip is one playable asset. Implementations live in backend packages and
// are manipulated only by the Manager.
type Clip interface {
	// Err is non-nil when the asset is missing or failed to load.
	Err() error
	// Duration reports the clip length once metadata is known.
	Duration() (time.Duration, bool)
	// Metadata is closed once Duration is known or the clip has errored.
	Metadata() <-chan struct{}
	SetMuted(muted bool)
	SetVolume(v float64)
	// Rewind resets playback position to the start.
	Rewind()
	// Play starts playback. The returned channel is closed when playback
	// ends, naturally or through Pause.
	Play() (<-chan struct{}, error)
	Pause()
}

// Library resolves cues to clips.
type Library interface {
	// Clip returns the clip for cue, or nil when none is configured.
	Clip(cue Cue) Clip
	// Fallback returns the shared fallback clip, or nil.
	Fallback() Clip
}

// Tone synthesizes the last-resort shutter beep.
type Tone interface {
	Beep(ctx context.Context) (<-chan struct{}, error)
}

// Unlocker is implemented by tones whose output must be resumed during a
// user gesture.
type Unlocker interface {
	Unlock(ctx context.Context) error
}

// Vibrator fires best-effort haptic feedback.
type Vibrator interface {
	Vibrate(d time.Duration) error
}

// Outcome reports which strategy of the fallback chain produced sound.
type Outcome int

const (
	OutcomeSilent Outcome = iota
	OutcomeClip
	OutcomeFallback
	OutcomeTone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClip:
		return "clip"
	case OutcomeFallback:
		return "fallback"
	case OutcomeTone:
		return "tone"
	default:
		return "silent"
	}
}

// PlayOptions controls blocking behavior of Play.
type PlayOptions struct {
	WaitForEnd bool
	// MaxWait bounds WaitForEnd; zero waits for natural completion.
	MaxWait time.Duration
}

// Result describes one Play call.
type Result struct {
	Outcome Outcome
	// Ended is true when WaitForEnd observed natural completion.
	Ended bool
	// TimedOut is true when MaxWait elapsed and the cue was paused.
	TimedOut bool
}

// Playback is a cue that has already started sounding.
type Playback struct {
	Outcome Outcome
	// Done closes when the cue ends, naturally or through Stop.
	Done <-chan struct{}
	stop func()
}

// Stop pauses the cue. It is safe on the zero value.
func (p Playback) Stop() {
	if p.stop != nil {
		p.stop()
	}
}

// Wait blocks until the cue ends, maxWait elapses or ctx ends. On timeout the
// cue is paused. A non-positive maxWait waits for natural completion.
func (p Playback) Wait(ctx context.Context, maxWait time.Duration) Result {
	res := Result{Outcome: p.Outcome}
	if p.Done == nil {
		res.Ended = true
		return res
	}
	if awaitOrTimeout(ctx, p.Done, maxWait) {
		res.Ended = true
	} else {
		p.Stop()
		res.TimedOut = true
	}
	return res
}
