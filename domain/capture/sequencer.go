// Package capture drives the shutter ritual: priming, pre-roll voice,
// countdown, flash + shutter + grab, post-roll voice.
package capture

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/looplab/fsm"

	"github.com/soocke/oshicam-go/domain/audio"
	"github.com/soocke/oshicam-go/domain/snapshot"
)

const (
	DefaultCountdownTick  = time.Second
	DefaultFlashDuration  = 350 * time.Millisecond
	DefaultPreRollMaxWait = 30 * time.Second
	DefaultShutterMaxWait = 2500 * time.Millisecond
)

const (
	evPrime     = "prime"
	evPreRoll   = "preroll"
	evCountdown = "countdown"
	evShutter   = "shutter"
	evPostRoll  = "postroll"
	evFinish    = "finish"
	evAbort     = "abort"
)

// Options configure a Sequencer. Audio, Store and Logger may be nil.
type Options struct {
	Audio    Player
	Frames   FrameSource
	Composer Composer
	Store    Sink
	Logger   *slog.Logger

	// PreRoll and PostRoll report whether voice lines are configured.
	PreRoll  bool
	PostRoll bool

	CountdownTick  time.Duration
	FlashDuration  time.Duration
	PreRollMaxWait time.Duration
	ShutterMaxWait time.Duration
}

// Sequencer runs one capture at a time; concurrent calls get ErrBusy.
type Sequencer struct {
	opts    Options
	logger  *slog.Logger
	machine *fsm.FSM
	busy    atomic.Bool

	mu          sync.Mutex
	stateLs     []StateListener
	countdownLs []CountdownListener
	flashLs     []FlashListener
	flashGen    uint64
}

func NewSequencer(o Options) *Sequencer {
	if o.CountdownTick <= 0 {
		o.CountdownTick = DefaultCountdownTick
	}
	if o.FlashDuration <= 0 {
		o.FlashDuration = DefaultFlashDuration
	}
	if o.PreRollMaxWait <= 0 {
		o.PreRollMaxWait = DefaultPreRollMaxWait
	}
	if o.ShutterMaxWait <= 0 {
		o.ShutterMaxWait = DefaultShutterMaxWait
	}
	s := &Sequencer{opts: o, logger: o.Logger}
	all := []string{string(StatePriming), string(StatePreRoll), string(StateCountdown), string(StateShutter), string(StatePostRoll)}
	s.machine = fsm.NewFSM(
		string(StateIdle),
		fsm.Events{
			{Name: evPrime, Src: []string{string(StateIdle)}, Dst: string(StatePriming)},
			{Name: evPreRoll, Src: []string{string(StatePriming)}, Dst: string(StatePreRoll)},
			{Name: evCountdown, Src: []string{string(StatePreRoll)}, Dst: string(StateCountdown)},
			{Name: evShutter, Src: []string{string(StateCountdown)}, Dst: string(StateShutter)},
			{Name: evPostRoll, Src: []string{string(StateShutter)}, Dst: string(StatePostRoll)},
			{Name: evFinish, Src: []string{string(StatePostRoll)}, Dst: string(StateIdle)},
			{Name: evAbort, Src: all, Dst: string(StateIdle)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.notifyState(State(e.Src), State(e.Dst))
			},
		},
	)
	return s
}

// Current returns the sequencer state.
func (s *Sequencer) Current() State { return State(s.machine.Current()) }

// Busy reports whether a capture is in flight.
func (s *Sequencer) Busy() bool { return s.busy.Load() }

// Hold claims the sequencer for a device handover. While held, Capture
// returns ErrBusy. ok is false when a capture or another hold is in flight.
func (s *Sequencer) Hold() (release func(), ok bool) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(func() { s.busy.Store(false) }) }, true
}

func (s *Sequencer) AddStateListener(l StateListener) {
	s.mu.Lock()
	s.stateLs = append(s.stateLs, l)
	s.mu.Unlock()
}

func (s *Sequencer) AddCountdownListener(l CountdownListener) {
	s.mu.Lock()
	s.countdownLs = append(s.countdownLs, l)
	s.mu.Unlock()
}

func (s *Sequencer) AddFlashListener(l FlashListener) {
	s.mu.Lock()
	s.flashLs = append(s.flashLs, l)
	s.mu.Unlock()
}

// Capture runs the full ritual for req and returns the stored snapshot.
// Only ErrBusy and ctx cancellation are returned; every other failure
// degrades inside the pipeline.
func (s *Sequencer) Capture(ctx context.Context, req Request) (snapshot.Snapshot, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return snapshot.Snapshot{}, ErrBusy
	}
	defer s.busy.Store(false)
	defer func() {
		if s.Current() != StateIdle {
			s.fire(context.Background(), evAbort)
		}
	}()

	s.fire(ctx, evPrime)
	if req.AudioEnabled && s.opts.Audio != nil {
		cues := []audio.Cue{audio.CueShutter}
		if s.opts.PreRoll {
			cues = append(cues, audio.CuePreRoll)
		}
		if s.opts.PostRoll {
			cues = append(cues, audio.CuePostRoll)
		}
		s.opts.Audio.Prime(ctx, cues...)
	}
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, err
	}

	s.fire(ctx, evPreRoll)
	if req.AudioEnabled && s.opts.PreRoll && s.opts.Audio != nil {
		s.opts.Audio.Play(ctx, audio.CuePreRoll, audio.PlayOptions{WaitForEnd: true, MaxWait: s.opts.PreRollMaxWait})
	}
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, err
	}

	s.fire(ctx, evCountdown)
	if err := s.countdown(ctx, req.CountdownSeconds); err != nil {
		return snapshot.Snapshot{}, err
	}

	s.fire(ctx, evShutter)
	snap, shutterDone := s.shutter(ctx, req)

	s.fire(ctx, evPostRoll)
	s.postRoll(ctx, req, shutterDone)

	s.fire(ctx, evFinish)
	return snap, nil
}

func (s *Sequencer) countdown(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return nil
	}
	t := time.NewTicker(s.opts.CountdownTick)
	defer t.Stop()
	for n := seconds; n > 0; n-- {
		s.notifyCountdown(n)
		select {
		case <-ctx.Done():
			s.notifyCountdown(0)
			return ctx.Err()
		case <-t.C:
		}
	}
	s.notifyCountdown(0)
	return nil
}

// shutter turns the flash on, starts the shutter sound and grabs the frame
// in one tick. The sound is sounding before the grab; the returned channel
// closes once it ends or ShutterMaxWait passes. The flash clears on its own
// timer.
func (s *Sequencer) shutter(ctx context.Context, req Request) (snapshot.Snapshot, <-chan struct{}) {
	s.flash()

	bg := context.WithoutCancel(ctx)
	var sound audio.Playback
	if req.AudioEnabled && s.opts.Audio != nil {
		sound = s.startShutterSound(bg)
	}

	frame, ok := s.grab()
	if !ok {
		s.debug("shutter without frame")
	}
	var snap snapshot.Snapshot
	if s.opts.Composer != nil {
		snap = s.opts.Composer.Compose(req.Request, frame)
	}
	if s.opts.Store != nil && snap.Valid() {
		s.opts.Store.Push(snap)
	}
	s.debug("capture.shutter", "aspect", req.Aspect.String(), "overlay", req.OverlayID, "mirror", req.Mirror, "frame", ok, "sound", sound.Outcome.String())

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer recoverLog(s.logger, "shutter sound panic")
		sound.Wait(bg, s.opts.ShutterMaxWait)
	}()
	return snap, done
}

func (s *Sequencer) startShutterSound(ctx context.Context) (pb audio.Playback) {
	defer func() {
		if r := recover(); r != nil {
			s.debug("shutter sound panic", "error", r)
			pb = audio.Playback{}
		}
	}()
	return s.opts.Audio.Start(ctx, audio.CueShutter)
}

func (s *Sequencer) grab() (img image.Image, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.debug("frame grab panic", "error", r)
			img, ok = nil, false
		}
	}()
	if s.opts.Frames == nil {
		return nil, false
	}
	f, ok := s.opts.Frames.LatestFrame()
	if !ok {
		return nil, false
	}
	return f, true
}

// postRoll waits for the shutter sound, bounded by ShutterMaxWait, then
// starts the post-roll voice without waiting for it.
func (s *Sequencer) postRoll(ctx context.Context, req Request, shutterDone <-chan struct{}) {
	t := time.NewTimer(s.opts.ShutterMaxWait)
	defer t.Stop()
	select {
	case <-shutterDone:
	case <-t.C:
	case <-ctx.Done():
		return
	}
	if !req.AudioEnabled || !s.opts.PostRoll || s.opts.Audio == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		defer recoverLog(s.logger, "postroll panic")
		s.opts.Audio.Play(bg, audio.CuePostRoll, audio.PlayOptions{})
	}()
}

func (s *Sequencer) flash() {
	s.mu.Lock()
	s.flashGen++
	gen := s.flashGen
	s.mu.Unlock()
	s.notifyFlash(true)
	time.AfterFunc(s.opts.FlashDuration, func() {
		s.mu.Lock()
		stale := gen != s.flashGen
		s.mu.Unlock()
		if !stale {
			s.notifyFlash(false)
		}
	})
}

func (s *Sequencer) fire(ctx context.Context, ev string) {
	if err := s.machine.Event(ctx, ev); err != nil {
		s.debug("capture event rejected", "event", ev, "state", s.machine.Current(), "error", err)
	}
}

func (s *Sequencer) notifyState(prev, next State) {
	s.debug("capture state transition", "from", prev.String(), "to", next.String())
	s.mu.Lock()
	ls := append([]StateListener(nil), s.stateLs...)
	s.mu.Unlock()
	for _, l := range ls {
		l(prev, next)
	}
}

func (s *Sequencer) notifyCountdown(n int) {
	s.mu.Lock()
	ls := append([]CountdownListener(nil), s.countdownLs...)
	s.mu.Unlock()
	for _, l := range ls {
		l(n)
	}
}

func (s *Sequencer) notifyFlash(on bool) {
	s.mu.Lock()
	ls := append([]FlashListener(nil), s.flashLs...)
	s.mu.Unlock()
	for _, l := range ls {
		l(on)
	}
}

func (s *Sequencer) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}

var (
	_ StateSource = (*Sequencer)(nil)
	_ Trigger     = (*Sequencer)(nil)
)
