package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Vibration lengths per outcome.
const (
	vibrateClip    = 40 * time.Millisecond
	vibrateTone    = 50 * time.Millisecond
	vibrateNothing = 60 * time.Millisecond
)

// DefaultMetadataWait bounds how long Play waits for an unknown duration.
const DefaultMetadataWait = time.Second

// Manager plays cues through an ordered fallback chain:
// cue clip, shared fallback clip, synthesized tone, silence.
// Audio never fails a caller; every method degrades instead of erroring.
type Manager struct {
	lib          Library
	tone         Tone
	vib          Vibrator
	logger       *slog.Logger
	metadataWait time.Duration

	mu    sync.Mutex
	locks map[Clip]*sync.Mutex
}

// Options configure a Manager. Any field may be nil.
type Options struct {
	Library      Library
	Tone         Tone
	Vibrator     Vibrator
	Logger       *slog.Logger
	MetadataWait time.Duration
}

func NewManager(o Options) *Manager {
	if o.MetadataWait <= 0 {
		o.MetadataWait = DefaultMetadataWait
	}
	return &Manager{
		lib:          o.Library,
		tone:         o.Tone,
		vib:          o.Vibrator,
		logger:       o.Logger,
		metadataWait: o.MetadataWait,
		locks:        make(map[Clip]*sync.Mutex),
	}
}

// strategy is one link of the playback chain.
type strategy struct {
	outcome Outcome
	start   starter
}

// starter begins playback. awaitMeta lets a clip of unknown length finish
// loading metadata first.
type starter func(ctx context.Context, awaitMeta bool) (done <-chan struct{}, stop func(), err error)

func (m *Manager) chain(cue Cue) []strategy {
	var out []strategy
	if m.lib != nil {
		if c := m.lib.Clip(cue); c != nil {
			out = append(out, strategy{outcome: OutcomeClip, start: m.clipStarter(c)})
		}
		if f := m.lib.Fallback(); f != nil {
			out = append(out, strategy{outcome: OutcomeFallback, start: m.clipStarter(f)})
		}
	}
	if m.tone != nil {
		out = append(out, strategy{outcome: OutcomeTone, start: func(ctx context.Context, _ bool) (<-chan struct{}, func(), error) {
			done, err := m.tone.Beep(ctx)
			return done, func() {}, err
		}})
	}
	return out
}

func (m *Manager) clipStarter(c Clip) starter {
	return func(ctx context.Context, awaitMeta bool) (<-chan struct{}, func(), error) {
		if err := c.Err(); err != nil {
			return nil, nil, err
		}
		if _, known := c.Duration(); !known && awaitMeta {
			awaitOrTimeout(ctx, c.Metadata(), m.metadataWait)
			if err := c.Err(); err != nil {
				return nil, nil, err
			}
		}
		l := m.lockFor(c)
		l.Lock()
		defer l.Unlock()
		c.Rewind()
		c.SetMuted(false)
		c.SetVolume(1)
		done, err := c.Play()
		if err != nil {
			return nil, nil, err
		}
		return done, c.Pause, nil
	}
}

func (m *Manager) lockFor(c Clip) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[c]
	if !ok {
		l = &sync.Mutex{}
		m.locks[c] = l
	}
	return l
}

// Prime performs a muted play/pause cycle on each cue's clip and on the
// shared fallback, sequentially, so later deferred playback is permitted.
func (m *Manager) Prime(ctx context.Context, cues ...Cue) {
	seen := make(map[Clip]bool)
	var clips []Clip
	if m.lib != nil {
		for _, cue := range cues {
			if c := m.lib.Clip(cue); c != nil {
				clips = append(clips, c)
			}
		}
		if f := m.lib.Fallback(); f != nil {
			clips = append(clips, f)
		}
	}
	for _, c := range clips {
		if seen[c] || c.Err() != nil || ctx.Err() != nil {
			continue
		}
		seen[c] = true
		m.primeClip(c)
	}
	if u, ok := m.tone.(Unlocker); ok && ctx.Err() == nil {
		if err := u.Unlock(ctx); err != nil {
			m.debug("tone unlock failed", "error", err)
		}
	}
}

func (m *Manager) primeClip(c Clip) {
	l := m.lockFor(c)
	l.Lock()
	defer l.Unlock()
	c.SetMuted(true)
	if _, err := c.Play(); err != nil {
		m.debug("prime failed", "error", err)
	}
	c.Pause()
	c.Rewind()
	c.SetMuted(false)
}

// Play starts cue through the fallback chain. With WaitForEnd it blocks until
// natural completion, MaxWait or ctx cancellation, pausing the cue on timeout.
func (m *Manager) Play(ctx context.Context, cue Cue, opts PlayOptions) Result {
	pb := m.start(ctx, cue, true)
	res := Result{Outcome: pb.Outcome}
	if opts.WaitForEnd && pb.Outcome != OutcomeSilent {
		res = pb.Wait(ctx, opts.MaxWait)
	}
	m.debug("cue played", "cue", string(cue), "outcome", res.Outcome.String(), "ended", res.Ended, "timed_out", res.TimedOut)
	return res
}

// Start returns as soon as cue is sounding, without waiting for clip
// metadata. The caller decides whether and how long to wait on it.
func (m *Manager) Start(ctx context.Context, cue Cue) Playback {
	pb := m.start(ctx, cue, false)
	m.debug("cue started", "cue", string(cue), "outcome", pb.Outcome.String())
	return pb
}

func (m *Manager) start(ctx context.Context, cue Cue, awaitMeta bool) Playback {
	var errs []error
	for _, s := range m.chain(cue) {
		done, stop, err := m.safeStart(ctx, s, awaitMeta)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.outcome, err))
			continue
		}
		m.vibrate(vibrationFor(s.outcome))
		return Playback{Outcome: s.outcome, Done: done, stop: stop}
	}
	m.vibrate(vibrateNothing)
	if len(errs) > 0 {
		m.debug("cue silent", "cue", string(cue), "error", errors.Join(errs...))
	}
	return Playback{Outcome: OutcomeSilent, Done: closedChan()}
}

func (m *Manager) safeStart(ctx context.Context, s strategy, awaitMeta bool) (done <-chan struct{}, stop func(), err error) {
	defer func() {
		if r := recover(); r != nil {
			done, stop, err = nil, nil, fmt.Errorf("panic: %v", r)
		}
	}()
	done, stop, err = s.start(ctx, awaitMeta)
	if err == nil && done == nil {
		done = closedChan()
	}
	if stop == nil {
		stop = func() {}
	}
	return done, stop, err
}

func vibrationFor(o Outcome) time.Duration {
	if o == OutcomeTone {
		return vibrateTone
	}
	return vibrateClip
}

func (m *Manager) vibrate(d time.Duration) {
	if m.vib == nil {
		return
	}
	defer func() { _ = recover() }()
	_ = m.vib.Vibrate(d)
}

func (m *Manager) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
