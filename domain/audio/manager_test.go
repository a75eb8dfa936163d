package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClip plays for its duration using a timer.
type fakeClip struct {
	mu       sync.Mutex
	err      error
	dur      time.Duration
	known    bool
	meta     chan struct{}
	muted    bool
	volume   float64
	plays    int
	pauses   int
	rewinds  int
	mutedLog []bool
	done     chan struct{}
	timer    *time.Timer
}

func newFakeClip(d time.Duration) *fakeClip {
	c := &fakeClip{dur: d, known: true, meta: make(chan struct{})}
	close(c.meta)
	return c
}

func (c *fakeClip) Err() error { return c.err }
func (c *fakeClip) Duration() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dur, c.known
}
func (c *fakeClip) Metadata() <-chan struct{} { return c.meta }
func (c *fakeClip) SetMuted(m bool)           { c.mu.Lock(); c.muted = m; c.mu.Unlock() }
func (c *fakeClip) SetVolume(v float64)       { c.mu.Lock(); c.volume = v; c.mu.Unlock() }
func (c *fakeClip) Rewind()                   { c.mu.Lock(); c.rewinds++; c.mu.Unlock() }
func (c *fakeClip) Play() (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
	c.mutedLog = append(c.mutedLog, c.muted)
	done := make(chan struct{})
	c.done = done
	c.timer = time.AfterFunc(c.dur, func() { c.finish(done) })
	return done, nil
}
func (c *fakeClip) Pause() {
	c.mu.Lock()
	c.pauses++
	done := c.done
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()
	if done != nil {
		c.finish(done)
	}
}
func (c *fakeClip) finish(done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == done {
		close(done)
		c.done = nil
	}
}

type fakeLibrary struct {
	clips    map[Cue]Clip
	fallback Clip
}

func (l *fakeLibrary) Clip(cue Cue) Clip {
	if c, ok := l.clips[cue]; ok {
		return c
	}
	return nil
}
func (l *fakeLibrary) Fallback() Clip { return l.fallback }

type fakeTone struct {
	beeps    int
	err      error
	unlocked int
}

func (t *fakeTone) Beep(context.Context) (<-chan struct{}, error) {
	t.beeps++
	if t.err != nil {
		return nil, t.err
	}
	return closedChan(), nil
}
func (t *fakeTone) Unlock(context.Context) error { t.unlocked++; return nil }

type fakeVibrator struct{ pulses []time.Duration }

func (v *fakeVibrator) Vibrate(d time.Duration) error {
	v.pulses = append(v.pulses, d)
	return errors.New("no motor")
}

func TestPlay_FallbackDurationGovernsWait(t *testing.T) {
	primary := newFakeClip(2 * time.Second)
	primary.err = ErrMissing
	fallback := newFakeClip(120 * time.Millisecond)
	vib := &fakeVibrator{}
	m := NewManager(Options{
		Library:  &fakeLibrary{clips: map[Cue]Clip{CuePreRoll: primary}, fallback: fallback},
		Vibrator: vib,
	})

	start := time.Now()
	res := m.Play(context.Background(), CuePreRoll, PlayOptions{WaitForEnd: true, MaxWait: 5 * time.Second})
	elapsed := time.Since(start)

	if res.Outcome != OutcomeFallback || !res.Ended {
		t.Fatalf("unexpected result %+v", res)
	}
	if elapsed < 120*time.Millisecond {
		t.Fatalf("resolved before fallback finished: %v", elapsed)
	}
	if elapsed > time.Second {
		t.Fatalf("waited for the primary's duration: %v", elapsed)
	}
	if primary.plays != 0 {
		t.Fatalf("missing primary was played")
	}
	if fallback.volume != 1 || fallback.rewinds != 1 {
		t.Fatalf("fallback not reset: volume=%v rewinds=%d", fallback.volume, fallback.rewinds)
	}
	if len(vib.pulses) != 1 || vib.pulses[0] != vibrateClip {
		t.Fatalf("vibration %v", vib.pulses)
	}
}

func TestPlay_TimeoutPausesCue(t *testing.T) {
	clip := newFakeClip(5 * time.Second)
	m := NewManager(Options{Library: &fakeLibrary{clips: map[Cue]Clip{CueShutter: clip}}})
	start := time.Now()
	res := m.Play(context.Background(), CueShutter, PlayOptions{WaitForEnd: true, MaxWait: 50 * time.Millisecond})
	if !res.TimedOut || res.Ended {
		t.Fatalf("expected timeout, got %+v", res)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not honored")
	}
	if clip.pauses != 1 {
		t.Fatalf("expected forced pause, got %d", clip.pauses)
	}
}

func TestPlay_NoWaitReturnsImmediately(t *testing.T) {
	clip := newFakeClip(time.Second)
	m := NewManager(Options{Library: &fakeLibrary{clips: map[Cue]Clip{CuePostRoll: clip}}})
	start := time.Now()
	res := m.Play(context.Background(), CuePostRoll, PlayOptions{})
	if res.Outcome != OutcomeClip || time.Since(start) > 200*time.Millisecond {
		t.Fatalf("res=%+v elapsed=%v", res, time.Since(start))
	}
	clip.Pause()
}

func TestPlay_UnknownDurationWaitIsBounded(t *testing.T) {
	clip := newFakeClip(10 * time.Millisecond)
	clip.known = false
	clip.meta = make(chan struct{}) // never closes
	m := NewManager(Options{
		Library:      &fakeLibrary{clips: map[Cue]Clip{CueShutter: clip}},
		MetadataWait: 40 * time.Millisecond,
	})
	start := time.Now()
	res := m.Play(context.Background(), CueShutter, PlayOptions{})
	if res.Outcome != OutcomeClip {
		t.Fatalf("expected playback after bounded wait, got %+v", res)
	}
	if d := time.Since(start); d < 40*time.Millisecond || d > time.Second {
		t.Fatalf("metadata wait not bounded as expected: %v", d)
	}
}

func TestPlay_ChainExhaustsToToneThenSilent(t *testing.T) {
	broken := newFakeClip(time.Second)
	broken.err = errors.New("decode error")
	tone := &fakeTone{}
	vib := &fakeVibrator{}
	m := NewManager(Options{
		Library:  &fakeLibrary{clips: map[Cue]Clip{CueShutter: broken}, fallback: broken},
		Tone:     tone,
		Vibrator: vib,
	})
	if res := m.Play(context.Background(), CueShutter, PlayOptions{WaitForEnd: true}); res.Outcome != OutcomeTone || !res.Ended {
		t.Fatalf("expected tone, got %+v", res)
	}
	tone.err = errors.New("no audio context")
	if res := m.Play(context.Background(), CueShutter, PlayOptions{WaitForEnd: true}); res.Outcome != OutcomeSilent {
		t.Fatalf("expected silent, got %+v", res)
	}
	want := []time.Duration{vibrateTone, vibrateNothing}
	if len(vib.pulses) != 2 || vib.pulses[0] != want[0] || vib.pulses[1] != want[1] {
		t.Fatalf("vibration %v want %v", vib.pulses, want)
	}
}

func TestPlay_NilCollaboratorsAreSilent(t *testing.T) {
	m := NewManager(Options{})
	if res := m.Play(context.Background(), CueShutter, PlayOptions{WaitForEnd: true}); res.Outcome != OutcomeSilent {
		t.Fatalf("got %+v", res)
	}
	m.Prime(context.Background(), CueShutter)
}

func TestPrime_MutedCycleOncePerClip(t *testing.T) {
	shutter := newFakeClip(time.Second)
	shared := newFakeClip(time.Second)
	tone := &fakeTone{}
	m := NewManager(Options{
		Library: &fakeLibrary{clips: map[Cue]Clip{CueShutter: shutter, CuePostRoll: shared}, fallback: shared},
		Tone:    tone,
	})
	m.Prime(context.Background(), CueShutter, CuePostRoll)
	if shutter.plays != 1 || shutter.pauses != 1 || !shutter.mutedLog[0] || shutter.muted {
		t.Fatalf("shutter prime: plays=%d pauses=%d mutedLog=%v muted=%v", shutter.plays, shutter.pauses, shutter.mutedLog, shutter.muted)
	}
	if shared.plays != 1 {
		t.Fatalf("shared clip primed %d times", shared.plays)
	}
	if tone.unlocked != 1 {
		t.Fatalf("tone not unlocked")
	}
}

func TestAwaitOrTimeout(t *testing.T) {
	if awaitOrTimeout(context.Background(), nil, time.Millisecond) {
		t.Fatalf("nil channel reported done")
	}
	if !awaitOrTimeout(context.Background(), closedChan(), 0) {
		t.Fatalf("closed channel not done")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if awaitOrTimeout(ctx, make(chan struct{}), 0) {
		t.Fatalf("cancelled ctx reported done")
	}
}

func TestSynthesizeTone_ShapeAndLength(t *testing.T) {
	const rate = 48000
	pcm := SynthesizeTone(rate)
	frames := len(pcm) / 4
	if frames != int(ToneDuration.Seconds()*rate) {
		t.Fatalf("frames %d", frames)
	}
	sample := func(i int) int16 { return int16(binary.LittleEndian.Uint16(pcm[i*4:])) }
	if s := sample(0); s > 10 || s < -10 {
		t.Fatalf("tone should start near silence, got %d", s)
	}
	var peak int16
	for i := 0; i < frames; i++ {
		if v := sample(i); v > peak {
			peak = v
		}
		if l, r := sample(i), int16(binary.LittleEndian.Uint16(pcm[i*4+2:])); l != r {
			t.Fatalf("channels differ at %d", i)
		}
	}
	if peak < 10000 {
		t.Fatalf("peak too low: %d", peak)
	}
	if SynthesizeTone(0) != nil {
		t.Fatalf("expected nil for invalid rate")
	}
}

func TestStart_SkipsMetadataWaitAndReportsEnd(t *testing.T) {
	clip := newFakeClip(30 * time.Millisecond)
	clip.known = false
	clip.meta = make(chan struct{}) // never closes
	m := NewManager(Options{
		Library:      &fakeLibrary{clips: map[Cue]Clip{CueShutter: clip}},
		MetadataWait: time.Second,
	})
	start := time.Now()
	pb := m.Start(context.Background(), CueShutter)
	if d := time.Since(start); d > 200*time.Millisecond {
		t.Fatalf("Start waited for metadata: %v", d)
	}
	if pb.Outcome != OutcomeClip || clip.plays != 1 {
		t.Fatalf("outcome=%v plays=%d", pb.Outcome, clip.plays)
	}
	if res := pb.Wait(context.Background(), time.Second); !res.Ended || res.TimedOut {
		t.Fatalf("wait result %+v", res)
	}
}

func TestPlayback_WaitTimeoutStops(t *testing.T) {
	clip := newFakeClip(5 * time.Second)
	m := NewManager(Options{Library: &fakeLibrary{clips: map[Cue]Clip{CueShutter: clip}}})
	pb := m.Start(context.Background(), CueShutter)
	if res := pb.Wait(context.Background(), 20*time.Millisecond); !res.TimedOut {
		t.Fatalf("expected timeout, got %+v", res)
	}
	if clip.pauses != 1 {
		t.Fatalf("pauses=%d", clip.pauses)
	}
	if res := (Playback{}).Wait(context.Background(), 0); !res.Ended {
		t.Fatalf("zero playback must count as ended")
	}
	if pb := NewManager(Options{}).Start(context.Background(), CueShutter); pb.Outcome != OutcomeSilent {
		t.Fatalf("nil library outcome %v", pb.Outcome)
	}
}
