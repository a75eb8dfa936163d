// Package otoplay plays audio cues on the host output device through oto.
package otoplay

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/soocke/oshicam-go/domain/audio"
)

// SampleRate is the output rate; assets at other rates are resampled.
const SampleRate = 48000

const pollInterval = 10 * time.Millisecond

// Output owns the oto context shared by every clip and the tone.
type Output struct {
	ctx *oto.Context
}

// NewOutput opens the host audio device and waits until it is ready.
func NewOutput(ctx context.Context) (*Output, error) {
	octx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("otoplay: %w", err)
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Output{ctx: octx}, nil
}

// Unlock resumes the output after a suspend.
func (o *Output) Unlock(context.Context) error { return o.ctx.Resume() }

// Beep plays the synthesized shutter tone.
func (o *Output) Beep(context.Context) (<-chan struct{}, error) {
	p := o.ctx.NewPlayer(bytes.NewReader(audio.SynthesizeTone(SampleRate)))
	p.Play()
	done := make(chan struct{})
	go watch(p, done, nil, func() { _ = p.Close() })
	return done, nil
}

// player is the part of *oto.Player that watch polls.
type player interface {
	IsPlaying() bool
}

// watch closes done once p stops playing or stop fires. release, when set,
// runs before done closes.
func watch(p player, done chan struct{}, stop <-chan struct{}, release func()) {
	defer close(done)
	if release != nil {
		defer release()
	}
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !p.IsPlaying() {
				return
			}
		}
	}
}

// Library loads cue assets from an fs.FS in the background, so durations
// become known asynchronously.
type Library struct {
	out      *Output
	clips    map[audio.Cue]*clip
	fallback *clip
}

// Assets maps cues to file names inside the file system.
type Assets struct {
	Cues     map[audio.Cue]string
	Fallback string
}

// Load starts decoding every asset. Missing files yield clips whose Err is
// audio.ErrMissing.
func Load(out *Output, fsys fs.FS, a Assets, logger *slog.Logger) *Library {
	l := &Library{out: out, clips: make(map[audio.Cue]*clip)}
	for cue, name := range a.Cues {
		l.clips[cue] = newClip(out, fsys, name, logger)
	}
	if a.Fallback != "" {
		l.fallback = newClip(out, fsys, a.Fallback, logger)
	}
	return l
}

func (l *Library) Clip(cue audio.Cue) audio.Clip {
	if c, ok := l.clips[cue]; ok {
		return c
	}
	return nil
}

func (l *Library) Fallback() audio.Clip {
	if l.fallback == nil {
		return nil
	}
	return l.fallback
}

type clip struct {
	out  *Output
	name string
	meta chan struct{}

	mu     sync.Mutex
	err    error
	pcm    []byte
	dur    time.Duration
	known  bool
	muted  bool
	volume float64
	player *oto.Player
	stop   chan struct{}
}

func newClip(out *Output, fsys fs.FS, name string, logger *slog.Logger) *clip {
	c := &clip{out: out, name: name, meta: make(chan struct{}), volume: 1}
	go func() {
		defer close(c.meta)
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			c.fail(fmt.Errorf("%w: %s: %w", audio.ErrMissing, name, err), logger)
			return
		}
		p, err := decode(name, raw)
		if err != nil {
			c.fail(err, logger)
			return
		}
		p = resample(p, SampleRate)
		c.mu.Lock()
		c.pcm = p.data
		c.dur = time.Duration(len(p.data)/4) * time.Second / SampleRate
		c.known = true
		c.mu.Unlock()
	}()
	return c
}

func (c *clip) fail(err error, logger *slog.Logger) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	if logger != nil {
		logger.Debug("audio asset unavailable", "asset", c.name, "error", err)
	}
}

func (c *clip) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *clip) Duration() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dur, c.known
}

func (c *clip) Metadata() <-chan struct{} { return c.meta }

func (c *clip) SetMuted(m bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = m
	c.applyVolume()
}

func (c *clip) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = v
	c.applyVolume()
}

func (c *clip) applyVolume() {
	if c.player == nil {
		return
	}
	if c.muted {
		c.player.SetVolume(0)
		return
	}
	c.player.SetVolume(c.volume)
}

// Rewind discards the current player; the next Play starts from zero.
func (c *clip) Rewind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	if c.player != nil {
		_ = c.player.Close()
		c.player = nil
	}
}

func (c *clip) Play() (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	if !c.known {
		return nil, fmt.Errorf("otoplay: %s not loaded", c.name)
	}
	c.stopLocked()
	if c.player == nil {
		c.player = c.out.ctx.NewPlayer(bytes.NewReader(c.pcm))
	}
	c.applyVolume()
	c.player.Play()
	done := make(chan struct{})
	c.stop = make(chan struct{})
	go watch(c.player, done, c.stop, nil)
	return done, nil
}

func (c *clip) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player != nil {
		c.player.Pause()
	}
	c.stopLocked()
}

func (c *clip) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

var (
	_ audio.Library  = (*Library)(nil)
	_ audio.Clip     = (*clip)(nil)
	_ audio.Tone     = (*Output)(nil)
	_ audio.Unlocker = (*Output)(nil)
)
