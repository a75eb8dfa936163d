package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/oshicam-go/domain/capture"
	"github.com/soocke/oshicam-go/domain/delivery"
)

const (
	tick = 100 * time.Millisecond
)

// RunOptions controls one CLI session.
type RunOptions struct {
	Shots int  // captures to take; at least one
	Copy  bool // also copy each snapshot to the clipboard
	// Gap is the pause between consecutive captures.
	Gap time.Duration
}

// Report summarizes a session.
type Report struct {
	Acks        []delivery.Ack
	Placeholder bool
}

// App drives the pipeline without a visual chrome.
type App struct {
	c      *Container
	logger *slog.Logger
}

func New(c *Container) *App {
	return &App{c: c, logger: c.Logger}
}

// Run acquires the device, takes the requested captures, delivers each one
// and releases everything. Cancelling ctx aborts the ritual in progress.
func (a *App) Run(ctx context.Context, o RunOptions) (Report, error) {
	if o.Shots < 1 {
		o.Shots = 1
	}
	c := a.c
	defer c.Close()

	c.CapturePresenter.Start(ctx)
	c.Preview.Start(ctx)
	c.Watcher.Start(ctx)

	loopCtx, stopLoop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.runLoop(loopCtx)
	}()
	defer func() {
		stopLoop()
		wg.Wait()
		c.ViewfinderPresenter.Close()
	}()

	rep := Report{Placeholder: c.Capture.Placeholder()}
	s := c.CapturePresenter.Settings()
	a.logger.Info("session.start",
		"shots", o.Shots,
		"overlay", s.OverlayID,
		"aspect", s.Aspect.String(),
		"facing", s.Facing.String(),
		"timer", s.CountdownSeconds,
		"audio", s.AudioEnabled,
		"placeholder", rep.Placeholder,
	)

	for i := 0; i < o.Shots; i++ {
		if i > 0 && o.Gap > 0 {
			select {
			case <-ctx.Done():
				return rep, ctx.Err()
			case <-time.After(o.Gap):
			}
		}
		snap, err := c.CapturePresenter.Shutter(ctx)
		if err != nil {
			if errors.Is(err, capture.ErrBusy) {
				continue
			}
			return rep, err
		}
		ack := c.CapturePresenter.Save(ctx, snap)
		rep.Acks = append(rep.Acks, ack)
		if ack.OK {
			c.Session.OnDelivered()
		}
		a.logger.Info("snapshot.delivered", "index", i+1, "ok", ack.OK, "method", string(ack.Method), "message", ack.Message, "path", ack.Path)
		if o.Copy {
			cp := c.CapturePresenter.Copy(ctx, snap)
			a.logger.Info("snapshot.copied", "ok", cp.OK, "message", cp.Message)
		}
	}

	if err := c.Settings.Save(c.CapturePresenter.Settings()); err != nil {
		a.logger.Warn("settings save failed", "error", err)
	}
	a.logger.Info("session.end", "stored", c.Store.Len(), "delivered", len(rep.Acks))
	return rep, nil
}

func (a *App) runLoop(ctx context.Context) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.c.Loop.Tick()
		}
	}
}
