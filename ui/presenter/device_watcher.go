package presenter

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/oshicam-go/domain/capture"
)

// Availability reports whether a live device handle exists.
type Availability interface{ Available() bool }

// Reacquirer retries device acquisition and reports success.
type Reacquirer interface {
	Reacquire(ctx context.Context) bool
}

// DeviceWatcher polls for a lost or missing device and retries acquisition
// with exponential backoff. Polling pauses while a capture is in flight.
type DeviceWatcher struct {
	Camera     Availability
	Target     Reacquirer
	Logger     *slog.Logger
	interval   time.Duration
	maxBackoff time.Duration

	running atomic.Bool
	paused  atomic.Bool
	mu      sync.Mutex
	done    chan struct{}

	backoff time.Duration
	nextTry time.Time
}

// NewDeviceWatcher constructs a watcher polling every interval (250ms when
// zero).
func NewDeviceWatcher(cam Availability, target Reacquirer, logger *slog.Logger, interval time.Duration) *DeviceWatcher {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &DeviceWatcher{Camera: cam, Target: target, Logger: logger, interval: interval, maxBackoff: 30 * time.Second}
}

// OnState is a capture.StateListener; non-idle states pause polling.
func (w *DeviceWatcher) OnState(_, next capture.State) {
	if w == nil {
		return
	}
	w.paused.Store(next != capture.StateIdle)
}

// Start begins polling until ctx ends or Stop is called. Idempotent.
func (w *DeviceWatcher) Start(ctx context.Context) {
	if w == nil || w.Camera == nil || w.Target == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running.Load() {
		return
	}
	w.done = make(chan struct{})
	w.backoff = 0
	w.nextTry = time.Time{}
	w.running.Store(true)
	go w.loop(ctx, w.done)
}

// Stop ends polling. Idempotent.
func (w *DeviceWatcher) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running.Load() {
		return
	}
	close(w.done)
	w.running.Store(false)
}

// Running reports whether the poll loop is active.
func (w *DeviceWatcher) Running() bool { return w != nil && w.running.Load() }

func (w *DeviceWatcher) loop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			w.poll(ctx, now)
		case <-done:
			return
		case <-ctx.Done():
			w.Stop()
			return
		}
	}
}

func (w *DeviceWatcher) poll(ctx context.Context, now time.Time) {
	if w.paused.Load() || w.Camera.Available() {
		w.backoff = 0
		return
	}
	if now.Before(w.nextTry) {
		return
	}
	if w.Target.Reacquire(ctx) {
		w.backoff = 0
		if w.Logger != nil {
			w.Logger.Info("device reacquired")
		}
		return
	}
	if w.backoff == 0 {
		w.backoff = w.interval
	} else {
		w.backoff = min(w.backoff*2, w.maxBackoff)
	}
	w.nextTry = now.Add(w.backoff)
	if w.Logger != nil {
		w.Logger.Debug("device reacquire failed", "retry_in", w.backoff)
	}
}
