package presenter

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/soocke/oshicam-go/domain/capture"
	"github.com/soocke/oshicam-go/domain/compose"
	"github.com/soocke/oshicam-go/domain/delivery"
	"github.com/soocke/oshicam-go/domain/device"
	"github.com/soocke/oshicam-go/domain/snapshot"
	"github.com/soocke/oshicam-go/domain/zoom"
	"github.com/soocke/oshicam-go/settings"
)

// CaptureModel is the view state the presenter writes.
type CaptureModel interface {
	Busy() bool
	SetBusy(bool)
	SetFlash(bool)
	SetCountdown(int)
	SetPlaceholder(bool)
	SetStatus(string)
}

// Trigger narrows the sequencer to what the shutter button and device
// handovers need.
type Trigger interface {
	Capture(ctx context.Context, req capture.Request) (snapshot.Snapshot, error)
	Hold() (release func(), ok bool)
}

// Camera narrows the device negotiator.
type Camera interface {
	zoom.Applier
	Acquire(ctx context.Context, facing device.Facing) error
	SwitchFacing(ctx context.Context) (device.Facing, error)
	Available() bool
	Capabilities() device.Capabilities
	SetTorch(ctx context.Context, on bool) bool
	TorchOn() bool
	FocusAt(ctx context.Context, x, y float64)
}

// SettingsStore persists settings on every change.
type SettingsStore interface {
	Save(settings.Settings) error
}

// Deliverer hands snapshots to the user.
type Deliverer interface {
	Deliver(ctx context.Context, snap snapshot.Snapshot) delivery.Ack
	CopyToClipboard(ctx context.Context, snap snapshot.Snapshot) delivery.Ack
}

// CapturePresenter owns the camera controls: shutter, facing switch, zoom,
// torch, and the persisted settings behind them.
type CapturePresenter struct {
	model    CaptureModel
	trigger  Trigger
	camera   Camera
	store    SettingsStore
	deliver  Deliverer
	overlays settings.OverlaySet
	logger   *slog.Logger

	mu       sync.Mutex
	settings settings.Settings
	zoom     *zoom.Controller
}

// NewCapturePresenter returns a presenter starting from s. store, deliver and
// overlays may be nil.
func NewCapturePresenter(model CaptureModel, trigger Trigger, camera Camera, store SettingsStore, deliver Deliverer, overlays settings.OverlaySet, s settings.Settings, logger *slog.Logger) *CapturePresenter {
	p := &CapturePresenter{model: model, trigger: trigger, camera: camera, store: store, deliver: deliver, overlays: overlays, settings: s, logger: logger}
	p.resetZoomLocked()
	return p
}

// Bind subscribes the presenter's model to sequencer notifications.
func (p *CapturePresenter) Bind(seq *capture.Sequencer) {
	if p == nil || seq == nil {
		return
	}
	seq.AddStateListener(p.OnState)
	seq.AddCountdownListener(p.OnCountdown)
	seq.AddFlashListener(p.OnFlash)
}

// OnState mirrors the sequencer's busy flag into the model.
func (p *CapturePresenter) OnState(_, next capture.State) {
	if p == nil || p.model == nil {
		return
	}
	p.model.SetBusy(next != capture.StateIdle)
	if next == capture.StateIdle {
		p.model.SetCountdown(0)
	}
}

func (p *CapturePresenter) OnCountdown(remaining int) {
	if p == nil || p.model == nil {
		return
	}
	p.model.SetCountdown(remaining)
}

func (p *CapturePresenter) OnFlash(on bool) {
	if p == nil || p.model == nil {
		return
	}
	p.model.SetFlash(on)
}

// Start acquires the device for the saved facing. A failed acquisition
// leaves the presenter in placeholder mode and is not an error.
func (p *CapturePresenter) Start(ctx context.Context) {
	if p == nil || p.camera == nil {
		return
	}
	err := p.camera.Acquire(ctx, p.Settings().Facing)
	p.afterAcquire(err)
}

// Reacquire retries acquisition, e.g. after the device disappeared.
func (p *CapturePresenter) Reacquire(ctx context.Context) bool {
	if p == nil || p.camera == nil {
		return false
	}
	release, ok := p.hold()
	if !ok {
		return false
	}
	defer release()
	p.Start(ctx)
	return p.camera.Available()
}

// hold claims the trigger so no shutter press can start mid-handover.
func (p *CapturePresenter) hold() (release func(), ok bool) {
	if p.trigger == nil {
		return func() {}, true
	}
	return p.trigger.Hold()
}

func (p *CapturePresenter) afterAcquire(err error) {
	p.mu.Lock()
	p.resetZoomLocked()
	p.mu.Unlock()
	if p.model != nil {
		p.model.SetPlaceholder(!p.camera.Available())
	}
	if err != nil {
		p.status("Camera unavailable")
		if p.logger != nil {
			p.logger.Warn("placeholder mode", "error", err)
		}
	}
}

func (p *CapturePresenter) resetZoomLocked() {
	var caps device.Capabilities
	var applier zoom.Applier
	if p.camera != nil {
		caps = p.camera.Capabilities()
		applier = p.camera
	}
	p.zoom = zoom.New(caps, applier, p.logger)
}

// Settings returns the current settings.
func (p *CapturePresenter) Settings() settings.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

// Zoom returns the current zoom state.
func (p *CapturePresenter) Zoom() zoom.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.zoom.State()
}

// Request builds the compose request for the current controls. The
// viewfinder renders with it too, so preview and capture agree.
func (p *CapturePresenter) Request() compose.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return compose.Request{
		Aspect:    p.settings.Aspect,
		OverlayID: p.settings.OverlayID,
		Zoom:      p.zoom.State(),
		Mirror:    p.settings.Facing.Mirrored(),
	}
}

// Guide reports whether the rule-of-thirds guide is on.
func (p *CapturePresenter) Guide() bool { return p.Settings().Guide }

// Shutter runs one capture ritual. A press while a capture is in flight is
// rejected with capture.ErrBusy.
func (p *CapturePresenter) Shutter(ctx context.Context) (snapshot.Snapshot, error) {
	if p == nil || p.trigger == nil {
		return snapshot.Snapshot{}, errors.New("presenter: no trigger")
	}
	s := p.Settings()
	req := capture.Request{
		Request:          p.Request(),
		CountdownSeconds: s.CountdownSeconds,
		AudioEnabled:     s.AudioEnabled,
	}
	snap, err := p.trigger.Capture(ctx, req)
	if errors.Is(err, capture.ErrBusy) {
		return snap, err
	}
	if err != nil {
		p.status("Capture cancelled")
		return snap, err
	}
	if !snap.Valid() {
		p.status("Capture failed")
	}
	return snap, nil
}

// Save delivers snap (share, else download) and reports the ack.
func (p *CapturePresenter) Save(ctx context.Context, snap snapshot.Snapshot) delivery.Ack {
	if p == nil || p.deliver == nil {
		return delivery.Ack{Message: "Saving not available"}
	}
	ack := p.deliver.Deliver(ctx, snap)
	p.status(ack.Message)
	return ack
}

// Copy places snap on the clipboard.
func (p *CapturePresenter) Copy(ctx context.Context, snap snapshot.Snapshot) delivery.Ack {
	if p == nil || p.deliver == nil {
		return delivery.Ack{Method: delivery.MethodClipboard, Message: "Clipboard not supported"}
	}
	ack := p.deliver.CopyToClipboard(ctx, snap)
	p.status(ack.Message)
	return ack
}

// SwitchFacing flips front/back. It is rejected during a capture, and holds
// the trigger while switching so no capture can start mid-handover.
func (p *CapturePresenter) SwitchFacing(ctx context.Context) error {
	if p == nil || p.camera == nil {
		return nil
	}
	release, ok := p.hold()
	if !ok {
		return capture.ErrBusy
	}
	defer release()
	next, err := p.camera.SwitchFacing(ctx)
	p.update(func(s *settings.Settings) { s.Facing = next })
	p.afterAcquire(err)
	return nil
}

// SetZoom clamps and applies v, returning the effective value.
func (p *CapturePresenter) SetZoom(ctx context.Context, v float64) float64 {
	p.mu.Lock()
	z := p.zoom
	p.mu.Unlock()
	return z.SetZoom(ctx, v)
}

// ToggleTorch flips the torch where supported and returns its state.
func (p *CapturePresenter) ToggleTorch(ctx context.Context) bool {
	if p == nil || p.camera == nil {
		return false
	}
	return p.camera.SetTorch(ctx, !p.camera.TorchOn())
}

// FocusAt requests point-of-interest focus at normalized (x, y).
func (p *CapturePresenter) FocusAt(ctx context.Context, x, y float64) {
	if p == nil || p.camera == nil {
		return
	}
	p.camera.FocusAt(ctx, x, y)
}

// SetOverlay selects a known overlay. Unknown ids are ignored.
func (p *CapturePresenter) SetOverlay(id string) bool {
	if p.overlays != nil && !p.overlays.Has(id) {
		return false
	}
	p.update(func(s *settings.Settings) { s.OverlayID = id })
	return true
}

func (p *CapturePresenter) SetAspect(a compose.Aspect) {
	p.update(func(s *settings.Settings) { s.Aspect = a })
}

// SetTimer accepts 0, 3 or 5 seconds.
func (p *CapturePresenter) SetTimer(sec int) bool {
	if !settings.ValidTimer(sec) {
		return false
	}
	p.update(func(s *settings.Settings) { s.CountdownSeconds = sec })
	return true
}

func (p *CapturePresenter) SetGuide(on bool) {
	p.update(func(s *settings.Settings) { s.Guide = on })
}

func (p *CapturePresenter) SetAudio(on bool) {
	p.update(func(s *settings.Settings) { s.AudioEnabled = on })
}

func (p *CapturePresenter) update(fn func(*settings.Settings)) {
	p.mu.Lock()
	before := p.settings
	fn(&p.settings)
	after := p.settings
	p.mu.Unlock()
	if after == before || p.store == nil {
		return
	}
	if err := p.store.Save(after); err != nil && p.logger != nil {
		p.logger.Warn("settings save failed", "error", err)
	}
}

func (p *CapturePresenter) status(msg string) {
	if p.model != nil && msg != "" {
		p.model.SetStatus(msg)
	}
}
