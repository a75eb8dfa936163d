package app

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/soocke/oshicam-go/assets"
	"github.com/soocke/oshicam-go/config"
	"github.com/soocke/oshicam-go/domain/audio"
	"github.com/soocke/oshicam-go/domain/audio/otoplay"
	"github.com/soocke/oshicam-go/domain/capture"
	"github.com/soocke/oshicam-go/domain/compose"
	"github.com/soocke/oshicam-go/domain/delivery"
	"github.com/soocke/oshicam-go/domain/device"
	"github.com/soocke/oshicam-go/domain/device/gocvdev"
	"github.com/soocke/oshicam-go/domain/device/piondev"
	"github.com/soocke/oshicam-go/domain/device/screendev"
	"github.com/soocke/oshicam-go/domain/overlay"
	"github.com/soocke/oshicam-go/domain/preview"
	"github.com/soocke/oshicam-go/domain/snapshot"
	"github.com/soocke/oshicam-go/settings"
	"github.com/soocke/oshicam-go/ui/model"
	"github.com/soocke/oshicam-go/ui/presenter"
	"github.com/soocke/oshicam-go/ui/view"
)

// Viewfinder output bounds for the console view.
const (
	previewMaxW = 480
	previewMaxH = 640
)

// BuildOptions carries the per-run inputs that are not part of Config.
type BuildOptions struct {
	SettingsDir string // empty uses the xdg state dir
	Launch      string // query-like launch parameters
	PreviewPath string // viewfinder PNG written by the console view, optional
	Silent      bool   // skip opening the audio output
}

// Container assembles models, services, presenters and the console view.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Assets     fs.FS
	Camera     *device.Negotiator
	Preview    *preview.Service
	Audio      *audio.Manager
	Overlays   *overlay.Registry
	Refs       *snapshot.Registry
	Store      *snapshot.Store
	Compositor *compose.Compositor
	Sequencer  *capture.Sequencer
	Delivery   *delivery.Deliverer
	Settings   *settings.Store

	Capture *model.CaptureModel
	Session *model.SessionModel
	View    *view.ConsoleView

	// Presenters
	CapturePresenter    *presenter.CapturePresenter
	StatePresenter      *presenter.StatePresenter
	ViewfinderPresenter *presenter.ViewfinderPresenter
	GalleryPresenter    *presenter.GalleryPresenter
	Watcher             *presenter.DeviceWatcher
	Loop                *presenter.Loop
}

// BuildContainer constructs all components. Side effects are limited to
// opening the audio output and reading settings; the device is acquired by
// App.Run.
func BuildContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, o BuildOptions) (*Container, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	_ = cfg.Validate()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Container{Config: cfg, Logger: logger}
	c.Assets = assets.FS(cfg.AssetsDir)

	c.Camera = device.NewNegotiator(backendFor(cfg), cfg.PreferredWidth, cfg.PreferredHeight, logger.With("component", "device"))
	c.Preview = preview.NewService(c.Camera, preview.DefaultInterval, logger.With("component", "preview"))

	src, err := overlay.NewAssetSource(c.Assets, cfg.OverlayCacheSize)
	if err != nil {
		return nil, err
	}
	c.Overlays = overlay.Default(src)
	c.Refs = snapshot.NewRegistry()
	c.Store = snapshot.NewStore(cfg.SnapshotCapacity, c.Refs, logger.With("component", "snapshot"))
	c.Compositor = compose.New(c.Overlays, c.Refs, logger.With("component", "compose"))

	c.Audio = c.buildAudio(ctx, o.Silent)
	c.Sequencer = capture.NewSequencer(capture.Options{
		Audio:          c.Audio,
		Frames:         c.Preview,
		Composer:       c.Compositor,
		Store:          c.Store,
		Logger:         logger.With("component", "capture"),
		PreRoll:        exists(c.Assets, assets.PreRollSound),
		PostRoll:       exists(c.Assets, assets.PostRollSound),
		CountdownTick:  cfg.CountdownTick(),
		FlashDuration:  cfg.FlashDuration(),
		PreRollMaxWait: cfg.PreRollMaxWait(),
		ShutterMaxWait: cfg.ShutterMaxWait(),
	})

	var sharer delivery.Sharer
	if s := delivery.NewCommandSharer(cfg.ShareCommand); s != nil {
		sharer = s
	}
	var clip delivery.Clipboard
	if cb := delivery.DetectClipboard(); cb != nil {
		clip = cb
	}
	c.Delivery = delivery.New(cfg.OutputDir, sharer, clip, logger.With("component", "delivery"))

	c.Settings = settings.NewStore(o.SettingsDir)
	saved, err := c.Settings.Load(c.Overlays)
	if err != nil {
		logger.Warn("settings unreadable, using defaults", "path", c.Settings.Path(), "error", err)
	}
	initial := settings.ParseLaunch(o.Launch).Apply(saved, c.Overlays)
	if initial != saved {
		if err := c.Settings.Save(initial); err != nil {
			logger.Warn("settings save failed", "error", err)
		}
	}

	c.Capture = &model.CaptureModel{}
	c.Session = model.NewSessionModel()
	c.View = view.NewConsoleView(o.PreviewPath, logger.With("component", "view"))

	c.CapturePresenter = presenter.NewCapturePresenter(c.Capture, c.Sequencer, c.Camera, c.Settings, c.Delivery, c.Overlays, initial, logger.With("component", "presenter"))
	c.CapturePresenter.Bind(c.Sequencer)
	c.StatePresenter = presenter.NewStatePresenter(c.Sequencer, c.View)
	c.Sequencer.AddStateListener(c.StatePresenter.OnState)
	c.ViewfinderPresenter = presenter.NewViewfinderPresenter(c.Preview, c.Compositor, c.CapturePresenter, c.View, previewMaxW, previewMaxH, logger.With("component", "viewfinder"))
	c.GalleryPresenter = presenter.NewGalleryPresenter(c.Session, c.Capture, c.Store, c.View, logger.With("component", "gallery"))
	c.Watcher = presenter.NewDeviceWatcher(c.Camera, c.CapturePresenter, logger.With("component", "watcher"), 0)
	c.Sequencer.AddStateListener(c.Watcher.OnState)
	c.Loop = presenter.NewLoop(c.GalleryPresenter, c.StatePresenter, c.ViewfinderPresenter, nil)
	return c, nil
}

// buildAudio opens the host output. Without one the manager degrades to
// silence (vibration is not available on desktops).
func (c *Container) buildAudio(ctx context.Context, silent bool) *audio.Manager {
	opts := audio.Options{Logger: c.Logger.With("component", "audio"), MetadataWait: c.Config.MetadataWait()}
	if silent {
		return audio.NewManager(opts)
	}
	out, err := otoplay.NewOutput(ctx)
	if err != nil {
		c.Logger.Warn("audio output unavailable", "error", err)
		return audio.NewManager(opts)
	}
	opts.Tone = out
	opts.Library = otoplay.Load(out, c.Assets, otoplay.Assets{
		Cues: map[audio.Cue]string{
			audio.CueShutter:  assets.ShutterSound,
			audio.CuePreRoll:  assets.PreRollSound,
			audio.CuePostRoll: assets.PostRollSound,
		},
		Fallback: assets.FallbackSound,
	}, c.Logger.With("component", "audio"))
	return audio.NewManager(opts)
}

// Close stops background work and releases the device and every snapshot
// reference. Idempotent.
func (c *Container) Close() {
	if c == nil {
		return
	}
	c.Watcher.Stop()
	c.Preview.Stop()
	c.Camera.Release()
	c.Store.Clear()
}

func backendFor(cfg *config.Config) device.Backend {
	switch cfg.Source {
	case config.SourceGoCV:
		return gocvdev.New(cfg.DeviceIndex)
	case config.SourcePion:
		return piondev.New()
	case config.SourceScreen:
		return screendev.New()
	case config.SourceNone:
		return nil
	default:
		return device.Chain{gocvdev.New(cfg.DeviceIndex), piondev.New()}
	}
}

func exists(fsys fs.FS, name string) bool {
	_, err := fs.Stat(fsys, name)
	return err == nil
}
