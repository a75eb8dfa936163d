package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/soocke/oshicam-go/config"
	"github.com/soocke/oshicam-go/domain/compose"
	"github.com/soocke/oshicam-go/domain/delivery"
	"github.com/soocke/oshicam-go/settings"
)

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Source = config.SourceNone
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.CountdownTickMs = 1
	cfg.FlashMs = 1
	cfg.ShutterMaxWaitMs = 1
	return cfg
}

func TestBuildContainer_WiresOverlaysAndLaunch(t *testing.T) {
	dir := t.TempDir()
	c, err := BuildContainer(context.Background(), testConfig(t), discardLogger, BuildOptions{
		SettingsDir: dir,
		Launch:      "frame=polaroid&aspect=1:1&timer=5",
		Silent:      true,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()
	for _, id := range []string{"sparkle", "ribbon", "neon", "polaroid", "stars"} {
		if !c.Overlays.Has(id) {
			t.Fatalf("overlay %s not registered: %v", id, c.Overlays.IDs())
		}
	}
	s := c.CapturePresenter.Settings()
	if s.OverlayID != "polaroid" || s.Aspect != compose.Aspect1x1 || s.CountdownSeconds != 5 {
		t.Fatalf("launch params not applied: %+v", s)
	}
	saved, err := settings.NewStore(dir).Load(c.Overlays)
	if err != nil || saved != s {
		t.Fatalf("launch-resolved settings should be persisted: %+v err=%v", saved, err)
	}
}

func TestApp_RunPlaceholderSession(t *testing.T) {
	cfg := testConfig(t)
	c, err := BuildContainer(context.Background(), cfg, discardLogger, BuildOptions{
		SettingsDir: t.TempDir(),
		PreviewPath: filepath.Join(t.TempDir(), "viewfinder.png"),
		Silent:      true,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	rep, err := New(c).Run(context.Background(), RunOptions{Shots: 2})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !rep.Placeholder {
		t.Fatalf("no backend should mean placeholder mode")
	}
	if len(rep.Acks) != 2 {
		t.Fatalf("expected 2 acks, got %+v", rep.Acks)
	}
	for _, ack := range rep.Acks {
		if !ack.OK || ack.Method != delivery.MethodDownload {
			t.Fatalf("unexpected ack %+v", ack)
		}
		if _, err := os.Stat(ack.Path); err != nil {
			t.Fatalf("downloaded file missing: %v", err)
		}
	}
	if c.Store.Len() != 0 || c.Refs.Live() != 0 {
		t.Fatalf("shutdown must release every snapshot, len=%d live=%d", c.Store.Len(), c.Refs.Live())
	}
}

func TestApp_RunCancelled(t *testing.T) {
	cfg := testConfig(t)
	cfg.CountdownTickMs = 10000
	c, err := BuildContainer(context.Background(), cfg, discardLogger, BuildOptions{SettingsDir: t.TempDir(), Silent: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(c).Run(ctx, RunOptions{Shots: 1}); err == nil {
		t.Fatalf("cancelled run should fail")
	}
}

func TestBackendFor(t *testing.T) {
	cases := map[string]string{
		config.SourceAuto:   "gocv+pion",
		config.SourceGoCV:   "gocv",
		config.SourcePion:   "pion",
		config.SourceScreen: "screen",
	}
	for src, want := range cases {
		cfg := config.DefaultConfig()
		cfg.Source = src
		if got := backendFor(cfg).Name(); got != want {
			t.Fatalf("%s: got %s want %s", src, got, want)
		}
	}
	cfg := config.DefaultConfig()
	cfg.Source = config.SourceNone
	if backendFor(cfg) != nil {
		t.Fatalf("none should have no backend")
	}
}
