package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Registers the V4L2/AVFoundation camera driver with mediadevices.
	_ "github.com/pion/mediadevices/pkg/driver/camera"

	"github.com/soocke/oshicam-go/app"
	"github.com/soocke/oshicam-go/config"
	"github.com/soocke/oshicam-go/debug"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfgPath  = flag.String("config", "", "config file (default: $XDG_CONFIG_HOME/oshicam/config.json)")
		dbg      = flag.Bool("debug", false, "debug logging and runtime stats")
		source   = flag.String("source", "", "capture backend: auto, gocv, pion, screen, none")
		launch   = flag.String("launch", "", `launch parameters, e.g. "frame=ribbon&aspect=1:1&timer=5"`)
		shots    = flag.Int("shots", 1, "number of captures to take")
		gap      = flag.Duration("gap", 0, "pause between captures")
		out      = flag.String("out", "", "download directory")
		assets   = flag.String("assets", "", "directory whose frames/ and sounds/ shadow the bundled assets")
		preview  = flag.String("preview", "", "write the live viewfinder to this PNG file")
		copyClip = flag.Bool("copy", false, "also copy each capture to the clipboard")
		silent   = flag.Bool("silent", false, "do not open the audio output")
		stateDir = flag.String("state-dir", "", "settings directory (default: $XDG_STATE_HOME/oshicam)")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *dbg {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	path := *cfgPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			logger.Warn("config path unavailable", "error", err)
		}
		path = p
	}
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			logger.Warn("config unreadable, using defaults", "path", path, "error", err)
		}
		cfg = loaded
	}
	if *dbg {
		cfg.Debug = true
	}
	if *source != "" {
		cfg.Source = *source
	}
	if *out != "" {
		cfg.OutputDir = *out
	}
	if *assets != "" {
		cfg.AssetsDir = *assets
	}
	_ = cfg.Validate()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Debug {
		debug.StartGoroutineLogger(ctx, 5*time.Second, logger)
		debug.StartMemLogger(ctx, 5*time.Second, logger)
	}

	c, err := app.BuildContainer(ctx, cfg, logger, app.BuildOptions{
		SettingsDir: *stateDir,
		Launch:      *launch,
		PreviewPath: *preview,
		Silent:      *silent,
	})
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	rep, err := app.New(c).Run(ctx, app.RunOptions{Shots: *shots, Copy: *copyClip, Gap: *gap})
	for _, ack := range rep.Acks {
		if ack.Path != "" {
			fmt.Println(ack.Path)
		}
	}
	if err != nil {
		logger.Error("session aborted", "error", err)
		return 1
	}
	return 0
}
