package view

import (
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/soocke/oshicam-go/fsx"
	"github.com/soocke/oshicam-go/ui/images"
	"github.com/soocke/oshicam-go/ui/model"
	"github.com/soocke/oshicam-go/ui/presenter"
)

// previewWriteInterval throttles viewfinder file writes.
const previewWriteInterval = 500 * time.Millisecond

// UI abstracts the subset of view operations needed by presenters, enabling
// decoupling from the concrete chrome.
type UI interface {
	presenter.StateView
	presenter.ViewfinderView
	presenter.GalleryView
}

// ConsoleView is the headless chrome: state labels and gallery changes go to
// the log, and the viewfinder is optionally mirrored into a PNG file that an
// image viewer can watch.
type ConsoleView struct {
	logger      *slog.Logger
	previewPath string

	mu        sync.Mutex
	label     string
	session   model.SessionValues
	thumbs    int
	lastWrite time.Time
}

func NewConsoleView(previewPath string, logger *slog.Logger) *ConsoleView {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ConsoleView{logger: logger, previewPath: previewPath}
}

func (v *ConsoleView) SetStateLabel(s string) {
	v.mu.Lock()
	v.label = s
	v.mu.Unlock()
	v.logger.Info("state", "label", s)
}

func (v *ConsoleView) UpdatePreview(img image.Image) {
	if v.previewPath == "" || img == nil {
		return
	}
	v.mu.Lock()
	if !v.lastWrite.IsZero() && time.Since(v.lastWrite) < previewWriteInterval {
		v.mu.Unlock()
		return
	}
	v.lastWrite = time.Now()
	v.mu.Unlock()

	dir, name := filepath.Split(v.previewPath)
	if dir == "" {
		dir = "."
	}
	if err := fsx.WriteFileAtomic(dir, name, images.EncodePNG(img)); err != nil {
		v.logger.Warn("preview write failed", "path", v.previewPath, "error", err)
	}
}

func (v *ConsoleView) SetSession(s model.SessionValues) {
	v.mu.Lock()
	v.session = s
	v.mu.Unlock()
}

func (v *ConsoleView) SetGallery(thumbs []image.Image) {
	v.mu.Lock()
	v.thumbs = len(thumbs)
	v.mu.Unlock()
	v.logger.Debug("gallery", "count", len(thumbs))
}

// Label returns the last state label.
func (v *ConsoleView) Label() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.label
}

// Session returns the last session counters pushed to the view.
func (v *ConsoleView) Session() model.SessionValues {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session
}

// Thumbnails returns how many thumbnails the gallery last showed.
func (v *ConsoleView) Thumbnails() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.thumbs
}

var _ UI = (*ConsoleView)(nil)
