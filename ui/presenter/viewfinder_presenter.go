package presenter

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/oshicam-go/domain/compose"
	"github.com/soocke/oshicam-go/domain/preview"
	"github.com/soocke/oshicam-go/ui/images"
)

// FrameSource supplies the most recent preview frame.
type FrameSource interface {
	Running() bool
	Snapshot() preview.FrameSnapshot
}

// Renderer draws a frame the way a capture would.
type Renderer interface {
	Render(req compose.Request, frame image.Image) *image.RGBA
}

// Controls reports the live control state the viewfinder follows.
type Controls interface {
	Request() compose.Request
	Guide() bool
}

// ViewfinderView receives rendered viewfinder images.
type ViewfinderView interface {
	UpdatePreview(img image.Image)
}

type renderTask struct {
	seq   uint64
	frame image.Image
	req   compose.Request
	guide bool
}

type renderResult struct {
	seq      uint64
	img      image.Image
	duration time.Duration
}

// ViewfinderPresenter renders preview frames off the tick goroutine and
// pushes finished images to the view. Only the newest task and result are
// kept; stale work is dropped.
type ViewfinderPresenter struct {
	Source   FrameSource
	Renderer Renderer
	Controls Controls
	View     ViewfinderView
	MaxW     int
	MaxH     int
	logger   *slog.Logger

	workerOnce sync.Once
	workCh     chan renderTask
	resultCh   chan renderResult

	lastSeq   uint64
	lastReq   compose.Request
	lastGuide bool
	rendered  bool
}

// NewViewfinderPresenter constructs a viewfinder presenter fitting output
// within maxW x maxH.
func NewViewfinderPresenter(source FrameSource, renderer Renderer, controls Controls, view ViewfinderView, maxW, maxH int, logger *slog.Logger) *ViewfinderPresenter {
	return &ViewfinderPresenter{
		Source:   source,
		Renderer: renderer,
		Controls: controls,
		View:     view,
		MaxW:     maxW,
		MaxH:     maxH,
		logger:   logger,
		workCh:   make(chan renderTask, 1),
		resultCh: make(chan renderResult, 1),
	}
}

// ProcessFrame drains finished renders and schedules the next one when the
// frame or the controls changed.
func (p *ViewfinderPresenter) ProcessFrame() {
	if p == nil || p.Source == nil || p.Renderer == nil || p.Controls == nil || p.View == nil {
		return
	}
	p.ensureWorker()

	select {
	case res := <-p.resultCh:
		p.View.UpdatePreview(res.img)
		if p.logger != nil {
			p.logger.Debug("viewfinder rendered", "sequence", res.seq, "duration", res.duration)
		}
	default:
	}

	req, guide := p.Controls.Request(), p.Controls.Guide()
	var snap preview.FrameSnapshot
	if p.Source.Running() {
		snap = p.Source.Snapshot()
	}
	if p.rendered && snap.Sequence == p.lastSeq && req == p.lastReq && guide == p.lastGuide {
		return
	}
	p.rendered = true
	p.lastSeq, p.lastReq, p.lastGuide = snap.Sequence, req, guide

	task := renderTask{seq: snap.Sequence, req: req, guide: guide}
	// A nil *image.RGBA must stay a nil interface so the compositor falls
	// back to the placeholder.
	if snap.Image != nil {
		task.frame = snap.Image
	}
	p.dispatch(task)
}

func (p *ViewfinderPresenter) ensureWorker() {
	p.workerOnce.Do(func() {
		go p.runWorker()
	})
}

func (p *ViewfinderPresenter) runWorker() {
	for task := range p.workCh {
		res := p.render(task)
		select {
		case p.resultCh <- res:
		default:
			select {
			case <-p.resultCh:
			default:
			}
			select {
			case p.resultCh <- res:
			default:
			}
		}
	}
}

func (p *ViewfinderPresenter) render(task renderTask) renderResult {
	start := time.Now()
	canvas := p.Renderer.Render(task.req, task.frame)
	if task.guide {
		images.DrawGuide(canvas, nil)
	}
	return renderResult{
		seq:      task.seq,
		img:      images.ScaleToFit(canvas, p.MaxW, p.MaxH),
		duration: time.Since(start),
	}
}

func (p *ViewfinderPresenter) dispatch(task renderTask) {
	select {
	case p.workCh <- task:
	default:
		select {
		case <-p.workCh:
		default:
		}
		select {
		case p.workCh <- task:
		default:
		}
	}
}

// Close stops the render worker. The presenter must not be used afterwards.
func (p *ViewfinderPresenter) Close() {
	if p == nil {
		return
	}
	p.workerOnce.Do(func() {})
	close(p.workCh)
}
