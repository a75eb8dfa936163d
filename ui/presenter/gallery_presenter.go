package presenter

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/oshicam-go/domain/snapshot"
	"github.com/soocke/oshicam-go/ui/images"
	"github.com/soocke/oshicam-go/ui/model"
)

// BusyModel reports whether a capture is in flight.
type BusyModel interface{ Busy() bool }

// Gallery lists stored snapshots newest first.
type Gallery interface {
	List() []snapshot.Snapshot
}

// GalleryView displays session counters and snapshot thumbnails.
type GalleryView interface {
	SetSession(v model.SessionValues)
	SetGallery(thumbs []image.Image)
}

// ThumbSide is the square thumbnail edge in pixels.
const ThumbSide = 96

// GalleryPresenter keeps the session counters and thumbnail strip current.
type GalleryPresenter struct {
	sess    *model.SessionModel
	busy    BusyModel
	gallery Gallery
	view    GalleryView
	logger  *slog.Logger

	thumbs map[string]image.Image
	shown  []string
}

// NewGalleryPresenter returns a new GalleryPresenter.
func NewGalleryPresenter(sess *model.SessionModel, busy BusyModel, gallery Gallery, view GalleryView, logger *slog.Logger) *GalleryPresenter {
	return &GalleryPresenter{sess: sess, busy: busy, gallery: gallery, view: view, logger: logger, thumbs: make(map[string]image.Image)}
}

// Tick advances the session model and refreshes thumbnails when the stored
// set changed. New snapshots count as shots; evicted ones drop their cached
// thumbnails.
func (p *GalleryPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.busy == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.busy.Busy(), now)
	p.view.SetSession(p.sess.Values())

	if p.gallery == nil {
		return
	}
	list := p.gallery.List()
	if sameRefs(list, p.shown) {
		return
	}
	live := make(map[string]image.Image, len(list))
	out := make([]image.Image, 0, len(list))
	p.shown = p.shown[:0]
	for _, s := range list {
		p.shown = append(p.shown, s.Ref)
		th, ok := p.thumbs[s.Ref]
		if !ok {
			p.sess.OnShot(s.CreatedAt)
			var err error
			if th, err = images.Thumbnail(s.Data, ThumbSide); err != nil && p.logger != nil {
				p.logger.Debug("thumbnail failed", "ref", s.Ref, "error", err)
			}
		}
		// Failed thumbnails are cached as nil so they are not retried.
		live[s.Ref] = th
		if th != nil {
			out = append(out, th)
		}
	}
	p.thumbs = live
	p.view.SetGallery(out)
}

func sameRefs(list []snapshot.Snapshot, refs []string) bool {
	if len(list) != len(refs) {
		return false
	}
	for i := range list {
		if list[i].Ref != refs[i] {
			return false
		}
	}
	return true
}
