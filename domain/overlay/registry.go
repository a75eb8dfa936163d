// Package overlay draws decorative frames on top of composed snapshots.
package overlay

import (
	"errors"
	"fmt"
	"image/draw"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// ErrUnknown is returned for an overlay id that is not registered.
var ErrUnknown = errors.New("overlay: unknown id")

// Overlay draws itself over the full bounds of dst. aspect is the output
// aspect key ("3x4", "1x1", "16x9").
type Overlay interface {
	ID() string
	Draw(dst draw.Image, aspect string) error
}

// Registry holds overlays in registration order.
type Registry struct {
	order []string
	byID  map[string]Overlay
}

func NewRegistry(overlays ...Overlay) *Registry {
	r := &Registry{byID: make(map[string]Overlay)}
	for _, o := range overlays {
		r.Register(o)
	}
	return r
}

// Register adds o, replacing any overlay with the same id in place.
func (r *Registry) Register(o Overlay) {
	if o == nil {
		return
	}
	id := o.ID()
	if _, ok := r.byID[id]; !ok {
		r.order = append(r.order, id)
	}
	r.byID[id] = o
}

func (r *Registry) Get(id string) (Overlay, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, id)
	}
	return o, nil
}

func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string { return append([]string(nil), r.order...) }

// First is the default overlay id, or "" when empty.
func (r *Registry) First() string {
	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}

// Default registers the built-in vector overlays followed by every image
// overlay found under frames/ in src.
func Default(src *AssetSource) *Registry {
	r := NewRegistry(Sparkle(), Ribbon(), Neon())
	if src == nil || src.fsys == nil {
		return r
	}
	for _, id := range imageIDs(src.fsys) {
		if !r.Has(id) {
			r.Register(NewImage(id, src))
		}
	}
	return r
}

// imageIDs lists distinct <id> values from frames/<id>_<aspect>.png.
func imageIDs(fsys fs.FS) []string {
	matches, err := fs.Glob(fsys, "frames/*_*.png")
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	for _, m := range matches {
		base := strings.TrimSuffix(path.Base(m), ".png")
		i := strings.LastIndex(base, "_")
		if i <= 0 {
			continue
		}
		id := base[:i]
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
