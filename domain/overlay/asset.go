package overlay

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"io/fs"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
)

// AssetPath is the file name of an image overlay for an aspect key.
func AssetPath(id, aspect string) string {
	return fmt.Sprintf("frames/%s_%s.png", id, aspect)
}

// AssetSource decodes overlay images from an fs.FS and keeps the stretched
// results for recently used output sizes.
type AssetSource struct {
	fsys  fs.FS
	cache *lru.Cache[string, image.Image]
}

// NewAssetSource returns a source caching up to size stretched images.
func NewAssetSource(fsys fs.FS, size int) (*AssetSource, error) {
	if size < 1 {
		size = 1
	}
	c, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, err
	}
	return &AssetSource{fsys: fsys, cache: c}, nil
}

// Stretched returns the asset at name resized to exactly w×h.
func (s *AssetSource) Stretched(name string, w, h int) (image.Image, error) {
	key := fmt.Sprintf("%s@%dx%d", name, w, h)
	if img, ok := s.cache.Get(key); ok {
		return img, nil
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	img := imaging.Resize(src, w, h, imaging.Linear)
	s.cache.Add(key, img)
	return img, nil
}

// Len reports the number of cached images.
func (s *AssetSource) Len() int { return s.cache.Len() }

// Image is an overlay backed by per-aspect PNG assets stretched over the
// whole output.
type Image struct {
	id  string
	src *AssetSource
}

// NewImage returns an image overlay reading frames/<id>_<aspect>.png.
func NewImage(id string, src *AssetSource) Image { return Image{id: id, src: src} }

func (o Image) ID() string { return o.id }

func (o Image) Draw(dst draw.Image, aspect string) error {
	if o.src == nil {
		return fmt.Errorf("overlay %s: no asset source", o.id)
	}
	b := dst.Bounds()
	img, err := o.src.Stretched(AssetPath(o.id, aspect), b.Dx(), b.Dy())
	if err != nil {
		return fmt.Errorf("overlay %s: %w", o.id, err)
	}
	draw.Draw(dst, b, img, img.Bounds().Min, draw.Over)
	return nil
}
