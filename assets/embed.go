// Package assets carries the bundled overlay frames and cue sounds.
package assets

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"sort"
)

// Cue file names, relative to FS. Voice lines are not bundled; drop
// preroll.mp3 or postroll.mp3 into the assets dir to enable them.
const (
	ShutterSound  = "sounds/shutter.wav"
	PreRollSound  = "sounds/preroll.mp3"
	PostRollSound = "sounds/postroll.mp3"
	FallbackSound = "sounds/chime.wav"
)

//go:embed frames/*.png sounds/*.wav
var bundled embed.FS

// Bundled returns the embedded assets.
func Bundled() fs.FS { return bundled }

// FS returns the assets file system. When dir is set its files shadow the
// bundled ones and directory listings are merged.
func FS(dir string) fs.FS {
	if dir == "" {
		return bundled
	}
	return Layered(os.DirFS(dir), bundled)
}

// Layered stacks upper over lower.
func Layered(upper, lower fs.FS) fs.FS { return layered{upper: upper, lower: lower} }

type layered struct{ upper, lower fs.FS }

func (l layered) Open(name string) (fs.File, error) {
	f, err := l.upper.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return l.lower.Open(name)
}

func (l layered) ReadDir(name string) ([]fs.DirEntry, error) {
	up, upErr := fs.ReadDir(l.upper, name)
	low, lowErr := fs.ReadDir(l.lower, name)
	if upErr != nil && lowErr != nil {
		return nil, upErr
	}
	seen := make(map[string]bool, len(up))
	out := append([]fs.DirEntry(nil), up...)
	for _, e := range up {
		seen[e.Name()] = true
	}
	for _, e := range low {
		if !seen[e.Name()] {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

var _ fs.ReadDirFS = layered{}
