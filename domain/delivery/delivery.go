// Package delivery hands finished snapshots to the user: share when the
// platform can, download otherwise, or copy to the clipboard.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/oshicam-go/domain/snapshot"
	"github.com/soocke/oshicam-go/fsx"
)

// ErrUnsupported is returned by collaborators that cannot serve a request.
var ErrUnsupported = errors.New("delivery: unsupported")

// Method names how a snapshot was delivered.
type Method string

const (
	MethodNone      Method = ""
	MethodShare     Method = "share"
	MethodDownload  Method = "download"
	MethodClipboard Method = "clipboard"
)

// Ack is the user-facing outcome of a delivery. It is never a pipeline error.
type Ack struct {
	OK      bool
	Method  Method
	Message string
	Path    string // set for downloads
}

// Sharer is a native share sheet.
type Sharer interface {
	CanShare(snap snapshot.Snapshot) bool
	Share(ctx context.Context, snap snapshot.Snapshot) error
}

// Clipboard accepts binary image data.
type Clipboard interface {
	WriteImage(ctx context.Context, mime string, data []byte) error
}

// Deliverer routes snapshots to share, download or clipboard.
type Deliverer struct {
	share  Sharer
	clip   Clipboard
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Deliverer downloading into dir. share and clip may be nil.
func New(dir string, share Sharer, clip Clipboard, logger *slog.Logger) *Deliverer {
	return &Deliverer{share: share, clip: clip, dir: dir, logger: logger, now: time.Now}
}

// FileName is the download name for a snapshot taken at t.
func FileName(t time.Time) string { return fmt.Sprintf("oshi_%d.png", t.UnixMilli()) }

// Deliver shares snap when supported and falls back to a download.
func (d *Deliverer) Deliver(ctx context.Context, snap snapshot.Snapshot) Ack {
	if !snap.Valid() {
		return Ack{Message: "Nothing to save"}
	}
	if d.share != nil && d.share.CanShare(snap) {
		err := d.share.Share(ctx, snap)
		if err == nil {
			d.debug("snapshot shared", "ref", snap.Ref)
			return Ack{OK: true, Method: MethodShare, Message: "Shared"}
		}
		d.debug("share failed, downloading", "error", err)
	}
	return d.Download(snap)
}

// Download writes snap under the output directory.
func (d *Deliverer) Download(snap snapshot.Snapshot) Ack {
	if !snap.Valid() {
		return Ack{Message: "Nothing to save"}
	}
	at := snap.CreatedAt
	if at.IsZero() {
		at = d.now()
	}
	path, err := d.write(at, snap.Data)
	if err != nil {
		if d.logger != nil {
			d.logger.Error("download failed", "dir", d.dir, "error", err)
		}
		return Ack{Method: MethodDownload, Message: "Save failed"}
	}
	d.debug("snapshot downloaded", "path", path, "size", humanize.Bytes(uint64(len(snap.Data))))
	return Ack{OK: true, Method: MethodDownload, Message: "Saved " + filepath.Base(path), Path: path}
}

// write never overwrites: a name collision within the same millisecond
// gets a numeric suffix.
func (d *Deliverer) write(at time.Time, data []byte) (string, error) {
	base := FileName(at)
	name := base
	for i := 1; i <= 99; i++ {
		err := fsx.WriteFileAtomicNoOverwrite(d.dir, name, data)
		if err == nil {
			return filepath.Join(d.dir, name), nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		name = fmt.Sprintf("oshi_%d-%d.png", at.UnixMilli(), i)
	}
	return "", fmt.Errorf("%s: %w", base, os.ErrExist)
}

// CopyToClipboard puts snap on the clipboard.
func (d *Deliverer) CopyToClipboard(ctx context.Context, snap snapshot.Snapshot) Ack {
	if d.clip == nil {
		return Ack{Method: MethodClipboard, Message: "Clipboard not supported"}
	}
	if !snap.Valid() {
		return Ack{Method: MethodClipboard, Message: "Nothing to copy"}
	}
	if err := d.clip.WriteImage(ctx, snap.MIME, snap.Data); err != nil {
		d.debug("clipboard failed", "error", err)
		if errors.Is(err, ErrUnsupported) {
			return Ack{Method: MethodClipboard, Message: "Clipboard not supported"}
		}
		return Ack{Method: MethodClipboard, Message: "Copy failed"}
	}
	return Ack{OK: true, Method: MethodClipboard, Message: "Copied"}
}

func (d *Deliverer) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
