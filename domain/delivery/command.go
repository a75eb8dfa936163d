package delivery

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/soocke/oshicam-go/domain/snapshot"
)

// CommandSharer shares by running an external program with the snapshot's
// file path as its last argument ("xdg-open", "termux-share", ...).
type CommandSharer struct {
	Command []string
	TempDir string
}

// NewCommandSharer splits a command line on spaces. Empty yields nil.
func NewCommandSharer(cmdline string) *CommandSharer {
	parts := strings.Fields(cmdline)
	if len(parts) == 0 {
		return nil
	}
	return &CommandSharer{Command: parts}
}

func (c *CommandSharer) CanShare(snap snapshot.Snapshot) bool {
	if c == nil || len(c.Command) == 0 || snap.MIME != "image/png" {
		return false
	}
	_, err := exec.LookPath(c.Command[0])
	return err == nil
}

func (c *CommandSharer) Share(ctx context.Context, snap snapshot.Snapshot) error {
	dir, err := os.MkdirTemp(c.TempDir, "oshicam-share-")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, FileName(snap.CreatedAt))
	if err := os.WriteFile(path, snap.Data, 0o644); err != nil {
		return err
	}
	args := append(append([]string(nil), c.Command[1:]...), path)
	out, err := exec.CommandContext(ctx, c.Command[0], args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("share %s: %w: %s", c.Command[0], err, bytes.TrimSpace(out))
	}
	return nil
}

// CommandClipboard pipes image data into a clipboard tool such as
// "wl-copy --type image/png" or "xclip -selection clipboard -t image/png".
type CommandClipboard struct {
	Command []string
}

// DetectClipboard returns the first clipboard tool found on PATH, or nil.
func DetectClipboard() *CommandClipboard {
	for _, cmd := range [][]string{
		{"wl-copy", "--type", "image/png"},
		{"xclip", "-selection", "clipboard", "-t", "image/png"},
	} {
		if _, err := exec.LookPath(cmd[0]); err == nil {
			return &CommandClipboard{Command: cmd}
		}
	}
	return nil
}

func (c *CommandClipboard) WriteImage(ctx context.Context, mime string, data []byte) error {
	if c == nil || len(c.Command) == 0 || mime != "image/png" {
		return ErrUnsupported
	}
	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Stdin = bytes.NewReader(data)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("clipboard %s: %w: %s", c.Command[0], err, bytes.TrimSpace(out))
	}
	return nil
}

var (
	_ Sharer    = (*CommandSharer)(nil)
	_ Clipboard = (*CommandClipboard)(nil)
)
