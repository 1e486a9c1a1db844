package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when no clipboard utility is installed.
var ErrClipboardUnavailable = errors.New("clipboard not available")

// Deliverer materializes an encoded payload somewhere the user can reach
// it and returns a human-readable location.
type Deliverer interface {
	Deliver(ctx context.Context, p Payload) (string, error)
}

// DirDeliverer writes payloads into a directory under their suggested
// filename. Writes go through a temp file and rename, so a failed export
// never leaves a truncated file behind.
type DirDeliverer struct {
	Dir string
}

// Deliver implements Deliverer.
func (d DirDeliverer) Deliver(ctx context.Context, p Payload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	name := p.Filename
	if name == "" {
		name = p.Format.DefaultFilename()
	}
	target := filepath.Join(dir, filepath.Base(name))

	tmp, err := os.CreateTemp(dir, ".dfmea-export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(p.Data); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close %s: %w", target, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod %s: %w", target, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return "", fmt.Errorf("rename to %s: %w", target, err)
	}
	return target, nil
}

// ClipboardDeliverer copies text payloads to the system clipboard.
type ClipboardDeliverer struct {
	write func(string) error
}

// NewClipboardDeliverer returns a deliverer backed by the system clipboard.
func NewClipboardDeliverer() ClipboardDeliverer {
	return ClipboardDeliverer{write: clipboard.WriteAll}
}

// Deliver implements Deliverer.
func (c ClipboardDeliverer) Deliver(ctx context.Context, p Payload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.Format.IsBinary() {
		return "", fmt.Errorf("%s: %w", p.Format, ErrBinaryPayload)
	}
	write := c.write
	if write == nil {
		if clipboard.Unsupported {
			return "", ErrClipboardUnavailable
		}
		write = clipboard.WriteAll
	}
	if err := write(string(p.Data)); err != nil {
		return "", fmt.Errorf("copy to clipboard: %w", err)
	}
	return "clipboard", nil
}
