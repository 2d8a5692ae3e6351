// Package export flattens the composed frame to a timestamped PNG file.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"photobooth/internal/session"
)

// Defaults for exported files.
const (
	DefaultScale  = 2.0
	DefaultPrefix = "myts-photobooth"
)

// ErrBusy is returned when an export is already running.
var ErrBusy = errors.New("export already in progress")

// Rasterizer encodes a snapshot at a pixel scale. *render.Renderer
// satisfies it.
type Rasterizer interface {
	Snapshot(ctx context.Context, snap session.Snapshot, scale float64) ([]byte, error)
}

// Notifier tells the user an export failed.
type Notifier interface {
	Notify(err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(err error)

// Notify implements Notifier.
func (f NotifierFunc) Notify(err error) { f(err) }

// LogNotifier writes failures to the standard logger.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(err error) {
	log.Printf("export: failed: %v", err)
}

// Option configures a Flattener.
type Option func(*Flattener)

// WithScale sets the output pixel scale.
func WithScale(scale float64) Option {
	return func(f *Flattener) {
		if scale > 0 {
			f.scale = scale
		}
	}
}

// WithPrefix sets the file name prefix.
func WithPrefix(prefix string) Option {
	return func(f *Flattener) {
		if prefix != "" {
			f.prefix = prefix
		}
	}
}

// WithNotifier replaces LogNotifier.
func WithNotifier(n Notifier) Option {
	return func(f *Flattener) { f.notifier = n }
}

// WithClock overrides the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(f *Flattener) { f.now = now }
}

// Flattener writes one snapshot at a time into a directory.
type Flattener struct {
	raster   Rasterizer
	dir      string
	prefix   string
	scale    float64
	notifier Notifier
	now      func() time.Time

	busy atomic.Bool
}

// New creates a flattener writing into dir.
func New(raster Rasterizer, dir string, opts ...Option) *Flattener {
	f := &Flattener{
		raster:   raster,
		dir:      dir,
		prefix:   DefaultPrefix,
		scale:    DefaultScale,
		notifier: LogNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FileName returns "<prefix>-<unix millis>.png".
func FileName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%d.png", prefix, t.UnixMilli())
}

// Busy reports whether an export is running.
func (f *Flattener) Busy() bool {
	return f.busy.Load()
}

// Export renders snap and writes it to a new file, returning its path.
// A failed export notifies the user and leaves no file behind.
func (f *Flattener) Export(ctx context.Context, snap session.Snapshot) (string, error) {
	if !f.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer f.busy.Store(false)

	data, err := f.raster.Snapshot(ctx, snap, f.scale)
	if err != nil {
		return "", f.fail(fmt.Errorf("failed to render frame: %w", err))
	}
	path := filepath.Join(f.dir, FileName(f.prefix, f.now()))
	if err := writeFile(path, data); err != nil {
		return "", f.fail(err)
	}
	log.Printf("export: wrote %s (%d bytes)", path, len(data))
	return path, nil
}

func (f *Flattener) fail(err error) error {
	if f.notifier != nil {
		f.notifier.Notify(err)
	}
	return err
}

// writeFile stages data in a temporary file and renames it into place.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.png")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}
