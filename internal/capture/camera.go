package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/h2non/filetype"
	"gocv.io/x/gocv"
)

// ErrNoImage is returned when the camera produced no still, e.g. the device
// is busy or access was denied.
var ErrNoImage = errors.New("camera returned no image")

// Camera produces one encoded still per request.
type Camera interface {
	RequestStill(ctx context.Context) ([]byte, error)
}

// FuncCamera adapts a function to Camera.
type FuncCamera func(ctx context.Context) ([]byte, error)

// RequestStill implements Camera.
func (f FuncCamera) RequestStill(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// WebcamCamera grabs frames from a video device and encodes them as JPEG.
type WebcamCamera struct {
	mu     sync.Mutex
	device string
	vc     *gocv.VideoCapture
}

// OpenWebcam opens a device by index ("0") or by path/URL.
func OpenWebcam(device string) (*WebcamCamera, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %s: %w", device, err)
	}
	return &WebcamCamera{device: device, vc: vc}, nil
}

// RequestStill implements Camera.
func (w *WebcamCamera) RequestStill(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	frame := gocv.NewMat()
	defer frame.Close()
	if ok := w.vc.Read(&frame); !ok || frame.Empty() {
		return nil, fmt.Errorf("camera %s: %w", w.device, ErrNoImage)
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Close releases the device.
func (w *WebcamCamera) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.vc.Close()
}

// DirCamera replays the image files of a directory in name order,
// wrapping around at the end.
type DirCamera struct {
	mu    sync.Mutex
	files []string
	next  int
}

// NewDirCamera lists the images in dir. Files that do not sniff as images
// are ignored.
func NewDirCamera(dir string) (*DirCamera, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read stills directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if isImageFile(path) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return &DirCamera{files: files}, nil
}

func isImageFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, 261)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	return filetype.IsImage(head[:n])
}

// Len returns the number of stills available.
func (d *DirCamera) Len() int {
	return len(d.files)
}

// RequestStill implements Camera.
func (d *DirCamera) RequestStill(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	if len(d.files) == 0 {
		d.mu.Unlock()
		return nil, ErrNoImage
	}
	path := d.files[d.next%len(d.files)]
	d.next++
	d.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read still %s: %w", path, err)
	}
	return data, nil
}
