package export

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"photobooth/internal/render"
	"photobooth/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rasterFunc func(ctx context.Context, snap session.Snapshot, scale float64) ([]byte, error)

func (f rasterFunc) Snapshot(ctx context.Context, snap session.Snapshot, scale float64) ([]byte, error) {
	return f(ctx, snap, scale)
}

var fixedTime = time.UnixMilli(1742720400000)

func TestFileName(t *testing.T) {
	assert.Equal(t, "myts-photobooth-1742720400000.png", FileName(DefaultPrefix, fixedTime))
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	var gotScale float64
	raster := rasterFunc(func(ctx context.Context, snap session.Snapshot, scale float64) ([]byte, error) {
		gotScale = scale
		return []byte("png"), nil
	})
	f := New(raster, dir, WithClock(func() time.Time { return fixedTime }))

	path, err := f.Export(context.Background(), session.New().Snapshot())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "myts-photobooth-1742720400000.png"), path)
	assert.Equal(t, 2.0, gotScale)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.False(t, f.Busy())
}

func TestExportFailureNotifiesAndLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("tainted")
	raster := rasterFunc(func(ctx context.Context, snap session.Snapshot, scale float64) ([]byte, error) {
		return nil, boom
	})
	var notified []error
	f := New(raster, dir, WithNotifier(NotifierFunc(func(err error) { notified = append(notified, err) })))

	_, err := f.Export(context.Background(), session.New().Snapshot())
	assert.ErrorIs(t, err, boom)
	require.Len(t, notified, 1)
	assert.ErrorIs(t, notified[0], boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportIsExclusive(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	raster := rasterFunc(func(ctx context.Context, snap session.Snapshot, scale float64) ([]byte, error) {
		close(entered)
		<-release
		return []byte("png"), nil
	})
	f := New(raster, t.TempDir())

	done := make(chan error, 1)
	go func() {
		_, err := f.Export(context.Background(), session.New().Snapshot())
		done <- err
	}()
	<-entered
	assert.True(t, f.Busy())

	_, err := f.Export(context.Background(), session.New().Snapshot())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, f.Busy())
}

func TestExportWithRenderer(t *testing.T) {
	sess := session.New(session.WithFrameSizer(render.FrameSize))
	f := New(render.New(), t.TempDir(), WithPrefix("booth"))

	path, err := f.Export(context.Background(), sess.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "booth-")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	w, h := render.FrameSize(session.LayoutVertical, 4)
	assert.Equal(t, 2*w, img.Bounds().Dx())
	assert.Equal(t, 2*h, img.Bounds().Dy())
}

func TestExportUnsupportedPhoto(t *testing.T) {
	sess := session.New()
	require.NoError(t, sess.AddPhoto(sess.Epoch(), []byte("stub")))
	notified := 0
	f := New(render.New(), t.TempDir(), WithNotifier(NotifierFunc(func(error) { notified++ })))

	_, err := f.Export(context.Background(), sess.Snapshot())
	assert.ErrorIs(t, err, render.ErrUnsupportedImage)
	assert.Equal(t, 1, notified)
}
