package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"photobooth/internal/overlay"
	"photobooth/internal/session"
	"photobooth/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var red = color.RGBA{R: 255, A: 255}

func isRed(c color.RGBA) bool {
	return c.R > 200 && c.G < 80 && c.B < 80
}

func TestFrameSize(t *testing.T) {
	w, h := FrameSize(session.LayoutVertical, 4)
	assert.Equal(t, 448, w)
	assert.Equal(t, 1400, h)

	_, h = FrameSize(session.LayoutVertical, 3)
	assert.Equal(t, 1100, h)

	_, h = FrameSize(session.LayoutGrid2x2, 4)
	assert.Equal(t, 434, h)
}

func TestSlots(t *testing.T) {
	slots := DefaultGeometry.Slots(session.LayoutGrid2x2, 4)
	require.Len(t, slots, 4)
	assert.Equal(t, image.Rect(24, 24, 212, 165), slots[0])
	assert.Equal(t, image.Rect(236, 24, 424, 165), slots[1])
	assert.Equal(t, image.Rect(24, 189, 212, 330), slots[2])

	slots = DefaultGeometry.Slots(session.LayoutVertical, 3)
	assert.Equal(t, image.Rect(24, 348, 424, 648), slots[1])
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "23 Maret 2025", FormatDate(time.Date(2025, time.March, 23, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1 Desember 2024", FormatDate(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDecodePhoto(t *testing.T) {
	img, err := DecodePhoto(solidPNG(t, 8, 6, red))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = DecodePhoto([]byte("stub"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	truncated := solidPNG(t, 8, 6, red)[:20]
	_, err = DecodePhoto(truncated)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func newSession(t *testing.T, count int) *session.Session {
	t.Helper()
	s := session.New(
		session.WithFrameSizer(FrameSize),
		session.WithClock(func() time.Time { return time.Date(2025, time.March, 23, 9, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, s.SetPhotoCount(count))
	return s
}

func TestRenderPhotosAndFrame(t *testing.T) {
	s := newSession(t, 3)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddPhoto(s.Epoch(), solidPNG(t, 64, 48, red)))
	}
	require.NoError(t, s.SelectLayout(session.LayoutVertical))
	require.NoError(t, s.SetFrameColor("#0000ff"))

	r := New()
	img, err := r.Render(s.Snapshot(), 1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 448, 1100), img.Bounds())
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(10, 10))
	assert.True(t, isRed(img.RGBAAt(224, 174)))

	img, err = r.Render(s.Snapshot(), 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 896, 2200), img.Bounds())
	assert.True(t, isRed(img.RGBAAt(448, 348)))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(20, 20))
}

func TestRenderDrawsFooter(t *testing.T) {
	s := newSession(t, 3)
	r := New()
	img, err := r.Render(s.Snapshot(), 1)
	require.NoError(t, err)

	date, _ := DefaultGeometry.Footer(session.LayoutVertical, 3)
	assert.True(t, hasInk(img, date, color.RGBA{R: 255, G: 255, B: 255, A: 255}))

	bare, err := New(WithLabel("")).Render(s.Snapshot(), 1)
	require.NoError(t, err)
	_, label := DefaultGeometry.Footer(session.LayoutVertical, 3)
	assert.False(t, hasInk(bare, label, color.RGBA{R: 255, G: 255, B: 255, A: 255}))
}

func TestRenderRejectsUndecodablePhoto(t *testing.T) {
	s := newSession(t, 3)
	require.NoError(t, s.AddPhoto(s.Epoch(), []byte("stub")))
	_, err := New().Render(s.Snapshot(), 1)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

// hasInk reports whether any pixel in r differs from bg.
func hasInk(img *image.RGBA, r image.Rectangle, bg color.RGBA) bool {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) != bg {
				return true
			}
		}
	}
	return false
}

func TestRenderText(t *testing.T) {
	s := newSession(t, 4)
	require.NoError(t, s.SetTextColor("#000000"))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	area := image.Rect(40, 190, 260, 270)

	id := s.AddText()
	_, err := s.DragOverlay(id, geometry.NewPoint2D(50, 200))
	require.NoError(t, err)

	r := New()
	img, err := r.Render(s.Snapshot(), 1)
	require.NoError(t, err)
	assert.False(t, hasInk(img, area, white), "empty text is not drawn")

	content, size := "Hello", 40
	_, err = s.UpdateText(id, overlay.TextUpdate{Content: &content, FontSize: &size})
	require.NoError(t, err)
	img, err = r.Render(s.Snapshot(), 1)
	require.NoError(t, err)
	assert.True(t, hasInk(img, area, white))
	assert.False(t, hasInk(img, image.Rect(300, 190, 440, 270), white))
}

func TestRenderSticker(t *testing.T) {
	s := newSession(t, 4)
	id, err := s.AddSticker("heart")
	require.NoError(t, err)
	_, err = s.DragOverlay(id, geometry.NewPoint2D(100, 500))
	require.NoError(t, err)

	r := New()
	img, err := r.Render(s.Snapshot(), 1)
	require.NoError(t, err)
	c := img.RGBAAt(140, 545)
	assert.True(t, c.R > 200 && c.G < 120, "heart is pink, got %v", c)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(100, 579))

	_, err = s.UpdateStickerScale(id, 2)
	require.NoError(t, err)
	img, err = r.Render(s.Snapshot(), 1)
	require.NoError(t, err)
	c = img.RGBAAt(180, 590)
	assert.True(t, c.R > 200 && c.G < 120, "scaled heart covers its new centre, got %v", c)
}

func TestRenderDrawingOnTop(t *testing.T) {
	s := newSession(t, 3)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddPhoto(s.Epoch(), solidPNG(t, 8, 6, color.RGBA{G: 255, A: 255})))
	}
	require.NoError(t, s.SetDrawingColor("#ff0000"))
	s.SetDrawingMode(true)
	s.SetBrushWidth(10)
	s.PointerDown(geometry.NewPoint2D(30, 100))
	s.PointerMove(geometry.NewPoint2D(300, 100))
	require.True(t, s.PointerUp())

	r := New()
	img, err := r.Render(s.Snapshot(), 1)
	require.NoError(t, err)
	assert.True(t, isRed(img.RGBAAt(150, 100)))

	img, err = r.Render(s.Snapshot(), 2)
	require.NoError(t, err)
	assert.True(t, isRed(img.RGBAAt(300, 200)))
}

func TestSnapshotEncodesPNG(t *testing.T) {
	s := newSession(t, 4)
	r := New()
	data, err := r.Snapshot(context.Background(), s.Snapshot(), 2)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 896, img.Bounds().Dx())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Snapshot(ctx, s.Snapshot(), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHitTest(t *testing.T) {
	s := newSession(t, 4)
	a, err := s.AddSticker("star")
	require.NoError(t, err)
	_, err = s.DragOverlay(a, geometry.NewPoint2D(100, 100))
	require.NoError(t, err)

	r := New()
	id, ok := r.HitTest(s.Snapshot(), geometry.NewPoint2D(140, 140))
	require.True(t, ok)
	assert.Equal(t, a, id)
	_, ok = r.HitTest(s.Snapshot(), geometry.NewPoint2D(50, 50))
	assert.False(t, ok)

	// a later overlay on the same spot wins
	b, err := s.AddSticker("heart")
	require.NoError(t, err)
	_, err = s.DragOverlay(b, geometry.NewPoint2D(120, 120))
	require.NoError(t, err)
	id, _ = r.HitTest(s.Snapshot(), geometry.NewPoint2D(140, 140))
	assert.Equal(t, b, id)
	id, _ = r.HitTest(s.Snapshot(), geometry.NewPoint2D(105, 105))
	assert.Equal(t, a, id)
}

func TestHitTestFollowsRotation(t *testing.T) {
	s := newSession(t, 4)
	id, err := s.AddSticker("star")
	require.NoError(t, err)
	_, err = s.DragOverlay(id, geometry.NewPoint2D(100, 100))
	require.NoError(t, err)
	_, err = s.RotateSticker(id, 45)
	require.NoError(t, err)

	r := New()
	_, ok := r.HitTest(s.Snapshot(), geometry.NewPoint2D(102, 102))
	assert.False(t, ok, "corner of the unrotated box")
	got, ok := r.HitTest(s.Snapshot(), geometry.NewPoint2D(140, 85))
	assert.True(t, ok, "tip of the rotated box")
	assert.Equal(t, id, got)
}

func TestHitTestSkipsEmptyText(t *testing.T) {
	s := newSession(t, 4)
	id := s.AddText()
	_, err := s.DragOverlay(id, geometry.NewPoint2D(10, 10))
	require.NoError(t, err)
	_, ok := New().HitTest(s.Snapshot(), geometry.NewPoint2D(12, 12))
	assert.False(t, ok)
}

func TestConcurrentRenderAndHitTest(t *testing.T) {
	s := newSession(t, 4)
	id := s.AddText()
	content := "Hello"
	_, err := s.UpdateText(id, overlay.TextUpdate{Content: &content})
	require.NoError(t, err)
	_, err = s.DragOverlay(id, geometry.NewPoint2D(50, 200))
	require.NoError(t, err)
	snap := s.Snapshot()

	r := New()
	want, err := r.Render(snap, 1)
	require.NoError(t, err)

	const workers = 8
	imgs := make([]*image.RGBA, workers)
	hits := make([]bool, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			imgs[i], errs[i] = r.Render(snap, 1)
			_, hits[i] = r.HitTest(snap, geometry.NewPoint2D(55, 205))
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, want.Pix, imgs[i].Pix)
		assert.True(t, hits[i])
	}
}
