package drawing

import (
	"image/color"
	"testing"

	"photobooth/pkg/colorutil"
	"photobooth/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 255, A: 255}

func pt(x, y float64) geometry.Point2D { return geometry.NewPoint2D(x, y) }

func drawLine(e *Engine, col colorutil.Hex, pts ...geometry.Point2D) {
	e.BeginStroke(pts[0], col, 4)
	for _, p := range pts[1:] {
		e.ExtendStroke(p)
	}
	e.EndStroke()
}

func TestClickWithoutMoveCommitsNothing(t *testing.T) {
	e := NewEngine(50, 50)
	e.BeginStroke(pt(10, 10), "#ff0000", 4)
	_, ok := e.EndStroke()
	assert.False(t, ok)
	assert.Empty(t, e.Strokes())
	assert.Equal(t, uint8(0), e.Surface().RGBAAt(10, 10).A)
}

func TestSingleMoveCommitsTwoPointStroke(t *testing.T) {
	e := NewEngine(50, 50)
	e.BeginStroke(pt(10, 10), "#ff0000", 4)
	require.True(t, e.ExtendStroke(pt(30, 10)))
	s, ok := e.EndStroke()
	require.True(t, ok)

	strokes := e.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, s.ID, strokes[0].ID)
	assert.Len(t, strokes[0].Points, 2)
	assert.Equal(t, red, e.Surface().RGBAAt(20, 10))
	assert.Equal(t, uint8(0), e.Surface().RGBAAt(20, 30).A)
}

func TestExtendWithoutBeginIsIgnored(t *testing.T) {
	e := NewEngine(10, 10)
	assert.False(t, e.ExtendStroke(pt(1, 1)))
	assert.False(t, e.InProgress())
}

func TestIncrementalDrawingShowsWhileInProgress(t *testing.T) {
	e := NewEngine(50, 50)
	e.BeginStroke(pt(10, 10), "#ff0000", 4)
	e.ExtendStroke(pt(30, 10))
	assert.True(t, e.InProgress())
	assert.Equal(t, red, e.Surface().RGBAAt(20, 10))
}

func TestStrokeOrderIsDrawOrder(t *testing.T) {
	e := NewEngine(50, 50)
	drawLine(e, "#ff0000", pt(10, 20), pt(40, 20))
	drawLine(e, "#0000ff", pt(25, 5), pt(25, 40))

	// the later stroke covers the crossing
	assert.Equal(t, color.RGBA{B: 255, A: 255}, e.Surface().RGBAAt(25, 20))

	require.NoError(t, e.RemoveStroke(1))
	assert.Equal(t, red, e.Surface().RGBAAt(25, 20))
	assert.Equal(t, uint8(0), e.Surface().RGBAAt(25, 35).A)
}

func TestRemoveStrokeRedrawsFromScratch(t *testing.T) {
	e := NewEngine(50, 50)
	drawLine(e, "#ff0000", pt(10, 10), pt(30, 10))
	require.NoError(t, e.RemoveStroke(0))
	assert.Empty(t, e.Strokes())
	assert.Equal(t, uint8(0), e.Surface().RGBAAt(20, 10).A)

	assert.ErrorIs(t, e.RemoveStroke(0), ErrStrokeIndex)
}

func TestRecolorStroke(t *testing.T) {
	e := NewEngine(50, 50)
	drawLine(e, "#ff0000", pt(10, 10), pt(30, 10))
	require.NoError(t, e.RecolorStroke(0, "#00ff00"))

	assert.Equal(t, colorutil.Hex("#00ff00"), e.Strokes()[0].Color)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, e.Surface().RGBAAt(20, 10))
	assert.ErrorIs(t, e.RecolorStroke(3, "#00ff00"), ErrStrokeIndex)
}

func TestClearAllIsIdempotent(t *testing.T) {
	e := NewEngine(50, 50)
	drawLine(e, "#ff0000", pt(10, 10), pt(30, 10))

	e.ClearAll()
	assert.Empty(t, e.Strokes())
	e.ClearAll()
	assert.Empty(t, e.Strokes())
	assert.Equal(t, uint8(0), e.Surface().RGBAAt(20, 10).A)
}

func TestResizeReplaysStrokes(t *testing.T) {
	e := NewEngine(50, 50)
	drawLine(e, "#ff0000", pt(10, 10), pt(30, 10))

	e.Resize(100, 80)
	w, h := e.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 80, h)
	assert.Equal(t, red, e.Surface().RGBAAt(20, 10))

	// shrinking clips but keeps coordinates
	e.Resize(15, 15)
	assert.Equal(t, red, e.Surface().RGBAAt(12, 10))
	assert.Equal(t, []geometry.Point2D{pt(10, 10), pt(30, 10)}, e.Strokes()[0].Points)
}

func TestBrushWidthClamped(t *testing.T) {
	e := NewEngine(50, 50)
	e.BeginStroke(pt(1, 1), "#ff0000", 99)
	e.ExtendStroke(pt(2, 2))
	s, ok := e.EndStroke()
	require.True(t, ok)
	assert.Equal(t, MaxBrushWidth, s.Width)
	assert.Equal(t, MinBrushWidth, ClampBrushWidth(0))
}

func TestStrokesReturnsCopies(t *testing.T) {
	e := NewEngine(50, 50)
	drawLine(e, "#ff0000", pt(10, 10), pt(30, 10))
	got := e.Strokes()
	got[0].Points[0] = pt(0, 0)
	assert.Equal(t, pt(10, 10), e.Strokes()[0].Points[0])
}
