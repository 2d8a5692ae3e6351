// Package drawing captures freehand pointer strokes and rasterises them onto
// a transparent surface laid over the composed frame.
package drawing

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"photobooth/pkg/colorutil"
	"photobooth/pkg/geometry"

	"github.com/google/uuid"
	"golang.org/x/image/vector"
)

// Brush width limits in surface pixels.
const (
	MinBrushWidth     = 1
	MaxBrushWidth     = 20
	DefaultBrushWidth = 5
)

// ErrStrokeIndex is returned for an index outside the committed strokes.
var ErrStrokeIndex = errors.New("stroke index out of range")

// Stroke is one committed freehand path. Points are in surface pixels at
// the time of capture.
type Stroke struct {
	ID     string             `json:"id"`
	Points []geometry.Point2D `json:"points"`
	Color  colorutil.Hex      `json:"color"`
	Width  int                `json:"width"`
}

// Clone returns a copy that shares no memory with s.
func (s Stroke) Clone() Stroke {
	pts := make([]geometry.Point2D, len(s.Points))
	copy(pts, s.Points)
	s.Points = pts
	return s
}

// ClampBrushWidth restricts w to [MinBrushWidth, MaxBrushWidth].
func ClampBrushWidth(w int) int {
	return geometry.ClampInt(w, MinBrushWidth, MaxBrushWidth)
}

// Engine owns the drawing surface and the ordered committed strokes.
// It is not safe for concurrent use; the session serialises access.
type Engine struct {
	surface *image.RGBA
	strokes []Stroke
	active  *Stroke
	raster  *vector.Rasterizer
}

// NewEngine creates an engine with a width×height transparent surface.
func NewEngine(width, height int) *Engine {
	return &Engine{surface: newSurface(width, height)}
}

func newSurface(width, height int) *image.RGBA {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Surface returns the live drawing surface.
func (e *Engine) Surface() *image.RGBA {
	return e.surface
}

// Size returns the surface dimensions.
func (e *Engine) Size() (width, height int) {
	b := e.surface.Bounds()
	return b.Dx(), b.Dy()
}

// Strokes returns copies of the committed strokes in draw order.
func (e *Engine) Strokes() []Stroke {
	out := make([]Stroke, len(e.strokes))
	for i, s := range e.strokes {
		out[i] = s.Clone()
	}
	return out
}

// InProgress reports whether a stroke is open.
func (e *Engine) InProgress() bool {
	return e.active != nil
}

// BeginStroke opens a new path at p. An already open path is committed first.
func (e *Engine) BeginStroke(p geometry.Point2D, col colorutil.Hex, width int) {
	if e.active != nil {
		e.EndStroke()
	}
	e.active = &Stroke{
		ID:     uuid.NewString(),
		Points: []geometry.Point2D{p},
		Color:  col,
		Width:  ClampBrushWidth(width),
	}
}

// ExtendStroke appends p to the open path and draws the new segment only.
// It reports false when no stroke is open.
func (e *Engine) ExtendStroke(p geometry.Point2D) bool {
	if e.active == nil {
		return false
	}
	last := e.active.Points[len(e.active.Points)-1]
	e.active.Points = append(e.active.Points, p)
	e.drawSegment(last, p, e.active.Width, e.active.Color)
	return true
}

// EndStroke closes the open path. Paths with fewer than two points are
// discarded; otherwise the stroke is appended and returned.
func (e *Engine) EndStroke() (Stroke, bool) {
	s := e.active
	e.active = nil
	if s == nil || len(s.Points) < 2 {
		return Stroke{}, false
	}
	e.strokes = append(e.strokes, *s)
	return s.Clone(), true
}

// ClearAll drops every stroke, including an open one, and blanks the surface.
func (e *Engine) ClearAll() {
	e.active = nil
	e.strokes = nil
	e.Redraw()
}

// RemoveStroke deletes the stroke at index and redraws from scratch.
func (e *Engine) RemoveStroke(index int) error {
	if index < 0 || index >= len(e.strokes) {
		return fmt.Errorf("remove stroke %d: %w", index, ErrStrokeIndex)
	}
	e.strokes = append(e.strokes[:index:index], e.strokes[index+1:]...)
	e.Redraw()
	return nil
}

// RecolorStroke changes the color of the stroke at index and redraws from
// scratch.
func (e *Engine) RecolorStroke(index int, col colorutil.Hex) error {
	if index < 0 || index >= len(e.strokes) {
		return fmt.Errorf("recolor stroke %d: %w", index, ErrStrokeIndex)
	}
	e.strokes[index].Color = col
	e.Redraw()
	return nil
}

// Resize recreates the surface at the new size and replays every stroke.
// Stroke coordinates are kept as captured.
func (e *Engine) Resize(width, height int) {
	if w, h := e.Size(); w == width && h == height {
		return
	}
	e.surface = newSurface(width, height)
	e.Redraw()
}

// Redraw clears the surface and replays committed strokes in order, then
// the open stroke if any.
func (e *Engine) Redraw() {
	draw.Draw(e.surface, e.surface.Bounds(), image.Transparent, image.Point{}, draw.Src)
	for _, s := range e.strokes {
		e.drawStroke(s)
	}
	if e.active != nil {
		e.drawStroke(*e.active)
	}
}

func (e *Engine) drawStroke(s Stroke) {
	for i := 1; i < len(s.Points); i++ {
		e.drawSegment(s.Points[i-1], s.Points[i], s.Width, s.Color)
	}
}

// drawSegment paints a round-capped line of the given width from a to b.
func (e *Engine) drawSegment(a, b geometry.Point2D, width int, col colorutil.Hex) {
	shapes := capsule(a, b, float64(width)/2)

	var all []geometry.Point2D
	for _, poly := range shapes {
		all = append(all, poly...)
	}
	box := geometry.BoundingBox(all)
	rect := image.Rect(
		int(math.Floor(box.X))-1, int(math.Floor(box.Y))-1,
		int(math.Ceil(box.X+box.Width))+1, int(math.Ceil(box.Y+box.Height))+1,
	)
	if !rect.Overlaps(e.surface.Bounds()) {
		return
	}

	if e.raster == nil {
		e.raster = vector.NewRasterizer(rect.Dx(), rect.Dy())
	} else {
		e.raster.Reset(rect.Dx(), rect.Dy())
	}
	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	for _, poly := range shapes {
		e.raster.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
		for _, p := range poly[1:] {
			e.raster.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		e.raster.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	e.raster.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(e.surface, rect, image.NewUniform(col.RGBA()), image.Point{}, mask, image.Point{}, draw.Over)
}

// capsule returns the polygons covering a segment with round caps. All
// polygons share one winding so overlapping areas do not cancel out.
func capsule(a, b geometry.Point2D, r float64) [][]geometry.Point2D {
	if r < 0.5 {
		r = 0.5
	}
	n := int(math.Max(12, math.Ceil(r*2)))
	shapes := [][]geometry.Point2D{geometry.CirclePoints(a, r, n)}

	length := a.Distance(b)
	if length == 0 {
		return shapes
	}
	d := b.Sub(a).Scale(1 / length)
	normal := geometry.NewPoint2D(-d.Y, d.X).Scale(r)
	body := []geometry.Point2D{a.Sub(normal), b.Sub(normal), b.Add(normal), a.Add(normal)}
	if geometry.SignedArea(body) < 0 {
		body = geometry.Reversed(body)
	}
	return append(shapes, body, geometry.CirclePoints(b, r, n))
}
