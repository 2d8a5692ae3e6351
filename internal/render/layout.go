package render

import (
	"image"
	"math"

	"photobooth/internal/session"
)

// FrameGeometry describes the frame box in on-screen pixels.
type FrameGeometry struct {
	Width       int     // outer width
	Padding     int     // inset on every side
	Gap         int     // between photos
	PhotoAspect float64 // width / height

	FooterGap int // between the photos and the date line
	DateSize  float64
	DateLine  int
	LineGap   int
	LabelSize float64
	LabelLine int
}

// DefaultGeometry is a 448px wide frame with 4:3 photos.
var DefaultGeometry = FrameGeometry{
	Width:       448,
	Padding:     24,
	Gap:         24,
	PhotoAspect: 4.0 / 3.0,
	FooterGap:   24,
	DateSize:    16,
	DateLine:    24,
	LineGap:     12,
	LabelSize:   14,
	LabelLine:   20,
}

// FrameSize reports the default frame size. It fits session.FrameSizer.
func FrameSize(layout session.Layout, photoCount int) (width, height int) {
	return DefaultGeometry.Size(layout, photoCount)
}

func (g FrameGeometry) columns(layout session.Layout) int {
	if layout == session.LayoutGrid2x2 {
		return 2
	}
	return 1
}

func (g FrameGeometry) photoSize(layout session.Layout) (width, height int) {
	cols := g.columns(layout)
	inner := g.Width - 2*g.Padding
	width = (inner - (cols-1)*g.Gap) / cols
	height = int(math.Round(float64(width) / g.PhotoAspect))
	return width, height
}

func (g FrameGeometry) photosHeight(layout session.Layout, count int) int {
	cols := g.columns(layout)
	rows := (count + cols - 1) / cols
	if rows <= 0 {
		return 0
	}
	_, ph := g.photoSize(layout)
	return rows*ph + (rows-1)*g.Gap
}

// Slots returns the rectangle of each photo in frame coordinates, in
// capture order.
func (g FrameGeometry) Slots(layout session.Layout, count int) []image.Rectangle {
	cols := g.columns(layout)
	pw, ph := g.photoSize(layout)
	slots := make([]image.Rectangle, count)
	for i := range slots {
		col, row := i%cols, i/cols
		x := g.Padding + col*(pw+g.Gap)
		y := g.Padding + row*(ph+g.Gap)
		slots[i] = image.Rect(x, y, x+pw, y+ph)
	}
	return slots
}

// Footer returns the line boxes of the date and the studio label.
func (g FrameGeometry) Footer(layout session.Layout, count int) (date, label image.Rectangle) {
	top := g.Padding + g.photosHeight(layout, count) + g.FooterGap
	left, right := g.Padding, g.Width-g.Padding
	date = image.Rect(left, top, right, top+g.DateLine)
	top = date.Max.Y + g.LineGap
	label = image.Rect(left, top, right, top+g.LabelLine)
	return date, label
}

// Size returns the outer frame size.
func (g FrameGeometry) Size(layout session.Layout, count int) (width, height int) {
	_, label := g.Footer(layout, count)
	return g.Width, label.Max.Y + g.Padding
}
