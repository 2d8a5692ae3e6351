// Package render composes a session snapshot into a raster frame: the
// photos in their layout, the footer, overlays in z-order and the drawing
// surface on top.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"time"

	"photobooth/internal/overlay"
	"photobooth/internal/session"
	"photobooth/pkg/colorutil"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DefaultLabel is printed under the date.
const DefaultLabel = "Myts Studio"

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDate renders t as "23 Maret 2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithGeometry replaces DefaultGeometry.
func WithGeometry(g FrameGeometry) Option {
	return func(r *Renderer) { r.geometry = g }
}

// WithLabel replaces the studio label. An empty label is not drawn.
func WithLabel(label string) Option {
	return func(r *Renderer) { r.label = label }
}

// Renderer turns snapshots into images. It is safe for concurrent use.
type Renderer struct {
	geometry FrameGeometry
	label    string
	faces    *faceCache
}

// New creates a renderer with the default frame geometry and label.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		geometry: DefaultGeometry,
		label:    DefaultLabel,
		faces:    newFaceCache(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Geometry returns the frame geometry in use.
func (r *Renderer) Geometry() FrameGeometry {
	return r.geometry
}

// FrameSize fits session.FrameSizer.
func (r *Renderer) FrameSize(layout session.Layout, photoCount int) (width, height int) {
	return r.geometry.Size(layout, photoCount)
}

// Snapshot renders snap and encodes it as PNG.
func (r *Renderer) Snapshot(ctx context.Context, snap session.Snapshot, scale float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := r.Render(snap, scale)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// Render composes snap at scale times its on-screen size.
func (r *Renderer) Render(snap session.Snapshot, scale float64) (*image.RGBA, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	w, h := r.geometry.Size(snap.Layout, snap.PhotoCount)
	comp := NewComposite(px(w, scale), px(h, scale), snap.FrameColor.RGBA())

	for i, slot := range r.geometry.Slots(snap.Layout, snap.PhotoCount) {
		if i >= len(snap.Photos) {
			break
		}
		img, err := DecodePhoto(snap.Photos[i])
		if err != nil {
			return nil, fmt.Errorf("photo %d: %w", i+1, err)
		}
		dst := scaleRect(slot, scale)
		comp.AddLayer(NewLayer(fmt.Sprintf("photo %d", i+1), coverFit(img, dst.Dx(), dst.Dy()), dst.Min))
	}

	if err := r.addFooter(comp, snap, scale); err != nil {
		return nil, err
	}

	for _, o := range snap.Overlays.All() {
		var (
			l   *Layer
			err error
		)
		switch o := o.(type) {
		case overlay.Text:
			l, err = r.textLayer(o, snap.TextColor.RGBA(), scale)
		case overlay.Sticker:
			l, err = r.stickerLayer(o, scale)
		}
		if err != nil {
			return nil, err
		}
		comp.AddLayer(l)
	}

	if snap.Surface != nil && !snap.Surface.Bounds().Empty() {
		comp.AddLayer(NewLayer("drawing", scaleSurface(snap.Surface, comp.Width, comp.Height), image.Point{}))
	}
	return comp.Render(), nil
}

func (r *Renderer) addFooter(comp *Composite, snap session.Snapshot, scale float64) error {
	dateBox, labelBox := r.geometry.Footer(snap.Layout, snap.PhotoCount)
	lines := []struct {
		text string
		box  image.Rectangle
		size float64
		col  color.Color
	}{
		{FormatDate(snap.Created), dateBox, r.geometry.DateSize, colorutil.Gray},
		{r.label, labelBox, r.geometry.LabelSize, colorutil.Slate},
	}
	for _, line := range lines {
		if line.text == "" {
			continue
		}
		var tile *image.RGBA
		err := r.faces.with(overlay.FontSans, line.size*scale, func(face font.Face) {
			tile = textTile(face, line.text, line.col)
		})
		if err != nil {
			return err
		}
		box := scaleRect(line.box, scale)
		at := image.Pt(
			box.Min.X+(box.Dx()-tile.Bounds().Dx())/2,
			box.Min.Y+(box.Dy()-tile.Bounds().Dy())/2,
		)
		comp.AddLayer(NewLayer("footer", tile, at))
	}
	return nil
}

// textLayer returns nil for empty text, which is listed but never drawn.
func (r *Renderer) textLayer(t overlay.Text, col color.Color, scale float64) (*Layer, error) {
	if t.Content == "" {
		return nil, nil
	}
	var tile *image.RGBA
	err := r.faces.with(t.Font, float64(t.FontSize)*scale, func(face font.Face) {
		tile = textTile(face, t.Content, col)
	})
	if err != nil {
		return nil, err
	}
	return rotatedLayer("text "+string(t.ID), tile, t.Position.X*scale, t.Position.Y*scale, t.Rotation), nil
}

func (r *Renderer) stickerLayer(s overlay.Sticker, scale float64) (*Layer, error) {
	entry, err := overlay.LookupSticker(s.Ref)
	if err != nil {
		return nil, err
	}
	var img image.Image = entry.Image(px(overlay.StickerBaseSize, scale))
	if size := px(overlay.StickerBaseSize, s.Scale*scale); size != img.Bounds().Dx() {
		img = transform.Resize(img, size, size, transform.Linear)
	}
	return rotatedLayer("sticker "+string(s.ID), img, s.Position.X*scale, s.Position.Y*scale, s.Rotation), nil
}

// rotatedLayer turns img about its centre, keeping the centre where the
// unrotated image placed at (x, y) would have it.
func rotatedLayer(name string, img image.Image, x, y, degrees float64) *Layer {
	size := img.Bounds().Size()
	cx := x + float64(size.X)/2
	cy := y + float64(size.Y)/2
	if degrees != 0 {
		img = transform.Rotate(img, degrees, &transform.RotationOptions{ResizeBounds: true})
		size = img.Bounds().Size()
	}
	at := image.Pt(
		int(math.Round(cx-float64(size.X)/2)),
		int(math.Round(cy-float64(size.Y)/2)),
	)
	return NewLayer(name, img, at)
}

// textTile draws s on a transparent image exactly one line high.
func textTile(face font.Face, s string, col color.Color) *image.RGBA {
	d := &font.Drawer{Face: face}
	width := d.MeasureString(s).Ceil()
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	height := ascent + m.Descent.Ceil()

	tile := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	d.Dst = tile
	d.Src = image.NewUniform(col)
	d.Dot = fixed.P(0, ascent)
	d.DrawString(s)
	return tile
}

// coverFit scales img to fill w×h and crops the overflow evenly.
func coverFit(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	b := img.Bounds()
	if b.Empty() || dst.Bounds().Empty() {
		return dst
	}
	sw, sh := float64(b.Dx()), float64(b.Dy())
	k := math.Max(float64(w)/sw, float64(h)/sh)
	rw, rh := int(math.Ceil(sw*k)), int(math.Ceil(sh*k))
	resized := transform.Resize(img, rw, rh, transform.Linear)
	off := image.Pt((rw-w)/2, (rh-h)/2)
	draw.Draw(dst, dst.Bounds(), resized, off, draw.Src)
	return dst
}

// scaleSurface stretches the drawing surface over the whole frame.
func scaleSurface(surface *image.RGBA, w, h int) image.Image {
	if surface.Bounds().Dx() == w && surface.Bounds().Dy() == h {
		return surface
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), surface, surface.Bounds(), draw.Over, nil)
	return dst
}

func px(v int, scale float64) int {
	return int(math.Round(float64(v) * scale))
}

func scaleRect(r image.Rectangle, scale float64) image.Rectangle {
	return image.Rect(px(r.Min.X, scale), px(r.Min.Y, scale), px(r.Max.X, scale), px(r.Max.Y, scale))
}
