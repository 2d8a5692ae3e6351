package render

import (
	"photobooth/internal/overlay"
	"photobooth/internal/session"
	"photobooth/pkg/geometry"

	"golang.org/x/image/font"
)

// Bounds returns the unrotated box of o in frame coordinates. Empty text
// has no box.
func (r *Renderer) Bounds(o overlay.Overlay) (geometry.Rect, bool) {
	switch o := o.(type) {
	case overlay.Text:
		if o.Content == "" {
			return geometry.Rect{}, false
		}
		var w, h int
		err := r.faces.with(o.Font, float64(o.FontSize), func(face font.Face) {
			m := face.Metrics()
			w = (&font.Drawer{Face: face}).MeasureString(o.Content).Ceil()
			h = m.Ascent.Ceil() + m.Descent.Ceil()
		})
		if err != nil {
			return geometry.Rect{}, false
		}
		return geometry.NewRect(o.Position.X, o.Position.Y, float64(w), float64(h)), true
	case overlay.Sticker:
		size := overlay.StickerBaseSize * o.Scale
		return geometry.NewRect(o.Position.X, o.Position.Y, size, size), true
	}
	return geometry.Rect{}, false
}

// HitTest returns the topmost overlay under p, a point in frame
// coordinates. Rotation is taken into account.
func (r *Renderer) HitTest(snap session.Snapshot, p geometry.Point2D) (overlay.ID, bool) {
	items := snap.Overlays.All()
	for i := len(items) - 1; i >= 0; i-- {
		box, ok := r.Bounds(items[i])
		if !ok {
			continue
		}
		toScreen := geometry.RotationAbout(items[i].Common().Rotation, box.Center())
		toBox, ok := toScreen.Inverse()
		if !ok {
			continue
		}
		if box.Contains(toBox.Apply(p)) {
			return items[i].Common().ID, true
		}
	}
	return "", false
}
