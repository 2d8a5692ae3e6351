package overlay

import "photobooth/pkg/geometry"

// TextUpdate carries the fields to change on a text; nil fields are kept.
type TextUpdate struct {
	Content  *string
	Font     *Font
	FontSize *int
	Rotation *float64
}

// StickerUpdate carries the fields to change on a sticker; nil fields are kept.
type StickerUpdate struct {
	Scale    *float64
	Rotation *float64
}

// List is an immutable ordered collection of overlays. Order is z-order:
// later entries draw on top.
type List struct {
	items []Overlay
}

// NewList builds a list from overlays, clamping every value.
func NewList(items ...Overlay) List {
	out := make([]Overlay, 0, len(items))
	for _, it := range items {
		out = append(out, sanitize(it))
	}
	return List{items: out}
}

// Len returns the number of overlays.
func (l List) Len() int { return len(l.items) }

// All returns the overlays in draw order.
func (l List) All() []Overlay {
	out := make([]Overlay, len(l.items))
	copy(out, l.items)
	return out
}

// Find returns the overlay with id.
func (l List) Find(id ID) (Overlay, bool) {
	i := l.index(id)
	if i < 0 {
		return nil, false
	}
	return l.items[i], true
}

// Text returns the text overlay with id.
func (l List) Text(id ID) (Text, bool) {
	o, ok := l.Find(id)
	if !ok {
		return Text{}, false
	}
	t, ok := o.(Text)
	return t, ok
}

// Sticker returns the sticker overlay with id.
func (l List) Sticker(id ID) (Sticker, bool) {
	o, ok := l.Find(id)
	if !ok {
		return Sticker{}, false
	}
	s, ok := o.(Sticker)
	return s, ok
}

// Texts returns the text overlays in draw order.
func (l List) Texts() []Text {
	var out []Text
	for _, o := range l.items {
		if t, ok := o.(Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// Stickers returns the sticker overlays in draw order.
func (l List) Stickers() []Sticker {
	var out []Sticker
	for _, o := range l.items {
		if s, ok := o.(Sticker); ok {
			out = append(out, s)
		}
	}
	return out
}

// AddText appends an empty text with default font and size at the origin.
func (l List) AddText(id ID) List {
	return l.appendItem(Text{
		Base:     Base{ID: id},
		Font:     FontSans,
		FontSize: DefaultFontSize,
	})
}

// AddSticker appends a sticker at the origin with scale 1.
func (l List) AddSticker(id ID, ref StickerRef) List {
	return l.appendItem(Sticker{
		Base:  Base{ID: id},
		Ref:   ref,
		Scale: DefaultStickerScale,
	})
}

// UpdateText applies u to the text with id. Unknown ids and stickers leave
// the list unchanged.
func (l List) UpdateText(id ID, u TextUpdate) List {
	t, ok := l.Text(id)
	if !ok {
		return l
	}
	if u.Content != nil {
		t.Content = *u.Content
	}
	if u.Font != nil {
		t.Font = *u.Font
	}
	if u.FontSize != nil {
		t.FontSize = *u.FontSize
	}
	if u.Rotation != nil {
		t.Rotation = *u.Rotation
	}
	return l.replace(t)
}

// UpdateSticker applies u to the sticker with id.
func (l List) UpdateSticker(id ID, u StickerUpdate) List {
	s, ok := l.Sticker(id)
	if !ok {
		return l
	}
	if u.Scale != nil {
		s.Scale = *u.Scale
	}
	if u.Rotation != nil {
		s.Rotation = *u.Rotation
	}
	return l.replace(s)
}

// SetStickerScale sets a sticker's scale, clamped to [0.5, 3.0].
func (l List) SetStickerScale(id ID, scale float64) List {
	return l.UpdateSticker(id, StickerUpdate{Scale: &scale})
}

// Rotate turns the overlay with id by delta degrees.
func (l List) Rotate(id ID, delta float64) List {
	o, ok := l.Find(id)
	if !ok {
		return l
	}
	b := o.Common()
	b.Rotation += delta
	return l.replace(o.withCommon(b))
}

// Move replaces the overlay's position. Positions are free-form; the
// renderer clips to the frame.
func (l List) Move(id ID, pos geometry.Point2D) List {
	o, ok := l.Find(id)
	if !ok {
		return l
	}
	b := o.Common()
	b.Position = pos
	return l.replace(o.withCommon(b))
}

// Remove deletes the overlay with id.
func (l List) Remove(id ID) List {
	i := l.index(id)
	if i < 0 {
		return l
	}
	out := make([]Overlay, 0, len(l.items)-1)
	out = append(out, l.items[:i]...)
	out = append(out, l.items[i+1:]...)
	return List{items: out}
}

func (l List) index(id ID) int {
	for i, o := range l.items {
		if o.Common().ID == id {
			return i
		}
	}
	return -1
}

func (l List) appendItem(o Overlay) List {
	out := make([]Overlay, len(l.items), len(l.items)+1)
	copy(out, l.items)
	return List{items: append(out, sanitize(o))}
}

func (l List) replace(o Overlay) List {
	i := l.index(o.Common().ID)
	out := make([]Overlay, len(l.items))
	copy(out, l.items)
	out[i] = sanitize(o)
	return List{items: out}
}

// sanitize enforces the stored ranges of every field.
func sanitize(o Overlay) Overlay {
	switch v := o.(type) {
	case Text:
		v.Content = TruncateText(v.Content)
		v.FontSize = ClampFontSize(v.FontSize)
		if v.Font < FontSans || v.Font > FontLight {
			v.Font = FontSans
		}
		v.Rotation = geometry.NormalizeDegrees(v.Rotation)
		return v
	case Sticker:
		v.Scale = ClampStickerScale(v.Scale)
		v.Rotation = geometry.NormalizeDegrees(v.Rotation)
		return v
	default:
		return o
	}
}
