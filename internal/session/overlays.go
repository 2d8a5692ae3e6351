package session

import (
	"fmt"

	"photobooth/internal/overlay"
	"photobooth/pkg/geometry"
)

// Overlays returns the current overlay collection.
func (s *Session) Overlays() overlay.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlays
}

// AddText creates an empty text overlay and makes it the active selection.
func (s *Session) AddText() overlay.ID {
	id := overlay.NewID()
	s.mu.Lock()
	s.overlays = s.overlays.AddText(id)
	modeChanged, committed := s.selectLocked(id)
	list := s.overlays
	s.mu.Unlock()

	s.emitOverlays(list, id, modeChanged, committed)
	return id
}

// AddSticker places a catalog sticker and makes it the active selection.
func (s *Session) AddSticker(ref overlay.StickerRef) (overlay.ID, error) {
	if _, err := overlay.LookupSticker(ref); err != nil {
		return "", err
	}
	id := overlay.NewID()
	s.mu.Lock()
	s.overlays = s.overlays.AddSticker(id, ref)
	modeChanged, committed := s.selectLocked(id)
	list := s.overlays
	s.mu.Unlock()

	s.emitOverlays(list, id, modeChanged, committed)
	return id, nil
}

// UpdateText changes fields of a text overlay. Values are clamped rather
// than rejected.
func (s *Session) UpdateText(id overlay.ID, u overlay.TextUpdate) (overlay.List, error) {
	return s.mutate(id, overlay.KindText, func(l overlay.List) overlay.List {
		return l.UpdateText(id, u)
	})
}

// SetText replaces a text overlay's content, truncated to 30 characters.
func (s *Session) SetText(id overlay.ID, content string) (overlay.List, error) {
	return s.UpdateText(id, overlay.TextUpdate{Content: &content})
}

// RotateText turns a text overlay by delta degrees.
func (s *Session) RotateText(id overlay.ID, delta float64) (overlay.List, error) {
	return s.mutate(id, overlay.KindText, func(l overlay.List) overlay.List {
		return l.Rotate(id, delta)
	})
}

// RemoveText deletes a text overlay.
func (s *Session) RemoveText(id overlay.ID) (overlay.List, error) {
	return s.remove(id, overlay.KindText)
}

// UpdateSticker changes fields of a sticker overlay.
func (s *Session) UpdateSticker(id overlay.ID, u overlay.StickerUpdate) (overlay.List, error) {
	return s.mutate(id, overlay.KindSticker, func(l overlay.List) overlay.List {
		return l.UpdateSticker(id, u)
	})
}

// UpdateStickerScale sets a sticker's scale, clamped to [0.5, 3.0].
func (s *Session) UpdateStickerScale(id overlay.ID, scale float64) (overlay.List, error) {
	return s.mutate(id, overlay.KindSticker, func(l overlay.List) overlay.List {
		return l.SetStickerScale(id, scale)
	})
}

// RotateSticker turns a sticker by delta degrees.
func (s *Session) RotateSticker(id overlay.ID, delta float64) (overlay.List, error) {
	return s.mutate(id, overlay.KindSticker, func(l overlay.List) overlay.List {
		return l.Rotate(id, delta)
	})
}

// RemoveSticker deletes a sticker overlay.
func (s *Session) RemoveSticker(id overlay.ID) (overlay.List, error) {
	return s.remove(id, overlay.KindSticker)
}

// DragOverlay moves an overlay to pos. Dragging is disabled in drawing mode.
func (s *Session) DragOverlay(id overlay.ID, pos geometry.Point2D) (overlay.List, error) {
	s.mu.RLock()
	drawingMode := s.drawingMode
	s.mu.RUnlock()
	if drawingMode {
		return s.Overlays(), ErrDrawingMode
	}
	return s.mutate(id, 0, func(l overlay.List) overlay.List {
		return l.Move(id, pos)
	})
}

// mutate applies fn when id exists with the wanted kind (0 = any kind).
func (s *Session) mutate(id overlay.ID, kind overlay.Kind, fn func(overlay.List) overlay.List) (overlay.List, error) {
	s.mu.Lock()
	if err := s.checkLocked(id, kind); err != nil {
		list := s.overlays
		s.mu.Unlock()
		return list, err
	}
	s.overlays = fn(s.overlays)
	list := s.overlays
	s.mu.Unlock()

	s.Emit(EventOverlaysChanged, list)
	return list, nil
}

func (s *Session) remove(id overlay.ID, kind overlay.Kind) (overlay.List, error) {
	s.mu.Lock()
	if err := s.checkLocked(id, kind); err != nil {
		list := s.overlays
		s.mu.Unlock()
		return list, err
	}
	s.overlays = s.overlays.Remove(id)
	deselected := s.active == id
	if deselected {
		s.active = ""
	}
	list := s.overlays
	s.mu.Unlock()

	s.Emit(EventOverlaysChanged, list)
	if deselected {
		s.Emit(EventSelectionChanged, overlay.ID(""))
	}
	return list, nil
}

func (s *Session) checkLocked(id overlay.ID, kind overlay.Kind) error {
	o, ok := s.overlays.Find(id)
	if !ok || (kind != 0 && o.Kind() != kind) {
		return fmt.Errorf("overlay %s: %w", id, ErrUnknownOverlay)
	}
	return nil
}

func (s *Session) emitOverlays(list overlay.List, active overlay.ID, modeChanged, committed bool) {
	s.Emit(EventOverlaysChanged, list)
	s.emitSelection(active, modeChanged, committed)
}

func (s *Session) emitSelection(active overlay.ID, modeChanged, committed bool) {
	if modeChanged {
		s.Emit(EventDrawingModeChanged, false)
	}
	s.Emit(EventSelectionChanged, active)
	if committed {
		s.Emit(EventStrokesChanged, s.Strokes())
	}
}

// ---- selection ----

// Select makes id the single active overlay. Selecting leaves drawing mode.
func (s *Session) Select(id overlay.ID) error {
	s.mu.Lock()
	if err := s.checkLocked(id, 0); err != nil {
		s.mu.Unlock()
		return err
	}
	modeChanged, committed := s.selectLocked(id)
	s.mu.Unlock()

	s.emitSelection(id, modeChanged, committed)
	return nil
}

// ClearSelection deselects everything, as a click on empty canvas does.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	changed := s.active != ""
	s.active = ""
	s.mu.Unlock()

	if changed {
		s.Emit(EventSelectionChanged, overlay.ID(""))
	}
}

// Active returns the selected overlay, if any.
func (s *Session) Active() (overlay.Overlay, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "" {
		return nil, false
	}
	return s.overlays.Find(s.active)
}

// IsActive reports whether id is the selected overlay.
func (s *Session) IsActive(id overlay.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return id != "" && s.active == id
}

// selectLocked sets the selection and leaves drawing mode. It reports
// whether drawing mode was switched off and whether an open stroke was
// committed on the way.
func (s *Session) selectLocked(id overlay.ID) (modeChanged, committed bool) {
	s.active = id
	if !s.drawingMode {
		return false, false
	}
	s.drawingMode = false
	_, committed = s.drawing.EndStroke()
	return true, committed
}
