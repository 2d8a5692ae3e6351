package session

import (
	"image"

	"photobooth/internal/drawing"
	"photobooth/internal/overlay"
	"photobooth/pkg/colorutil"
	"photobooth/pkg/geometry"
)

// SetDrawingMode switches pointer input between stroke capture and overlay
// manipulation. Entering drawing mode clears the selection; leaving it
// commits any open stroke.
func (s *Session) SetDrawingMode(on bool) {
	s.mu.Lock()
	if s.drawingMode == on {
		s.mu.Unlock()
		return
	}
	s.drawingMode = on
	deselected := false
	committed := false
	if on {
		deselected = s.active != ""
		s.active = ""
	} else {
		_, committed = s.drawing.EndStroke()
	}
	s.mu.Unlock()

	s.Emit(EventDrawingModeChanged, on)
	if deselected {
		s.Emit(EventSelectionChanged, overlay.ID(""))
	}
	if committed {
		s.Emit(EventStrokesChanged, s.Strokes())
	}
}

// DrawingMode reports whether pointer input draws strokes.
func (s *Session) DrawingMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawingMode
}

// SetBrushWidth sets the width of the next stroke, clamped to [1, 20].
func (s *Session) SetBrushWidth(w int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brushWidth = drawing.ClampBrushWidth(w)
	return s.brushWidth
}

// BrushWidth returns the width used by the next stroke.
func (s *Session) BrushWidth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brushWidth
}

// PointerDown starts a stroke at p. It reports false outside drawing mode.
func (s *Session) PointerDown(p geometry.Point2D) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.drawingMode {
		return false
	}
	s.drawing.BeginStroke(p, s.drawingColor, s.brushWidth)
	return true
}

// PointerMove extends the open stroke.
func (s *Session) PointerMove(p geometry.Point2D) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.drawingMode {
		return false
	}
	return s.drawing.ExtendStroke(p)
}

// PointerUp ends the open stroke and reports whether it was committed.
func (s *Session) PointerUp() bool {
	s.mu.Lock()
	if !s.drawingMode {
		s.mu.Unlock()
		return false
	}
	_, committed := s.drawing.EndStroke()
	s.mu.Unlock()

	if committed {
		s.Emit(EventStrokesChanged, s.Strokes())
	}
	return committed
}

// Strokes returns the committed strokes in draw order.
func (s *Session) Strokes() []drawing.Stroke {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawing.Strokes()
}

// ClearStrokes removes every stroke.
func (s *Session) ClearStrokes() []drawing.Stroke {
	s.mu.Lock()
	s.drawing.ClearAll()
	s.mu.Unlock()

	strokes := s.Strokes()
	s.Emit(EventStrokesChanged, strokes)
	return strokes
}

// RemoveStroke deletes the stroke at index.
func (s *Session) RemoveStroke(index int) ([]drawing.Stroke, error) {
	s.mu.Lock()
	err := s.drawing.RemoveStroke(index)
	s.mu.Unlock()

	strokes := s.Strokes()
	if err != nil {
		return strokes, err
	}
	s.Emit(EventStrokesChanged, strokes)
	return strokes, nil
}

// RecolorStroke sets the color of the stroke at index.
func (s *Session) RecolorStroke(index int, hex string) ([]drawing.Stroke, error) {
	c, err := colorutil.ParseHex(hex)
	if err != nil {
		return s.Strokes(), err
	}
	s.mu.Lock()
	err = s.drawing.RecolorStroke(index, c)
	s.mu.Unlock()

	strokes := s.Strokes()
	if err != nil {
		return strokes, err
	}
	s.Emit(EventStrokesChanged, strokes)
	return strokes, nil
}

// ResizeSurface sets the drawing surface size and replays all strokes.
func (s *Session) ResizeSurface(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawing.Resize(width, height)
}

// SurfaceSize returns the drawing surface dimensions.
func (s *Session) SurfaceSize() image.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, h := s.drawing.Size()
	return image.Pt(w, h)
}
