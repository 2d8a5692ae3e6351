// Package session holds the aggregate state of one photobooth run and
// mediates every mutation of it.
package session

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"photobooth/internal/drawing"
	"photobooth/internal/overlay"
	"photobooth/pkg/colorutil"

	"github.com/jinzhu/copier"
)

// Layout is the arrangement of photos in the frame.
type Layout int

const (
	LayoutVertical Layout = iota
	LayoutGrid2x2
)

func (l Layout) String() string {
	switch l {
	case LayoutVertical:
		return "vertical"
	case LayoutGrid2x2:
		return "grid"
	default:
		return "unknown"
	}
}

// ParseLayout accepts "vertical" and "grid" (also "square" and "2x2").
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "vertical":
		return LayoutVertical, nil
	case "grid", "square", "2x2":
		return LayoutGrid2x2, nil
	}
	return LayoutVertical, fmt.Errorf("unknown layout %q", s)
}

// Allowed photo counts.
const (
	MinPhotoCount     = 3
	MaxPhotoCount     = 4
	DefaultPhotoCount = 4
)

var (
	ErrInvalidPhotoCount = errors.New("photo count must be 3 or 4")
	ErrPhotosFull        = errors.New("all photos already taken")
	ErrStaleEpoch        = errors.New("session has been reset")
	ErrNotReady          = errors.New("photos not complete")
	ErrLayoutUnavailable = errors.New("layout not available for this photo count")
	ErrUnknownOverlay    = errors.New("unknown overlay")
	ErrDrawingMode       = errors.New("overlays are locked while drawing")
)

// EventType identifies session events.
type EventType int

const (
	EventPhotoAdded EventType = iota
	EventPhotosCleared
	EventPhotoCountChanged
	EventLayoutSelected
	EventColorsChanged
	EventOverlaysChanged
	EventSelectionChanged
	EventDrawingModeChanged
	EventStrokesChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// FrameSizer reports the on-screen frame size for a layout and photo count.
type FrameSizer func(layout Layout, photoCount int) (width, height int)

// Option configures a Session.
type Option func(*Session)

// WithFrameSizer keeps the drawing surface sized to the composed frame.
func WithFrameSizer(f FrameSizer) Option {
	return func(s *Session) { s.sizer = f }
}

// WithColors overrides the starting frame, text and drawing colors.
func WithColors(frame, text, drawingColor colorutil.Hex) Option {
	return func(s *Session) {
		s.frameColor, s.textColor, s.drawingColor = frame, text, drawingColor
	}
}

// WithClock overrides the time source used for the creation date.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is the aggregate for one run: captured photos, layout, colors,
// overlays, strokes and the current interaction mode.
type Session struct {
	mu sync.RWMutex

	photoCount   int
	photos       [][]byte
	epoch        uint64
	layout       Layout
	layoutChosen bool

	frameColor   colorutil.Hex
	textColor    colorutil.Hex
	drawingColor colorutil.Hex
	brushWidth   int

	overlays    overlay.List
	active      overlay.ID
	drawingMode bool
	drawing     *drawing.Engine

	created time.Time
	now     func() time.Time
	sizer   FrameSizer

	listeners map[EventType][]EventListener
}

// New creates a session with four photos, vertical layout and default colors.
func New(opts ...Option) *Session {
	s := &Session{
		photoCount:   DefaultPhotoCount,
		frameColor:   colorutil.DefaultFrame,
		textColor:    colorutil.DefaultText,
		drawingColor: colorutil.DefaultDrawing,
		brushWidth:   drawing.DefaultBrushWidth,
		drawing:      drawing.NewEngine(0, 0),
		now:          time.Now,
		listeners:    make(map[EventType][]EventListener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.created = s.now()
	s.resizeLocked()
	return s
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Created returns when the session started.
func (s *Session) Created() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.created
}

// resizeLocked matches the drawing surface to the current frame size.
func (s *Session) resizeLocked() {
	if s.sizer == nil {
		return
	}
	w, h := s.sizer(s.layout, s.photoCount)
	s.drawing.Resize(w, h)
}

// ---- photos ----

// PhotoCount returns the number of photos the run will take.
func (s *Session) PhotoCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.photoCount
}

// SetPhotoCount chooses 3 or 4 photos. Existing photos are discarded.
func (s *Session) SetPhotoCount(n int) error {
	if n < MinPhotoCount || n > MaxPhotoCount {
		return fmt.Errorf("set photo count %d: %w", n, ErrInvalidPhotoCount)
	}
	s.mu.Lock()
	s.photoCount = n
	s.photos = nil
	s.epoch++
	s.layout = LayoutVertical
	s.layoutChosen = false
	s.resizeLocked()
	s.mu.Unlock()

	s.Emit(EventPhotoCountChanged, n)
	return nil
}

// Epoch changes every time the photo list is reset. Deferred work records
// it when scheduled and passes it back to AddPhoto.
func (s *Session) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// AddPhoto appends an encoded still. It fails with ErrStaleEpoch when the
// photos were reset after epoch was read.
func (s *Session) AddPhoto(epoch uint64, img []byte) error {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return ErrStaleEpoch
	}
	if len(s.photos) >= s.photoCount {
		s.mu.Unlock()
		return ErrPhotosFull
	}
	buf := make([]byte, len(img))
	copy(buf, img)
	s.photos = append(s.photos, buf)
	n := len(s.photos)
	s.mu.Unlock()

	s.Emit(EventPhotoAdded, n)
	return nil
}

// ClearPhotos empties the photo list for a retake and invalidates any work
// scheduled against the previous epoch.
func (s *Session) ClearPhotos() {
	s.mu.Lock()
	s.photos = nil
	s.epoch++
	s.layoutChosen = false
	s.mu.Unlock()

	log.Printf("session: photos cleared")
	s.Emit(EventPhotosCleared, nil)
}

// Photos returns copies of the captured stills in capture order.
func (s *Session) Photos() [][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]byte, len(s.photos))
	for i, p := range s.photos {
		out[i] = append([]byte(nil), p...)
	}
	return out
}

// PhotosTaken returns how many photos exist.
func (s *Session) PhotosTaken() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}

// Ready reports whether every photo has been taken.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos) == s.photoCount
}

// ---- layout ----

// LayoutOptions lists the layouts offered for the current photo count.
func (s *Session) LayoutOptions() []Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return layoutOptions(s.photoCount)
}

func layoutOptions(photoCount int) []Layout {
	if photoCount == 4 {
		return []Layout{LayoutVertical, LayoutGrid2x2}
	}
	return []Layout{LayoutVertical}
}

// SelectLayout picks the layout once all photos are taken.
func (s *Session) SelectLayout(l Layout) error {
	s.mu.Lock()
	if len(s.photos) != s.photoCount {
		s.mu.Unlock()
		return fmt.Errorf("select layout: %w", ErrNotReady)
	}
	allowed := false
	for _, opt := range layoutOptions(s.photoCount) {
		allowed = allowed || opt == l
	}
	if !allowed {
		s.mu.Unlock()
		return fmt.Errorf("select layout %s: %w", l, ErrLayoutUnavailable)
	}
	s.layout = l
	s.layoutChosen = true
	s.resizeLocked()
	s.mu.Unlock()

	s.Emit(EventLayoutSelected, l)
	return nil
}

// Layout returns the current layout and whether the user has chosen it.
func (s *Session) Layout() (Layout, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout, s.layoutChosen
}

// ---- colors ----

// SetFrameColor sets the frame background from a hex string.
func (s *Session) SetFrameColor(hex string) error {
	return s.setColor(&s.frameColor, hex)
}

// SetTextColor sets the color of every text overlay.
func (s *Session) SetTextColor(hex string) error {
	return s.setColor(&s.textColor, hex)
}

// SetDrawingColor sets the color used by the next stroke.
func (s *Session) SetDrawingColor(hex string) error {
	return s.setColor(&s.drawingColor, hex)
}

func (s *Session) setColor(dst *colorutil.Hex, hex string) error {
	c, err := colorutil.ParseHex(hex)
	if err != nil {
		return err
	}
	s.mu.Lock()
	*dst = c
	s.mu.Unlock()

	s.Emit(EventColorsChanged, c)
	return nil
}

// Colors returns the frame, text and drawing colors.
func (s *Session) Colors() (frame, text, drawingColor colorutil.Hex) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameColor, s.textColor, s.drawingColor
}

// ---- snapshot ----

// Snapshot is an immutable copy of the session used for rendering.
type Snapshot struct {
	Epoch        uint64
	PhotoCount   int
	Photos       [][]byte
	Layout       Layout
	LayoutChosen bool
	FrameColor   colorutil.Hex
	TextColor    colorutil.Hex
	DrawingColor colorutil.Hex
	BrushWidth   int
	Active       overlay.ID
	DrawingMode  bool
	Strokes      []drawing.Stroke
	Surface      *image.RGBA

	Overlays overlay.List `copier:"-"`
	Created  time.Time    `copier:"-"`
}

// Snapshot deep-copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	live := Snapshot{
		Epoch:        s.epoch,
		PhotoCount:   s.photoCount,
		Photos:       s.photos,
		Layout:       s.layout,
		LayoutChosen: s.layoutChosen,
		FrameColor:   s.frameColor,
		TextColor:    s.textColor,
		DrawingColor: s.drawingColor,
		BrushWidth:   s.brushWidth,
		Active:       s.active,
		DrawingMode:  s.drawingMode,
		Strokes:      s.drawing.Strokes(),
		Surface:      s.drawing.Surface(),
		Overlays:     s.overlays,
		Created:      s.created,
	}

	var snap Snapshot
	err := copier.CopyWithOption(&snap, &live, copier.Option{DeepCopy: true})
	s.mu.RUnlock()
	if err != nil {
		// copier only fails on field types it cannot copy
		panic(fmt.Sprintf("session: snapshot: %v", err))
	}
	snap.Overlays = live.Overlays
	snap.Created = live.Created
	return snap
}
