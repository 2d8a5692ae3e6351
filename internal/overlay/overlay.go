// Package overlay models the user-added elements layered over the photos:
// text captions and stickers. Values are immutable; every mutation on a
// List returns a new List.
package overlay

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"photobooth/pkg/geometry"

	"github.com/google/uuid"
)

// Limits enforced at the mutation boundary.
const (
	MaxTextLength   = 30
	MinFontSize     = 10
	MaxFontSize     = 72
	DefaultFontSize = 24

	MinStickerScale     = 0.5
	MaxStickerScale     = 3.0
	DefaultStickerScale = 1.0

	// RotateStep is the increment of the rotate buttons.
	RotateStep = 15.0
)

// ID identifies an overlay within a session.
type ID string

// NewID returns a random overlay id.
func NewID() ID {
	return ID(uuid.NewString())
}

// Kind tags the overlay variant.
type Kind int

const (
	KindText Kind = iota + 1
	KindSticker
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSticker:
		return "sticker"
	default:
		return "unknown"
	}
}

// Font is one of the six font family tags offered for text.
type Font int

const (
	FontSans Font = iota
	FontSerif
	FontMono
	FontCursive
	FontBold
	FontLight
)

var fontNames = [...]string{"sans", "serif", "mono", "cursive", "bold", "light"}

// Fonts lists every font tag in menu order.
func Fonts() []Font {
	return []Font{FontSans, FontSerif, FontMono, FontCursive, FontBold, FontLight}
}

func (f Font) String() string {
	if f < 0 || int(f) >= len(fontNames) {
		return "unknown"
	}
	return fontNames[f]
}

// ParseFont accepts "serif" as well as the "font-serif" class form.
func ParseFont(s string) (Font, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "font-")
	for i, name := range fontNames {
		if name == s {
			return Font(i), nil
		}
	}
	return FontSans, fmt.Errorf("unknown font %q", s)
}

// Base holds the fields every overlay carries.
type Base struct {
	ID       ID               `json:"id"`
	Position geometry.Point2D `json:"position"`
	Rotation float64          `json:"rotation"` // degrees in [0, 360)
}

// Common returns the shared fields.
func (b Base) Common() Base { return b }

// Overlay is the sum type over Text and Sticker. Dispatch on it with a
// type switch; the unexported method keeps the set closed.
type Overlay interface {
	Kind() Kind
	Common() Base
	withCommon(Base) Overlay
}

// Text is a caption drawn over the photos.
type Text struct {
	Base
	Content  string `json:"text"`
	Font     Font   `json:"font"`
	FontSize int    `json:"font_size"`
}

func (Text) Kind() Kind { return KindText }

func (t Text) withCommon(b Base) Overlay {
	t.Base = b
	return t
}

// Label is the sidebar caption; empty texts fall back to "Text <n>".
func (t Text) Label(n int) string {
	if t.Content == "" {
		return fmt.Sprintf("Text %d", n)
	}
	return t.Content
}

// Sticker is a catalog image placed over the photos.
type Sticker struct {
	Base
	Ref   StickerRef `json:"ref"`
	Scale float64    `json:"scale"`
}

func (Sticker) Kind() Kind { return KindSticker }

func (s Sticker) withCommon(b Base) Overlay {
	s.Base = b
	return s
}

// TruncateText cuts s to MaxTextLength characters.
func TruncateText(s string) string {
	if utf8.RuneCountInString(s) <= MaxTextLength {
		return s
	}
	return string([]rune(s)[:MaxTextLength])
}

// RemainingChars reports how many characters can still be typed.
func RemainingChars(s string) int {
	n := MaxTextLength - utf8.RuneCountInString(s)
	if n < 0 {
		return 0
	}
	return n
}

// ClampFontSize restricts size to [MinFontSize, MaxFontSize].
func ClampFontSize(size int) int {
	return geometry.ClampInt(size, MinFontSize, MaxFontSize)
}

// ClampStickerScale restricts scale to [MinStickerScale, MaxStickerScale].
func ClampStickerScale(scale float64) float64 {
	return geometry.Clamp(scale, MinStickerScale, MaxStickerScale)
}
