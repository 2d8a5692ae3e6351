// Package colorutil provides shared color utilities for the photobooth.
package colorutil

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Common colors used as defaults throughout the application.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Purple = color.RGBA{R: 147, G: 51, B: 234, A: 255}
	Gray   = color.RGBA{R: 156, G: 163, B: 175, A: 255}
	Slate  = color.RGBA{R: 107, G: 114, B: 128, A: 255}
)

// Hex is a color stored as a lowercase "#rrggbb" triplet.
type Hex string

// Default colors for a fresh session.
const (
	DefaultFrame   Hex = "#ffffff"
	DefaultText    Hex = "#ffffff"
	DefaultDrawing Hex = "#ff0000"
)

// ParseHex accepts "#rgb", "#rrggbb" and the same without the leading '#'.
func ParseHex(s string) (Hex, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Hex(c.Hex()), nil
}

// MustHex is ParseHex for constants; it panics on malformed input.
func MustHex(s string) Hex {
	h, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return h
}

// RGBA returns the opaque color for h, or black if h is malformed.
func (h Hex) RGBA() color.RGBA {
	c, err := colorful.Hex(string(h))
	if err != nil {
		return Black
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// FromColor converts any color to its hex triplet, dropping alpha.
func FromColor(c color.Color) Hex {
	cf, _ := colorful.MakeColor(c)
	return Hex(cf.Hex())
}

// Valid reports whether h parses.
func (h Hex) Valid() bool {
	_, err := colorful.Hex(string(h))
	return err == nil
}
