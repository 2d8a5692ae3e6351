package render

import (
	"fmt"
	"sync"

	"photobooth/internal/overlay"

	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10regular"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var fontSources = map[overlay.Font][]byte{
	overlay.FontSans:    goregular.TTF,
	overlay.FontSerif:   lmroman10regular.TTF,
	overlay.FontMono:    gomono.TTF,
	overlay.FontCursive: lmroman10italic.TTF,
	overlay.FontBold:    gobold.TTF,
	overlay.FontLight:   lmsans10regular.TTF,
}

type faceKey struct {
	font overlay.Font
	size float64
}

// faceCache parses each font once and keeps one face per size. Faces keep
// glyph state, so they are only used under mu.
type faceCache struct {
	mu    sync.Mutex
	fonts map[overlay.Font]*opentype.Font
	faces map[faceKey]font.Face
}

func newFaceCache() *faceCache {
	return &faceCache{
		fonts: make(map[overlay.Font]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// with runs fn with the face for f at size while holding the cache lock.
func (c *faceCache) with(f overlay.Font, size float64, fn func(font.Face)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	face, err := c.faceLocked(f, size)
	if err != nil {
		return err
	}
	fn(face)
	return nil
}

func (c *faceCache) faceLocked(f overlay.Font, size float64) (font.Face, error) {
	key := faceKey{f, size}
	if face, ok := c.faces[key]; ok {
		return face, nil
	}
	ft, ok := c.fonts[f]
	if !ok {
		src, known := fontSources[f]
		if !known {
			src = goregular.TTF
		}
		var err error
		ft, err = opentype.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s font: %w", f, err)
		}
		c.fonts[f] = ft
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s face: %w", f, err)
	}
	c.faces[key] = face
	return face, nil
}
