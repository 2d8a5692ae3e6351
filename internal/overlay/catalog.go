package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// StickerRef names an entry in the sticker catalog.
type StickerRef string

// StickerBaseSize is the on-screen edge length of a sticker at scale 1.
const StickerBaseSize = 80

// CatalogEntry is one sticker the user can place.
type CatalogEntry struct {
	Ref   StickerRef
	Name  string
	Color color.RGBA
	path  func(z *vector.Rasterizer, s float32)
}

// Image rasterises the sticker into a size×size transparent image.
func (e CatalogEntry) Image(size int) *image.RGBA {
	if size < 1 {
		size = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	z := vector.NewRasterizer(size, size)
	z.DrawOp = draw.Over
	e.path(z, float32(size))
	z.Draw(dst, dst.Bounds(), image.NewUniform(e.Color), image.Point{})
	return dst
}

var catalog = []CatalogEntry{
	{Ref: "heart", Name: "Heart", Color: color.RGBA{R: 236, G: 72, B: 153, A: 255}, path: heartPath},
	{Ref: "star", Name: "Star", Color: color.RGBA{R: 250, G: 204, B: 21, A: 255}, path: starPath},
}

// Catalog returns the fixed, ordered sticker catalog.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// LookupSticker finds a catalog entry by ref.
func LookupSticker(ref StickerRef) (CatalogEntry, error) {
	for _, e := range catalog {
		if e.Ref == ref {
			return e, nil
		}
	}
	return CatalogEntry{}, fmt.Errorf("unknown sticker %q", ref)
}

func heartPath(z *vector.Rasterizer, s float32) {
	p := func(x, y float32) (float32, float32) { return x * s, y * s }
	z.MoveTo(p(0.5, 0.92))
	cube(z, p, 0.2, 0.7, 0.0, 0.5, 0.0, 0.3)
	cube(z, p, 0.0, 0.12, 0.14, 0.05, 0.27, 0.05)
	cube(z, p, 0.38, 0.05, 0.46, 0.12, 0.5, 0.22)
	cube(z, p, 0.54, 0.12, 0.62, 0.05, 0.73, 0.05)
	cube(z, p, 0.86, 0.05, 1.0, 0.12, 1.0, 0.3)
	cube(z, p, 1.0, 0.5, 0.8, 0.7, 0.5, 0.92)
	z.ClosePath()
}

func cube(z *vector.Rasterizer, p func(x, y float32) (float32, float32), bx, by, cx, cy, dx, dy float32) {
	x1, y1 := p(bx, by)
	x2, y2 := p(cx, cy)
	x3, y3 := p(dx, dy)
	z.CubeTo(x1, y1, x2, y2, x3, y3)
}

func starPath(z *vector.Rasterizer, s float32) {
	const points = 5
	cx, cy := 0.5*s, 0.53*s
	outer, inner := 0.48*s, 0.2*s
	for i := 0; i < points*2; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + float64(i)*math.Pi/points
		x := cx + r*float32(math.Cos(a))
		y := cy + r*float32(math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}
