package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Layer is one image placed on a composite.
type Layer struct {
	Name  string
	Image image.Image
	At    image.Point // top-left in composite pixels
}

// NewLayer creates a layer whose top-left corner sits at at.
func NewLayer(name string, img image.Image, at image.Point) *Layer {
	return &Layer{Name: name, Image: img, At: at}
}

// Size returns the layer's pixel size.
func (l *Layer) Size() image.Point {
	if l.Image == nil {
		return image.Point{}
	}
	return l.Image.Bounds().Size()
}

// Composite stacks layers over a solid background. Later layers draw on top.
type Composite struct {
	Width     int
	Height    int
	Layers    []*Layer
	BackColor color.Color
}

// NewComposite creates an empty composite with the given background.
func NewComposite(width, height int, back color.Color) *Composite {
	return &Composite{
		Width:     width,
		Height:    height,
		BackColor: back,
	}
}

// AddLayer appends a layer above the existing ones.
func (c *Composite) AddLayer(l *Layer) {
	c.Layers = append(c.Layers, l)
}

// Render produces the flattened image.
func (c *Composite) Render() *image.RGBA {
	result := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(result, result.Bounds(), &image.Uniform{c.BackColor}, image.Point{}, draw.Src)

	for _, l := range c.Layers {
		if l == nil || l.Image == nil {
			continue
		}
		src := l.Image.Bounds()
		r := image.Rectangle{Min: l.At, Max: l.At.Add(src.Size())}
		draw.Draw(result, r, l.Image, src.Min, draw.Over)
	}
	return result
}
