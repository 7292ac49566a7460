package tile

import (
	"image"
	"image/color"

	"github.com/bodgit/pngtogba/optimiser"
	"github.com/bodgit/pngtogba/palette"
)

// colorAt reduces the pixel at p. Fully transparent pixels become the
// transparent color if there is one.
func colorAt(m image.Image, p image.Point, transparent palette.Color) palette.Color {
	c := m.At(p.X, p.Y)
	if transparent != palette.None {
		if _, _, _, a := c.RGBA(); a == 0 {
			return transparent
		}
	}
	return palette.FromColor(c)
}

// Demands returns the colors used by each tile of m in scan order. If a tile
// uses more than 16 colors an *Error wrapping ErrTileColorOverflow is
// returned.
func Demands(m image.Image, size int, transparent palette.Color) ([]palette.Palette16, error) {
	b := m.Bounds()
	g, err := NewGrid(b, size)
	if err != nil {
		return nil, err
	}

	demands := make([]palette.Palette16, g.Len())
	for n := range demands {
		p := &demands[n]
		if err := g.walk(n, func(pt image.Point) error {
			_, err := p.Add(colorAt(m, pt.Add(b.Min), transparent))
			return err
		}); err != nil {
			o := g.Origin(n)
			return nil, &Error{Tile: n, X: o.X, Y: o.Y, Err: ErrTileColorOverflow}
		}
	}

	return demands, nil
}

type encoder struct {
	m image.Image
	g Grid
	r *optimiser.Result

	words []uint32
}

func (e *encoder) encode(n int) error {
	b := e.m.Bounds()
	i := 0
	var word uint32
	return e.g.walk(n, func(pt image.Point) error {
		c := colorAt(e.m, pt.Add(b.Min), e.r.Transparent)
		index, ok := e.r.Index(n, c)
		if !ok {
			o := e.g.Origin(n)
			return &Error{Tile: n, X: o.X, Y: o.Y, Err: errMissingColor}
		}

		word |= uint32(index&pixelMask) << (bitsPerPixel * uint(i%pixelsPerWord))
		if i++; i%pixelsPerWord == 0 {
			e.words = append(e.words, word)
			word = 0
		}
		return nil
	})
}

// Encode packs every pixel of m as an index into the palette assigned to its
// tile by r. r must be the result of optimising the demands returned by
// Demands for the same image, tile size and transparent color.
func Encode(m image.Image, size int, r *optimiser.Result) ([]uint32, error) {
	g, err := NewGrid(m.Bounds(), size)
	if err != nil {
		return nil, err
	}
	if len(r.Assignment) != g.Len() {
		return nil, errBadPalette
	}

	e := encoder{
		m:     m,
		g:     g,
		r:     r,
		words: make([]uint32, 0, g.Len()*g.Words()),
	}

	for n := 0; n < g.Len(); n++ {
		if err := e.encode(n); err != nil {
			return nil, err
		}
	}

	return e.words, nil
}

// Palette returns every palette in r as a single color.Palette, sixteen
// colors per palette, padded with black.
func Palette(r *optimiser.Result) color.Palette {
	p := make(color.Palette, 0, len(r.Palettes)*palette.Size)
	for i := range r.Palettes {
		colors := r.Colors(i)
		for j := 0; j < palette.Size; j++ {
			if j < len(colors) {
				p = append(p, colors[j])
			} else {
				p = append(p, palette.Color(0))
			}
		}
	}
	return p
}
