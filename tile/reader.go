package tile

import (
	"image"

	"github.com/bodgit/pngtogba/optimiser"
	"github.com/bodgit/pngtogba/palette"
)

type decoder struct {
	words []uint32
	g     Grid
	r     *optimiser.Result

	image *image.Paletted
}

func (d *decoder) decode(n int) error {
	p := d.r.Assignment[n]
	if p < 0 || p >= len(d.r.Palettes) {
		return errBadPalette
	}

	words := d.words[n*d.g.Words() : (n+1)*d.g.Words()]
	i := 0
	return d.g.walk(n, func(pt image.Point) error {
		index := words[i/pixelsPerWord] >> (bitsPerPixel * uint(i%pixelsPerWord)) & pixelMask
		d.image.SetColorIndex(pt.X, pt.Y, uint8(p*palette.Size)+uint8(index))
		i++
		return nil
	})
}

// Decode rebuilds an image of width by height tiles from the words returned
// by Encode. Each pixel indexes into Palette(r).
func Decode(words []uint32, width, height, size int, r *optimiser.Result) (*image.Paletted, error) {
	g, err := NewGrid(image.Rect(0, 0, width*size, height*size), size)
	if err != nil {
		return nil, err
	}

	switch {
	case len(words) < g.Len()*g.Words():
		return nil, errNotEnough
	case len(words) > g.Len()*g.Words():
		return nil, errTooMuch
	case len(r.Assignment) != g.Len():
		return nil, errBadPalette
	}

	d := decoder{
		words: words,
		g:     g,
		r:     r,
		image: image.NewPaletted(image.Rect(0, 0, width*size, height*size), Palette(r)),
	}

	for n := 0; n < g.Len(); n++ {
		if err := d.decode(n); err != nil {
			return nil, err
		}
	}

	return d.image, nil
}
