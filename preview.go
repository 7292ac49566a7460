package pngtogba

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/bodgit/pngtogba/tile"
	"golang.org/x/image/draw"
)

var errBadScale = errors.New("pngtogba: scale must be at least 1")

// Preview converts the image described by the header at path and writes the
// result as a PNG, decoded from the generated tile data so it shows exactly
// what the hardware will display. The image is enlarged scale times.
func (c *Converter) Preview(header string, w io.Writer, scale int) error {
	if scale < 1 {
		return errBadScale
	}

	cfg, err := c.configure(header)
	if err != nil {
		return err
	}

	m, b, err := c.convert(cfg)
	if err != nil {
		return err
	}

	g, err := tile.NewGrid(b, cfg.TileSize)
	if err != nil {
		return err
	}

	pm, err := tile.Decode(m.Words, g.Width, g.Height, g.Size, m.Result)
	if err != nil {
		return err
	}

	r := image.Rect(0, 0, pm.Rect.Dx()*scale, pm.Rect.Dy()*scale)
	dst := image.NewPaletted(r, pm.Palette)
	draw.NearestNeighbor.Scale(dst, r, pm, pm.Bounds(), draw.Src, nil)

	return png.Encode(w, dst)
}
