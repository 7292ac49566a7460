package pngtogba

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	"github.com/bodgit/pngtogba/config"
	"github.com/bodgit/pngtogba/optimiser"
	"github.com/bodgit/pngtogba/palette"
	"github.com/bodgit/pngtogba/source"
	"github.com/bodgit/pngtogba/tile"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp" // register BMP decoder
)

var (
	errBadQuantize         = errors.New("pngtogba: quantize must be between 1 and 256 colors")
	errQuantizeTransparent = errors.New("pngtogba: quantize needs at least 2 colors with a transparent color")
)

// configure loads the header and applies any overrides
func (c *Converter) configure(header string) (*config.Config, error) {
	cfg, err := config.Load(header)
	if err != nil {
		return nil, err
	}

	if c.options.TileSize > 0 {
		cfg.TileSize = c.options.TileSize
	}
	if c.options.Prefix != "" {
		cfg.Prefix = c.options.Prefix
	}
	if c.options.Transparent != nil {
		cfg.Transparent = *c.options.Transparent
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", header, err)
	}

	return cfg, nil
}

func decodeImage(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	return m, nil
}

// isKey reports whether c is drawn with the transparent color t
func isKey(c color.Color, t palette.Color) bool {
	if t == palette.None {
		return false
	}
	_, _, _, a := c.RGBA()
	return a == 0 || palette.FromColor(c) == t
}

// reduceColors reduces m to at most n colors. If a transparent color is in
// use it takes the first palette entry and every pixel that is fully
// transparent or already the transparent color is mapped to it; the rest of
// the image is quantized without them.
func reduceColors(m image.Image, n int, transparent palette.Color) *image.Paletted {
	b := m.Bounds()

	if transparent == palette.None {
		q := quantize.MedianCutQuantizer{}
		pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
		return pm
	}

	q := quantize.MedianCutQuantizer{
		Weighting: func(m image.Image, x, y int) uint32 {
			if isKey(m.At(x, y), transparent) {
				return 0
			}
			return 1
		},
	}
	p := make(color.Palette, 1, n)
	p[0] = transparent
	pm := image.NewPaletted(b, q.Quantize(p, m))

	rest := pm.Palette[1:]
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := m.At(x, y)
			if isKey(c, transparent) {
				pm.SetColorIndex(x, y, 0)
				continue
			}
			pm.SetColorIndex(x, y, uint8(1+rest.Index(c)))
		}
	}

	return pm
}

// convert runs the whole conversion in memory
func (c *Converter) convert(cfg *config.Config) (*source.Image, image.Rectangle, error) {
	logger := c.logger.WithField("image", cfg.Image)

	m, err := decodeImage(cfg.Image)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	if n := c.options.Quantize; n != 0 {
		if n < 0 || n > optimiser.MaxColors {
			return nil, image.Rectangle{}, errBadQuantize
		}
		if n < 2 && cfg.HasTransparent() {
			return nil, image.Rectangle{}, errQuantizeTransparent
		}
		logger.Debugf("Quantizing to %d colors", n)
		m = reduceColors(m, n, cfg.Transparent)
	}

	demands, err := tile.Demands(m, cfg.TileSize, cfg.Transparent)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("%s: %w", cfg.Image, err)
	}

	o := optimiser.New(logger.WithField("component", "optimiser"))
	for i, d := range demands {
		if err := o.Add(d); err != nil {
			return nil, image.Rectangle{}, fmt.Errorf("%s: tile %d: %w", cfg.Image, i, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"tiles":  o.Len(),
		"colors": o.Colors(),
	}).Debug("Optimising palettes")

	r, err := o.Optimise(cfg.Transparent)
	if err != nil {
		if errors.Is(err, optimiser.ErrTooManyColors) {
			logger.Warnf("Try a smaller tile size than %d or use fewer colors", cfg.TileSize)
		}
		return nil, image.Rectangle{}, fmt.Errorf("%s: %w", cfg.Image, err)
	}

	words, err := tile.Encode(m, cfg.TileSize, r)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("%s: %w", cfg.Image, err)
	}

	logger.WithFields(logrus.Fields{
		"tiles":    len(r.Assignment),
		"palettes": len(r.Palettes),
		"bytes":    len(words) * 4,
	}).Info("Converted image")

	return &source.Image{
		Config: cfg,
		Result: r,
		Words:  words,
	}, m.Bounds(), nil
}

func create(file string, f func(*os.File) error) error {
	w, err := os.Create(file)
	if err != nil {
		return err
	}

	if err := f(w); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

// Convert converts the image described by the header at path and writes the
// generated C source alongside it.
func (c *Converter) Convert(header string) error {
	cfg, err := c.configure(header)
	if err != nil {
		return err
	}

	m, _, err := c.convert(cfg)
	if err != nil {
		return err
	}

	if err := create(cfg.Output, func(f *os.File) error {
		return source.Encode(f, m)
	}); err != nil {
		return err
	}
	c.logger.WithField("file", cfg.Output).Debug("Wrote source")

	if c.options.Header {
		if err := create(cfg.Header, func(f *os.File) error {
			return source.EncodeHeader(f, cfg)
		}); err != nil {
			return err
		}
		c.logger.WithField("file", cfg.Header).Debug("Wrote header")
	}

	return nil
}
