/*
Package pngtogba is a library for converting images into GBA 4bpp tile data.

Each image is accompanied by a C header, for example tileset.png.h, that holds
the tile size, the symbol prefix and an optional transparent color. Converting
the header produces tileset.png.c containing up to sixteen palettes, the packed
tiles and the palette used by each tile.
*/
package pngtogba

import (
	"github.com/bodgit/pngtogba/palette"
	"github.com/sirupsen/logrus"
)

// Options control how images are converted. Zero values leave the settings
// from each header unchanged.
type Options struct {
	// TileSize overrides the header tile size
	TileSize int
	// Prefix overrides the header symbol prefix
	Prefix string
	// Transparent overrides the header transparent color. Use
	// palette.None to disable transparency
	Transparent *palette.Color
	// Quantize reduces the image to at most this many colors before
	// converting
	Quantize int
	// Header rewrites the header with declarations for the generated
	// source
	Header bool
	// Workers is the number of images converted concurrently by Scan
	Workers int
}

// Converter converts images described by their headers.
type Converter struct {
	options Options
	logger  logrus.FieldLogger
}

// New returns a Converter using options that logs to logger.
func New(options Options, logger logrus.FieldLogger) *Converter {
	if options.Workers < 1 {
		options.Workers = 1
	}
	return &Converter{
		options: options,
		logger:  logger,
	}
}
