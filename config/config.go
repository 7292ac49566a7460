// Package config reads the conversion settings embedded in a C header.
//
// The settings live in comments within the first 256 bytes of the header that
// accompanies each image, for example tileset.png.h:
//
//	/* TILESIZE=8 */
//	/* PREFIX=tileset */
//	/* TRANSPARENT=38d15f */
//
// TILESIZE and PREFIX are required, TRANSPARENT is optional.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/bodgit/pngtogba/palette"
)

const (
	// HeaderSize is how much of the header is searched for settings
	HeaderSize = 256

	tileSizeVar    = "TILESIZE="
	prefixVar      = "PREFIX="
	transparentVar = "TRANSPARENT="

	// HardwareTileSize is the size of a GBA tile. Larger tiles are
	// written as several hardware tiles.
	HardwareTileSize = 8
)

var (
	// ErrNoTileSize is returned when the header has no TILESIZE setting
	ErrNoTileSize = errors.New("config: tile size required, include TILESIZE=<tilesize> in the first 256 bytes")
	// ErrBadTileSize is returned when the tile size isn't a positive
	// multiple of HardwareTileSize
	ErrBadTileSize = errors.New("config: tile size must be a positive multiple of 8")
	// ErrNoPrefix is returned when the header has no PREFIX setting
	ErrNoPrefix = errors.New("config: prefix required, include PREFIX=<prefix> in the first 256 bytes")
	// ErrBadPrefix is returned when the prefix is not a valid C identifier
	ErrBadPrefix = errors.New("config: prefix must be alphanumeric and not start with a digit")
	// ErrBadTransparent is returned when the transparent color cannot be
	// parsed
	ErrBadTransparent = errors.New("config: failed to parse transparent color")
)

// Config holds the settings for converting a single image.
type Config struct {
	TileSize int
	Prefix   string
	// Transparent is the color forced to index 0 of every palette, or
	// palette.None
	Transparent palette.Color

	// Header is the path of the header the settings were read from
	Header string
	// Image is the path of the source image
	Image string
	// Output is the path of the generated C source
	Output string
}

// HasTransparent reports whether a transparent color is configured.
func (c *Config) HasTransparent() bool {
	return c.Transparent != palette.None
}

// Validate checks the settings are usable.
func (c *Config) Validate() error {
	if c.TileSize <= 0 || c.TileSize%HardwareTileSize != 0 {
		return ErrBadTileSize
	}
	if c.Prefix == "" {
		return ErrNoPrefix
	}
	for i, r := range c.Prefix {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) || (i == 0 && unicode.IsDigit(r)) {
			return ErrBadPrefix
		}
	}
	if c.Transparent != palette.None && !c.Transparent.Valid() {
		return ErrBadTransparent
	}
	return nil
}

// value returns what follows the first occurrence of name that isn't the
// tail of a longer identifier, such as SPRITE_PREFIX=
func value(b []byte, name string) ([]byte, bool) {
	for off := 0; off < len(b); {
		i := bytes.Index(b[off:], []byte(name))
		if i < 0 {
			break
		}
		i += off
		if i == 0 || !isIdent(rune(b[i-1])) {
			return b[i+len(name):], true
		}
		off = i + len(name)
	}
	return nil, false
}

func run(b []byte, f func(rune) bool) string {
	i := bytes.IndexFunc(b, func(r rune) bool { return !f(r) })
	if i < 0 {
		i = len(b)
	}
	return string(b[:i])
}

func isAlnum(r rune) bool {
	return r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func isIdent(r rune) bool {
	return r == '_' || isAlnum(r)
}

func isHex(r rune) bool {
	return strings.ContainsRune("0123456789abcdefABCDEF", r)
}

// Read parses the settings from the first HeaderSize bytes of r.
func Read(r io.Reader) (*Config, error) {
	b := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, b)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	b = b[:n]

	c := &Config{
		Transparent: palette.None,
	}

	v, ok := value(b, tileSizeVar)
	if !ok {
		return nil, ErrNoTileSize
	}
	if c.TileSize, err = strconv.Atoi(run(v, unicode.IsDigit)); err != nil {
		return nil, ErrBadTileSize
	}

	if v, ok = value(b, prefixVar); !ok {
		return nil, ErrNoPrefix
	}
	c.Prefix = run(v, isAlnum)

	if v, ok = value(b, transparentVar); ok {
		if c.Transparent, err = palette.ParseHex(run(v, isHex)); err != nil {
			return nil, ErrBadTransparent
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Paths returns the image and output paths for a given header. The image is
// the header without its final extension and the output replaces the header
// extension with .c, so tileset.png.h describes tileset.png and produces
// tileset.png.c.
func Paths(header string) (string, string) {
	image := strings.TrimSuffix(header, filepath.Ext(header))
	return image, image + ".c"
}

// Load reads the settings from the header file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Header = path
	c.Image, c.Output = Paths(path)

	return c, nil
}
