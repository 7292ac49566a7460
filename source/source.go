/*
Package source writes converted images as C source.

For a prefix of "tileset" the generated source defines:

	const uint16_t tilesetPaletteData[256];
	const uint32_t tilesetTileData[];
	const int tilesetTileDataLength;
	const int tilesetTilePaletteNumber[];

The palette data is all sixteen palettes back to back, ready to copy to
palette RAM. The tile data length is in bytes.
*/
package source

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bodgit/pngtogba/config"
	"github.com/bodgit/pngtogba/optimiser"
	"github.com/bodgit/pngtogba/palette"
)

const (
	paletteLength = optimiser.MaxColors
	perLine       = 8
)

// Image is a converted image ready to be written.
type Image struct {
	*config.Config

	Result *optimiser.Result
	Words  []uint32
}

type encoder struct {
	w   *bufio.Writer
	err error
}

func (e *encoder) printf(format string, a ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, a...)
}

// array writes n values, perLine to a line, using f to format each one
func (e *encoder) array(decl string, n int, f func(int) string) {
	e.printf("%s = {", decl)
	for i := 0; i < n; i++ {
		if i%perLine == 0 {
			e.printf("\n   ")
		}
		e.printf(" %s,", f(i))
	}
	e.printf("\n};\n\n")
}

func (e *encoder) comment(m *Image) {
	e.printf("/* Generated by pngtogba from %s, do not edit */\n\n", filepath.Base(m.Image))
}

func paletteData(r *optimiser.Result) []palette.Color {
	data := make([]palette.Color, paletteLength)
	for i := range r.Palettes {
		copy(data[i*palette.Size:], r.Colors(i))
	}
	return data
}

// Encode writes the C source for m to w.
func Encode(w io.Writer, m *Image) error {
	e := encoder{w: bufio.NewWriter(w)}

	e.comment(m)
	e.printf("#include <stdint.h>\n\n")

	colors := paletteData(m.Result)
	e.array(fmt.Sprintf("const uint16_t %sPaletteData[%d]", m.Prefix, paletteLength), len(colors), func(i int) string {
		return colors[i].String()
	})

	e.array(fmt.Sprintf("const uint32_t %sTileData[]", m.Prefix), len(m.Words), func(i int) string {
		return fmt.Sprintf("0x%08x", m.Words[i])
	})

	e.printf("const int %sTileDataLength = %d;\n\n", m.Prefix, len(m.Words)*4)

	e.array(fmt.Sprintf("const int %sTilePaletteNumber[]", m.Prefix), len(m.Result.Assignment), func(i int) string {
		return fmt.Sprint(m.Result.Assignment[i])
	})

	if e.err != nil {
		return e.err
	}

	return e.w.Flush()
}

// EncodeHeader writes a C header declaring everything written by Encode.
// The settings in c are written first so the header can be read again by
// config.Read.
func EncodeHeader(w io.Writer, c *config.Config) error {
	e := encoder{w: bufio.NewWriter(w)}

	e.printf("/* TILESIZE=%d */\n", c.TileSize)
	e.printf("/* PREFIX=%s */\n", c.Prefix)
	if c.HasTransparent() {
		r, g, b, _ := c.Transparent.RGBA()
		e.printf("/* TRANSPARENT=%02x%02x%02x */\n", r>>8, g>>8, b>>8)
	}
	e.printf("#pragma once\n\n")
	e.printf("#include <stdint.h>\n\n")
	e.printf("extern const uint16_t %sPaletteData[%d];\n", c.Prefix, paletteLength)
	e.printf("extern const uint32_t %sTileData[];\n", c.Prefix)
	e.printf("extern const int %sTileDataLength;\n", c.Prefix)
	e.printf("extern const int %sTilePaletteNumber[];\n", c.Prefix)

	if e.err != nil {
		return e.err
	}

	return e.w.Flush()
}
