/*
Package palette implements the 15-bit colors used by the GBA and Palette16, a
small sorted set of up to sixteen such colors.

A color is stored as 0BBBBBGGGGGRRRRR. Reducing a 24-bit color discards the
lowest three bits of each channel.
*/
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

const (
	channelBits = 5
	channelMask = 1<<channelBits - 1

	// None is a sentinel that lies outside of the 15-bit color space. It
	// is used to reserve the first slot of a palette when no transparent
	// color has been configured.
	None Color = 0x8000
)

var errBadHex = errors.New("palette: invalid hex color")

// Color is a packed 15-bit BGR color. It implements the color.Color
// interface.
type Color uint16

// RGB returns the Color closest to the 24-bit color r, g, b.
func RGB(r, g, b uint8) Color {
	return Color(r>>3) | Color(g>>3)<<channelBits | Color(b>>3)<<(channelBits*2)
}

func expand(v Color) uint32 {
	return (uint32(v&channelMask)*0xffff + channelMask/2) / channelMask
}

// RGBA implements the color.Color interface. The None sentinel is reported as
// fully transparent black.
func (c Color) RGBA() (r, g, b, a uint32) {
	if c == None {
		return 0, 0, 0, 0
	}
	r = expand(c)
	g = expand(c >> channelBits)
	b = expand(c >> (channelBits * 2))
	a = 0xffff
	return
}

// Valid reports whether c is inside the 15-bit color space.
func (c Color) Valid() bool {
	return c&^0x7fff == 0
}

// String returns the color as a C hexadecimal literal.
func (c Color) String() string {
	if c == None {
		return "none"
	}
	return fmt.Sprintf("0x%04x", uint16(c))
}

// FromColor reduces any color.Color to a Color. Alpha is ignored, so a
// translucent pixel keeps its unpremultiplied color.
func FromColor(c color.Color) Color {
	if p, ok := c.(Color); ok {
		return p
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB(n.R, n.G, n.B)
}

// Model converts any color.Color to a Color.
var Model = color.ModelFunc(func(c color.Color) color.Color {
	return FromColor(c)
})

// ParseHex parses a 24-bit color written as six hexadecimal digits, with or
// without a leading '#' or "0x", and reduces it to a Color.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "#"), "0x")
	if len(s) != 6 {
		return 0, errBadHex
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errBadHex
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}
