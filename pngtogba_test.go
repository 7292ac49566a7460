package pngtogba_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/pngtogba"
	"github.com/bodgit/pngtogba/config"
	"github.com/bodgit/pngtogba/optimiser"
	"github.com/bodgit/pngtogba/palette"
	"github.com/bodgit/pngtogba/tile"
)

var (
	red     = color.NRGBA{0xff, 0x00, 0x00, 0xff}
	green   = color.NRGBA{0x00, 0xff, 0x00, 0xff}
	blue    = color.NRGBA{0x00, 0x00, 0xff, 0xff}
	magenta = color.NRGBA{0xff, 0x00, 0xff, 0xff}
)

func discard() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "pngtogba")
	require.NoError(t, err)
	return dir
}

func writeImage(t *testing.T, file string, m image.Image) {
	t.Helper()
	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
}

func writeHeader(t *testing.T, file, settings string) {
	t.Helper()
	require.NoError(t, ioutil.WriteFile(file, []byte(settings+"\n#pragma once\n"), 0644))
}

// twoTiles returns a 16x8 image; the left tile is red and green, the right
// tile blue with a magenta border
func twoTiles() *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			switch {
			case x < 8 && (x+y)%2 == 0:
				m.Set(x, y, red)
			case x < 8:
				m.Set(x, y, green)
			case x == 8 || x == 15 || y == 0 || y == 7:
				m.Set(x, y, magenta)
			default:
				m.Set(x, y, blue)
			}
		}
	}
	return m
}

func TestConverter_Convert(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	writeImage(t, filepath.Join(dir, "test.png"), twoTiles())
	writeHeader(t, filepath.Join(dir, "test.png.h"), "/* TILESIZE=8 */\n/* PREFIX=test */\n/* TRANSPARENT=ff00ff */")

	c := pngtogba.New(pngtogba.Options{}, discard())
	require.NoError(t, c.Convert(filepath.Join(dir, "test.png.h")))

	b, err := ioutil.ReadFile(filepath.Join(dir, "test.png.c"))
	require.NoError(t, err)
	out := string(b)

	assert.Contains(t, out, "/* Generated by pngtogba from test.png, do not edit */")
	assert.Contains(t, out, "const uint16_t testPaletteData[256] = {\n    0x7c1f, 0x001f, 0x03e0, 0x7c00, 0x0000,")
	assert.Contains(t, out, "const int testTileDataLength = 64;\n")
	assert.Contains(t, out, "const int testTilePaletteNumber[] = {\n    0, 0,\n};\n")
	// Top row of the left tile alternates red and green
	assert.Contains(t, out, "const uint32_t testTileData[] = {\n    0x21212121, 0x12121212,")

	// Header is left alone
	b, err = ioutil.ReadFile(filepath.Join(dir, "test.png.h"))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "extern")
}

func TestConverter_ConvertOverrides(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	header := filepath.Join(dir, "test.png.h")
	writeImage(t, filepath.Join(dir, "test.png"), twoTiles())
	writeHeader(t, header, "/* TILESIZE=16 */\n/* PREFIX=test */")

	// The header tile size doesn't fit the image
	c := pngtogba.New(pngtogba.Options{}, discard())
	err := c.Convert(header)
	assert.True(t, errors.Is(err, tile.ErrBadSize))

	none := palette.None
	c = pngtogba.New(pngtogba.Options{
		TileSize:    8,
		Prefix:      "other",
		Transparent: &none,
		Header:      true,
	}, discard())
	require.NoError(t, c.Convert(header))

	b, err := ioutil.ReadFile(filepath.Join(dir, "test.png.c"))
	require.NoError(t, err)
	// No transparent color so slot 0 is a black placeholder
	assert.Contains(t, string(b), "const uint16_t otherPaletteData[256] = {\n    0x0000, 0x001f, 0x03e0, 0x7c00, 0x7c1f, 0x0000,")

	// The rewritten header keeps the settings used
	cfg, err := config.Load(header)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.TileSize)
	assert.Equal(t, "other", cfg.Prefix)
	assert.Equal(t, palette.None, cfg.Transparent)

	b, err = ioutil.ReadFile(header)
	require.NoError(t, err)
	assert.Contains(t, string(b), "extern const int otherTilePaletteNumber[];\n")
}

func TestConverter_ConvertErrors(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	c := pngtogba.New(pngtogba.Options{}, discard())

	// No image alongside the header
	header := filepath.Join(dir, "missing.png.h")
	writeHeader(t, header, "TILESIZE=8 PREFIX=missing")
	assert.True(t, os.IsNotExist(c.Convert(header)))

	// Seventeen colors in one tile
	m := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 17; i++ {
		m.Set(i%8, i/8, color.NRGBA{uint8(i * 8), 0, 0, 0xff})
	}
	writeImage(t, filepath.Join(dir, "busy.png"), m)
	header = filepath.Join(dir, "busy.png.h")
	writeHeader(t, header, "TILESIZE=8 PREFIX=busy")

	err := c.Convert(header)
	assert.True(t, errors.Is(err, tile.ErrTileColorOverflow))
	var te *tile.Error
	assert.True(t, errors.As(err, &te))

	_, err = os.Stat(filepath.Join(dir, "busy.png.c"))
	assert.True(t, os.IsNotExist(err))
}

// manyColors returns an image of 150 tiles using 300 colors, two per tile
func manyColors() *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, 8*150, 8))
	for x := 0; x < 8*150; x++ {
		for y := 0; y < 8; y++ {
			k := x/8*2 + y%2
			m.Set(x, y, color.NRGBA{uint8(k % 10 * 24), uint8(k / 10 % 10 * 24), uint8(k / 100 * 64), 0xff})
		}
	}
	return m
}

func TestConverter_ConvertQuantize(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	header := filepath.Join(dir, "many.png.h")
	writeImage(t, filepath.Join(dir, "many.png"), manyColors())
	writeHeader(t, header, "TILESIZE=8 PREFIX=many")

	err := pngtogba.New(pngtogba.Options{}, discard()).Convert(header)
	assert.True(t, errors.Is(err, optimiser.ErrBankFull))

	err = pngtogba.New(pngtogba.Options{Quantize: 300}, discard()).Convert(header)
	assert.Error(t, err)

	require.NoError(t, pngtogba.New(pngtogba.Options{Quantize: 16}, discard()).Convert(header))

	_, err = os.Stat(filepath.Join(dir, "many.png.c"))
	assert.NoError(t, err)
}

// keyedGradient returns a 64x8 image whose top row is the color key, with one
// fully transparent pixel, above a gradient of many colors
func keyedGradient() *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, 64, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 64; x++ {
			if y == 0 {
				m.Set(x, y, color.NRGBA{0x38, 0xd1, 0x5f, 0xff})
				continue
			}
			m.Set(x, y, color.NRGBA{uint8(x * 4), uint8(y * 32), 0x80, 0xff})
		}
	}
	m.Set(3, 0, color.NRGBA{})
	return m
}

func tileData(t *testing.T, source, prefix string) []uint32 {
	t.Helper()
	start := "const uint32_t " + prefix + "TileData[] = {\n"
	i := strings.Index(source, start)
	require.True(t, i >= 0)
	body := source[i+len(start):]
	body = body[:strings.Index(body, "};")]

	var words []uint32
	for _, f := range strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' }) {
		w, err := strconv.ParseUint(f, 0, 32)
		require.NoError(t, err)
		words = append(words, uint32(w))
	}
	return words
}

func TestConverter_ConvertQuantizeTransparent(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	header := filepath.Join(dir, "k.png.h")
	writeImage(t, filepath.Join(dir, "k.png"), keyedGradient())
	writeHeader(t, header, "TILESIZE=8 PREFIX=k TRANSPARENT=38d15f")

	require.NoError(t, pngtogba.New(pngtogba.Options{Quantize: 16}, discard()).Convert(header))

	b, err := ioutil.ReadFile(filepath.Join(dir, "k.png.c"))
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "const uint16_t kPaletteData[256] = {\n    0x2f47,")

	words := tileData(t, out, "k")
	require.Len(t, words, 8*8)
	for i, w := range words {
		if i%8 == 0 {
			// Top row of each tile is all key pixels
			assert.Equal(t, uint32(0), w, "tile %d", i/8)
			continue
		}
		for n := uint(0); n < 32; n += 4 {
			assert.NotEqual(t, uint32(0), w>>n&0xf, "tile %d row %d", i/8, i%8)
		}
	}

	err = pngtogba.New(pngtogba.Options{Quantize: 1}, discard()).Convert(header)
	assert.Error(t, err)
}

func TestConverter_Preview(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	m := twoTiles()
	header := filepath.Join(dir, "test.png.h")
	writeImage(t, filepath.Join(dir, "test.png"), m)
	writeHeader(t, header, "TILESIZE=8 PREFIX=test TRANSPARENT=ff00ff")

	c := pngtogba.New(pngtogba.Options{}, discard())

	b := new(bytes.Buffer)
	require.NoError(t, c.Preview(header, b, 2))

	out, err := png.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 16), out.Bounds())

	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			assert.Equal(t, palette.FromColor(m.At(x/2, y/2)), palette.FromColor(out.At(x, y)), "(%d, %d)", x, y)
		}
	}

	assert.Error(t, c.Preview(header, b, 0))

	// Preview doesn't write any source
	_, err = os.Stat(filepath.Join(dir, "test.png.c"))
	assert.True(t, os.IsNotExist(err))
}

func TestConverter_Scan(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	for _, sub := range []string{"a", "b", ".hidden"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, sub), 0755))
	}

	writeImage(t, filepath.Join(dir, "a", "one.png"), twoTiles())
	writeHeader(t, filepath.Join(dir, "a", "one.png.h"), "TILESIZE=8 PREFIX=one")
	writeImage(t, filepath.Join(dir, "b", "two.png"), twoTiles())
	writeHeader(t, filepath.Join(dir, "b", "two.png.h"), "TILESIZE=8 PREFIX=two TRANSPARENT=0000ff")

	// Neither of these are converted
	writeHeader(t, filepath.Join(dir, ".hidden", "three.png.h"), "broken")
	writeHeader(t, filepath.Join(dir, "b", "other.h"), "broken")

	c := pngtogba.New(pngtogba.Options{Workers: 4}, discard())
	require.NoError(t, c.Scan(dir))

	for _, file := range []string{filepath.Join("a", "one.png.c"), filepath.Join("b", "two.png.c")} {
		_, err := os.Stat(filepath.Join(dir, file))
		assert.NoError(t, err, file)
	}
	_, err := os.Stat(filepath.Join(dir, ".hidden", "three.png.c"))
	assert.True(t, os.IsNotExist(err))

	// A broken header stops the scan
	writeHeader(t, filepath.Join(dir, "b", "four.png.h"), "broken")
	err = c.Scan(dir)
	assert.True(t, errors.Is(err, config.ErrNoTileSize))
}
