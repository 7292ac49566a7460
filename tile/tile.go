/*
Package tile converts between images and GBA 4bpp tile data.

An image is split into square tiles of a configurable size, scanned left to
right, top to bottom. Each tile must be a multiple of the 8 by 8 pixel hardware
tile and is written as its hardware tiles in the same order. A hardware tile is
eight 32-bit words, one per row, with the leftmost pixel in the lowest four
bits. Every pixel is a 4-bit index into the palette assigned to its tile.
*/
package tile

import (
	"errors"
	"fmt"
	"image"
)

const (
	hardwareSize  = 8
	pixelsPerWord = 8
	bitsPerPixel  = 4
	pixelMask     = 1<<bitsPerPixel - 1
	wordsPerTile  = hardwareSize * hardwareSize / pixelsPerWord
)

var (
	// ErrTileColorOverflow is returned when a tile uses more than 16
	// colors
	ErrTileColorOverflow = errors.New("tile: more than 16 colors in tile")
	// ErrBadSize is returned when the image is not an exact number of
	// tiles
	ErrBadSize = errors.New("tile: image size is not a multiple of the tile size")
	// ErrBadTileSize is returned for tile sizes that are not a positive
	// multiple of the hardware tile size
	ErrBadTileSize = errors.New("tile: tile size must be a positive multiple of 8")

	errMissingColor = errors.New("tile: color not in assigned palette")
	errNotEnough    = errors.New("tile: not enough tile data")
	errTooMuch      = errors.New("tile: too much tile data")
	errBadPalette   = errors.New("tile: invalid palette index")
)

// Error records a failure with a specific tile.
type Error struct {
	// Tile is the index of the tile in scan order
	Tile int
	// X and Y are the pixel coordinates of the top-left corner of the tile
	X, Y int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tile %d at (%d, %d): %v", e.Tile, e.X, e.Y, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Grid describes how an image is divided into tiles.
type Grid struct {
	// Size is the width and height of each tile in pixels
	Size int
	// Width and Height are the number of tiles across and down
	Width, Height int
}

// NewGrid returns the grid of size by size tiles covering r.
func NewGrid(r image.Rectangle, size int) (Grid, error) {
	if size <= 0 || size%hardwareSize != 0 {
		return Grid{}, ErrBadTileSize
	}
	if r.Dx()%size != 0 || r.Dy()%size != 0 {
		return Grid{}, fmt.Errorf("%dx%d image with %d pixel tiles: %w", r.Dx(), r.Dy(), size, ErrBadSize)
	}
	return Grid{
		Size:   size,
		Width:  r.Dx() / size,
		Height: r.Dy() / size,
	}, nil
}

// Len returns the number of tiles.
func (g Grid) Len() int {
	return g.Width * g.Height
}

// Origin returns the offset of the top-left corner of the n'th tile.
func (g Grid) Origin(n int) image.Point {
	return image.Pt(n%g.Width*g.Size, n/g.Width*g.Size)
}

// Words returns the number of 32-bit words used by each tile.
func (g Grid) Words() int {
	n := g.Size / hardwareSize
	return n * n * wordsPerTile
}

// walk calls f for every pixel of the n'th tile in the order they are
// packed, relative to the top-left corner of the image.
func (g Grid) walk(n int, f func(p image.Point) error) error {
	o := g.Origin(n)
	for hy := 0; hy < g.Size; hy += hardwareSize {
		for hx := 0; hx < g.Size; hx += hardwareSize {
			for y := 0; y < hardwareSize; y++ {
				for x := 0; x < hardwareSize; x++ {
					if err := f(o.Add(image.Pt(hx+x, hy+y))); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
