/*
Package optimiser chooses the palettes used by a GBA 4bpp tileset.

Each tile needs a set of up to sixteen colors and can reference exactly one of
at most sixteen hardware palettes. The optimiser collects the demand of every
tile and greedily builds palettes one at a time until every tile is covered by
a palette holding all of its colors. It is a variation of the set cover
problem; the greedy approach is not guaranteed to find the smallest number of
palettes but it is deterministic for a given order of tiles.
*/
package optimiser

import (
	"errors"

	"github.com/bodgit/pngtogba/palette"
	"github.com/sirupsen/logrus"
)

const (
	// MaxColors is the total number of colors across all palettes
	MaxColors = 256
	// MaxPalettes is the number of 16 color palettes available
	MaxPalettes = MaxColors / palette.Size
)

var (
	// ErrBankFull is returned when the image uses more than MaxColors
	// distinct colors
	ErrBankFull = errors.New("optimiser: more than 256 colors in image")
	// ErrTooManyColors is returned when the tiles cannot be covered by
	// MaxPalettes palettes
	ErrTooManyColors = errors.New("optimiser: failed to find covering palettes")
)

// Optimiser collects the colors needed by each tile. An Optimiser is used for
// a single image.
type Optimiser struct {
	logger logrus.FieldLogger

	tiles []palette.Palette16

	// Every distinct color seen, in the order first seen
	bank  []palette.Color
	index map[palette.Color]int
}

// New returns a new Optimiser that logs its progress to logger.
func New(logger logrus.FieldLogger) *Optimiser {
	return &Optimiser{
		logger: logger,
		bank:   make([]palette.Color, 0, MaxColors),
		index:  make(map[palette.Color]int, MaxColors),
	}
}

// Len returns the number of tiles added so far.
func (o *Optimiser) Len() int {
	return len(o.tiles)
}

// Colors returns the number of distinct colors seen so far.
func (o *Optimiser) Colors() int {
	return len(o.bank)
}

// Add appends the colors needed by the next tile. Tiles must be added in the
// order they appear in the image as the position is used to identify the tile
// in the results. If the additional colors would exceed MaxColors then
// ErrBankFull is returned and the tile is not added.
func (o *Optimiser) Add(p palette.Palette16) error {
	var missing int
	for _, c := range p.Colors() {
		if _, ok := o.index[c]; !ok {
			missing++
		}
	}
	if len(o.bank)+missing > MaxColors {
		return ErrBankFull
	}

	for _, c := range p.Colors() {
		if _, ok := o.index[c]; !ok {
			o.index[c] = len(o.bank)
			o.bank = append(o.bank, c)
		}
	}
	o.tiles = append(o.tiles, p)

	return nil
}

// run holds the working state of a single call to Optimise
type run struct {
	*Optimiser

	transparent palette.Color

	// Tiles still waiting for a palette
	unsatisfied []int
	// Number of times each bank color is missing from the working palette
	usage [MaxColors]int
}

// grow adds the most wanted color to p. It returns false if no tile that
// could still fit in p needs another color.
func (r *run) grow(p *palette.Palette16) bool {
	r.usage = [MaxColors]int{}
	used := false

	for _, t := range r.unsatisfied {
		tile := &r.tiles[t]
		if p.UnionLen(tile) > palette.Size || p.Compare(tile) == palette.FirstContainsSecond {
			continue
		}
		for _, c := range tile.Colors() {
			if !p.Contains(c) {
				r.usage[r.index[c]]++
				used = true
			}
		}
	}

	if !used {
		return false
	}

	// Ties go to the color seen first
	best := 0
	for i := 1; i < len(r.bank); i++ {
		if r.usage[i] > r.usage[best] {
			best = i
		}
	}

	if _, err := p.Add(r.bank[best]); err != nil {
		// Unreachable as every candidate tile fits in p
		panic(err)
	}

	return true
}

// build returns the palette that covers as many of the remaining tiles as
// the greedy choice of colors allows.
func (r *run) build() palette.Palette16 {
	var p palette.Palette16
	_, _ = p.Add(r.transparent)

	for p.Len() < palette.Size {
		if !r.grow(&p) {
			break
		}
	}

	return p
}

// Optimise builds the palettes covering every tile added. Every palette
// starts with the transparent color so it is always available at index 0; use
// palette.None to reserve the slot without a color.
func (o *Optimiser) Optimise(transparent palette.Color) (*Result, error) {
	r := &run{
		Optimiser:   o,
		transparent: transparent,
		unsatisfied: make([]int, len(o.tiles)),
	}
	for i := range r.unsatisfied {
		r.unsatisfied[i] = i
	}

	result := &Result{
		Assignment:  make([]int, len(o.tiles)),
		Transparent: transparent,
	}

	for len(r.unsatisfied) > 0 {
		if len(result.Palettes) == MaxPalettes {
			return nil, ErrTooManyColors
		}

		p := r.build()
		n := len(result.Palettes)

		remaining := r.unsatisfied[:0]
		for _, t := range r.unsatisfied {
			if p.Compare(&o.tiles[t]) == palette.FirstContainsSecond {
				result.Assignment[t] = n
				continue
			}
			remaining = append(remaining, t)
		}

		satisfied := len(r.unsatisfied) - len(remaining)
		r.unsatisfied = remaining

		o.logger.WithFields(logrus.Fields{
			"palette":   n,
			"colors":    p.Len(),
			"tiles":     satisfied,
			"remaining": len(remaining),
		}).Debugf("Built palette %s", p.String())

		// Nothing else can be covered, the next palette would be
		// identical
		if satisfied == 0 {
			return nil, ErrTooManyColors
		}

		result.Palettes = append(result.Palettes, p)
	}

	return result, nil
}
