package optimiser

import "github.com/bodgit/pngtogba/palette"

// Result holds the palettes chosen by Optimise and which palette each tile
// should use.
type Result struct {
	Palettes []palette.Palette16
	// Assignment maps each tile, in the order added, to an index in
	// Palettes
	Assignment []int
	// Transparent is the color at index 0 of every palette
	Transparent palette.Color
}

// Colors returns the colors of the i'th palette in the order they should be
// written to hardware. The transparent color is always first; if it is
// palette.None then black is used as a placeholder.
func (r *Result) Colors(i int) []palette.Color {
	colors := r.Palettes[i].Ordered(r.Transparent)
	if r.Transparent == palette.None {
		colors[0] = 0
	}
	return colors
}

// Index returns the 4-bit index of c within the palette assigned to tile.
func (r *Result) Index(tile int, c palette.Color) (int, bool) {
	p := &r.Palettes[r.Assignment[tile]]
	if !p.Contains(c) {
		return 0, false
	}
	if c == r.Transparent {
		return 0, true
	}

	// Slot 0 is the transparent color, everything else follows in
	// ascending order skipping it
	i := p.Index(c) + 1
	if r.Transparent < c && p.Contains(r.Transparent) {
		i--
	}
	return i, true
}
