package palette

import (
	"errors"
	"sort"
	"strings"
)

// Size is the number of colors a single 4bpp palette can hold.
const Size = 16

// ErrFull is returned when adding a new color to a palette that already holds
// Size colors.
var ErrFull = errors.New("palette: palette is full")

// Relation describes how the colors of two palettes overlap.
type Relation int

const (
	// Disjoint means neither palette contains the other. Palettes that
	// share some but not all colors are still disjoint.
	Disjoint Relation = iota
	// FirstContainsSecond means every color of the second palette is in
	// the first. Equal palettes are reported this way.
	FirstContainsSecond
	// SecondContainsFirst means every color of the first palette is in
	// the second.
	SecondContainsFirst
)

func (r Relation) String() string {
	switch r {
	case FirstContainsSecond:
		return "first contains second"
	case SecondContainsFirst:
		return "second contains first"
	default:
		return "disjoint"
	}
}

// Palette16 is a set of up to Size colors. The colors are kept in ascending
// order so that comparisons between palettes are a single merge. The zero
// value is an empty palette ready to use.
type Palette16 struct {
	n      int
	colors [Size]Color
}

// Len returns the number of colors in the palette.
func (p *Palette16) Len() int {
	return p.n
}

// At returns the i'th color in ascending order.
func (p *Palette16) At(i int) Color {
	if i < 0 || i >= p.n {
		panic("palette: index out of range")
	}
	return p.colors[i]
}

// Colors returns a copy of the colors in ascending order.
func (p *Palette16) Colors() []Color {
	return append([]Color(nil), p.colors[:p.n]...)
}

func (p *Palette16) search(c Color) int {
	return sort.Search(p.n, func(i int) bool { return p.colors[i] >= c })
}

// Index returns the position of c in ascending order or -1 if it's absent.
func (p *Palette16) Index(c Color) int {
	if i := p.search(c); i < p.n && p.colors[i] == c {
		return i
	}
	return -1
}

// Contains reports whether c is in the palette.
func (p *Palette16) Contains(c Color) bool {
	return p.Index(c) >= 0
}

// Add inserts c keeping the colors sorted and returns the number of colors
// in the palette. Adding a color that is already present is a no-op.
func (p *Palette16) Add(c Color) (int, error) {
	i := p.search(c)
	if i < p.n && p.colors[i] == c {
		return p.n, nil
	}
	if p.n == Size {
		return p.n, ErrFull
	}
	copy(p.colors[i+1:p.n+1], p.colors[i:p.n])
	p.colors[i] = c
	p.n++
	return p.n, nil
}

// Compare reports whether one of p and q contains the other. It walks both
// palettes once without building their union.
func (p *Palette16) Compare(q *Palette16) Relation {
	// Treat p as the longer palette unless q has more colors, which
	// means equal palettes end up as FirstContainsSecond
	longer, shorter, contains := p, q, FirstContainsSecond
	if p.n < q.n {
		longer, shorter, contains = q, p, SecondContainsFirst
	}

	for i, j := 0, 0; i < shorter.n; j++ {
		if j == longer.n || longer.colors[j] > shorter.colors[i] {
			return Disjoint
		}
		if longer.colors[j] == shorter.colors[i] {
			i++
		}
	}

	return contains
}

// UnionLen returns the number of distinct colors in p and q combined without
// building the union.
func (p *Palette16) UnionLen(q *Palette16) int {
	n, i, j := 0, 0, 0
	for i < p.n && j < q.n {
		switch {
		case p.colors[i] < q.colors[j]:
			i++
		case p.colors[i] > q.colors[j]:
			j++
		default:
			i++
			j++
		}
		n++
	}
	return n + p.n - i + q.n - j
}

// Ordered returns the colors laid out as they are stored in hardware; first
// in slot 0 followed by the remaining colors in ascending order. first does
// not need to be a member of the palette.
func (p *Palette16) Ordered(first Color) []Color {
	ordered := make([]Color, 1, p.n+1)
	ordered[0] = first
	for _, c := range p.colors[:p.n] {
		if c != first {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

func (p *Palette16) String() string {
	s := make([]string, p.n)
	for i, c := range p.colors[:p.n] {
		s[i] = c.String()
	}
	return "{" + strings.Join(s, ", ") + "}"
}
