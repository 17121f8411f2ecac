/*
Package palette implements the ordered color list used by a PixelDraw raster.

Colors are stored as the opaque string tokens written by the editor, either
"#rrggbb" or "#rrggbbaa". The last entry of a palette is always treated as
transparent regardless of its value, every raster index refers to a position
in this list.
*/
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Sentinel is the token used for the transparent entry of the default
// palette.
const Sentinel = "#00000000"

// NumFixed is the number of leading colors that cannot be removed.
const NumFixed = 6

var fixed = [NumFixed]string{
	"#000000",
	"#ff0000",
	"#00ff00",
	"#0000ff",
	"#ffff00",
	"#ffffff",
}

var (
	// ErrEmpty is returned when a palette has no entries, not even the
	// transparent sentinel.
	ErrEmpty = errors.New("palette: no colors")
	// ErrFixedColor is returned when trying to remove one of the fixed
	// colors or the transparent sentinel.
	ErrFixedColor = errors.New("palette: color cannot be removed")
	// ErrBadIndex is returned for an index outside the palette.
	ErrBadIndex = errors.New("palette: invalid index")
	// ErrBadColor is returned when a color token cannot be parsed.
	ErrBadColor = errors.New("palette: invalid color")
)

// Palette is an ordered list of color tokens. The last entry is the
// transparent sentinel.
type Palette []string

// Default returns the palette every new drawing starts with.
func Default() Palette {
	p := make(Palette, 0, NumFixed+1)
	p = append(p, fixed[:]...)
	return append(p, Sentinel)
}

// Len returns the number of entries including the sentinel.
func (p Palette) Len() int {
	return len(p)
}

// Transparent returns the index of the transparent sentinel.
func (p Palette) Transparent() int {
	return len(p) - 1
}

// Valid reports whether i can be used as a raster index.
func (p Palette) Valid(i int) bool {
	return i >= 0 && i < len(p)
}

// Validate checks the palette invariants.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return ErrEmpty
	}
	return nil
}

// Clone returns a copy of p.
func (p Palette) Clone() Palette {
	if p == nil {
		return nil
	}
	return append(Palette(nil), p...)
}

// Insert returns a new palette with c added immediately before the
// transparent sentinel, along with the index of the new color.
func (p Palette) Insert(c string) (Palette, int, error) {
	if err := p.Validate(); err != nil {
		return nil, 0, err
	}
	if _, err := ParseColor(c); err != nil {
		return nil, 0, err
	}

	i := p.Transparent()
	n := make(Palette, 0, len(p)+1)
	n = append(n, p[:i]...)
	n = append(n, c)
	n = append(n, p[i:]...)

	return n, i, nil
}

// Removable reports whether the color at index i may be removed.
func (p Palette) Removable(i int) bool {
	return p.Valid(i) && i >= NumFixed && i != p.Transparent()
}

// Remove returns a new palette without the color at index i.
func (p Palette) Remove(i int) (Palette, error) {
	if !p.Valid(i) {
		return nil, ErrBadIndex
	}
	if !p.Removable(i) {
		return nil, ErrFixedColor
	}

	n := make(Palette, 0, len(p)-1)
	n = append(n, p[:i]...)
	return append(n, p[i+1:]...), nil
}

// Colors converts every token into a color. The sentinel always converts to
// color.Transparent whatever its token says.
func (p Palette) Colors() (color.Palette, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cp := make(color.Palette, len(p))
	for i, s := range p {
		if i == p.Transparent() {
			cp[i] = color.RGBA{}
			continue
		}
		c, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("color %d: %w", i, err)
		}
		cp[i] = c
	}

	return cp, nil
}

// ParseColor parses a "#rgb", "#rrggbb" or "#rrggbbaa" token.
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(h) {
	case 3:
		// Expand shorthand, "#abc" is "#aabbcc"
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
		fallthrough
	case 6:
		h += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}

	// Non-premultiplied on the wire, color.RGBA is premultiplied
	c := color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}

	return color.RGBAModel.Convert(c).(color.RGBA), nil
}

// FormatColor returns the token for c, omitting the alpha byte when c is
// opaque.
func FormatColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
