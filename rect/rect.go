/*
Package rect implements the two dimensional rectangle encoding used by current
PixelDraw documents.

The raster is covered by axis-aligned rectangles of a single palette index,
each written as [x, y, w, h, value]. Rectangles are found greedily: cells are
visited in row-major order and from every cell not yet covered the rectangle
is first grown to the right as far as the index repeats, then grown downwards
for as long as every cell of the next row segment matches. The cover is
deterministic but not necessarily minimal.
*/
package rect

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bodgit/pixeldraw/internal/wire"
	"github.com/bodgit/pixeldraw/raster"
)

var (
	// ErrBadTuple is returned for an element that is not five integers.
	ErrBadTuple = errors.New("rect: element is not an [x, y, w, h, value] tuple")
	// ErrBadRect is returned for a rectangle with a negative origin or a
	// non-positive size.
	ErrBadRect = errors.New("rect: invalid rectangle")
)

// Rect is a w by h block with its top-left corner at (x, y), every cell
// holding Value.
type Rect struct {
	X     int
	Y     int
	W     int
	H     int
	Value int
}

// Area returns the number of cells covered.
func (r Rect) Area() int {
	return r.W * r.H
}

// Valid reports whether r has a non-negative origin and a positive size.
func (r Rect) Valid() bool {
	return r.X >= 0 && r.Y >= 0 && r.W > 0 && r.H > 0
}

// MarshalJSON implements json.Marshaler.
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([5]int{r.X, r.Y, r.W, r.H, r.Value})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rect) UnmarshalJSON(b []byte) error {
	values, err := wire.Parse([]byte("[" + string(b) + "]"))
	if err != nil {
		return err
	}
	rects, err := FromValues(values)
	if err != nil {
		return err
	}
	*r = rects[0]
	return nil
}

// Rects is an encoded raster.
type Rects []Rect

// Encode covers r with rectangles.
func Encode(r *raster.Raster) Rects {
	rects := make(Rects, 0)
	visited := make([]bool, r.Len())

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if visited[r.Offset(x, y)] {
				continue
			}
			v := r.At(x, y)

			w := 1
			for x+w < r.Width && !visited[r.Offset(x+w, y)] && r.At(x+w, y) == v {
				w++
			}

			h := 1
		grow:
			for y+h < r.Height {
				for dx := 0; dx < w; dx++ {
					if i := r.Offset(x+dx, y+h); visited[i] || r.Pix[i] != v {
						break grow
					}
				}
				h++
			}

			for dy := 0; dy < h; dy++ {
				for dx := 0; dx < w; dx++ {
					visited[r.Offset(x+dx, y+dy)] = true
				}
			}

			rects = append(rects, Rect{X: x, Y: y, W: w, H: h, Value: v})
		}
	}

	return rects
}

// Decode writes rects over r. Cells outside r are clipped and cells not
// covered keep their current value, callers normally pass a raster filled
// with the transparent index.
func Decode(rects Rects, r *raster.Raster) error {
	for i, rect := range rects {
		if !rect.Valid() {
			return fmt.Errorf("rect %d: %w", i, ErrBadRect)
		}
		yEnd, xEnd := r.Height, r.Width
		if rect.H < r.Height-rect.Y {
			yEnd = rect.Y + rect.H
		}
		if rect.W < r.Width-rect.X {
			xEnd = rect.X + rect.W
		}
		for y := rect.Y; y < yEnd; y++ {
			for x := rect.X; x < xEnd; x++ {
				r.Pix[r.Offset(x, y)] = rect.Value
			}
		}
	}
	return nil
}

// Units returns every cell of r as a 1 by 1 rectangle.
func Units(r *raster.Raster) Rects {
	rects := make(Rects, 0, r.Len())
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			rects = append(rects, Rect{X: x, Y: y, W: 1, H: 1, Value: r.At(x, y)})
		}
	}
	return rects
}

// FromValues converts parsed wire values into Rects.
func FromValues(values []wire.Value) (Rects, error) {
	rects := make(Rects, 0, len(values))
	for i, v := range values {
		if v.Arity() != 5 {
			return nil, fmt.Errorf("element %d: %w", i, ErrBadTuple)
		}
		rect := Rect{X: v.Ints[0], Y: v.Ints[1], W: v.Ints[2], H: v.Ints[3], Value: v.Ints[4]}
		if !rect.Valid() {
			return nil, fmt.Errorf("element %d: %w", i, ErrBadRect)
		}
		rects = append(rects, rect)
	}
	return rects, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rects) UnmarshalJSON(b []byte) error {
	values, err := wire.Parse(b)
	if err != nil {
		return err
	}
	rects, err := FromValues(values)
	if err != nil {
		return err
	}
	*r = rects
	return nil
}
