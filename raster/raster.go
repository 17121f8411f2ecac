/*
Package raster implements the in-memory drawing: a fixed width by height grid
of palette indices stored in row-major order.
*/
package raster

import "errors"

var errBadSize = errors.New("raster: invalid dimensions")

// Raster is a grid of palette indices.
type Raster struct {
	Width  int
	Height int
	Pix    []int
}

// New returns a w by h raster with every cell set to fill.
func New(w, h, fill int) *Raster {
	if w < 0 || h < 0 {
		panic(errBadSize)
	}
	r := &Raster{
		Width:  w,
		Height: h,
		Pix:    make([]int, w*h),
	}
	r.Fill(fill)
	return r
}

// FromIndices returns a w by h raster holding a copy of pix. Missing trailing
// cells are set to fill.
func FromIndices(w, h int, pix []int, fill int) (*Raster, error) {
	if w < 0 || h < 0 || len(pix) > w*h {
		return nil, errBadSize
	}
	r := New(w, h, fill)
	copy(r.Pix, pix)
	return r, nil
}

// Len returns the number of cells.
func (r *Raster) Len() int {
	return len(r.Pix)
}

// In reports whether (x, y) is inside the raster.
func (r *Raster) In(x, y int) bool {
	return x >= 0 && x < r.Width && y >= 0 && y < r.Height
}

// Offset returns the index into Pix of (x, y).
func (r *Raster) Offset(x, y int) int {
	return y*r.Width + x
}

// At returns the index at (x, y).
func (r *Raster) At(x, y int) int {
	return r.Pix[r.Offset(x, y)]
}

// Set stores v at (x, y). Points outside the raster are ignored.
func (r *Raster) Set(x, y, v int) {
	if !r.In(x, y) {
		return
	}
	r.Pix[r.Offset(x, y)] = v
}

// Fill sets every cell to v.
func (r *Raster) Fill(v int) {
	for i := range r.Pix {
		r.Pix[i] = v
	}
}

// Remap replaces every index i with f(i).
func (r *Raster) Remap(f func(int) int) {
	for i, v := range r.Pix {
		r.Pix[i] = f(v)
	}
}

// Max returns the largest index used, or -1 for an empty raster.
func (r *Raster) Max() int {
	max := -1
	for _, v := range r.Pix {
		if v > max {
			max = v
		}
	}
	return max
}

// Clone returns a deep copy of r.
func (r *Raster) Clone() *Raster {
	dup := *r
	dup.Pix = append([]int(nil), r.Pix...)
	return &dup
}

// Equal reports whether r and o have the same dimensions and contents.
func (r *Raster) Equal(o *Raster) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.Width != o.Width || r.Height != o.Height || len(r.Pix) != len(o.Pix) {
		return false
	}
	for i := range r.Pix {
		if r.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}
