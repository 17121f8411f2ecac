/*
Package rle implements the one dimensional run-length encoding used by
PixelDraw 1.x documents.

The raster is treated as a flat sequence of palette indices. A run of three or
more identical indices is written as a two element marker [start, count]
immediately followed by the index; anything shorter is written verbatim, one
index per cell. On the wire this gives a mixed array such as

	[[0,10],0,1,1,[12,244],6]

In memory the marker and its index are a single Run element so there is never
any doubt about which scalars belong to a marker.
*/
package rle

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bodgit/pixeldraw/internal/wire"
	"github.com/bodgit/pixeldraw/raster"
)

// MinRun is the shortest run written as a marker.
const MinRun = 3

var (
	// ErrMissingValue is returned when a marker is not followed by a
	// scalar index.
	ErrMissingValue = errors.New("rle: marker without trailing value")
	// ErrBadElement is returned for an element that is neither a scalar
	// nor a two element marker.
	ErrBadElement = errors.New("rle: invalid element")
	// ErrBadRun is returned for a run with a negative start or count.
	ErrBadRun = errors.New("rle: invalid run")
)

// Kind distinguishes the two element types.
type Kind int

const (
	// Single is one index written to the next free cell.
	Single Kind = iota
	// Run is Count cells from Start all set to Value.
	Run
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case Run:
		return "run"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Element is either a Single or a Run. Start and Count are only meaningful
// for a Run.
type Element struct {
	Kind  Kind
	Start int
	Count int
	Value int
}

// Elements is an encoded raster. It implements json.Marshaler and
// json.Unmarshaler using the wire form.
type Elements []Element

// Encode compresses pix.
func Encode(pix []int) Elements {
	elems := make(Elements, 0)
	for i := 0; i < len(pix); {
		v := pix[i]
		n := 1
		for i+n < len(pix) && pix[i+n] == v {
			n++
		}
		if n >= MinRun {
			elems = append(elems, Element{Kind: Run, Start: i, Count: n, Value: v})
		} else {
			for j := 0; j < n; j++ {
				elems = append(elems, Element{Kind: Single, Value: v})
			}
		}
		i += n
	}
	return elems
}

// Decode writes elems over r. Cells not covered keep their current value,
// callers normally pass a raster filled with the transparent index. A Single
// is written one past the highest cell written so far and anything beyond
// the end of r is dropped.
func Decode(elems Elements, r *raster.Raster) error {
	next := 0
	for i, e := range elems {
		switch e.Kind {
		case Run:
			if e.Start < 0 || e.Count < 0 {
				return fmt.Errorf("element %d: %w", i, ErrBadRun)
			}
			if e.Count == 0 {
				continue
			}
			// Clip without computing Start+Count, which may overflow
			end := r.Len()
			if e.Start < r.Len() && e.Count < r.Len()-e.Start {
				end = e.Start + e.Count
			}
			for j := e.Start; j < end; j++ {
				r.Pix[j] = e.Value
			}
			if end > next {
				next = end
			}
		case Single:
			if next < r.Len() {
				r.Pix[next] = e.Value
				next++
			}
		default:
			return fmt.Errorf("element %d: %w", i, ErrBadElement)
		}
	}
	return nil
}

// FromValues converts parsed wire values into Elements.
func FromValues(values []wire.Value) (Elements, error) {
	elems := make(Elements, 0, len(values))
	for i := 0; i < len(values); i++ {
		v := values[i]
		switch v.Arity() {
		case -1:
			elems = append(elems, Element{Kind: Single, Value: v.Int})
		case 2:
			if i+1 >= len(values) || !values[i+1].Scalar {
				return nil, fmt.Errorf("element %d: %w", i, ErrMissingValue)
			}
			if v.Ints[0] < 0 || v.Ints[1] < 0 {
				return nil, fmt.Errorf("element %d: %w", i, ErrBadRun)
			}
			elems = append(elems, Element{Kind: Run, Start: v.Ints[0], Count: v.Ints[1], Value: values[i+1].Int})
			i++
		default:
			return nil, fmt.Errorf("element %d: %w", i, ErrBadElement)
		}
	}
	return elems, nil
}

// WireLen returns the number of elements in the wire form.
func (e Elements) WireLen() int {
	n := 0
	for _, elem := range e {
		if elem.Kind == Run {
			n++
		}
		n++
	}
	return n
}

// MarshalJSON implements json.Marshaler.
func (e Elements) MarshalJSON() ([]byte, error) {
	out := make([]interface{}, 0, e.WireLen())
	for _, elem := range e {
		if elem.Kind == Run {
			out = append(out, [2]int{elem.Start, elem.Count})
		}
		out = append(out, elem.Value)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Elements) UnmarshalJSON(b []byte) error {
	values, err := wire.Parse(b)
	if err != nil {
		return err
	}
	elems, err := FromValues(values)
	if err != nil {
		return err
	}
	*e = elems
	return nil
}
