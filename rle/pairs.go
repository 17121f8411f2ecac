package rle

import (
	"encoding/json"
	"fmt"

	"github.com/bodgit/pixeldraw/internal/wire"
	"github.com/bodgit/pixeldraw/raster"
)

// Pair is a run written as [value, count], as used by PixelDraw 2.x. Unlike
// the marker form every run is written this way, including runs of one.
type Pair struct {
	Value int
	Count int
}

// Pairs is an encoded raster in value/count form. It implements
// json.Marshaler and json.Unmarshaler.
type Pairs []Pair

// EncodePairs compresses pix into value/count pairs.
func EncodePairs(pix []int) Pairs {
	pairs := make(Pairs, 0)
	for i := 0; i < len(pix); {
		v := pix[i]
		n := 1
		for i+n < len(pix) && pix[i+n] == v {
			n++
		}
		pairs = append(pairs, Pair{Value: v, Count: n})
		i += n
	}
	return pairs
}

// DecodePairs writes pairs over r sequentially from the first cell.
func DecodePairs(pairs Pairs, r *raster.Raster) error {
	next := 0
	for i, p := range pairs {
		if p.Count < 0 {
			return fmt.Errorf("pair %d: %w", i, ErrBadRun)
		}
		for j := 0; j < p.Count && next < r.Len(); j++ {
			r.Pix[next] = p.Value
			next++
		}
	}
	return nil
}

// PairsFromValues converts parsed wire values into Pairs.
func PairsFromValues(values []wire.Value) (Pairs, error) {
	pairs := make(Pairs, 0, len(values))
	for i, v := range values {
		if v.Arity() != 2 {
			return nil, fmt.Errorf("element %d: %w", i, ErrBadElement)
		}
		if v.Ints[1] < 0 {
			return nil, fmt.Errorf("element %d: %w", i, ErrBadRun)
		}
		pairs = append(pairs, Pair{Value: v.Ints[0], Count: v.Ints[1]})
	}
	return pairs, nil
}

// MixedFromValues converts a payload mixing [start,count] markers, each
// followed by its value, with [value,count] pairs and bare values. Every
// element becomes a Pair read in sequence, the start of a marker is ignored.
func MixedFromValues(values []wire.Value) (Pairs, error) {
	pairs := make(Pairs, 0, len(values))
	for i := 0; i < len(values); i++ {
		v := values[i]
		switch v.Arity() {
		case -1:
			pairs = append(pairs, Pair{Value: v.Int, Count: 1})
		case 2:
			if v.Ints[1] < 0 {
				return nil, fmt.Errorf("element %d: %w", i, ErrBadRun)
			}
			if i+1 < len(values) && values[i+1].Scalar {
				i++
				pairs = append(pairs, Pair{Value: values[i].Int, Count: v.Ints[1]})
				continue
			}
			pairs = append(pairs, Pair{Value: v.Ints[0], Count: v.Ints[1]})
		default:
			return nil, fmt.Errorf("element %d: %w", i, ErrBadElement)
		}
	}
	return pairs, nil
}

// MarshalJSON implements json.Marshaler.
func (p Pairs) MarshalJSON() ([]byte, error) {
	out := make([][2]int, len(p))
	for i, pair := range p {
		out[i] = [2]int{pair.Value, pair.Count}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Pairs) UnmarshalJSON(b []byte) error {
	values, err := wire.Parse(b)
	if err != nil {
		return err
	}
	pairs, err := PairsFromValues(values)
	if err != nil {
		return err
	}
	*p = pairs
	return nil
}
