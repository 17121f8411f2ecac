// Package wire parses the JSON arrays used to carry encoded pixels.
//
// Every encoded pixel format is a flat JSON array whose elements are either
// integers or arrays of integers. The formats are told apart by the shape of
// their elements so the parsing here is strict: strings, floats, objects,
// nulls and nested arrays are all rejected.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotArray is returned when the payload is not a JSON array.
	ErrNotArray = errors.New("wire: not an array")
	// ErrBadValue is returned for an element that is neither an integer
	// nor an array of integers.
	ErrBadValue = errors.New("wire: element is neither an integer nor an array of integers")
)

// Value is a single element of an encoded pixel array.
type Value struct {
	Scalar bool
	Int    int
	Ints   []int
}

// Arity returns -1 for a scalar, otherwise the length of the array.
func (v Value) Arity() int {
	if v.Scalar {
		return -1
	}
	return len(v.Ints)
}

// IsArray reports whether b holds a JSON array, without parsing it.
func IsArray(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}

// Parse parses b as an array of Values.
func Parse(b []byte) ([]Value, error) {
	if !IsArray(b) {
		return nil, ErrNotArray
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	values := make([]Value, len(raw))
	for i, r := range raw {
		v, err := parseValue(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		values[i] = v
	}

	return values, nil
}

// Ints parses b as an array of integers.
func Ints(b []byte) ([]int, error) {
	values, err := Parse(b)
	if err != nil {
		return nil, err
	}

	ints := make([]int, len(values))
	for i, v := range values {
		if !v.Scalar {
			return nil, fmt.Errorf("element %d: %w", i, ErrBadValue)
		}
		ints[i] = v.Int
	}

	return ints, nil
}

func parseValue(r json.RawMessage) (Value, error) {
	r = bytes.TrimSpace(r)

	if len(r) > 0 && r[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(r, &raw); err != nil {
			return Value{}, err
		}
		ints := make([]int, len(raw))
		for i, e := range raw {
			n, ok := parseInt(e)
			if !ok {
				return Value{}, ErrBadValue
			}
			ints[i] = n
		}
		return Value{Ints: ints}, nil
	}

	n, ok := parseInt(r)
	if !ok {
		return Value{}, ErrBadValue
	}

	return Value{Scalar: true, Int: n}, nil
}

func parseInt(r json.RawMessage) (int, bool) {
	r = bytes.TrimSpace(r)

	// Quoted numbers would otherwise be accepted by json.Number
	if len(r) == 0 || (r[0] != '-' && (r[0] < '0' || r[0] > '9')) {
		return 0, false
	}

	var n json.Number
	if err := json.Unmarshal(r, &n); err != nil {
		return 0, false
	}

	i, err := n.Int64()
	if err != nil {
		return 0, false
	}

	return int(i), true
}
