package document

import (
	"encoding/json"
	"fmt"

	"github.com/bodgit/pixeldraw/internal/wire"
	"github.com/bodgit/pixeldraw/palette"
	"github.com/bodgit/pixeldraw/raster"
	"github.com/bodgit/pixeldraw/rect"
	"github.com/bodgit/pixeldraw/rle"
)

func hasArity(values []wire.Value, n int) bool {
	for _, v := range values {
		if v.Arity() == n {
			return true
		}
	}
	return false
}

func allArity(values []wire.Value, n int) bool {
	for _, v := range values {
		if v.Arity() != n {
			return false
		}
	}
	return true
}

// parsePixels picks the pixel shape from the version family and, where
// older payloads are still accepted, the shape of the elements.
func parsePixels(v Version, b json.RawMessage, cfg Config) (Pixels, error) {
	values, err := wire.Parse(b)
	if err != nil {
		return nil, decodeError("malformed pixels", err)
	}

	runs := func() (Pixels, error) {
		elems, err := rle.FromValues(values)
		if err != nil {
			return nil, decodeError("malformed run-length pixels", err)
		}
		return RunPixels(elems), nil
	}

	switch v.Format() {
	case FormatRaw:
		pix, err := wire.Ints(b)
		if err != nil {
			return nil, decodeError("raw pixels must be integers", err)
		}
		if len(pix) > cfg.Width*cfg.Height {
			return nil, decodeError(fmt.Sprintf("%d raw pixels for %d cells", len(pix), cfg.Width*cfg.Height), nil)
		}
		return RawPixels(pix), nil
	case FormatRuns:
		return runs()
	case FormatPairs:
		// 2.x editors still read 1.1 documents re-saved without upgrading
		// the pixels, any bare scalar means start/count runs. Failing that
		// the payload mixes both forms and is read in sequence.
		if hasArity(values, -1) {
			if elems, err := rle.FromValues(values); err == nil {
				return RunPixels(elems), nil
			}
			pairs, err := rle.MixedFromValues(values)
			if err != nil {
				return nil, decodeError("malformed value/count pixels", err)
			}
			return PairPixels(pairs), nil
		}
		pairs, err := rle.PairsFromValues(values)
		if err != nil {
			return nil, decodeError("malformed value/count pixels", err)
		}
		return PairPixels(pairs), nil
	case FormatRects:
		if !allArity(values, 5) {
			return runs()
		}
		rects, err := rect.FromValues(values)
		if err != nil {
			return nil, decodeError("malformed rectangle pixels", err)
		}
		return RectPixels(rects), nil
	}

	return nil, decodeError(fmt.Sprintf("no decoder for version %q", string(v)), nil)
}

// Decode materializes the raster held in env. The result is always a fresh
// raster: nothing is shared with env and nothing is returned on error.
func Decode(env *Envelope, cfg Config) (*Document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := env.Palette
	if p == nil {
		p = palette.Default()
	}

	r := raster.New(cfg.Width, cfg.Height, p.Transparent())

	var err error
	switch pixels := env.Pixels.(type) {
	case RawPixels:
		if r, err = raster.FromIndices(cfg.Width, cfg.Height, pixels, p.Transparent()); err != nil {
			return nil, decodeError(fmt.Sprintf("%d raw pixels for %d cells", len(pixels), cfg.Width*cfg.Height), err)
		}
	case RunPixels:
		if env.Version.Format() == FormatRects {
			// Expand to a flat list first, then materialize as unit
			// rectangles
			flat := raster.New(cfg.Width, cfg.Height, p.Transparent())
			if err = rle.Decode(rle.Elements(pixels), flat); err == nil {
				err = rect.Decode(rect.Units(flat), r)
			}
		} else {
			err = rle.Decode(rle.Elements(pixels), r)
		}
	case PairPixels:
		err = rle.DecodePairs(rle.Pairs(pixels), r)
	case RectPixels:
		err = rect.Decode(rect.Rects(pixels), r)
	default:
		return nil, decodeError(fmt.Sprintf("unknown pixels %T", env.Pixels), nil)
	}
	if err != nil {
		return nil, decodeError("cannot decode pixels", err)
	}

	for i, v := range r.Pix {
		if !p.Valid(v) {
			return nil, decodeError(fmt.Sprintf("index %d at cell %d is outside a palette of %d colors", v, i, p.Len()), nil)
		}
	}

	return &Document{
		Title:   env.Title,
		Palette: p.Clone(),
		Raster:  r,
	}, nil
}

// Load parses, validates and decodes the document in b.
func Load(b []byte, cfg Config) (*Document, error) {
	env, err := Parse(b, cfg)
	if err != nil {
		return nil, err
	}
	return Decode(env, cfg)
}
