package document

import (
	"bytes"
	"encoding/json"

	"github.com/bodgit/pixeldraw/internal/wire"
	"github.com/bodgit/pixeldraw/palette"
)

// Parse validates the envelope in b against cfg and parses its pixels. The
// checks are made in order and the first failure is returned:
//
//  1. the app id, if present, must match
//  2. the version must be supported
//  3. the width and height, if present, must match
//  4. the pixels must be an array
//  5. the palette, if present, must be an array of colors
//
// A *FormatError or *DimensionMismatchError is returned for a failed check
// and a *DecodeError when the pixels are not in the shape the version
// requires. ErrBadConfig is returned before any check if cfg is invalid.
func Parse(b []byte, cfg Config) (*Envelope, error) {
	raw, err := validate(b, cfg)
	if err != nil {
		return nil, err
	}

	p, err := parsePalette(raw.Palette)
	if err != nil {
		return nil, err
	}

	pixels, err := parsePixels(raw.Version, raw.Pixels, cfg)
	if err != nil {
		return nil, err
	}

	env := &Envelope{
		AppID:   raw.AppID,
		Version: raw.Version,
		Title:   normalizeTitle(raw.Title),
		Palette: p,
		Pixels:  pixels,
	}
	if raw.Width != nil {
		env.Width = *raw.Width
	}
	if raw.Height != nil {
		env.Height = *raw.Height
	}

	return env, nil
}

// Validate runs the envelope checks without parsing the pixels.
func Validate(b []byte, cfg Config) error {
	raw, err := validate(b, cfg)
	if err != nil {
		return err
	}
	_, err = parsePalette(raw.Palette)
	return err
}

func validate(b []byte, cfg Config) (*rawEnvelope, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var h header
	if err := json.Unmarshal(b, &h); err != nil {
		return nil, formatErrorf("malformed envelope: %v", err)
	}

	if app := h.appID(); app != "" && app != cfg.AppID {
		return nil, formatErrorf("document belongs to %q, not %q", app, cfg.AppID)
	}

	v := h.version()
	if !v.Supported() {
		return nil, formatErrorf("unsupported version %q", string(v))
	}

	raw, err := revisions[v].deserialize(b)
	if err != nil {
		return nil, formatErrorf("malformed version %s envelope: %v", v, err)
	}

	if (raw.Width != nil && *raw.Width != cfg.Width) || (raw.Height != nil && *raw.Height != cfg.Height) {
		e := &DimensionMismatchError{
			Width:      cfg.Width,
			Height:     cfg.Height,
			WantWidth:  cfg.Width,
			WantHeight: cfg.Height,
		}
		if raw.Width != nil {
			e.Width = *raw.Width
		}
		if raw.Height != nil {
			e.Height = *raw.Height
		}
		return nil, e
	}

	if !wire.IsArray(raw.Pixels) {
		return nil, formatErrorf("pixels are not an array")
	}

	if present(raw.Palette) && !wire.IsArray(raw.Palette) {
		return nil, formatErrorf("palette is not an array")
	}

	return raw, nil
}

func present(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && !bytes.Equal(b, []byte("null"))
}

// parsePalette returns nil for an absent palette.
func parsePalette(b json.RawMessage) (palette.Palette, error) {
	if !present(b) {
		return nil, nil
	}

	var p palette.Palette
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, formatErrorf("palette entries must be strings")
	}
	if err := p.Validate(); err != nil {
		return nil, formatErrorf("palette is empty")
	}

	return p, nil
}
