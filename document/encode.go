package document

import (
	"encoding/json"

	"github.com/bodgit/pixeldraw/raster"
	"github.com/bodgit/pixeldraw/rect"
	"github.com/bodgit/pixeldraw/rle"
)

// EncodePixels encodes r in the given format.
func EncodePixels(f Format, r *raster.Raster) Pixels {
	switch f {
	case FormatRaw:
		return RawPixels(append([]int(nil), r.Pix...))
	case FormatRuns:
		return RunPixels(rle.Encode(r.Pix))
	case FormatPairs:
		return PairPixels(rle.EncodePairs(r.Pix))
	default:
		return RectPixels(rect.Encode(r))
	}
}

// Encode writes doc as a current version document.
func Encode(doc *Document, cfg Config) ([]byte, error) {
	return EncodeVersion(doc, cfg, Current)
}

// EncodeVersion writes doc as a version v document, so it can be opened by
// older editors.
func EncodeVersion(doc *Document, cfg Config, v Version) ([]byte, error) {
	rev, ok := revisions[v]
	if !ok {
		return nil, formatErrorf("unsupported version %q", string(v))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if doc.Raster.Width != cfg.Width || doc.Raster.Height != cfg.Height {
		return nil, &DimensionMismatchError{
			Width:      doc.Raster.Width,
			Height:     doc.Raster.Height,
			WantWidth:  cfg.Width,
			WantHeight: cfg.Height,
		}
	}

	if err := doc.Palette.Validate(); err != nil {
		return nil, err
	}

	pixels, err := json.Marshal(EncodePixels(rev.format, doc.Raster))
	if err != nil {
		return nil, err
	}

	pal, err := json.Marshal(doc.Palette)
	if err != nil {
		return nil, err
	}

	title := normalizeTitle(doc.Title)

	if rev.layout == layoutShort {
		return json.Marshal(shortEnvelope{
			A:  cfg.AppID,
			V:  versionTag(v),
			T:  title,
			Pl: pal,
			Px: pixels,
		})
	}

	return json.Marshal(longEnvelope{
		App:     cfg.AppID,
		Version: versionTag(v),
		Width:   &cfg.Width,
		Height:  &cfg.Height,
		Title:   title,
		Palette: pal,
		Pixels:  pixels,
	})
}
