package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bodgit/pixeldraw/palette"
	"github.com/bodgit/pixeldraw/raster"
	"github.com/bodgit/pixeldraw/rect"
	"github.com/bodgit/pixeldraw/rle"
	"golang.org/x/text/unicode/norm"
)

// AppID is the application identity written into every document.
const AppID = "PixelDraw"

// MaxCells is the largest canvas area a Config may describe.
const MaxCells = 1 << 24

// Config describes the session a document is loaded into.
type Config struct {
	AppID  string
	Width  int
	Height int
}

// DefaultConfig returns the configuration of the reference editor, a 16 by
// 16 canvas.
func DefaultConfig() Config {
	return Config{
		AppID:  AppID,
		Width:  16,
		Height: 16,
	}
}

// Validate returns ErrBadConfig unless both dimensions are positive and the
// area is at most MaxCells.
func (c Config) Validate() error {
	if c.Width < 1 || c.Height < 1 || c.Width > MaxCells/c.Height {
		return fmt.Errorf("%w: %dx%d", ErrBadConfig, c.Width, c.Height)
	}
	return nil
}

// Envelope is a parsed and validated document of any version. Fields the
// document omitted are left as their zero value.
type Envelope struct {
	AppID   string
	Version Version
	Width   int
	Height  int
	Title   string
	Palette palette.Palette
	Pixels  Pixels
}

// Document is a decoded drawing.
type Document struct {
	Title   string
	Palette palette.Palette
	Raster  *raster.Raster
}

// Pixels is one of RawPixels, RunPixels, PairPixels or RectPixels.
type Pixels interface {
	Format() Format
	json.Marshaler
}

// RawPixels is a flat list of indices.
type RawPixels []int

// Format implements Pixels.
func (RawPixels) Format() Format { return FormatRaw }

// MarshalJSON implements json.Marshaler.
func (p RawPixels) MarshalJSON() ([]byte, error) {
	return json.Marshal(append(make([]int, 0, len(p)), p...))
}

// RunPixels is a start/count run-length encoding.
type RunPixels rle.Elements

// Format implements Pixels.
func (RunPixels) Format() Format { return FormatRuns }

// MarshalJSON implements json.Marshaler.
func (p RunPixels) MarshalJSON() ([]byte, error) {
	return rle.Elements(p).MarshalJSON()
}

// PairPixels is a value/count run-length encoding.
type PairPixels rle.Pairs

// Format implements Pixels.
func (PairPixels) Format() Format { return FormatPairs }

// MarshalJSON implements json.Marshaler.
func (p PairPixels) MarshalJSON() ([]byte, error) {
	return rle.Pairs(p).MarshalJSON()
}

// RectPixels is a rectangle cover.
type RectPixels rect.Rects

// Format implements Pixels.
func (RectPixels) Format() Format { return FormatRects }

// MarshalJSON implements json.Marshaler.
func (p RectPixels) MarshalJSON() ([]byte, error) {
	return json.Marshal(append(make(rect.Rects, 0, len(p)), p...))
}

// rawEnvelope is the common result of every version's deserializer, before
// validation.
type rawEnvelope struct {
	AppID   string
	Version Version
	Width   *int
	Height  *int
	Title   string
	Palette json.RawMessage
	Pixels  json.RawMessage
}

// header is just enough of any envelope to find its identity and version.
type header struct {
	App     *string     `json:"app"`
	A       *string     `json:"a"`
	Version *versionTag `json:"version"`
	V       *versionTag `json:"v"`
}

func (h *header) layout() layout {
	if h.V != nil {
		return layoutShort
	}
	return layoutLong
}

func (h *header) appID() string {
	p := h.App
	if h.layout() == layoutShort {
		p = h.A
	}
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func (h *header) version() Version {
	p := h.Version
	if h.layout() == layoutShort {
		p = h.V
	}
	if p == nil {
		return ""
	}
	return Version(*p)
}

// longEnvelope is used by 0.9, 1.x and 3.0 documents.
type longEnvelope struct {
	App     string          `json:"app,omitempty"`
	Version versionTag      `json:"version"`
	Width   *int            `json:"width,omitempty"`
	Height  *int            `json:"height,omitempty"`
	Title   string          `json:"title,omitempty"`
	Palette json.RawMessage `json:"palette,omitempty"`
	Pixels  json.RawMessage `json:"pixels"`
}

func deserializeLong(b []byte) (*rawEnvelope, error) {
	var e longEnvelope
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &rawEnvelope{
		AppID:   strings.TrimSpace(e.App),
		Version: Version(e.Version),
		Width:   e.Width,
		Height:  e.Height,
		Title:   e.Title,
		Palette: e.Palette,
		Pixels:  e.Pixels,
	}, nil
}

// shortEnvelope is used by 2.x documents.
type shortEnvelope struct {
	A      string          `json:"a,omitempty"`
	V      versionTag      `json:"v"`
	Width  *int            `json:"width,omitempty"`
	Height *int            `json:"height,omitempty"`
	T      string          `json:"t,omitempty"`
	Pl     json.RawMessage `json:"pl,omitempty"`
	Px     json.RawMessage `json:"px"`
}

func deserializeShort(b []byte) (*rawEnvelope, error) {
	var e shortEnvelope
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &rawEnvelope{
		AppID:   strings.TrimSpace(e.A),
		Version: Version(e.V),
		Width:   e.Width,
		Height:  e.Height,
		Title:   e.T,
		Palette: e.Pl,
		Pixels:  e.Px,
	}, nil
}

func normalizeTitle(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
