package document

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/bodgit/pixeldraw/palette"
	"github.com/bodgit/pixeldraw/raster"
	"github.com/bodgit/pixeldraw/rle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomDocument(rng *rand.Rand, cfg Config) *Document {
	p := palette.Default()
	r := raster.New(cfg.Width, cfg.Height, p.Transparent())
	for i := range r.Pix {
		if i > 0 && rng.Intn(3) > 0 {
			r.Pix[i] = r.Pix[i-1]
			continue
		}
		r.Pix[i] = rng.Intn(p.Len())
	}
	return &Document{Title: "test", Palette: p, Raster: r}
}

func scenario() []int {
	pix := make([]int, 256)
	for i := range pix {
		if i >= 10 {
			pix[i] = 6
		}
	}
	return pix
}

func TestLoadVersions(t *testing.T) {
	cfg := DefaultConfig()
	want := scenario()

	tables := []struct {
		name   string
		input  string
		format Format
	}{
		{
			"0.9 raw",
			`{"app":"PixelDraw","version":"0.9","width":16,"height":16,"pixels":[0,0,0,0,0,0,0,0,0,0]}`,
			FormatRaw,
		},
		{
			"1.0 rle",
			`{"app":"PixelDraw","version":"1.0","width":16,"height":16,"palette":["#000000","#ff0000","#00ff00","#0000ff","#ffff00","#ffffff","#00000000"],"pixels":[[0,10],0,[10,246],6]}`,
			FormatRuns,
		},
		{
			"1.1 rle with title",
			`{"app":"PixelDraw","version":"1.1","width":16,"height":16,"title":"  hello ","pixels":[[0,10],0,[10,246],6]}`,
			FormatRuns,
		},
		{
			"2.0 pairs",
			`{"a":"PixelDraw","v":"2.0","t":"","pl":["#000000","#ff0000","#00ff00","#0000ff","#ffff00","#ffffff","#00000000"],"px":[[0,10],[6,246]]}`,
			FormatPairs,
		},
		{
			"2.1 pairs numeric version",
			`{"a":"PixelDraw","v":2.1,"px":[[0,10],[6,246]]}`,
			FormatPairs,
		},
		{
			"2.1 holding 1.1 runs",
			`{"v":"2.1","px":[[0,10],0,[10,246],6]}`,
			FormatRuns,
		},
		{
			"3.0 rects",
			`{"app":"PixelDraw","version":"3.0","width":16,"height":16,"pixels":[[0,0,10,1,0],[10,0,6,1,6],[0,1,16,15,6]]}`,
			FormatRects,
		},
		{
			"3.0 holding 1.1 runs",
			`{"app":"PixelDraw","version":"3.0","pixels":[[0,10],0,[10,246],6]}`,
			FormatRuns,
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			env, err := Parse([]byte(table.input), cfg)
			require.NoError(t, err)
			assert.Equal(t, table.format, env.Pixels.Format())

			doc, err := Decode(env, cfg)
			require.NoError(t, err)
			assert.Equal(t, want, doc.Raster.Pix)
			assert.Equal(t, palette.Default(), doc.Palette)
		})
	}
}

func TestLoadTitle(t *testing.T) {
	doc, err := Load([]byte(`{"version":"1.1","title":"  café ","pixels":[]}`), DefaultConfig())
	require.NoError(t, err)
	// Trimmed and composed
	assert.Equal(t, "café", doc.Title)
}

func TestLoadCustomPalette(t *testing.T) {
	doc, err := Load([]byte(`{"version":"3.0","palette":["#123456","#00000000"],"pixels":[[0,0,1,1,0]]}`), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, palette.Palette{"#123456", "#00000000"}, doc.Palette)
	assert.Equal(t, 0, doc.Raster.At(0, 0))
	// Everything else defaults to this palette's transparent index
	assert.Equal(t, 1, doc.Raster.At(1, 0))
	assert.Equal(t, 1, doc.Raster.At(15, 15))
}

func TestValidatorOrder(t *testing.T) {
	cfg := DefaultConfig()

	tables := []struct {
		name   string
		input  string
		reason string
	}{
		{"not json", `{`, "malformed envelope"},
		{"not an object", `[1,2]`, "malformed envelope"},
		{"wrong app beats version", `{"app":"Other","version":"9.9","pixels":{}}`, `document belongs to "Other", not "PixelDraw"`},
		{"wrong short app", `{"a":"Other","v":"2.0","px":[]}`, `document belongs to "Other", not "PixelDraw"`},
		{"unsupported version", `{"app":"PixelDraw","version":"9.9","pixels":[]}`, `unsupported version "9.9"`},
		{"missing version", `{"app":"PixelDraw","pixels":[]}`, `unsupported version ""`},
		{"pixels not an array", `{"version":"3.0","pixels":{"x":1}}`, "pixels are not an array"},
		{"pixels missing", `{"version":"3.0"}`, "pixels are not an array"},
		{"pixels null", `{"version":"3.0","pixels":null}`, "pixels are not an array"},
		{"long keys for short version", `{"version":"2.0","pixels":[]}`, "pixels are not an array"},
		{"palette not an array", `{"version":"3.0","palette":"#000000","pixels":[]}`, "palette is not an array"},
		{"palette of numbers", `{"version":"3.0","palette":[1,2],"pixels":[]}`, "palette entries must be strings"},
		{"empty palette", `{"version":"3.0","palette":[],"pixels":[]}`, "palette is empty"},
		{"title not a string", `{"version":"3.0","title":1,"pixels":[]}`, "malformed version 3.0 envelope"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Load([]byte(table.input), cfg)
			var e *FormatError
			require.ErrorAs(t, err, &e)
			assert.Contains(t, e.Reason, table.reason)
		})
	}
}

func TestValidatorLegacyPermissive(t *testing.T) {
	// No app id at all is accepted
	_, err := Load([]byte(`{"version":"1.0","pixels":[]}`), DefaultConfig())
	assert.NoError(t, err)

	// Blank app id is treated as missing
	_, err = Load([]byte(`{"a":" ","v":"2.1","px":[]}`), DefaultConfig())
	assert.NoError(t, err)

	// Palette null is treated as missing
	_, err = Load([]byte(`{"version":"3.0","palette":null,"pixels":[]}`), DefaultConfig())
	assert.NoError(t, err)
}

func TestDimensionMismatch(t *testing.T) {
	cfg := DefaultConfig()

	tables := []struct {
		name          string
		input         string
		width, height int
	}{
		{"width", `{"version":"1.0","width":15,"height":16,"pixels":[]}`, 15, 16},
		{"height only", `{"version":"3.0","height":32,"pixels":[]}`, 16, 32},
		{"short layout", `{"v":"2.0","width":8,"px":[]}`, 8, 16},
		{"before pixels check", `{"version":"3.0","width":15,"pixels":"nope"}`, 15, 16},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Load([]byte(table.input), cfg)
			var e *DimensionMismatchError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, table.width, e.Width)
			assert.Equal(t, table.height, e.Height)
			assert.Equal(t, 16, e.WantWidth)
			assert.Equal(t, 16, e.WantHeight)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	cfg := DefaultConfig()

	tables := []struct {
		name  string
		input string
		err   error
	}{
		{"marker without value", `{"version":"1.1","pixels":[0,[1,5]]}`, rle.ErrMissingValue},
		{"string element", `{"version":"1.1","pixels":[0,"1"]}`, nil},
		{"raw with marker", `{"version":"0.9","pixels":[[0,3],1]}`, nil},
		{"raw too long", fmt.Sprintf(`{"version":"0.9","pixels":[%s0]}`, repeat("0,", 256)), nil},
		{"pairs with triple", `{"v":"2.0","px":[[0,1,2]]}`, rle.ErrBadElement},
		{"rect with bad width", `{"version":"3.0","pixels":[[0,0,0,1,1]]}`, nil},
		{"index outside palette", `{"version":"3.0","pixels":[[0,0,1,1,7]]}`, nil},
		{"negative raw index", `{"version":"0.9","pixels":[-1]}`, nil},
		{"index outside custom palette", `{"version":"1.0","palette":["#fff","#0000"],"pixels":[2]}`, nil},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			doc, err := Load([]byte(table.input), cfg)
			assert.Nil(t, doc)
			var e *DecodeError
			require.ErrorAs(t, err, &e)
			if table.err != nil {
				assert.ErrorIs(t, err, table.err)
			}
		})
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func TestRoundTripAllVersions(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(10))

	for _, v := range Versions() {
		t.Run(string(v), func(t *testing.T) {
			for i := 0; i < 50; i++ {
				want := randomDocument(rng, cfg)

				b, err := EncodeVersion(want, cfg, v)
				require.NoError(t, err)

				env, err := Parse(b, cfg)
				require.NoError(t, err)
				assert.Equal(t, v, env.Version)
				assert.Equal(t, v.Format(), env.Pixels.Format())

				got, err := Decode(env, cfg)
				require.NoError(t, err)
				require.True(t, want.Raster.Equal(got.Raster), "iteration %d", i)
				assert.Equal(t, want.Palette, got.Palette)
				assert.Equal(t, want.Title, got.Title)
			}
		})
	}
}

func TestRoundTripNonSquare(t *testing.T) {
	cfg := Config{AppID: AppID, Width: 7, Height: 3}
	rng := rand.New(rand.NewSource(11))
	want := randomDocument(rng, cfg)

	b, err := Encode(want, cfg)
	require.NoError(t, err)

	got, err := Load(b, cfg)
	require.NoError(t, err)
	assert.True(t, want.Raster.Equal(got.Raster))

	// The same bytes do not fit the default canvas
	_, err = Load(b, DefaultConfig())
	var e *DimensionMismatchError
	assert.ErrorAs(t, err, &e)
}

func TestIdempotentDecode(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(12))
	doc := randomDocument(rng, cfg)

	b, err := EncodeVersion(doc, cfg, Version1_1)
	require.NoError(t, err)

	env, err := Parse(b, cfg)
	require.NoError(t, err)

	first, err := Decode(env, cfg)
	require.NoError(t, err)
	second, err := Decode(env, cfg)
	require.NoError(t, err)
	assert.True(t, first.Raster.Equal(second.Raster))

	// Decoding a re-encoded decode gives the same raster again
	b, err = Encode(first, cfg)
	require.NoError(t, err)
	third, err := Load(b, cfg)
	require.NoError(t, err)
	assert.True(t, first.Raster.Equal(third.Raster))
}

func TestCrossVersionImport(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(13))

	for i := 0; i < 50; i++ {
		doc := randomDocument(rng, cfg)
		pixels, err := json.Marshal(rle.Encode(doc.Raster.Pix))
		require.NoError(t, err)

		direct, err := Load([]byte(fmt.Sprintf(`{"version":"1.1","pixels":%s}`, pixels)), cfg)
		require.NoError(t, err)

		imported, err := Load([]byte(fmt.Sprintf(`{"version":"3.0","pixels":%s}`, pixels)), cfg)
		require.NoError(t, err)

		require.True(t, direct.Raster.Equal(imported.Raster))
		require.True(t, doc.Raster.Equal(imported.Raster))
	}
}

func TestEncodeCurrent(t *testing.T) {
	cfg := DefaultConfig()
	p := palette.Default()
	doc := &Document{
		Title:   " blank ",
		Palette: p,
		Raster:  raster.New(16, 16, p.Transparent()),
	}

	b, err := Encode(doc, cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"app": "PixelDraw",
		"version": "3.0",
		"width": 16,
		"height": 16,
		"title": "blank",
		"palette": ["#000000","#ff0000","#00ff00","#0000ff","#ffff00","#ffffff","#00000000"],
		"pixels": [[0,0,16,16,6]]
	}`, string(b))

	b, err = EncodeVersion(doc, cfg, Version1_1)
	require.NoError(t, err)
	var v1 map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &v1))
	assert.JSONEq(t, `[[0,256],6]`, string(v1["pixels"]))

	b, err = EncodeVersion(doc, cfg, Version2_1)
	require.NoError(t, err)
	var v2 map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &v2))
	assert.JSONEq(t, `"2.1"`, string(v2["v"]))
	assert.JSONEq(t, `[[6,256]]`, string(v2["px"]))
	assert.NotContains(t, v2, "pixels")
}

func TestEncodeErrors(t *testing.T) {
	cfg := DefaultConfig()
	p := palette.Default()

	_, err := EncodeVersion(&Document{Palette: p, Raster: raster.New(16, 16, 6)}, cfg, "4.0")
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)

	_, err = Encode(&Document{Palette: p, Raster: raster.New(8, 8, 6)}, cfg)
	var de *DimensionMismatchError
	assert.ErrorAs(t, err, &de)

	_, err = Encode(&Document{Raster: raster.New(16, 16, 0)}, cfg)
	assert.ErrorIs(t, err, palette.ErrEmpty)
}

func TestVersions(t *testing.T) {
	assert.Equal(t, []Version{Version0_9, Version1_0, Version1_1, Version2_0, Version2_1, Version3_0}, Versions())
	assert.Equal(t, FormatRects, Current.Format())

	v, err := ParseVersion(" 1.1 ")
	require.NoError(t, err)
	assert.Equal(t, Version1_1, v)

	_, err = ParseVersion("1.2")
	var e *FormatError
	assert.ErrorAs(t, err, &e)

	assert.Equal(t, "rle", FormatRuns.String())
	assert.Equal(t, "Format(9)", Format(9).String())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	// Validate does not look inside the pixels
	assert.NoError(t, Validate([]byte(`{"version":"1.1","pixels":[[0,3]]}`), cfg))
	assert.Error(t, Validate([]byte(`{"version":"1.1","pixels":1}`), cfg))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{Width: 1, Height: MaxCells}.Validate())

	input := []byte(`{"version":"3.0","pixels":[]}`)
	p := palette.Default()

	for _, cfg := range []Config{
		{Width: -1, Height: 16},
		{Width: 16, Height: 0},
		{Width: MaxCells, Height: 2},
		{Width: math.MaxInt64, Height: math.MaxInt64},
	} {
		assert.ErrorIs(t, cfg.Validate(), ErrBadConfig)

		_, err := Load(input, cfg)
		assert.ErrorIs(t, err, ErrBadConfig)

		_, err = Decode(&Envelope{Version: Current, Pixels: RectPixels{}}, cfg)
		assert.ErrorIs(t, err, ErrBadConfig)

		_, err = Encode(&Document{Palette: p, Raster: raster.New(0, 0, 6)}, cfg)
		assert.ErrorIs(t, err, ErrBadConfig)
	}
}

func TestLoadHugeRun(t *testing.T) {
	doc, err := Load([]byte(`{"version":"1.1","width":16,"height":16,"pixels":[[9223372036854775000,807],0,1,2]}`), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 6, doc.Raster.Max())

	doc, err = Load([]byte(`{"version":"3.0","pixels":[[0,15,1,9223372036854775807,2]]}`), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Raster.At(0, 15))
	assert.Equal(t, 6, doc.Raster.At(0, 14))
}

func TestLoadMixedPairs(t *testing.T) {
	// Markers, value/count pairs and bare values in one 2.x payload are
	// read in sequence
	doc, err := Load([]byte(`{"v":"2.0","px":[[0,2],3,[1,2],[2,1],5,4]}`), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1, 1, 5, 4, 6}, doc.Raster.Pix[:7])
	assert.Equal(t, 6, doc.Raster.Pix[255])

	// 1.1 runs without pairs keep their positions
	doc, err = Load([]byte(`{"v":"2.1","px":[[4,2],1]}`), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []int{6, 6, 6, 6, 1, 1}, doc.Raster.Pix[:6])
}

func TestNumericVersionKeepsText(t *testing.T) {
	_, err := Load([]byte(`{"version":3.0,"pixels":[]}`), DefaultConfig())
	assert.NoError(t, err)

	_, err = Load([]byte(`{"version":3,"pixels":[]}`), DefaultConfig())
	var e *FormatError
	assert.ErrorAs(t, err, &e)
}
