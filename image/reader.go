package image

import (
	"image"
	"image/color"

	"github.com/bodgit/pixeldraw/palette"
	"github.com/bodgit/pixeldraw/raster"
	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

// scale resizes m to exactly w by h pixels. Nearest neighbour keeps hard
// pixel edges, which is what a drawing scaled up for export needs when it
// comes back in.
func scale(m image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), m, m.Bounds(), draw.Src, nil)
	return dst
}

// opaque returns a copy of m with every transparent pixel replaced by c,
// so transparent areas do not pull quantized colors towards them.
func opaque(m *image.NRGBA, c color.NRGBA) *image.NRGBA {
	dup := image.NewNRGBA(m.Bounds())
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			p := m.NRGBAAt(x, y)
			if p.A < alphaThreshold {
				p = c
			}
			p.A = 0xff
			dup.SetNRGBA(x, y, p)
		}
	}
	return dup
}

// extend adds up to n colors found in m to p, skipping any already present.
func extend(p palette.Palette, m *image.NRGBA, n int) (palette.Palette, error) {
	// Seed transparent areas with the most common opaque color so they do
	// not introduce a color of their own
	counts := make(map[color.NRGBA]int)
	var seed color.NRGBA
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			c := m.NRGBAAt(x, y)
			if c.A < alphaThreshold {
				continue
			}
			c.A = 0xff
			counts[c]++
			if counts[c] > counts[seed] {
				seed = c
			}
		}
	}
	if len(counts) == 0 {
		return p, nil
	}
	if len(counts) < n {
		n = len(counts)
	}

	existing := make(map[string]struct{}, p.Len())
	for _, s := range p[:p.Transparent()] {
		if c, err := palette.ParseColor(s); err == nil {
			existing[palette.FormatColor(c)] = struct{}{}
		}
	}

	q := quantize.MedianCutQuantizer{}
	for _, c := range q.Quantize(make(color.Palette, 0, n), opaque(m, seed)) {
		s := palette.FormatColor(color.NRGBAModel.Convert(c))
		if _, ok := existing[s]; ok {
			continue
		}
		if p.Len() >= maxColors {
			break
		}
		var err error
		if p, _, err = p.Insert(s); err != nil {
			return nil, err
		}
		existing[s] = struct{}{}
	}

	return p, nil
}

// Import converts m into a w by h raster using the colors of p. If extra is
// positive up to that many colors are first picked from m by median cut
// quantization and added to the palette. The possibly extended palette is
// returned along with the raster.
func Import(m image.Image, p palette.Palette, w, h, extra int) (*raster.Raster, palette.Palette, error) {
	if w < 1 || h < 1 || m.Bounds().Empty() {
		return nil, nil, errBadSize
	}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	dst := scale(m, w, h)

	p = p.Clone()
	if extra > 0 {
		var err error
		if p, err = extend(p, dst, extra); err != nil {
			return nil, nil, err
		}
	}

	cp, err := p.Colors()
	if err != nil {
		return nil, nil, err
	}
	// Never match against the sentinel
	cp = cp[:p.Transparent()]

	r := raster.New(w, h, p.Transparent())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := dst.NRGBAAt(x, y)
			if c.A < alphaThreshold || len(cp) == 0 {
				continue
			}
			c.A = 0xff
			r.Set(x, y, cp.Index(c))
		}
	}

	return r, p, nil
}
