package image

import (
	"image"

	"github.com/bodgit/pixeldraw/palette"
	"github.com/bodgit/pixeldraw/raster"
)

// Paletted returns r as an image using the colors of p, each cell becoming a
// scale by scale block of pixels. The transparent sentinel is fully
// transparent in the result. A palette longer than an image allows is cut
// short if r does not use the colors past the limit.
func Paletted(r *raster.Raster, p palette.Palette, scale int) (*image.Paletted, error) {
	if scale < 1 {
		return nil, errBadSize
	}

	cp, err := p.Colors()
	if err != nil {
		return nil, err
	}
	if len(cp) > maxColors {
		if r.Max() >= maxColors {
			return nil, errTooManyColors
		}
		cp = cp[:maxColors]
	}

	for _, v := range r.Pix {
		if !p.Valid(v) {
			return nil, errBadIndex
		}
	}

	m := image.NewPaletted(image.Rect(0, 0, r.Width*scale, r.Height*scale), cp)

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			i := uint8(r.At(x, y))
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					m.SetColorIndex(x*scale+dx, y*scale+dy, i)
				}
			}
		}
	}

	return m, nil
}
