/*
Package image converts between PixelDraw rasters and Go images.

Rendering is left to the standard library encoders: Paletted hands a decoded
raster to anything that accepts an image.Image, and Import turns any decoded
image into a raster by scaling it to the canvas size and matching every pixel
against the palette. Palette entries are limited to 256 colors, the most an
image.Paletted can index.
*/
package image

import "errors"

const maxColors = 256

// alphaThreshold is the 8-bit alpha below which an imported pixel is
// treated as transparent.
const alphaThreshold = 0x80

var (
	errTooManyColors = errors.New("image: palette has more than 256 colors")
	errBadIndex      = errors.New("image: raster index outside palette")
	errBadSize       = errors.New("image: invalid size")
)
