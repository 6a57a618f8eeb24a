// Package colorutil provides shared color utilities for the watermark remover.
package colorutil

import (
	"image/color"
)

// Common colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// MaskHighlight is the translucent tone used to preview painted mask
	// strokes over the photo.
	MaskHighlight = color.RGBA{R: 255, G: 64, B: 64, A: 110}

	// SuggestionHighlight marks OCR-suggested watermark regions before the
	// user accepts them into the mask.
	SuggestionHighlight = color.RGBA{R: 64, G: 128, B: 255, A: 90}
)

// BlendOver alpha-blends src over dst, treating src.A as coverage.
// The result is fully opaque.
func BlendOver(dst color.RGBA, src color.RGBA) color.RGBA {
	a := float64(src.A) / 255.0
	inv := 1 - a
	return color.RGBA{
		R: uint8(float64(src.R)*a + float64(dst.R)*inv),
		G: uint8(float64(src.G)*a + float64(dst.G)*inv),
		B: uint8(float64(src.B)*a + float64(dst.B)*inv),
		A: 255,
	}
}

// Luma returns the rec. 601 luma of an RGBA color in the 0-255 range.
func Luma(c color.RGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}
