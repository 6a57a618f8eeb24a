// Package viewport maintains the scale and offset mapping between image
// pixel coordinates and on-screen canvas coordinates.
package viewport

import (
	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

const (
	// MinScale and MaxScale bound the zoom range.
	MinScale = 0.1
	MaxScale = 10.0

	// fitMargin leaves breathing room around a fitted image.
	fitMargin = 0.9
)

// Viewport is a uniform scale plus translation. Offset is the screen
// position of the image-space origin, so a screen point p maps to image
// space as (p - offset) / scale.
type Viewport struct {
	scale  float64
	offset geometry.Point2D
}

// New returns a viewport at 1:1 scale with no offset.
func New() *Viewport {
	return &Viewport{scale: 1}
}

// Scale returns the current scale factor.
func (v *Viewport) Scale() float64 {
	return v.scale
}

// Offset returns the screen position of the image origin.
func (v *Viewport) Offset() geometry.Point2D {
	return v.offset
}

// FitToContainer recomputes scale and offset so the image is centered in
// the container with a small margin. Images larger than the container are
// shrunk to fit; smaller images are never upscaled past native size
// (before the margin factor).
func (v *Viewport) FitToContainer(imageW, imageH, containerW, containerH float64) {
	if imageW <= 0 || imageH <= 0 || containerW <= 0 || containerH <= 0 {
		return
	}

	scale := containerW / imageW
	if fitH := containerH / imageH; fitH < scale {
		scale = fitH
	}
	if scale > 1 {
		scale = 1
	}
	scale *= fitMargin

	v.scale = geometry.Clamp(scale, MinScale, MaxScale)
	v.offset = geometry.Point2D{
		X: (containerW - imageW*v.scale) / 2,
		Y: (containerH - imageH*v.scale) / 2,
	}
}

// Pan moves the offset by a screen-space delta. Unclamped: the image may
// be panned fully out of view, which is always reversible.
func (v *Viewport) Pan(delta geometry.Point2D) {
	v.offset = v.offset.Add(delta)
}

// ZoomAt changes scale by delta while keeping the image point under the
// given screen anchor fixed. Scale is clamped to [MinScale, MaxScale].
func (v *Viewport) ZoomAt(anchor geometry.Point2D, delta float64) {
	newScale := geometry.Clamp(v.scale+delta, MinScale, MaxScale)
	if newScale == v.scale {
		return
	}

	// newOffset = anchor - (anchor - offset) * newScale/scale keeps
	// ToImageSpace(anchor) invariant across the zoom.
	ratio := newScale / v.scale
	v.offset = anchor.Sub(anchor.Sub(v.offset).Scale(ratio))
	v.scale = newScale
}

// SetScale sets the scale directly (clamped), anchored at the image origin.
func (v *Viewport) SetScale(scale float64) {
	v.scale = geometry.Clamp(scale, MinScale, MaxScale)
}

// ToImageSpace converts a screen point to image pixel coordinates.
func (v *Viewport) ToImageSpace(p geometry.Point2D) geometry.Point2D {
	return p.Sub(v.offset).Scale(1 / v.scale)
}

// ToScreenSpace converts an image point to screen coordinates.
func (v *Viewport) ToScreenSpace(p geometry.Point2D) geometry.Point2D {
	return p.Scale(v.scale).Add(v.offset)
}

// Transform returns the image-to-screen mapping as an affine matrix.
func (v *Viewport) Transform() geometry.AffineTransform {
	return geometry.Translation(v.offset.X, v.offset.Y).Compose(geometry.Scale(v.scale))
}
