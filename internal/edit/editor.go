// Package edit performs the actual watermark removal: it sends the source
// image and the painted mask to an inpainting engine and returns the
// edited image. Two engines are provided, a remote HTTP service and a
// local OpenCV fallback; both consume the same black/white PNG mask
// produced by the mask package, pixel-registered to the source image.
package edit

import (
	"context"
	"errors"
	"fmt"
	"image"
)

var (
	// ErrNoImage is returned when Edit is called without a source image.
	ErrNoImage = errors.New("no image to edit")

	// ErrMaskMismatch is returned when the mask dimensions differ from
	// the source image. The mask must be rasterized at native resolution.
	ErrMaskMismatch = errors.New("mask dimensions do not match image")
)

// Editor removes the masked regions from an image. Any non-black mask
// pixel is treated as "inpaint"; anti-aliased stroke edges are fine.
type Editor interface {
	// Edit returns a new image with the masked regions filled in.
	// The input images are never modified.
	Edit(ctx context.Context, img image.Image, mask image.Image) (image.Image, error)

	// Name identifies the engine for logging and the UI.
	Name() string
}

// validate checks the shared preconditions for every engine.
func validate(img, mask image.Image) error {
	if img == nil {
		return ErrNoImage
	}
	if mask == nil {
		return fmt.Errorf("%w: mask is nil", ErrMaskMismatch)
	}
	ib, mb := img.Bounds(), mask.Bounds()
	if ib.Dx() != mb.Dx() || ib.Dy() != mb.Dy() {
		return fmt.Errorf("%w: image %dx%d, mask %dx%d",
			ErrMaskMismatch, ib.Dx(), ib.Dy(), mb.Dx(), mb.Dy())
	}
	return nil
}
