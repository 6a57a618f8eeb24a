package edit

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// Local inpaints with OpenCV, no network required. Telea works well on
// thin text watermarks; Navier-Stokes tends to look better on large
// uniform regions.
type Local struct {
	method         gocv.InpaintMethods
	radius         float64
	dilationRadius int
}

var _ Editor = (*Local)(nil)

// NewLocal creates the local engine from config.
func NewLocal(cfg Config) *Local {
	method := gocv.Telea
	if cfg.Method == "ns" {
		method = gocv.NS
	}

	radius := cfg.InpaintRadius
	if radius <= 0 {
		radius = 5
	}

	return &Local{
		method:         method,
		radius:         radius,
		dilationRadius: cfg.DilationRadius,
	}
}

// Name implements Editor.
func (l *Local) Name() string {
	return "local"
}

// Edit implements Editor.
func (l *Local) Edit(ctx context.Context, img image.Image, mask image.Image) (image.Image, error) {
	if err := validate(img, mask); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	maskMat, err := maskToMat(mask)
	if err != nil {
		return nil, err
	}
	defer maskMat.Close()

	// Grow the mask a little so stroke edges fully cover watermark
	// fringes before filling.
	if l.dilationRadius > 0 {
		size := 2*l.dilationRadius + 1
		kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(size, size))
		defer kernel.Close()
		gocv.Dilate(maskMat, &maskMat, kernel)
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Inpaint(src, maskMat, &dst, float32(l.radius), l.method)

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert inpainted result: %w", err)
	}

	log.Debug().
		Str("method", l.methodName()).
		Float64("radius", l.radius).
		Int64("duration(ms)", time.Since(start).Milliseconds()).
		Msg("local edit complete")

	return out, nil
}

func (l *Local) methodName() string {
	if l.method == gocv.NS {
		return "ns"
	}
	return "telea"
}

// maskToMat converts the mask into a single-channel 8-bit Mat where any
// non-black pixel becomes 255.
func maskToMat(mask image.Image) (gocv.Mat, error) {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := mask.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if r|g|b != 0 {
				mat.SetUCharAt(y, x, 255)
			}
		}
	}
	return mat, nil
}

// NewEditor picks the remote client when an endpoint is configured and
// the local engine otherwise.
func NewEditor(cfg Config) Editor {
	if cfg.Endpoint != "" {
		return NewClient(cfg)
	}
	return NewLocal(cfg)
}
