package mask

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

// Rasterize renders the strokes into a grayscale image of the given
// dimensions: black background, strokes painted pure white as
// round-capped, round-joined lines at their recorded diameters.
//
// The output is registered to the image's native pixel grid and is
// completely independent of any viewport scale or pan. Overlapping
// strokes are a union: painting white over white changes nothing.
func Rasterize(strokes []Stroke, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	for _, s := range strokes {
		StampPolyline(dst.Bounds(), s.Points, s.Diameter, func(x, y int) {
			dst.SetGray(x, y, color.Gray{Y: 255})
		})
	}
	return dst
}

// StampPolyline visits every pixel within diameter/2 of the polyline,
// which yields round caps and round joins for free. Pixels are tested at
// their centers against the distance to each segment, clipped to bounds.
// A single point stamps a disc.
//
// The same stamper backs both the export rasterizer (native diameters)
// and the live preview (screen-space diameters), so the two can never
// drift apart in footprint.
func StampPolyline(bounds image.Rectangle, points []geometry.Point2D, diameter float64, set func(x, y int)) {
	if len(points) == 0 || diameter <= 0 {
		return
	}

	radius := diameter / 2
	r2 := radius * radius

	stampSegment := func(a, b geometry.Point2D) {
		minX := int(math.Floor(math.Min(a.X, b.X) - radius))
		maxX := int(math.Ceil(math.Max(a.X, b.X) + radius))
		minY := int(math.Floor(math.Min(a.Y, b.Y) - radius))
		maxY := int(math.Ceil(math.Max(a.Y, b.Y) + radius))

		if minX < bounds.Min.X {
			minX = bounds.Min.X
		}
		if maxX >= bounds.Max.X {
			maxX = bounds.Max.X - 1
		}
		if minY < bounds.Min.Y {
			minY = bounds.Min.Y
		}
		if maxY >= bounds.Max.Y {
			maxY = bounds.Max.Y - 1
		}

		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				c := geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}
				if distSqToSegment(c, a, b) <= r2 {
					set(x, y)
				}
			}
		}
	}

	if len(points) == 1 {
		stampSegment(points[0], points[0])
		return
	}
	for i := 0; i < len(points)-1; i++ {
		stampSegment(points[i], points[i+1])
	}
}

// distSqToSegment returns the squared distance from p to segment ab.
func distSqToSegment(p, a, b geometry.Point2D) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)

	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return ap.X*ap.X + ap.Y*ap.Y
	}

	t := geometry.Clamp((ap.X*ab.X+ap.Y*ab.Y)/lenSq, 0, 1)
	d := ap.Sub(ab.Scale(t))
	return d.X*d.X + d.Y*d.Y
}

// EncodePNG encodes the mask as a lossless PNG payload for the edit
// service. Every pixel is either pure black (keep) or pure white
// (inpaint); consumers must treat any non-black value as "inpaint".
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode mask: %w", err)
	}
	return buf.Bytes(), nil
}
