// Package detect finds likely text watermarks in a picture and converts
// them into suggested mask strokes the user can accept or ignore.
package detect

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// ChannelMetrics summarizes an image's tonal distribution. Brightness is
// the overall luma average; Mean and StdDev are averaged across the RGB
// channels and drive the binarisation threshold before OCR.
type ChannelMetrics struct {
	Brightness float64
	Mean       float64
	StdDev     float64
}

// metricsSampleStride limits metric computation to a pixel subgrid so
// large photos stay cheap.
const metricsSampleStride = 4

// ComputeChannelMetrics samples the image and returns per-channel
// statistics in the 0-255 range.
func ComputeChannelMetrics(img image.Image) ChannelMetrics {
	bounds := img.Bounds()
	if bounds.Empty() {
		return ChannelMetrics{}
	}

	var rs, gs, bs, luma []float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += metricsSampleStride {
		for x := bounds.Min.X; x < bounds.Max.X; x += metricsSampleStride {
			r, g, b, _ := img.At(x, y).RGBA()
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(b >> 8)
			rs = append(rs, rf)
			gs = append(gs, gf)
			bs = append(bs, bf)
			luma = append(luma, 0.299*rf+0.587*gf+0.114*bf)
		}
	}

	mean := (stat.Mean(rs, nil) + stat.Mean(gs, nil) + stat.Mean(bs, nil)) / 3
	sd := (stat.StdDev(rs, nil) + stat.StdDev(gs, nil) + stat.StdDev(bs, nil)) / 3

	return ChannelMetrics{
		Brightness: stat.Mean(luma, nil),
		Mean:       mean,
		StdDev:     sd,
	}
}

// Threshold picks the binarisation cutoff for OCR preprocessing. High
// contrast images threshold near the channel spread; flat images pull
// the cutoff toward the mean so faint watermarks still separate.
func (m ChannelMetrics) Threshold() float64 {
	t := m.Mean - (m.Mean-m.StdDev)/2
	if t < 1 {
		t = 127
	}
	return t
}
