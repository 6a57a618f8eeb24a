// Package mask captures freehand brush strokes in image space and
// rasterizes them into a binary inpainting mask at native image resolution.
package mask

import (
	"github.com/google/uuid"

	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

// Stroke is one committed paint gesture: an ordered list of points in
// image-pixel coordinates plus the brush diameter (also in image pixels)
// that was active when the stroke was started. Strokes are immutable once
// committed; later strokes simply draw over earlier ones.
type Stroke struct {
	ID       string
	Points   []geometry.Point2D
	Diameter float64
}

func newStroke(p geometry.Point2D, diameter float64) *Stroke {
	return &Stroke{
		ID:       uuid.NewString(),
		Points:   []geometry.Point2D{p},
		Diameter: diameter,
	}
}

// Bounds returns the stroke's bounding box in image space, inflated by the
// brush radius.
func (s *Stroke) Bounds() geometry.Rect {
	return geometry.BoundingBox(s.Points).Inflate(s.Diameter / 2)
}

// clone returns a deep copy so committed strokes stay immutable even if a
// caller holds the snapshot across further edits.
func (s *Stroke) clone() Stroke {
	points := make([]geometry.Point2D, len(s.Points))
	copy(points, s.Points)
	return Stroke{ID: s.ID, Points: points, Diameter: s.Diameter}
}
