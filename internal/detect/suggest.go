package detect

import (
	"sort"

	"github.com/liliping230531-pixel/qushuiyin/internal/mask"
	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

// suggestionMargin grows each suggested stroke past the detected text
// box so anti-aliased glyph edges are covered too.
const suggestionMargin = 3.0

// SuggestStrokes converts detected text regions into mask strokes: one
// horizontal stroke through each box's centerline, brush diameter equal
// to the box height plus margin. Regions are ordered top-to-bottom,
// left-to-right so accepted suggestions commit in reading order.
func SuggestStrokes(regions []TextRegion) []mask.Stroke {
	sorted := make([]TextRegion, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Bounds.Y != sorted[j].Bounds.Y {
			return sorted[i].Bounds.Y < sorted[j].Bounds.Y
		}
		return sorted[i].Bounds.X < sorted[j].Bounds.X
	})

	strokes := make([]mask.Stroke, 0, len(sorted))
	for _, region := range sorted {
		r := region.Bounds.ToFloat()
		if r.Width <= 0 || r.Height <= 0 {
			continue
		}

		diameter := r.Height + 2*suggestionMargin
		cy := r.Y + r.Height/2

		// The stroke spans the box horizontally, pulled in by the
		// radius so the round caps land on the box edges.
		radius := diameter / 2
		x1 := r.X + radius - suggestionMargin
		x2 := r.X + r.Width - radius + suggestionMargin
		if x2 < x1 {
			// Narrow box: a single dab covers it.
			x1 = r.X + r.Width/2
			x2 = x1
		}

		strokes = append(strokes, mask.Stroke{
			Points: []geometry.Point2D{
				{X: x1, Y: cy},
				{X: x2, Y: cy},
			},
			Diameter: diameter,
		})
	}
	return strokes
}
