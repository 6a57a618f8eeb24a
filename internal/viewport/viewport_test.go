package viewport

import (
	"math"
	"testing"

	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

const tol = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tol
}

func pointsAlmostEqual(a, b geometry.Point2D) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y)
}

func TestFitToContainer(t *testing.T) {
	tests := []struct {
		name               string
		imageW, imageH     float64
		contW, contH       float64
		wantScale          float64
	}{
		{"large image shrinks to width", 2000, 1000, 1000, 1000, 0.5 * 0.9},
		{"large image shrinks to height", 1000, 2000, 1000, 1000, 0.5 * 0.9},
		{"small image keeps native size times margin", 100, 100, 1000, 1000, 0.9},
		{"exact fit", 800, 600, 800, 600, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.FitToContainer(tt.imageW, tt.imageH, tt.contW, tt.contH)

			if !almostEqual(v.Scale(), tt.wantScale) {
				t.Errorf("Scale() = %v, want %v", v.Scale(), tt.wantScale)
			}
			if v.Scale() > 1 {
				t.Errorf("Scale() = %v, must never exceed 1", v.Scale())
			}

			// The scaled image must be centered: equal margins on both axes.
			off := v.Offset()
			wantX := (tt.contW - tt.imageW*v.Scale()) / 2
			wantY := (tt.contH - tt.imageH*v.Scale()) / 2
			if !almostEqual(off.X, wantX) || !almostEqual(off.Y, wantY) {
				t.Errorf("Offset() = %+v, want (%v, %v)", off, wantX, wantY)
			}

			// Rendered bounding box stays inside the container.
			if tt.imageW*v.Scale() > tt.contW+tol || tt.imageH*v.Scale() > tt.contH+tol {
				t.Errorf("scaled image %vx%v exceeds container %vx%v",
					tt.imageW*v.Scale(), tt.imageH*v.Scale(), tt.contW, tt.contH)
			}
		})
	}
}

func TestFitToContainerIgnoresDegenerateInput(t *testing.T) {
	v := New()
	v.FitToContainer(0, 100, 500, 500)
	if v.Scale() != 1 {
		t.Errorf("Scale() = %v after degenerate fit, want 1", v.Scale())
	}
}

func TestPanIsUnclamped(t *testing.T) {
	v := New()
	v.Pan(geometry.Point2D{X: -1e6, Y: 42})
	off := v.Offset()
	if off.X != -1e6 || off.Y != 42 {
		t.Errorf("Offset() = %+v, want (-1e6, 42)", off)
	}

	// Pan is additive and reversible.
	v.Pan(geometry.Point2D{X: 1e6, Y: -42})
	if !pointsAlmostEqual(v.Offset(), geometry.Point2D{}) {
		t.Errorf("Offset() = %+v after inverse pan, want origin", v.Offset())
	}
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	tests := []struct {
		name   string
		scale  float64
		offset geometry.Point2D
		anchor geometry.Point2D
		delta  float64
	}{
		{"zoom in at cursor", 1.0, geometry.Point2D{X: 30, Y: -20}, geometry.Point2D{X: 150, Y: 90}, 0.5},
		{"zoom out at cursor", 2.0, geometry.Point2D{X: -100, Y: 40}, geometry.Point2D{X: 10, Y: 10}, -0.7},
		{"zoom at origin", 0.5, geometry.Point2D{}, geometry.Point2D{}, 0.25},
		{"tiny delta", 1.3, geometry.Point2D{X: 7, Y: 9}, geometry.Point2D{X: 400, Y: 300}, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.SetScale(tt.scale)
			v.Pan(tt.offset)

			before := v.ToImageSpace(tt.anchor)
			v.ZoomAt(tt.anchor, tt.delta)
			after := v.ToImageSpace(tt.anchor)

			if !pointsAlmostEqual(before, after) {
				t.Errorf("anchor drifted: before=%+v after=%+v", before, after)
			}
			if !almostEqual(v.Scale(), tt.scale+tt.delta) {
				t.Errorf("Scale() = %v, want %v", v.Scale(), tt.scale+tt.delta)
			}
		})
	}
}

func TestZoomAtClampsScale(t *testing.T) {
	v := New()
	v.ZoomAt(geometry.Point2D{X: 50, Y: 50}, 100)
	if v.Scale() != MaxScale {
		t.Errorf("Scale() = %v, want clamp at %v", v.Scale(), MaxScale)
	}

	v.ZoomAt(geometry.Point2D{X: 50, Y: 50}, -100)
	if v.Scale() != MinScale {
		t.Errorf("Scale() = %v, want clamp at %v", v.Scale(), MinScale)
	}

	// Fully clamped zoom must not move the offset.
	off := v.Offset()
	v.ZoomAt(geometry.Point2D{X: 999, Y: 999}, -1)
	if !pointsAlmostEqual(off, v.Offset()) {
		t.Errorf("Offset moved on no-op zoom: %+v -> %+v", off, v.Offset())
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	v := New()
	v.SetScale(1.75)
	v.Pan(geometry.Point2D{X: -33.5, Y: 210.25})

	points := []geometry.Point2D{
		{X: 0, Y: 0},
		{X: 123.456, Y: -78.9},
		{X: -1000, Y: 1000},
		{X: 0.001, Y: 0.001},
	}
	for _, p := range points {
		got := v.ToScreenSpace(v.ToImageSpace(p))
		if !pointsAlmostEqual(got, p) {
			t.Errorf("round trip of %+v = %+v", p, got)
		}
	}
}

func TestTransformMatchesConversions(t *testing.T) {
	v := New()
	v.SetScale(2.5)
	v.Pan(geometry.Point2D{X: 11, Y: -7})

	p := geometry.Point2D{X: 40, Y: 60}
	viaMatrix := v.Transform().Apply(p)
	direct := v.ToScreenSpace(p)
	if !pointsAlmostEqual(viaMatrix, direct) {
		t.Errorf("Transform().Apply = %+v, ToScreenSpace = %+v", viaMatrix, direct)
	}

	inv, ok := v.Transform().Inverse()
	if !ok {
		t.Fatal("Transform() not invertible")
	}
	if got := inv.Apply(direct); !pointsAlmostEqual(got, p) {
		t.Errorf("inverse transform of screen point = %+v, want %+v", got, p)
	}
}
