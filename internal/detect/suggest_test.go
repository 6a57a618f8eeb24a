package detect

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/liliping230531-pixel/qushuiyin/internal/mask"
	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

func TestSuggestStrokes(t *testing.T) {
	regions := []TextRegion{
		{Text: "SAMPLE", Bounds: geometry.RectInt{X: 40, Y: 100, Width: 120, Height: 20}},
		{Text: "WM", Bounds: geometry.RectInt{X: 10, Y: 10, Width: 30, Height: 14}},
	}

	strokes := SuggestStrokes(regions)
	if len(strokes) != 2 {
		t.Fatalf("len(strokes) = %d, want 2", len(strokes))
	}

	// Sorted top-to-bottom: the (10,10) box comes first.
	if strokes[0].Diameter != 14+2*suggestionMargin {
		t.Errorf("strokes[0].Diameter = %v, want %v", strokes[0].Diameter, 14+2*suggestionMargin)
	}
	if cy := strokes[0].Points[0].Y; cy != 17 {
		t.Errorf("strokes[0] centerline y = %v, want 17", cy)
	}

	// Each stroke is a two-point horizontal line.
	for i, s := range strokes {
		if len(s.Points) != 2 {
			t.Fatalf("strokes[%d] has %d points, want 2", i, len(s.Points))
		}
		if s.Points[0].Y != s.Points[1].Y {
			t.Errorf("strokes[%d] is not horizontal: %+v", i, s.Points)
		}
	}
}

func TestSuggestStrokesCoverBox(t *testing.T) {
	region := TextRegion{Bounds: geometry.RectInt{X: 20, Y: 40, Width: 60, Height: 16}}
	strokes := SuggestStrokes([]TextRegion{region})
	if len(strokes) != 1 {
		t.Fatalf("len(strokes) = %d, want 1", len(strokes))
	}

	m := mask.Rasterize(strokes, 120, 120)
	// Every pixel of the text box must be painted.
	for y := 40; y < 56; y++ {
		for x := 20; x < 80; x++ {
			if m.GrayAt(x, y).Y != 255 {
				t.Fatalf("box pixel (%d,%d) not covered by suggestion", x, y)
			}
		}
	}
}

func TestSuggestStrokesSkipsDegenerateBoxes(t *testing.T) {
	strokes := SuggestStrokes([]TextRegion{
		{Bounds: geometry.RectInt{X: 5, Y: 5, Width: 0, Height: 10}},
		{Bounds: geometry.RectInt{X: 5, Y: 5, Width: 10, Height: 0}},
	})
	if len(strokes) != 0 {
		t.Errorf("len(strokes) = %d for degenerate boxes, want 0", len(strokes))
	}
}

func TestSuggestStrokesNarrowBoxBecomesDab(t *testing.T) {
	strokes := SuggestStrokes([]TextRegion{
		{Bounds: geometry.RectInt{X: 50, Y: 50, Width: 4, Height: 30}},
	})
	if len(strokes) != 1 {
		t.Fatalf("len(strokes) = %d, want 1", len(strokes))
	}
	if p := strokes[0].Points; p[0] != p[1] {
		t.Errorf("narrow box stroke should collapse to a dab, got %+v", p)
	}
}

func TestComputeChannelMetrics(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 100, A: 255})
		}
	}

	m := ComputeChannelMetrics(img)
	if math.Abs(m.Mean-100) > 0.5 {
		t.Errorf("Mean = %v, want ~100", m.Mean)
	}
	if math.Abs(m.Brightness-100) > 0.5 {
		t.Errorf("Brightness = %v, want ~100", m.Brightness)
	}
	if m.StdDev > 0.5 {
		t.Errorf("StdDev = %v for flat image, want ~0", m.StdDev)
	}
}

func TestComputeChannelMetricsEmptyImage(t *testing.T) {
	m := ComputeChannelMetrics(image.NewRGBA(image.Rectangle{}))
	if m != (ChannelMetrics{}) {
		t.Errorf("metrics of empty image = %+v, want zero", m)
	}
}

func TestThresholdFallback(t *testing.T) {
	var m ChannelMetrics
	if got := m.Threshold(); got != 127 {
		t.Errorf("Threshold() = %v for zero metrics, want 127 fallback", got)
	}
}
