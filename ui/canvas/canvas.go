// Package canvas provides the interactive masking canvas: the loaded
// photo with pan and zoom, plus the translucent stroke overlay painted
// on top of it.
package canvas

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/liliping230531-pixel/qushuiyin/internal/app"
	"github.com/liliping230531-pixel/qushuiyin/internal/mask"
	"github.com/liliping230531-pixel/qushuiyin/pkg/colorutil"
	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

// zoomStep is the multiplicative zoom change per wheel notch.
const zoomStep = 1.25

// Tool represents the current interaction tool.
type Tool int

const (
	ToolPaint Tool = iota
	ToolPan
)

// backgroundGray fills the area outside the image.
var backgroundGray = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xFF}

// MaskCanvas displays the photo through the shared viewport transform
// and routes pointer gestures into panning or mask painting.
type MaskCanvas struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	// Cached RGBA conversion of the current picture; rebuilt on load.
	base *image.RGBA

	tool     Tool
	needsFit bool
	lastSize fyne.Size

	onZoomChange func(scale float64)
}

// NewMaskCanvas creates the canvas bound to the application state.
func NewMaskCanvas(state *app.State) *MaskCanvas {
	mc := &MaskCanvas{
		state: state,
		tool:  ToolPaint,
	}

	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScalePixels

	state.On(app.EventImageLoaded, func(interface{}) {
		mc.reloadPicture()
	})
	state.On(app.EventMaskChanged, func(interface{}) {
		mc.Refresh()
	})
	state.On(app.EventSuggestionsChanged, func(interface{}) {
		mc.Refresh()
	})

	mc.ExtendBaseWidget(mc)
	return mc
}

func (mc *MaskCanvas) reloadPicture() {
	if p := mc.state.Picture; p != nil {
		mc.base = p.RGBA()
	} else {
		mc.base = nil
	}
	mc.needsFit = true
	mc.Refresh()
}

// SetTool sets the active interaction tool.
func (mc *MaskCanvas) SetTool(tool Tool) {
	mc.tool = tool
}

// CurrentTool returns the active interaction tool.
func (mc *MaskCanvas) CurrentTool() Tool {
	return mc.tool
}

// OnZoomChange sets a callback fired after any zoom change.
func (mc *MaskCanvas) OnZoomChange(callback func(scale float64)) {
	mc.onZoomChange = callback
}

// FitImage re-centers and re-fits the picture on the next draw.
func (mc *MaskCanvas) FitImage() {
	mc.needsFit = true
	mc.Refresh()
}

// ZoomIn zooms one step anchored at the canvas center.
func (mc *MaskCanvas) ZoomIn() {
	mc.zoomBy(mc.center(), zoomStep)
}

// ZoomOut zooms out one step anchored at the canvas center.
func (mc *MaskCanvas) ZoomOut() {
	mc.zoomBy(mc.center(), 1/zoomStep)
}

func (mc *MaskCanvas) center() geometry.Point2D {
	size := mc.Size()
	return geometry.Point2D{X: float64(size.Width) / 2, Y: float64(size.Height) / 2}
}

// zoomBy applies a multiplicative zoom factor anchored at a screen point.
func (mc *MaskCanvas) zoomBy(anchor geometry.Point2D, factor float64) {
	view := mc.state.View
	view.ZoomAt(anchor, view.Scale()*(factor-1))

	if mc.onZoomChange != nil {
		mc.onZoomChange(view.Scale())
	}
	mc.Refresh()
}

// Scrolled zooms in or out anchored under the cursor.
func (mc *MaskCanvas) Scrolled(ev *fyne.ScrollEvent) {
	anchor := toPoint(ev.Position)
	if ev.Scrolled.DY > 0 {
		mc.zoomBy(anchor, zoomStep)
	} else if ev.Scrolled.DY < 0 {
		mc.zoomBy(anchor, 1/zoomStep)
	}
}

// Dragged pans the viewport or extends the candidate stroke depending
// on the active tool.
func (mc *MaskCanvas) Dragged(ev *fyne.DragEvent) {
	delta := geometry.Point2D{X: float64(ev.Dragged.DX), Y: float64(ev.Dragged.DY)}
	pos := toPoint(ev.Position)

	if mc.tool == ToolPan {
		mc.state.View.Pan(delta)
		mc.Refresh()
		return
	}

	if !mc.state.CanEditMask() {
		return
	}

	acc := mc.state.Mask
	if !acc.Drawing() {
		// The gesture began one delta before this event arrived.
		start := mc.state.View.ToImageSpace(pos.Sub(delta))
		acc.BeginStroke(start, mc.state.BrushDiameter())
	}
	acc.ExtendStroke(mc.state.View.ToImageSpace(pos))
	mc.Refresh()
}

// DragEnd commits the candidate stroke, if any.
func (mc *MaskCanvas) DragEnd() {
	if mc.state.Mask.CommitStroke() {
		mc.state.Emit(app.EventMaskChanged, nil)
	}
}

// Tapped paints a single dab with the paint tool.
func (mc *MaskCanvas) Tapped(ev *fyne.PointEvent) {
	if mc.tool != ToolPaint || !mc.state.CanEditMask() {
		return
	}

	acc := mc.state.Mask
	acc.BeginStroke(mc.state.View.ToImageSpace(toPoint(ev.Position)), mc.state.BrushDiameter())
	if acc.CommitStroke() {
		mc.state.Emit(app.EventMaskChanged, nil)
	}
}

// draw is the raster drawing function: background, then the picture
// through the viewport transform, then the stroke overlays in screen
// space.
func (mc *MaskCanvas) draw(w, h int) image.Image {
	size := fyne.NewSize(float32(w), float32(h))
	if mc.needsFit && w > 0 && h > 0 && mc.state.Picture != nil {
		p := mc.state.Picture
		mc.state.View.FitToContainer(float64(p.Width()), float64(p.Height()), float64(w), float64(h))
		mc.needsFit = false
		if mc.onZoomChange != nil {
			mc.onZoomChange(mc.state.View.Scale())
		}
	}
	mc.lastSize = size

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = backgroundGray.R
		out.Pix[i+1] = backgroundGray.G
		out.Pix[i+2] = backgroundGray.B
		out.Pix[i+3] = 0xFF
	}

	if mc.base == nil {
		return out
	}

	mc.drawPicture(out, w, h)
	mc.drawStrokeOverlay(out, w, h)
	return out
}

// drawPicture maps every canvas pixel back to image space and samples
// the picture nearest-neighbor, keeping pixels crisp at high zoom.
func (mc *MaskCanvas) drawPicture(out *image.RGBA, w, h int) {
	view := mc.state.View
	offset := view.Offset()
	invScale := 1 / view.Scale()

	imgW := mc.base.Rect.Dx()
	imgH := mc.base.Rect.Dy()

	for y := 0; y < h; y++ {
		srcY := int((float64(y) + 0.5 - offset.Y) * invScale)
		if srcY < 0 || srcY >= imgH {
			continue
		}
		for x := 0; x < w; x++ {
			srcX := int((float64(x) + 0.5 - offset.X) * invScale)
			if srcX < 0 || srcX >= imgW {
				continue
			}
			out.SetRGBA(x, y, mc.base.RGBAAt(srcX, srcY))
		}
	}
}

// drawStrokeOverlay blends the committed strokes, the in-progress
// candidate, and any pending suggestions over the picture. Coverage is
// collected per group before blending so overlapping strokes read as
// one flat union rather than stacking up opacity.
func (mc *MaskCanvas) drawStrokeOverlay(out *image.RGBA, w, h int) {
	strokes := mc.state.Mask.Snapshot()
	if candidate, ok := mc.state.Mask.Candidate(); ok {
		// The in-progress stroke previews at the live brush setting;
		// committed strokes keep the diameter they were drawn with.
		candidate.Diameter = mc.state.BrushDiameter()
		strokes = append(strokes, candidate)
	}
	mc.blendCoverage(out, w, h, strokes, colorutil.MaskHighlight)
	mc.blendCoverage(out, w, h, mc.state.Suggestions(), colorutil.SuggestionHighlight)
}

func (mc *MaskCanvas) blendCoverage(out *image.RGBA, w, h int, strokes []mask.Stroke, tint color.RGBA) {
	if len(strokes) == 0 {
		return
	}

	view := mc.state.View
	cover := make([]bool, w*h)
	for _, s := range strokes {
		pts := make([]geometry.Point2D, len(s.Points))
		for i, p := range s.Points {
			pts[i] = view.ToScreenSpace(p)
		}
		// Screen diameter scales with zoom so the painted footprint in
		// image pixels stays what the brush promised.
		mask.StampPolyline(out.Bounds(), pts, s.Diameter*view.Scale(), func(x, y int) {
			cover[y*w+x] = true
		})
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if cover[y*w+x] {
				out.SetRGBA(x, y, colorutil.BlendOver(out.RGBAAt(x, y), tint))
			}
		}
	}
}

// Refresh redraws the raster.
func (mc *MaskCanvas) Refresh() {
	mc.raster.Refresh()
	mc.BaseWidget.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (mc *MaskCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.raster)
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
}
