// Package compare provides a before/after view with a draggable divider.
package compare

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/liliping230531-pixel/qushuiyin/internal/picture"
	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"
)

var (
	backgroundGray = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xFF}
	dividerWhite   = color.RGBA{R: 0xF5, G: 0xF5, B: 0xF5, A: 0xFF}
)

// View renders the source photo and the edit result in one frame,
// split by a divider the user drags left and right. Left of the
// divider shows the original, right shows the result.
type View struct {
	widget.BaseWidget

	before *image.RGBA
	after  *image.RGBA
	split  float64
	raster *fynecanvas.Raster
}

// NewView creates a compare view from the source and result images.
func NewView(before, after image.Image) *View {
	v := &View{
		before: picture.FromImage(before).RGBA(),
		after:  picture.FromImage(after).RGBA(),
		split:  0.5,
	}
	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScalePixels
	v.ExtendBaseWidget(v)
	return v
}

// Dragged moves the divider to follow the pointer.
func (v *View) Dragged(ev *fyne.DragEvent) {
	width := float64(v.Size().Width)
	if width <= 0 {
		return
	}
	v.split = geometry.Clamp(float64(ev.Position.X)/width, 0, 1)
	v.raster.Refresh()
}

// DragEnd implements fyne.Draggable.
func (v *View) DragEnd() {}

// Tapped jumps the divider to the tapped position.
func (v *View) Tapped(ev *fyne.PointEvent) {
	width := float64(v.Size().Width)
	if width <= 0 {
		return
	}
	v.split = geometry.Clamp(float64(ev.Position.X)/width, 0, 1)
	v.raster.Refresh()
}

// draw fits both images with a shared transform so they stay pixel
// aligned, then samples before or after depending on the divider.
func (v *View) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = backgroundGray.R
		out.Pix[i+1] = backgroundGray.G
		out.Pix[i+2] = backgroundGray.B
		out.Pix[i+3] = 0xFF
	}
	if w <= 0 || h <= 0 {
		return out
	}

	imgW := v.before.Rect.Dx()
	imgH := v.before.Rect.Dy()
	if imgW == 0 || imgH == 0 {
		return out
	}

	scale := float64(w) / float64(imgW)
	if fitH := float64(h) / float64(imgH); fitH < scale {
		scale = fitH
	}
	if scale > 1 {
		scale = 1
	}
	offX := (float64(w) - float64(imgW)*scale) / 2
	offY := (float64(h) - float64(imgH)*scale) / 2
	invScale := 1 / scale

	splitX := int(v.split * float64(w))
	afterW := v.after.Rect.Dx()
	afterH := v.after.Rect.Dy()

	for y := 0; y < h; y++ {
		srcY := int((float64(y) + 0.5 - offY) * invScale)
		if srcY < 0 || srcY >= imgH {
			continue
		}
		for x := 0; x < w; x++ {
			srcX := int((float64(x) + 0.5 - offX) * invScale)
			if srcX < 0 || srcX >= imgW {
				continue
			}
			if x < splitX {
				out.SetRGBA(x, y, v.before.RGBAAt(srcX, srcY))
			} else if srcX < afterW && srcY < afterH {
				out.SetRGBA(x, y, v.after.RGBAAt(srcX, srcY))
			}
		}
	}

	for y := 0; y < h; y++ {
		for dx := 0; dx < 2; dx++ {
			if x := splitX + dx; x >= 0 && x < w {
				out.SetRGBA(x, y, dividerWhite)
			}
		}
	}
	return out
}

// CreateRenderer implements fyne.Widget.
func (v *View) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}
