// Package panels provides UI panels for the application.
package panels

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/liliping230531-pixel/qushuiyin/internal/app"
	"github.com/liliping230531-pixel/qushuiyin/ui/canvas"
	"github.com/liliping230531-pixel/qushuiyin/ui/prefs"
)

const (
	minBrushDiameter = 4
	maxBrushDiameter = 200
)

// SidePanel holds the tool controls next to the canvas: tool selection,
// brush size, mask actions, watermark detection, and the edit trigger.
type SidePanel struct {
	state     *app.State
	canvas    *canvas.MaskCanvas
	window    fyne.Window
	prefs     *prefs.Prefs
	container fyne.CanvasObject

	toolSelect    *widget.RadioGroup
	brushSlider   *widget.Slider
	brushLabel    *widget.Label
	strokeLabel   *widget.Label
	undoButton    *widget.Button
	resetButton   *widget.Button
	detectButton  *widget.Button
	acceptButton  *widget.Button
	dismissButton *widget.Button
	detectStatus  *widget.Label
	processButton *widget.Button
	busyBar       *widget.ProgressBarInfinite

	// OnError surfaces failures to the main window's dialog handling.
	OnError func(err error)
	// OnResult is called after a successful edit completes.
	OnResult func()
}

// NewSidePanel creates the side panel bound to the state and canvas.
func NewSidePanel(state *app.State, cvs *canvas.MaskCanvas, p *prefs.Prefs) *SidePanel {
	sp := &SidePanel{
		state:  state,
		canvas: cvs,
		prefs:  p,
	}

	sp.toolSelect = widget.NewRadioGroup([]string{"Paint", "Pan"}, func(selected string) {
		if selected == "Pan" {
			cvs.SetTool(canvas.ToolPan)
		} else {
			cvs.SetTool(canvas.ToolPaint)
		}
	})
	sp.toolSelect.SetSelected("Paint")
	sp.toolSelect.Horizontal = true

	sp.brushLabel = widget.NewLabel("")
	sp.brushSlider = widget.NewSlider(minBrushDiameter, maxBrushDiameter)
	sp.brushSlider.Step = 1
	sp.brushSlider.OnChanged = func(v float64) {
		state.SetBrushDiameter(v)
		sp.updateBrushLabel()
	}
	sp.brushSlider.SetValue(p.FloatWithFallback(prefs.KeyBrushDiameter, app.DefaultBrushDiameter))

	sp.strokeLabel = widget.NewLabel("No strokes")

	sp.undoButton = widget.NewButton("Undo Stroke", func() {
		state.UndoStroke()
	})
	sp.resetButton = widget.NewButton("Clear Mask", func() {
		state.ResetMask()
	})

	sp.detectStatus = widget.NewLabel("")
	sp.detectStatus.Wrapping = fyne.TextWrapWord
	sp.detectButton = widget.NewButton("Detect Watermarks", func() {
		sp.onDetect()
	})
	sp.acceptButton = widget.NewButton("Accept", func() {
		state.AcceptSuggestions()
	})
	sp.dismissButton = widget.NewButton("Dismiss", func() {
		state.ClearSuggestions()
	})

	sp.processButton = widget.NewButton("Remove Watermark", func() {
		sp.onProcess()
	})
	sp.processButton.Importance = widget.HighImportance

	sp.busyBar = widget.NewProgressBarInfinite()
	sp.busyBar.Hide()

	state.On(app.EventImageLoaded, func(interface{}) {
		sp.refreshControls()
	})
	state.On(app.EventMaskChanged, func(interface{}) {
		sp.refreshControls()
	})
	state.On(app.EventBusyChanged, func(data interface{}) {
		busy, _ := data.(bool)
		sp.setBusy(busy)
	})
	state.On(app.EventSuggestionsChanged, func(interface{}) {
		sp.refreshControls()
	})

	sp.container = container.NewVBox(
		widget.NewLabelWithStyle("Tool", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sp.toolSelect,
		widget.NewSeparator(),
		sp.brushLabel,
		sp.brushSlider,
		widget.NewSeparator(),
		sp.strokeLabel,
		container.NewGridWithColumns(2, sp.undoButton, sp.resetButton),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Detection", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sp.detectButton,
		container.NewGridWithColumns(2, sp.acceptButton, sp.dismissButton),
		sp.detectStatus,
		widget.NewSeparator(),
		sp.processButton,
		sp.busyBar,
	)

	sp.updateBrushLabel()
	sp.refreshControls()
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.window = w
}

func (sp *SidePanel) updateBrushLabel() {
	sp.brushLabel.SetText(fmt.Sprintf("Brush: %.0f px", sp.state.BrushDiameter()))
}

func (sp *SidePanel) refreshControls() {
	hasImage := sp.state.HasImage()
	hasMask := sp.state.Mask.HasContent()
	hasSuggestions := len(sp.state.Suggestions()) > 0
	busy := sp.state.Busy()

	if n := sp.state.Mask.Count(); n == 0 {
		sp.strokeLabel.SetText("No strokes")
	} else if n == 1 {
		sp.strokeLabel.SetText("1 stroke")
	} else {
		sp.strokeLabel.SetText(fmt.Sprintf("%d strokes", n))
	}

	setEnabled(sp.undoButton, hasImage && hasMask && !busy)
	setEnabled(sp.resetButton, hasImage && hasMask && !busy)
	setEnabled(sp.detectButton, hasImage && !busy)
	setEnabled(sp.acceptButton, hasSuggestions && !busy)
	setEnabled(sp.dismissButton, hasSuggestions && !busy)
	setEnabled(sp.processButton, hasImage && hasMask && !busy)
}

func (sp *SidePanel) setBusy(busy bool) {
	if busy {
		sp.busyBar.Show()
		sp.busyBar.Start()
	} else {
		sp.busyBar.Stop()
		sp.busyBar.Hide()
	}
	sp.refreshControls()
}

func (sp *SidePanel) onDetect() {
	sp.detectStatus.SetText("Scanning for watermark text...")
	go func() {
		if err := sp.state.DetectWatermarks(); err != nil {
			sp.detectStatus.SetText("Detection failed")
			sp.reportError(err)
			return
		}
		n := len(sp.state.Suggestions())
		if n == 0 {
			sp.detectStatus.SetText("No watermark text found")
		} else {
			sp.detectStatus.SetText(fmt.Sprintf("%d region(s) found, accept to mask them", n))
		}
	}()
}

func (sp *SidePanel) onProcess() {
	sp.prefs.SetFloat(prefs.KeyBrushDiameter, sp.state.BrushDiameter())
	go func() {
		if err := sp.state.RunEdit(context.Background()); err != nil {
			sp.reportError(err)
			return
		}
		if sp.OnResult != nil {
			sp.OnResult()
		}
	}()
}

func (sp *SidePanel) reportError(err error) {
	log.Error().Err(err).Msg("side panel action failed")
	if sp.OnError != nil {
		sp.OnError(err)
	}
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}
