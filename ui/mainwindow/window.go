// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/liliping230531-pixel/qushuiyin/internal/app"
	"github.com/liliping230531-pixel/qushuiyin/internal/picture"
	"github.com/liliping230531-pixel/qushuiyin/internal/version"
	"github.com/liliping230531-pixel/qushuiyin/ui/canvas"
	"github.com/liliping230531-pixel/qushuiyin/ui/compare"
	"github.com/liliping230531-pixel/qushuiyin/ui/panels"
	"github.com/liliping230531-pixel/qushuiyin/ui/prefs"
)

const appTitle = "Qushuiyin"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.MaskCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	zoomLabel *widget.Label
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewMaskCanvas(mw.state)

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas, mw.prefs)
	mw.sidePanel.SetWindow(mw.Window)
	mw.sidePanel.OnError = func(err error) {
		dialog.ShowError(err, mw.Window)
	}
	mw.sidePanel.OnResult = mw.showResult

	mw.statusBar = widget.NewLabel("Open an image to start")
	mw.zoomLabel = widget.NewLabel("100%")
	mw.canvas.OnZoomChange(func(scale float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", scale*100))
	})

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.canvas,          // center
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.22)

	content := container.NewBorder(
		nil, // top
		container.NewPadded(mw.statusBar), // bottom
		nil, // left
		nil, // right
		split,
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	openBtn := widget.NewButton("Open...", mw.onOpenImage)
	zoomOutBtn := widget.NewButton("-", mw.canvas.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.canvas.ZoomIn)
	fitBtn := widget.NewButton("Fit", mw.canvas.FitImage)
	actualBtn := widget.NewButton("1:1", mw.onActualSize)

	return container.NewHBox(
		openBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		mw.zoomLabel,
		zoomInBtn,
		fitBtn,
		actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Result As...", mw.onSaveResultAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo Stroke", mw.state.UndoStroke),
		fyne.NewMenuItem("Clear Mask", mw.state.ResetMask),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit to Window", mw.canvas.FitImage),
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Compare Result...", mw.onCompare),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Detect Watermarks", func() {
			go func() {
				if err := mw.state.DetectWatermarks(); err != nil {
					dialog.ShowError(err, mw.Window)
				}
			}()
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		if path, ok := data.(string); ok && path != "" {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
		}
		mw.updateStatus("Paint over the watermark, then run Remove Watermark")
	})

	mw.state.On(app.EventMaskChanged, func(interface{}) {
		if n := mw.state.Mask.Count(); n > 0 {
			mw.updateStatus(fmt.Sprintf("%d stroke(s) in mask", n))
		}
	})

	mw.state.On(app.EventBusyChanged, func(data interface{}) {
		if busy, ok := data.(bool); ok && busy {
			mw.updateStatus("Removing watermark...")
		}
	})

	mw.state.On(app.EventResultReady, func(interface{}) {
		mw.updateStatus("Watermark removed")
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir(key string) fyne.ListableURI {
	path := mw.prefs.String(key)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir remembers the directory of the given file path.
func (mw *MainWindow) saveLastDir(key, filePath string) {
	mw.prefs.SetString(key, filepath.Dir(filePath))
	_ = mw.prefs.Save()
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(prefs.KeyLastOpenDir, path)
		if err := mw.state.LoadImage(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(picture.SupportedFormats()))
	if loc := mw.getLastDir(prefs.KeyLastOpenDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveResultAs() {
	if !mw.state.HasImage() {
		mw.updateStatus("Nothing to save yet")
		return
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if ext := strings.ToLower(filepath.Ext(path)); ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
			path += ".png"
		}
		mw.saveLastDir(prefs.KeyLastSaveDir, path)
		if err := mw.state.SaveResult(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Saved " + filepath.Base(path))
	}, mw.Window)
	fd.SetFileName("cleaned.png")
	if loc := mw.getLastDir(prefs.KeyLastSaveDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onActualSize() {
	mw.state.View.SetScale(1.0)
	mw.zoomLabel.SetText("100%")
	mw.canvas.Refresh()
}

// showResult opens the before/after view. Keeping the result promotes
// it to the working picture so further strokes refine the clean copy.
func (mw *MainWindow) showResult() {
	before := mw.state.Picture
	after := mw.state.Result
	if before == nil || after == nil {
		return
	}

	view := compare.NewView(before.Image, after.Image)
	d := dialog.NewCustomConfirm("Before / After", "Keep Result", "Discard", view, func(keep bool) {
		if keep {
			mw.state.ApplyResult()
			mw.updateStatus("Result applied, save it via File > Save Result As")
		}
	}, mw.Window)
	d.Resize(fyne.NewSize(900, 620))
	d.Show()
}

func (mw *MainWindow) onCompare() {
	if mw.state.Result == nil {
		mw.updateStatus("No result to compare yet")
		return
	}
	mw.showResult()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"An interactive watermark remover.\n"+
			"Paint over the watermark and let inpainting fill it in.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
