// Package mainwindow provides the main application window.
package mainwindow

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"floorplan-mapper/internal/app"
	"floorplan-mapper/internal/engine"
	bgimage "floorplan-mapper/internal/image"
	"floorplan-mapper/internal/version"
	"floorplan-mapper/pkg/geometry"
	"floorplan-mapper/ui/canvas"
	"floorplan-mapper/ui/dialogs"
	"floorplan-mapper/ui/panels"
	"floorplan-mapper/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const (
	appTitle      = "Floorplan Mapper"
	layoutExt     = ".json"
	defaultWidth  = 1280
	defaultHeight = 800
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs
	log   *zap.Logger

	canvas    *canvas.FloorplanCanvas
	sidePanel *panels.SidePanel
	split     *container.Split
	statusBar *widget.Label
	pointer   *widget.Label

	showRoomsItem *fyne.MenuItem
}

// New creates a new main window and installs the room naming form as the
// state's prompt.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs, log *zap.Logger) *MainWindow {
	if log == nil {
		log = zap.NewNop()
	}
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		log:    log.Named("ui"),
	}
	state.SetPrompt(dialogs.RoomPrompt(win, state.Config.Palette.TypeNames(), p))
	state.SetAssignPrompt(dialogs.AssignPrompt(win))

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefs.KeyWindowWidth, defaultWidth)),
		float32(p.FloatWithFallback(prefs.KeyWindowHeight, defaultHeight)),
	))
	mw.SetCloseIntercept(mw.onClose)
	mw.updateTitle()
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewFloorplanCanvas(mw.state)
	mw.canvas.OnPointer(func(p geometry.Point2D) {
		mw.pointer.SetText(fmt.Sprintf("%.0f, %.0f", p.X, p.Y))
	})

	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")
	mw.pointer = widget.NewLabel("")

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.canvas,          // center
	)

	mw.split = container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	mw.split.SetOffset(0.22)
	if !mw.prefs.Bool(prefs.KeyShowRoomList, true) {
		mw.split.SetOffset(0)
	}

	status := container.NewBorder(nil, nil, nil, mw.pointer, mw.statusBar)
	content := container.NewBorder(
		nil,                         // top
		container.NewPadded(status), // bottom
		nil,                         // left
		nil,                         // right
		mw.split,                    // center
	)
	mw.SetContent(content)
}

// createToolbar creates the drawing and view controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewButtonWithIcon("Polygon", theme.ContentAddIcon(), mw.onDrawPolygon),
		widget.NewButtonWithIcon("Rectangle", theme.ContentAddIcon(), mw.onDrawRectangle),
		widget.NewButtonWithIcon("", theme.CancelIcon(), mw.onCancelDrawing),
		widget.NewSeparator(),
		widget.NewButtonWithIcon("", theme.ZoomOutIcon(), mw.canvas.ZoomOut),
		widget.NewButtonWithIcon("", theme.ZoomInIcon(), mw.canvas.ZoomIn),
		widget.NewButtonWithIcon("", theme.ZoomFitIcon(), mw.canvas.ResetView),
		widget.NewSeparator(),
		widget.NewButtonWithIcon("Image", theme.FileImageIcon(), mw.onOpenBackground),
		widget.NewButtonWithIcon("Import", theme.FolderOpenIcon(), mw.onOpenLayout),
		widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), mw.onSaveLayoutAs),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Layout", mw.onNewLayout),
		fyne.NewMenuItem("Open Layout...", mw.onOpenLayout),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Background Image...", mw.onOpenBackground),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Layout", mw.onSaveLayout),
		fyne.NewMenuItem("Save Layout As...", mw.onSaveLayoutAs),
		fyne.NewMenuItem("Export PNG...", mw.onExportPNG),
	)

	drawMenu := fyne.NewMenu("Draw",
		fyne.NewMenuItem("Polygon Room", mw.onDrawPolygon),
		fyne.NewMenuItem("Rectangle Room", mw.onDrawRectangle),
		fyne.NewMenuItem("Cancel Drawing", mw.onCancelDrawing),
	)

	mw.showRoomsItem = fyne.NewMenuItem("Show Side Panel", mw.onToggleSidePanel)
	mw.showRoomsItem.Checked = mw.prefs.Bool(prefs.KeyShowRoomList, true)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Reset View", mw.canvas.ResetView),
		fyne.NewMenuItemSeparator(),
		mw.showRoomsItem,
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, drawMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventLayoutLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.rememberLayout(path)
			mw.updateStatus("Layout loaded: " + path)
		}
		mw.updateTitle()
	})
	mw.state.On(app.EventLayoutSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.rememberLayout(path)
			mw.updateStatus("Layout saved: " + path)
		}
		mw.updateTitle()
	})
	mw.state.On(app.EventModified, func(interface{}) { mw.updateTitle() })
	mw.state.On(app.EventStatus, func(data interface{}) {
		if text, ok := data.(string); ok {
			mw.updateStatus(text)
		}
	})
	mw.state.On(app.EventError, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.log.Warn("Operation failed", zap.Error(err))
			dialog.ShowError(err, mw.Window)
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateTitle() {
	name := "Untitled"
	if path := mw.state.LayoutPath(); path != "" {
		name = filepath.Base(path)
	}
	title := appTitle + " - " + name
	if mw.state.Modified() {
		title += " *"
	}
	mw.SetTitle(title)
}

func (mw *MainWindow) rememberLayout(path string) {
	mw.prefs.SetString(prefs.KeyLastLayout, path)
	mw.saveLastDir(path)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDirectory)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDirectory, filepath.Dir(filePath))
}

// RestoreLastLayout reopens the layout used in the previous session.
func (mw *MainWindow) RestoreLastLayout() {
	path := mw.prefs.String(prefs.KeyLastLayout)
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		mw.log.Info("Last layout is gone", zap.String("path", path))
		return
	}
	if err := mw.state.LoadLayout(path); err != nil {
		mw.log.Warn("Failed to restore layout", zap.String("path", path), zap.Error(err))
	}
}

// SavePreferences stores the window geometry and panel visibility.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	if size.Width > 0 && size.Height > 0 {
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	}
	mw.prefs.SetBool(prefs.KeyShowRoomList, mw.showRoomsItem.Checked)
	if err := mw.prefs.Save(); err != nil {
		mw.log.Warn("Failed to save preferences", zap.String("path", mw.prefs.Path()), zap.Error(err))
	}
}

func (mw *MainWindow) onClose() {
	if !mw.state.Modified() {
		mw.SavePreferences()
		mw.Close()
		return
	}
	dialog.ShowConfirm("Unsaved Changes", "Discard changes to the layout and quit?", func(ok bool) {
		if ok {
			mw.SavePreferences()
			mw.Close()
		}
	}, mw.Window)
}

// Menu action handlers

func (mw *MainWindow) onDrawPolygon() {
	mw.state.CancelCarry()
	mw.canvas.EnableDrawing(engine.ShapePolygon)
	mw.updateStatus("Click to add corners, double-click to close the room")
}

func (mw *MainWindow) onDrawRectangle() {
	mw.state.CancelCarry()
	mw.canvas.EnableDrawing(engine.ShapeRectangle)
	mw.updateStatus("Click two opposite corners")
}

func (mw *MainWindow) onCancelDrawing() {
	mw.state.CancelCarry()
	mw.canvas.DisableDrawing()
	mw.updateStatus("Ready")
}

func (mw *MainWindow) onToggleSidePanel() {
	mw.showRoomsItem.Checked = !mw.showRoomsItem.Checked
	if mw.showRoomsItem.Checked {
		mw.split.SetOffset(0.22)
	} else {
		mw.split.SetOffset(0)
	}
	mw.MainMenu().Refresh()
}

func (mw *MainWindow) onNewLayout() {
	reset := func() {
		mw.state.NewLayout()
		mw.canvas.ResetView()
		mw.updateStatus("New layout")
	}
	if !mw.state.Modified() {
		reset()
		return
	}
	dialog.ShowConfirm("Unsaved Changes", "Discard changes to the current layout?", func(ok bool) {
		if ok {
			reset()
		}
	}, mw.Window)
}

func (mw *MainWindow) onOpenLayout() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		if err := mw.state.LoadLayout(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{layoutExt}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenBackground() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.LoadBackgroundFile(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Loading " + filepath.Base(path) + "...")
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(bgimage.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveLayout() {
	path := mw.state.LayoutPath()
	if path == "" {
		mw.onSaveLayoutAs()
		return
	}
	if err := mw.state.SaveLayout(path); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveLayoutAs() {
	mw.saveFile("floorplan"+layoutExt, layoutExt, func(path string) error {
		return mw.state.SaveLayout(path)
	})
}

func (mw *MainWindow) onExportPNG() {
	mw.saveFile("floorplan.png", ".png", func(path string) error {
		size := mw.canvas.Size()
		var buf bytes.Buffer
		var err error
		mw.state.Do(func(e *engine.Engine) {
			err = png.Encode(&buf, e.Render(int(size.Width), int(size.Height)))
		})
		if err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write png: %w", err)
		}
		mw.updateStatus("Exported " + path)
		return nil
	})
}

// saveFile asks for a destination, appends ext when missing and calls write.
func (mw *MainWindow) saveFile(name, ext string, write func(path string) error) {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !strings.EqualFold(filepath.Ext(path), ext) {
			path += ext
		}
		mw.saveLastDir(path)
		if err := write(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName(name)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\n"+
			"Draw rooms over a floorplan image and place devices in them.",
			appTitle, version.String()),
		mw.Window)
}
