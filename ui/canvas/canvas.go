// Package canvas provides the fyne widget that hosts the floorplan engine.
package canvas

import (
	"image"
	"sync"
	"time"

	"floorplan-mapper/internal/app"
	"floorplan-mapper/internal/engine"
	"floorplan-mapper/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// tickerCycle is the length of one pass of the repeating fyne animation.
// Its callback fires on every rendered frame, so the cycle length only
// bounds how often the animation restarts, not the tick rate.
const tickerCycle = time.Second

// FloorplanCanvas forwards pointer input to the engine and paints its frames.
type FloorplanCanvas struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	mu        sync.Mutex
	ticker    *fyne.Animation
	animating bool
	lastSize  fyne.Size

	onPointer func(scene geometry.Point2D)
}

var (
	_ fyne.Tappable          = (*FloorplanCanvas)(nil)
	_ fyne.SecondaryTappable = (*FloorplanCanvas)(nil)
	_ fyne.DoubleTappable    = (*FloorplanCanvas)(nil)
	_ fyne.Scrollable        = (*FloorplanCanvas)(nil)
	_ fyne.Draggable         = (*FloorplanCanvas)(nil)
	_ desktop.Hoverable      = (*FloorplanCanvas)(nil)
)

// NewFloorplanCanvas creates the canvas widget for state's engine.
func NewFloorplanCanvas(state *app.State) *FloorplanCanvas {
	c := &FloorplanCanvas{state: state}
	c.raster = fynecanvas.NewRaster(c.draw)
	c.ExtendBaseWidget(c)

	c.ticker = fyne.NewAnimation(tickerCycle, func(float32) { c.tick() })
	c.ticker.RepeatCount = fyne.AnimationRepeatForever
	c.ticker.Curve = fyne.AnimationLinear

	state.On(app.EventRedraw, func(interface{}) { c.changed() })
	return c
}

// OnPointer registers a callback receiving the scene position under the mouse.
func (c *FloorplanCanvas) OnPointer(fn func(scene geometry.Point2D)) {
	c.onPointer = fn
}

// draw renders the current frame at the raster's pixel size.
func (c *FloorplanCanvas) draw(w, h int) image.Image {
	var img *image.RGBA
	c.state.Do(func(e *engine.Engine) { img = e.Render(w, h) })
	return img
}

// do runs fn against the engine and schedules a repaint.
func (c *FloorplanCanvas) do(fn func(e *engine.Engine)) {
	c.state.Do(fn)
	c.changed()
}

// changed repaints and starts the frame ticker when animations are pending.
func (c *FloorplanCanvas) changed() {
	var animating bool
	c.state.Do(func(e *engine.Engine) { animating = e.Animating() })

	c.mu.Lock()
	start := animating && !c.animating
	if start {
		c.animating = true
	}
	c.mu.Unlock()

	if start {
		c.ticker.Start()
	}
	c.raster.Refresh()
}

func (c *FloorplanCanvas) tick() {
	var animating bool
	c.state.Do(func(e *engine.Engine) { animating = e.Advance(time.Now()) })
	c.raster.Refresh()
	if animating {
		return
	}

	c.mu.Lock()
	c.animating = false
	c.mu.Unlock()
	c.ticker.Stop()
}

func point(p fyne.Position) (float64, float64) {
	return float64(p.X), float64(p.Y)
}

// Tapped handles primary clicks: drops a carried device, adds a drawing
// vertex or reports the clicked room.
func (c *FloorplanCanvas) Tapped(ev *fyne.PointEvent) {
	x, y := point(ev.Position)
	if c.state.Carrying() != "" {
		c.do(func(e *engine.Engine) {
			e.DragOver(x, y)
			e.Drop(x, y)
		})
		return
	}
	c.do(func(e *engine.Engine) { e.Click(x, y) })
}

// TappedSecondary cancels device placement or the drawing in progress.
func (c *FloorplanCanvas) TappedSecondary(*fyne.PointEvent) {
	if c.state.Carrying() != "" {
		c.state.CancelCarry()
		return
	}
	c.do(func(e *engine.Engine) { e.DisableDrawing() })
}

// DoubleTapped finalizes a polygon.
func (c *FloorplanCanvas) DoubleTapped(ev *fyne.PointEvent) {
	x, y := point(ev.Position)
	c.do(func(e *engine.Engine) { e.DoubleClick(x, y) })
}

// Scrolled zooms around the pointer. fyne reports wheel-up as positive DY.
func (c *FloorplanCanvas) Scrolled(ev *fyne.ScrollEvent) {
	x, y := point(ev.Position)
	dy := -float64(ev.Scrolled.DY)
	c.do(func(e *engine.Engine) { e.Wheel(x, y, dy) })
}

// Dragged pans the view unless a room is being drawn.
func (c *FloorplanCanvas) Dragged(ev *fyne.DragEvent) {
	dx, dy := float64(ev.Dragged.DX), float64(ev.Dragged.DY)
	c.do(func(e *engine.Engine) { e.Pan(dx, dy) })
}

func (c *FloorplanCanvas) DragEnd() {}

func (c *FloorplanCanvas) MouseIn(ev *desktop.MouseEvent) {
	c.MouseMoved(ev)
}

// MouseMoved drives the drag-over feedback for a carried device and the
// drawing guide line.
func (c *FloorplanCanvas) MouseMoved(ev *desktop.MouseEvent) {
	x, y := point(ev.Position)
	carrying := c.state.Carrying() != ""

	var scene geometry.Point2D
	c.do(func(e *engine.Engine) {
		scene = e.Viewport().ScreenToScene(x, y)
		if carrying {
			e.DragOver(x, y)
			return
		}
		e.PointerMove(x, y)
	})
	if c.onPointer != nil {
		c.onPointer(scene)
	}
}

func (c *FloorplanCanvas) MouseOut() {
	if c.state.Carrying() == "" {
		return
	}
	c.do(func(e *engine.Engine) { e.DragLeave() })
}

// EnableDrawing enters drawing mode.
func (c *FloorplanCanvas) EnableDrawing(kind engine.ShapeKind) {
	c.do(func(e *engine.Engine) { e.EnableDrawing(kind) })
}

// DisableDrawing leaves drawing mode.
func (c *FloorplanCanvas) DisableDrawing() {
	c.do(func(e *engine.Engine) { e.DisableDrawing() })
}

// ZoomIn zooms around the centre.
func (c *FloorplanCanvas) ZoomIn() {
	c.do(func(e *engine.Engine) { e.ZoomIn() })
}

// ZoomOut zooms around the centre.
func (c *FloorplanCanvas) ZoomOut() {
	c.do(func(e *engine.Engine) { e.ZoomOut() })
}

// ResetView restores scale 1 and centres the background.
func (c *FloorplanCanvas) ResetView() {
	c.do(func(e *engine.Engine) { e.ResetView() })
}

// Scale returns the current zoom scale.
func (c *FloorplanCanvas) Scale() float64 {
	var s float64
	c.state.Do(func(e *engine.Engine) { s = e.Viewport().Scale() })
	return s
}

func (c *FloorplanCanvas) resized(size fyne.Size) {
	if size == c.lastSize {
		return
	}
	c.lastSize = size
	c.do(func(e *engine.Engine) {
		e.Resize(geometry.NewSize(float64(size.Width), float64(size.Height)))
	})
}

// CreateRenderer implements fyne.Widget.
func (c *FloorplanCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &floorplanRenderer{canvas: c}
}

type floorplanRenderer struct {
	canvas *FloorplanCanvas
}

func (r *floorplanRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	r.canvas.resized(size)
}

func (r *floorplanRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

func (r *floorplanRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *floorplanRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *floorplanRenderer) Destroy() {
	r.canvas.ticker.Stop()
}
