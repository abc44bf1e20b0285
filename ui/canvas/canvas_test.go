package canvas

import (
	"testing"

	"floorplan-mapper/internal/app"
	"floorplan-mapper/internal/config"
	"floorplan-mapper/internal/engine"
	"floorplan-mapper/internal/layout"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCanvas(t *testing.T) (*FloorplanCanvas, *app.State) {
	t.Helper()
	test.NewTempApp(t)
	s := app.NewState(app.Options{
		Config: config.Default(),
		Prompt: func(_ layout.Room, done func(string, string, bool)) { done("Room", "Office", true) },
	})
	c := NewFloorplanCanvas(s)
	c.Resize(fyne.NewSize(400, 300))
	return c, s
}

func tap(c *FloorplanCanvas, x, y float32) {
	c.Tapped(&fyne.PointEvent{Position: fyne.NewPos(x, y)})
}

func TestCanvasDrawsRectangle(t *testing.T) {
	c, s := newTestCanvas(t)

	c.EnableDrawing(engine.ShapeRectangle)
	tap(c, 10, 10)
	tap(c, 60, 40)

	rooms := s.Store.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, []float64{10, 10, 60, 10, 60, 40, 10, 40}, rooms[0].Points)
	assert.Equal(t, "Office", rooms[0].Type)
}

func TestCanvasPolygonDoubleTap(t *testing.T) {
	c, s := newTestCanvas(t)

	c.EnableDrawing(engine.ShapePolygon)
	tap(c, 0, 0)
	tap(c, 100, 0)
	tap(c, 100, 100)
	c.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(100, 100)})

	require.Len(t, s.Store.Rooms(), 1)
	assert.Equal(t, []float64{0, 0, 100, 0, 100, 100}, s.Store.Rooms()[0].Points)
}

func TestCanvasScrollZooms(t *testing.T) {
	c, _ := newTestCanvas(t)

	c.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(200, 150)},
		Scrolled:   fyne.Delta{DY: 10},
	})
	assert.InDelta(t, 1.05, c.Scale(), 1e-9)

	c.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -10}})
	c.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -10}})
	assert.InDelta(t, 1/1.05, c.Scale(), 1e-9)
}

func TestCanvasDragPans(t *testing.T) {
	c, s := newTestCanvas(t)

	c.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: 15, DY: -5}})
	s.Do(func(e *engine.Engine) {
		assert.Equal(t, 15.0, e.Viewport().Offset().X)
		assert.Equal(t, -5.0, e.Viewport().Offset().Y)
	})

	c.EnableDrawing(engine.ShapePolygon)
	c.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: 15}})
	s.Do(func(e *engine.Engine) { assert.Equal(t, 15.0, e.Viewport().Offset().X) })
}

func TestCanvasCarryAndDrop(t *testing.T) {
	c, s := newTestCanvas(t)
	c.EnableDrawing(engine.ShapeRectangle)
	tap(c, 0, 0)
	tap(c, 100, 100)

	s.StartCarry("Thermostat")
	c.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(50, 50)}})
	s.Do(func(e *engine.Engine) { assert.NotEmpty(t, e.HoveredRoom()) })

	tap(c, 50, 50)
	devices := s.Store.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, "Thermostat", devices[0].Type)
	assert.Equal(t, "", s.Carrying())
}

func TestCanvasSecondaryTapCancels(t *testing.T) {
	c, s := newTestCanvas(t)

	s.StartCarry("Light")
	c.TappedSecondary(&fyne.PointEvent{})
	assert.Equal(t, "", s.Carrying())

	c.EnableDrawing(engine.ShapePolygon)
	c.TappedSecondary(&fyne.PointEvent{})
	s.Do(func(e *engine.Engine) { assert.Equal(t, engine.ModeIdle, e.Mode()) })
}

func TestCanvasRendersAtPixelSize(t *testing.T) {
	c, _ := newTestCanvas(t)
	img := c.draw(800, 600)
	assert.Equal(t, 800, img.Bounds().Dx())
}

func TestCanvasTickerRepeats(t *testing.T) {
	c, _ := newTestCanvas(t)
	assert.Equal(t, tickerCycle, c.ticker.Duration)
	assert.Equal(t, fyne.AnimationRepeatForever, c.ticker.RepeatCount)
}
