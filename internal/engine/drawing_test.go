package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonGestureFinalizes(t *testing.T) {
	e, _, rec := newTestEngine(t)

	e.EnableDrawing(ShapePolygon)
	assert.Equal(t, ModePolygon, e.Mode())
	e.Click(0, 0)
	e.Click(10, 0)
	e.Click(10, 10)
	e.DoubleClick(10, 10)

	require.Len(t, rec.finalized, 1)
	room := rec.finalized[0]
	assert.Equal(t, "room-1", room.ID)
	assert.Equal(t, []float64{0, 0, 10, 0, 10, 10}, room.Points)
	assert.Equal(t, "#FF6F61", room.StrokeColor)
	assert.Equal(t, "rgba(255, 111, 97, 0.3)", room.FillColor)
	assert.Equal(t, ModeIdle, e.Mode())

	shape, ok := e.Scene().Room("room-1")
	require.True(t, ok)
	assert.True(t, shape.Pending)
	assert.Equal(t, []string{"room-1"}, e.RoomIDs())
}

func TestDoubleClickNeedsThreeVertices(t *testing.T) {
	e, _, rec := newTestEngine(t)

	e.EnableDrawing(ShapePolygon)
	e.Click(0, 0)
	e.Click(10, 0)
	e.DoubleClick(10, 0)

	assert.Empty(t, rec.finalized)
	assert.Equal(t, ModePolygon, e.Mode())
	assert.Equal(t, []float64{0, 0, 10, 0}, e.DrawingPoints(), "double click adds no vertex")

	e.Click(5, 8)
	e.DoubleClick(5, 8)
	require.Len(t, rec.finalized, 1)
	assert.Equal(t, []float64{0, 0, 10, 0, 5, 8}, rec.finalized[0].Points)
}

func TestRectangleGesture(t *testing.T) {
	e, _, rec := newTestEngine(t)

	e.EnableDrawing(ShapeRectangle)
	e.Click(10, 20)
	assert.Empty(t, rec.finalized)
	e.PointerMove(20, 30)
	assert.Equal(t, []float64{10, 20, 20, 20, 20, 30, 10, 30, 10, 20}, e.Preview())

	e.Click(30, 50)
	require.Len(t, rec.finalized, 1)
	assert.Equal(t, []float64{10, 20, 30, 20, 30, 50, 10, 50}, rec.finalized[0].Points)
	assert.Equal(t, ModeIdle, e.Mode())
}

func TestDrawingUsesSceneCoordinates(t *testing.T) {
	e, _, rec := newTestEngine(t)
	e.Pan(100, 50)

	e.EnableDrawing(ShapeRectangle)
	e.Click(100, 50)
	e.Click(120, 70)
	require.Len(t, rec.finalized, 1)
	assert.Equal(t, []float64{0, 0, 20, 0, 20, 20, 0, 20}, rec.finalized[0].Points)
}

func TestPanSuspendedWhileDrawing(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.EnableDrawing(ShapePolygon)
	assert.False(t, e.PanEnabled())
	assert.False(t, e.Pan(10, 10))
	assert.Equal(t, 0.0, e.Viewport().Offset().X)

	e.DisableDrawing()
	assert.True(t, e.Pan(10, 10))
	assert.Equal(t, 10.0, e.Viewport().Offset().X)
}

func TestEnableDrawingDiscardsPoints(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.EnableDrawing(ShapePolygon)
	e.Click(1, 1)
	e.Click(2, 2)
	e.EnableDrawing(ShapePolygon)
	assert.Empty(t, e.DrawingPoints())

	e.PointerMove(5, 5)
	assert.Empty(t, e.Preview(), "no guide before the first vertex")
	e.Click(1, 1)
	assert.Equal(t, []float64{1, 1, 5, 5}, e.Preview())
}

func TestConfirmAndCancelRoom(t *testing.T) {
	e, _, rec := newTestEngine(t)

	draw := func() string {
		e.EnableDrawing(ShapeRectangle)
		e.Click(0, 0)
		e.Click(50, 50)
		return rec.finalized[len(rec.finalized)-1].ID
	}

	first := draw()
	room, err := e.ConfirmRoom(first, "Kitchen", "Lounge")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", room.Name)
	assert.Equal(t, "#4A90E2", room.StrokeColor)
	assert.Equal(t, "rgba(74, 144, 226, 0.3)", room.FillColor)
	assert.False(t, e.CancelRoom(first), "confirmed rooms are not cancelled")

	second := draw()
	assert.True(t, e.CancelRoom(second))
	assert.Equal(t, []string{first}, e.RoomIDs())

	_, err = e.ConfirmRoom("missing", "", "")
	assert.ErrorIs(t, err, ErrUnknownRoom)
}

func TestFinalizedRoomPointsAreCopied(t *testing.T) {
	e, _, rec := newTestEngine(t)
	e.EnableDrawing(ShapeRectangle)
	e.Click(0, 0)
	e.Click(50, 50)
	require.Len(t, rec.finalized, 1)

	room := rec.finalized[0]
	want := append([]float64(nil), room.Points...)
	room.Points[0] = 999

	shape, ok := e.Scene().Room(room.ID)
	require.True(t, ok)
	assert.Equal(t, want, shape.Points)
}

func TestClickReportsRoom(t *testing.T) {
	e, _, rec := newTestEngine(t)
	require.NoError(t, e.UpsertRoom(square("a", "Office", 0, 0, 100)))

	e.Click(50, 50)
	e.Click(500, 500)
	assert.Equal(t, []string{"a"}, rec.clicked)

	e.EnableDrawing(ShapePolygon)
	e.Click(50, 50)
	assert.Equal(t, []string{"a"}, rec.clicked, "drawing clicks are vertices")
}
