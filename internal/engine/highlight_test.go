package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeRooms(t *testing.T, e *Engine) {
	t.Helper()
	require.NoError(t, e.UpsertRoom(square("a", "Office", 0, 0, 100)))
	require.NoError(t, e.UpsertRoom(square("b", "Office", 200, 0, 100)))
	require.NoError(t, e.UpsertRoom(square("c", "Lounge", 400, 0, 100)))
}

func style(t *testing.T, e *Engine, id string) Style {
	t.Helper()
	shape, ok := e.Scene().Room(id)
	require.True(t, ok)
	return shape.Style
}

func TestDragOverHighlightsTargetAndSameType(t *testing.T) {
	e, _, _ := newTestEngine(t)
	threeRooms(t, e)

	assert.Equal(t, "a", e.DragOver(50, 50))

	a := style(t, e, "a")
	assert.Equal(t, alphaOf(0.32), a.Fill.A)
	assert.Equal(t, 4.0, a.StrokeWidth)

	b := style(t, e, "b")
	assert.Equal(t, alphaOf(0.16), b.Fill.A)
	assert.Equal(t, 2.0, b.StrokeWidth)

	c := style(t, e, "c")
	assert.Equal(t, e.baseStyle("Lounge"), c)

	assert.Equal(t, "", e.DragOver(150, 50))
	for _, id := range []string{"a", "b"} {
		assert.Equal(t, e.baseStyle("Office"), style(t, e, id))
	}
}

func TestDragOverOverlapPrefersFirstRegistered(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.UpsertRoom(square("first", "", 0, 0, 100)))
	require.NoError(t, e.UpsertRoom(square("second", "", 50, 50, 100)))

	assert.Equal(t, "first", e.DragOver(75, 75))
}

func TestDropReportsHoveredRoom(t *testing.T) {
	e, clock, rec := newTestEngine(t)
	threeRooms(t, e)
	e.Pan(10, 0)

	e.DragOver(60, 50)
	res := e.Drop(60, 50)
	assert.Equal(t, DropResult{X: 50, Y: 50, RoomID: "a"}, res)
	require.Len(t, rec.dropped, 1)
	assert.True(t, rec.dropped[0].HasRoom())
	assert.Equal(t, "", e.HoveredRoom())

	a := style(t, e, "a")
	assert.Equal(t, alphaOf(0.28), a.Fill.A)
	assert.Equal(t, e.baseStyle("Office"), style(t, e, "b"))

	e.Advance(clock.Add(400 * time.Millisecond))
	assert.Equal(t, e.baseStyle("Office"), style(t, e, "a"))
}

func TestDropOutsideRooms(t *testing.T) {
	e, _, rec := newTestEngine(t)
	threeRooms(t, e)

	e.DragOver(150, 50)
	res := e.Drop(150, 50)
	assert.False(t, res.HasRoom())
	assert.Equal(t, 150.0, res.X)
	require.Len(t, rec.dropped, 1)
}

func TestDragLeaveClears(t *testing.T) {
	e, _, _ := newTestEngine(t)
	threeRooms(t, e)

	e.DragOver(50, 50)
	e.DragLeave()
	assert.Equal(t, "", e.HoveredRoom())
	assert.Equal(t, e.baseStyle("Office"), style(t, e, "a"))
	assert.Equal(t, e.baseStyle("Office"), style(t, e, "b"))
}

func TestSelectionAndHoverAreExclusive(t *testing.T) {
	e, _, _ := newTestEngine(t)
	threeRooms(t, e)

	e.DragOver(50, 50)
	e.HighlightRoom("c")
	assert.Equal(t, "", e.HoveredRoom())
	assert.Equal(t, "c", e.SelectedRoom())
	assert.Equal(t, e.baseStyle("Office"), style(t, e, "a"))
	assert.Equal(t, e.baseStyle("Office"), style(t, e, "b"))
	c := style(t, e, "c")
	assert.Equal(t, alphaOf(0.42), c.Fill.A)
	assert.Equal(t, 4.0, c.StrokeWidth)

	e.DragOver(250, 50)
	assert.Equal(t, "", e.SelectedRoom())
	assert.Equal(t, e.baseStyle("Lounge"), style(t, e, "c"))
	assert.Equal(t, alphaOf(0.32), style(t, e, "b").Fill.A)

	e.HighlightRoom("a")
	e.ClearHighlight()
	assert.Equal(t, "", e.SelectedRoom())
	assert.Equal(t, e.baseStyle("Office"), style(t, e, "a"))
}

func TestUpdateRoomAppearance(t *testing.T) {
	e, _, _ := newTestEngine(t)
	threeRooms(t, e)

	assert.True(t, e.UpdateRoomAppearance("a", "Washroom"))
	assert.Equal(t, e.baseStyle("Washroom"), style(t, e, "a"))
	assert.False(t, e.UpdateRoomAppearance("missing", "Office"))
}

func TestPulseRestoresOriginalStyle(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	threeRooms(t, e)
	e.HighlightRoom("a")
	selected := style(t, e, "a")

	e.PulseRoom("a")
	assert.True(t, e.Animating())
	e.Advance(clock.Add(90 * time.Millisecond))
	mid := style(t, e, "a")
	assert.Greater(t, mid.Fill.A, selected.Fill.A)

	// A second pulse mid-flight keeps the first restore target.
	e.PulseRoom("a")
	e.Advance(clock.Add(180 * time.Millisecond))
	peak := style(t, e, "a")
	assert.Equal(t, alphaOf(0.6), peak.Fill.A)
	assert.Equal(t, selected.StrokeWidth+4, peak.StrokeWidth)

	e.Advance(clock.Add(280 * time.Millisecond))
	assert.Equal(t, selected, style(t, e, "a"))
	assert.False(t, e.Animating())
}

func TestPulseUnknownRoomIsNoop(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.PulseRoom("missing")
	assert.False(t, e.Animating())
}

func TestPulseSurvivesRoomRemoval(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	threeRooms(t, e)

	e.PulseRoom("a")
	e.RemoveRoom("a")
	assert.NotPanics(t, func() { e.Advance(clock.Add(time.Second)) })
	assert.Equal(t, []string{"b", "c"}, e.RoomIDs())
}
