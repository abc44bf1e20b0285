package app

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"floorplan-mapper/internal/config"
	"floorplan-mapper/internal/engine"
	"floorplan-mapper/internal/layout"
	"floorplan-mapper/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answer struct {
	name, roomType string
	ok             bool
}

func newTestState(t *testing.T, reply answer) *State {
	t.Helper()
	return NewState(Options{
		Config:    config.Default(),
		StageSize: geometry.NewSize(800, 600),
		Prompt: func(_ layout.Room, done func(string, string, bool)) {
			done(reply.name, reply.roomType, reply.ok)
		},
	})
}

func drawRect(s *State, x, y, size float64) {
	s.Do(func(e *engine.Engine) {
		e.EnableDrawing(engine.ShapeRectangle)
		e.Click(x, y)
		e.Click(x+size, y+size)
	})
}

func TestDrawnRoomIsStored(t *testing.T) {
	s := newTestState(t, answer{"Kitchen", "Lounge", true})
	var modified []bool
	s.On(EventModified, func(d interface{}) { modified = append(modified, d.(bool)) })

	drawRect(s, 0, 0, 100)

	rooms := s.Store.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "Kitchen", rooms[0].Name)
	assert.Equal(t, "Lounge", rooms[0].Type)
	assert.Equal(t, []float64{0, 0, 100, 0, 100, 100, 0, 100}, rooms[0].Points)
	assert.True(t, s.Modified())
	assert.Equal(t, []bool{true}, modified)

	s.Do(func(e *engine.Engine) {
		shape, ok := e.Scene().Room(rooms[0].ID)
		require.True(t, ok)
		assert.False(t, shape.Pending)
	})
}

func TestCancelledRoomIsDiscarded(t *testing.T) {
	s := newTestState(t, answer{ok: false})
	drawRect(s, 0, 0, 100)

	assert.Empty(t, s.Store.Rooms())
	s.Do(func(e *engine.Engine) { assert.Empty(t, e.RoomIDs()) })
}

func TestDropPlacesCarriedDevice(t *testing.T) {
	s := newTestState(t, answer{"Hall", "Office", true})
	drawRect(s, 0, 0, 100)
	roomID := s.Store.Rooms()[0].ID

	var statuses []string
	s.On(EventStatus, func(d interface{}) { statuses = append(statuses, d.(string)) })

	s.StartCarry("Sensor")
	s.Do(func(e *engine.Engine) {
		e.DragOver(40, 60)
		e.Drop(40, 60)
	})

	devices := s.Store.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, "Sensor 1", devices[0].Name)
	assert.Equal(t, roomID, devices[0].RoomID)
	x, y, ok := devices[0].Position()
	require.True(t, ok)
	assert.Equal(t, 40.0, x)
	assert.Equal(t, 60.0, y)
	assert.Equal(t, "", s.Carrying())
	assert.Contains(t, statuses, "Placed Sensor 1")

	s.Do(func(e *engine.Engine) { assert.Equal(t, []string{devices[0].ID}, e.DeviceIDs()) })
}

func TestDropAssignsSameTypeRooms(t *testing.T) {
	s := newTestState(t, answer{"Office", "Office", true})
	drawRect(s, 0, 0, 100)
	drawRect(s, 200, 0, 100)
	drawRect(s, 400, 0, 100)
	rooms := s.Store.Rooms()
	require.Len(t, rooms, 3)
	require.NoError(t, s.UpdateRoom(rooms[2].ID, "Lobby", "Lounge"))

	var gotTarget string
	var gotSameType []string
	s.SetAssignPrompt(func(target layout.Room, sameType []layout.Room, done func([]string, bool)) {
		gotTarget = target.ID
		ids := []string{target.ID}
		for _, r := range sameType {
			gotSameType = append(gotSameType, r.ID)
			ids = append(ids, r.ID)
		}
		done(ids, true)
	})

	s.StartCarry("Light")
	s.Do(func(e *engine.Engine) {
		e.DragOver(20, 30)
		e.Drop(20, 30)
	})

	assert.Equal(t, rooms[0].ID, gotTarget)
	assert.Equal(t, []string{rooms[1].ID}, gotSameType)

	devices := s.Store.Devices()
	require.Len(t, devices, 2)
	byRoom := make(map[string]layout.Device)
	for _, d := range devices {
		byRoom[d.RoomID] = d
	}
	x, y, _ := byRoom[rooms[0].ID].Position()
	assert.Equal(t, []float64{20, 30}, []float64{x, y})
	x, y, _ = byRoom[rooms[1].ID].Position()
	assert.InDelta(t, 250.0, x, 1e-9)
	assert.InDelta(t, 50.0, y, 1e-9)
	assert.NotEqual(t, devices[0].ID, devices[1].ID)
	assert.ElementsMatch(t, []string{"Light 1", "Light 2"}, []string{devices[0].Name, devices[1].Name})
	assert.True(t, s.Modified())

	s.Do(func(e *engine.Engine) { assert.Len(t, e.DeviceIDs(), 2) })
}

func TestDropAssignCancelAddsNothing(t *testing.T) {
	s := newTestState(t, answer{"Office", "Office", true})
	drawRect(s, 0, 0, 100)
	drawRect(s, 200, 0, 100)
	s.SetModified(false)

	var statuses []string
	s.On(EventStatus, func(d interface{}) { statuses = append(statuses, d.(string)) })
	calls := 0
	s.SetAssignPrompt(func(_ layout.Room, _ []layout.Room, done func([]string, bool)) {
		calls++
		done(nil, false)
	})

	s.StartCarry("Camera")
	s.Do(func(e *engine.Engine) {
		e.DragOver(50, 50)
		e.Drop(50, 50)
	})

	assert.Equal(t, 1, calls)
	assert.Empty(t, s.Store.Devices())
	assert.False(t, s.Modified())
	assert.Equal(t, "", s.Carrying())
	assert.Contains(t, statuses, "Placement of Camera cancelled")
}

func TestDropOutsideRoomIsRejected(t *testing.T) {
	s := newTestState(t, answer{ok: true})
	drawRect(s, 0, 0, 100)

	var statuses []string
	s.On(EventStatus, func(d interface{}) { statuses = append(statuses, d.(string)) })

	s.StartCarry("Light")
	s.Do(func(e *engine.Engine) {
		e.DragOver(400, 400)
		e.Drop(400, 400)
	})
	assert.Empty(t, s.Store.Devices())
	assert.Equal(t, []string{"Devices must be dropped inside a room"}, statuses)
}

func TestDeleteRoomRemovesDevices(t *testing.T) {
	s := newTestState(t, answer{ok: true})
	drawRect(s, 0, 0, 100)
	id := s.Store.Rooms()[0].ID
	s.StartCarry("Camera")
	s.Do(func(e *engine.Engine) {
		e.DragOver(10, 10)
		e.Drop(10, 10)
	})

	require.NoError(t, s.DeleteRoom(id))
	assert.Empty(t, s.Store.Devices())
	s.Do(func(e *engine.Engine) {
		assert.Empty(t, e.RoomIDs())
		assert.Empty(t, e.DeviceIDs())
	})
	assert.ErrorIs(t, s.DeleteRoom(id), engine.ErrUnknownRoom)
}

func TestRoomClickSelects(t *testing.T) {
	s := newTestState(t, answer{ok: true})
	drawRect(s, 0, 0, 100)

	var selected []string
	s.On(EventRoomSelected, func(d interface{}) { selected = append(selected, d.(string)) })
	s.Do(func(e *engine.Engine) { e.Click(50, 50) })
	assert.Equal(t, []string{s.Store.Rooms()[0].ID}, selected)
}

func TestSaveAndLoadLayout(t *testing.T) {
	s := newTestState(t, answer{"Den", "Office", true})
	drawRect(s, 10, 10, 50)
	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, s.SaveLayout(path))
	assert.False(t, s.Modified())
	assert.Equal(t, path, s.LayoutPath())

	other := newTestState(t, answer{ok: true})
	var loaded []string
	other.On(EventLayoutLoaded, func(d interface{}) { loaded = append(loaded, d.(string)) })
	require.NoError(t, other.LoadLayout(path))
	assert.Equal(t, []string{path}, loaded)
	require.Len(t, other.Store.Rooms(), 1)
	assert.Equal(t, "Den", other.Store.Rooms()[0].Name)
	other.Do(func(e *engine.Engine) { assert.Len(t, e.RoomIDs(), 1) })

	other.NewLayout()
	assert.Empty(t, other.Store.Rooms())
	assert.Equal(t, "", other.LayoutPath())
}

func TestLoadBackgroundFile(t *testing.T) {
	s := newTestState(t, answer{ok: true})

	var mu sync.Mutex
	var statuses []string
	s.On(EventStatus, func(d interface{}) {
		mu.Lock()
		statuses = append(statuses, d.(string))
		mu.Unlock()
	})

	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "plan.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	require.NoError(t, s.LoadBackgroundFile(path))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(statuses) > 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "Background 40x20", statuses[0])

	s.Do(func(e *engine.Engine) {
		assert.Equal(t, &geometry.Size{Width: 40, Height: 20}, e.BackgroundSize())
		assert.Equal(t, geometry.NewPoint2D(380, 290), e.Viewport().Offset())
	})

	assert.Error(t, s.LoadBackgroundFile(filepath.Join(t.TempDir(), "plan.txt")))
}
