// Package engine is the interactive floorplan canvas: viewport, room and
// device registry, drawing gestures, drag-and-drop hit testing, highlight
// animation and background image handling. It is toolkit-agnostic; a host
// forwards pointer input and paints the frames returned by Render.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"floorplan-mapper/internal/config"
	bgimage "floorplan-mapper/internal/image"
	"floorplan-mapper/internal/layout"
	"floorplan-mapper/pkg/colorutil"
	"floorplan-mapper/pkg/geometry"

	"github.com/gogpu/gg"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	centerKey      = "viewport:center"
	defaultStroke  = "#000000"
	roomFillAlpha  = 0.3
	roomStrokeBase = 2.0
)

// Engine owns the canvas state. It is not safe for concurrent use; every
// method must run on the host's event context, which is also where the
// Dispatcher delivers background completions.
type Engine struct {
	cfg    config.Config
	log    *zap.Logger
	events Events
	clock  func() time.Time
	newID  func() string

	dispatch Dispatcher
	pending  *pendingQueue

	view  *Viewport
	scene *Scene
	draw  drawing
	anim  *Animator

	hoveredRoomID  string
	selectedRoomID string
	pulseOrigins   map[string]Style

	background    *bgimage.Layer
	backgroundBuf *gg.ImageBuf
	bgGeneration  uint64
}

// New creates an engine.
func New(opts Options) *Engine {
	cfg := opts.Config.WithDefaults()
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}

	e := &Engine{
		cfg:          cfg,
		log:          log.Named("engine"),
		events:       opts.Events,
		clock:        clock,
		newID:        newID,
		view:         NewViewport(cfg.Viewport, opts.StageSize),
		scene:        NewScene(),
		anim:         NewAnimator(clock),
		pulseOrigins: make(map[string]Style),
	}
	if opts.Dispatch != nil {
		e.dispatch = opts.Dispatch
	} else {
		e.pending = &pendingQueue{}
		e.dispatch = e.pending.post
	}
	return e
}

// pendingQueue collects dispatched work until RunPending drains it.
type pendingQueue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *pendingQueue) post(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *pendingQueue) drain() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	fns := q.fns
	q.fns = nil
	return fns
}

// RunPending runs work posted through the default dispatcher and returns how
// many functions ran. It is a no-op when a custom Dispatcher was supplied.
func (e *Engine) RunPending() int {
	if e.pending == nil {
		return 0
	}
	fns := e.pending.drain()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Viewport exposes the viewport for coordinate conversion.
func (e *Engine) Viewport() *Viewport {
	return e.view
}

// Scene exposes the shape registry.
func (e *Engine) Scene() *Scene {
	return e.scene
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Click handles a primary click at screen coordinates. While drawing it
// records a vertex; otherwise it reports the clicked room, if any.
func (e *Engine) Click(px, py float64) {
	p := e.view.ScreenToScene(px, py)
	if e.draw.active() {
		if corners, done := e.draw.click(p); done {
			e.finishDrawing(corners)
		}
		return
	}
	if shape := e.scene.RoomAt(p.X, p.Y); shape != nil && e.events.RoomClicked != nil {
		e.events.RoomClicked(shape.ID)
	}
}

// DoubleClick finalizes a polygon gesture. The double click itself adds no
// vertex; with fewer than three vertices drawing continues.
func (e *Engine) DoubleClick(px, py float64) {
	if e.draw.mode != ModePolygon {
		return
	}
	e.finishDrawing(e.draw.points)
}

// Wheel zooms around the pointer. Positive deltaY zooms out.
func (e *Engine) Wheel(px, py, deltaY float64) {
	dir := 0
	switch {
	case deltaY > 0:
		dir = 1
	case deltaY < 0:
		dir = -1
	}
	e.anim.Cancel(centerKey)
	e.view.ZoomAt(geometry.NewPoint2D(px, py), dir)
}

// Pan drags the viewport. It is refused while drawing.
func (e *Engine) Pan(dx, dy float64) bool {
	if e.draw.active() {
		return false
	}
	e.anim.Cancel(centerKey)
	e.view.Pan(dx, dy)
	return true
}

// PanEnabled reports whether dragging pans the view.
func (e *Engine) PanEnabled() bool {
	return !e.draw.active()
}

// ZoomIn zooms one step around the stage centre.
func (e *Engine) ZoomIn() {
	e.anim.Cancel(centerKey)
	e.view.ZoomIn()
}

// ZoomOut zooms one step around the stage centre.
func (e *Engine) ZoomOut() {
	e.anim.Cancel(centerKey)
	e.view.ZoomOut()
}

// ResetView restores scale 1 and centres the background.
func (e *Engine) ResetView() {
	e.anim.Cancel(centerKey)
	e.view.ResetView(e.BackgroundSize())
}

// Resize updates the stage size.
func (e *Engine) Resize(size geometry.Size) {
	e.view.Resize(size)
}

// CenterOn pans so scene point (x, y) sits at the stage centre, animated
// over the configured duration when animate is set.
func (e *Engine) CenterOn(x, y float64, animate bool) {
	e.centerOn(x, y, animate, nil)
}

func (e *Engine) centerOn(x, y float64, animate bool, then func()) {
	target := e.view.CenterTarget(x, y)
	if !animate {
		e.anim.Cancel(centerKey)
		e.view.SetOffset(target)
		if then != nil {
			then()
		}
		return
	}
	from := e.view.Offset()
	e.anim.Start(centerKey, e.cfg.Animation.CenterOn, func(t float64) {
		e.view.SetOffset(from.Lerp(target, t))
	}, then)
}

// FocusRoom selects a room, pans to its centroid and pulses it once the
// pan completes.
func (e *Engine) FocusRoom(id string) error {
	shape, ok := e.scene.Room(id)
	if !ok {
		return fmt.Errorf("focus %q: %w", id, ErrUnknownRoom)
	}
	e.HighlightRoom(id)
	c := shape.Centroid()
	e.centerOn(c.X, c.Y, true, func() { e.PulseRoom(id) })
	return nil
}

// Advance steps running animations to now and reports whether any remain.
func (e *Engine) Advance(now time.Time) bool {
	return e.anim.Advance(now)
}

// Animating reports whether a frame loop is needed.
func (e *Engine) Animating() bool {
	return e.anim.Active()
}

// UpsertRoom registers or replaces a room's shape from its record.
func (e *Engine) UpsertRoom(room layout.Room) error {
	if !geometry.IsClosedPolygon(room.Points) {
		return fmt.Errorf("room %q with %d coordinates: %w", room.ID, len(room.Points), ErrMalformedRoom)
	}
	e.scene.UpsertRoom(&RoomShape{
		ID:     room.ID,
		Name:   room.Name,
		Type:   room.Type,
		Points: append([]float64(nil), room.Points...),
		Style:  e.recordStyle(room),
	})
	return nil
}

// RemoveRoom drops a room shape and its device markers.
func (e *Engine) RemoveRoom(id string) bool {
	e.scene.RemoveMarkersForRoom(id)
	if !e.scene.RemoveRoom(id) {
		return false
	}
	if e.hoveredRoomID == id {
		e.hoveredRoomID = ""
	}
	if e.selectedRoomID == id {
		e.selectedRoomID = ""
	}
	delete(e.pulseOrigins, id)
	e.anim.Cancel(pulseKey(id))
	e.anim.Cancel(feedbackKey(id))
	return true
}

// ConfirmRoom completes a drawn room with its name and type and returns
// the record to persist.
func (e *Engine) ConfirmRoom(id, name, roomType string) (layout.Room, error) {
	shape, ok := e.scene.Room(id)
	if !ok {
		return layout.Room{}, fmt.Errorf("confirm %q: %w", id, ErrUnknownRoom)
	}
	shape.Name = name
	shape.Type = roomType
	shape.Pending = false
	shape.Style = e.baseStyle(roomType)
	return layout.Room{
		ID:          id,
		Points:      append([]float64(nil), shape.Points...),
		Devices:     []layout.Device{},
		FillColor:   colorutil.Format(shape.Style.Fill),
		StrokeColor: e.cfg.Palette.ColorFor(roomType),
		Name:        name,
		Type:        roomType,
	}, nil
}

// CancelRoom discards a drawn room that was never confirmed.
func (e *Engine) CancelRoom(id string) bool {
	shape, ok := e.scene.Room(id)
	if !ok || !shape.Pending {
		return false
	}
	return e.RemoveRoom(id)
}

// newPendingRoom registers a freshly drawn room in the default color.
func (e *Engine) newPendingRoom(points []float64) layout.Room {
	stroke := e.cfg.Palette.Default
	room := layout.Room{
		ID:          e.newID(),
		Points:      append([]float64(nil), points...),
		Devices:     []layout.Device{},
		StrokeColor: stroke,
	}
	room.FillColor, _ = colorutil.RGBAString(stroke, roomFillAlpha)
	e.scene.UpsertRoom(&RoomShape{
		ID:      room.ID,
		Points:  append([]float64(nil), points...),
		Style:   e.baseStyle(""),
		Pending: true,
	})
	return room
}

// AddDeviceMarker draws a marker for a placed device, replacing any marker
// it already has. Unplaced devices are ignored.
func (e *Engine) AddDeviceMarker(device layout.Device) bool {
	x, y, ok := device.Position()
	if !ok {
		return false
	}
	e.scene.RemoveMarker(device.ID)
	e.scene.AddMarker(Marker{
		DeviceID: device.ID,
		RoomID:   device.RoomID,
		Name:     device.Name,
		X:        x,
		Y:        y,
	})
	return true
}

// RemoveDeviceMarker drops a device's marker.
func (e *Engine) RemoveDeviceMarker(id string) bool {
	return e.scene.RemoveMarker(id) > 0
}

// LoadFromLayout replaces every shape and marker. Malformed rooms and
// unplaced devices are skipped.
func (e *Engine) LoadFromLayout(rooms []layout.Room, devices []layout.Device) {
	e.ClearRoomsAndDevices()

	for _, room := range rooms {
		if err := e.UpsertRoom(room); err != nil {
			e.log.Warn("Skipping room", zap.String("room_id", room.ID), zap.Error(err))
		}
	}

	// Devices nested in room records are merged by layout.Decode; only the
	// device list is rendered.
	for _, d := range devices {
		e.AddDeviceMarker(d)
	}
	e.log.Info("Layout loaded",
		zap.Int("rooms", len(e.scene.RoomIDs())),
		zap.Int("markers", len(e.scene.Markers())))
}

// ClearRoomsAndDevices drops every shape and marker but keeps the background.
func (e *Engine) ClearRoomsAndDevices() {
	for _, id := range e.scene.RoomIDs() {
		e.anim.Cancel(pulseKey(id))
		e.anim.Cancel(feedbackKey(id))
	}
	e.scene.ClearRoomsAndDevices()
	e.hoveredRoomID = ""
	e.selectedRoomID = ""
	e.pulseOrigins = make(map[string]Style)
}

// ClearAll drops shapes, markers, the background and any drawing gesture.
func (e *Engine) ClearAll() {
	e.ClearRoomsAndDevices()
	e.DisableDrawing()
	e.SetBackground(nil)
}

// RoomIDs returns registered room ids in registration order.
func (e *Engine) RoomIDs() []string {
	return e.scene.RoomIDs()
}

// DeviceIDs returns the ids of devices with markers.
func (e *Engine) DeviceIDs() []string {
	return e.scene.DeviceIDs()
}

// Apply mirrors a layout store change into the scene.
func (e *Engine) Apply(ev layout.Event) {
	switch ev.Type {
	case layout.EventRoomAdded:
		if ev.Room != nil {
			e.upsertLogged(*ev.Room)
		}
	case layout.EventRoomUpdated:
		if ev.Room != nil {
			e.upsertLogged(*ev.Room)
			e.UpdateRoomAppearance(ev.Room.ID, ev.Room.Type)
		}
	case layout.EventRoomRemoved:
		e.RemoveRoom(ev.ID)
	case layout.EventDeviceAdded:
		if ev.Device != nil {
			e.AddDeviceMarker(*ev.Device)
		}
	case layout.EventDeviceRemoved:
		e.RemoveDeviceMarker(ev.ID)
	case layout.EventBackgroundChanged:
		e.applyBackground(ev.Background)
	case layout.EventLayoutReplaced:
		e.LoadFromLayout(ev.Rooms, ev.Devices)
		e.applyBackground(ev.Background)
	}
}

func (e *Engine) upsertLogged(room layout.Room) {
	if err := e.UpsertRoom(room); err != nil {
		e.log.Warn("Skipping room", zap.String("room_id", room.ID), zap.Error(err))
	}
}

func (e *Engine) applyBackground(data []byte) {
	if len(data) == 0 {
		e.SetBackground(nil)
		return
	}
	e.LoadBackground(context.Background(), bytes.NewReader(data))
}

// recordStyle derives a shape style from a room record's colors. A missing
// fill is the stroke color at base alpha.
func (e *Engine) recordStyle(room layout.Room) Style {
	strokeHex := room.StrokeColor
	if strokeHex == "" {
		strokeHex = defaultStroke
	}
	stroke, err := colorutil.Parse(strokeHex)
	if err != nil {
		e.log.Debug("Bad stroke color", zap.String("room_id", room.ID), zap.Error(err))
		stroke = colorutil.Black
	}
	fill, err := colorutil.Parse(room.FillColor)
	if err != nil {
		fill = stroke
		fill.A = uint8(roomFillAlpha*255 + 0.5)
	}
	return Style{Fill: fill, Stroke: stroke, StrokeWidth: roomStrokeBase}
}
