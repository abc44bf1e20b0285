package engine

import (
	"floorplan-mapper/pkg/geometry"

	"go.uber.org/zap"
)

// DrawMode is the state of the drawing state machine.
type DrawMode int

const (
	ModeIdle DrawMode = iota
	ModePolygon
	ModeRectangle
)

func (m DrawMode) String() string {
	switch m {
	case ModePolygon:
		return "polygon"
	case ModeRectangle:
		return "rectangle"
	default:
		return "idle"
	}
}

// ShapeKind selects which gesture drawing mode records.
type ShapeKind int

const (
	ShapePolygon ShapeKind = iota
	ShapeRectangle
)

// drawing accumulates vertices for an in-progress room.
type drawing struct {
	mode   DrawMode
	points []float64
	cursor *geometry.Point2D
}

func (d *drawing) active() bool {
	return d.mode != ModeIdle
}

func (d *drawing) reset(mode DrawMode) {
	d.mode = mode
	d.points = nil
	d.cursor = nil
}

// click records one vertex. For rectangles it returns the four corners once
// both the anchor and the opposite corner are known.
func (d *drawing) click(p geometry.Point2D) (corners []float64, done bool) {
	switch d.mode {
	case ModePolygon:
		d.points = append(d.points, p.X, p.Y)
	case ModeRectangle:
		if len(d.points) == 0 {
			d.points = []float64{p.X, p.Y}
			return nil, false
		}
		anchor := geometry.NewPoint2D(d.points[0], d.points[1])
		return geometry.RectangleCorners(anchor, p), true
	}
	return nil, false
}

// preview returns the guide polyline for the current gesture in scene
// coordinates, including the hover cursor when known.
func (d *drawing) preview() []float64 {
	switch d.mode {
	case ModePolygon:
		out := append([]float64(nil), d.points...)
		if d.cursor != nil && len(out) > 0 {
			out = append(out, d.cursor.X, d.cursor.Y)
		}
		return out
	case ModeRectangle:
		if len(d.points) == 2 && d.cursor != nil {
			corners := geometry.RectangleCorners(geometry.NewPoint2D(d.points[0], d.points[1]), *d.cursor)
			return append(corners, corners[0], corners[1])
		}
		return append([]float64(nil), d.points...)
	}
	return nil
}

// EnableDrawing enters drawing mode. Any in-progress points are discarded
// and panning is suspended until drawing ends.
func (e *Engine) EnableDrawing(kind ShapeKind) {
	mode := ModePolygon
	if kind == ShapeRectangle {
		mode = ModeRectangle
	}
	e.draw.reset(mode)
	e.log.Debug("Drawing enabled", zap.Stringer("mode", mode))
}

// DisableDrawing leaves drawing mode, discarding any in-progress points.
func (e *Engine) DisableDrawing() {
	if !e.draw.active() {
		return
	}
	e.draw.reset(ModeIdle)
	e.log.Debug("Drawing disabled")
}

// Mode returns the current drawing mode.
func (e *Engine) Mode() DrawMode {
	return e.draw.mode
}

// DrawingPoints returns the vertices recorded so far.
func (e *Engine) DrawingPoints() []float64 {
	return append([]float64(nil), e.draw.points...)
}

// Preview returns the guide polyline shown while drawing.
func (e *Engine) Preview() []float64 {
	return e.draw.preview()
}

// PointerMove updates the drawing guide with the hover position.
func (e *Engine) PointerMove(px, py float64) {
	if !e.draw.active() {
		return
	}
	p := e.view.ScreenToScene(px, py)
	e.draw.cursor = &p
}

// finishDrawing turns the recorded points into a pending room. Fewer than
// three vertices keeps drawing mode active.
func (e *Engine) finishDrawing(points []float64) bool {
	if len(points) < 6 {
		e.log.Debug("Ignoring finalize with too few vertices", zap.Int("vertices", len(points)/2))
		return false
	}
	room := e.newPendingRoom(points)
	e.draw.reset(ModeIdle)
	e.log.Info("Room drawn", zap.String("room_id", room.ID), zap.Int("vertices", len(points)/2))
	if e.events.RoomFinalized != nil {
		e.events.RoomFinalized(room)
	}
	return true
}
