package engine

import (
	"image/color"

	"floorplan-mapper/pkg/colorutil"
	"floorplan-mapper/pkg/geometry"
)

// Style is the fill and outline of a room shape.
type Style struct {
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
}

// lerpStyle blends two styles.
func lerpStyle(a, b Style, t float64) Style {
	return Style{
		Fill:        colorutil.Lerp(a.Fill, b.Fill, t),
		Stroke:      colorutil.Lerp(a.Stroke, b.Stroke, t),
		StrokeWidth: a.StrokeWidth + (b.StrokeWidth-a.StrokeWidth)*t,
	}
}

// RoomShape is the rendered form of a room.
type RoomShape struct {
	ID     string
	Name   string
	Type   string
	Points []float64 // Flat x0,y0,x1,y1,... in scene coordinates
	Style  Style

	// Pending is set for freshly drawn rooms awaiting confirmation.
	Pending bool
}

// Contains reports whether scene point (x, y) falls inside the shape.
func (r *RoomShape) Contains(x, y float64) bool {
	return geometry.PointInPolygon(x, y, r.Points)
}

// Centroid returns the area-weighted centroid of the shape.
func (r *RoomShape) Centroid() geometry.Point2D {
	return geometry.PolygonCentroid(r.Points)
}

// Marker is the rendered form of a placed device.
type Marker struct {
	DeviceID string
	RoomID   string
	Name     string
	X, Y     float64
}

// Scene is the registry of room shapes and device markers. Rooms keep
// registration order, which decides hit-test priority on overlap.
type Scene struct {
	rooms   map[string]*RoomShape
	order   []string
	markers []Marker
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{rooms: make(map[string]*RoomShape)}
}

// UpsertRoom registers a shape, replacing any shape with the same id in place.
func (s *Scene) UpsertRoom(shape *RoomShape) {
	if _, ok := s.rooms[shape.ID]; !ok {
		s.order = append(s.order, shape.ID)
	}
	s.rooms[shape.ID] = shape
}

// RemoveRoom drops a shape. It reports whether the id was present.
func (s *Scene) RemoveRoom(id string) bool {
	if _, ok := s.rooms[id]; !ok {
		return false
	}
	delete(s.rooms, id)
	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Room looks up a shape by id.
func (s *Scene) Room(id string) (*RoomShape, bool) {
	shape, ok := s.rooms[id]
	return shape, ok
}

// Rooms returns the shapes in registration order.
func (s *Scene) Rooms() []*RoomShape {
	out := make([]*RoomShape, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rooms[id])
	}
	return out
}

// RoomIDs returns the registered room ids in registration order.
func (s *Scene) RoomIDs() []string {
	return append([]string(nil), s.order...)
}

// RoomAt returns the first registered shape containing scene point (x, y).
func (s *Scene) RoomAt(x, y float64) *RoomShape {
	for _, id := range s.order {
		if shape := s.rooms[id]; shape.Contains(x, y) {
			return shape
		}
	}
	return nil
}

// AddMarker appends a device marker.
func (s *Scene) AddMarker(m Marker) {
	s.markers = append(s.markers, m)
}

// RemoveMarker drops every marker for a device and returns how many went.
func (s *Scene) RemoveMarker(deviceID string) int {
	return s.removeMarkers(func(m Marker) bool { return m.DeviceID == deviceID })
}

// RemoveMarkersForRoom drops the markers tagged with a room id.
func (s *Scene) RemoveMarkersForRoom(roomID string) int {
	return s.removeMarkers(func(m Marker) bool { return m.RoomID == roomID })
}

func (s *Scene) removeMarkers(match func(Marker) bool) int {
	kept := s.markers[:0]
	removed := 0
	for _, m := range s.markers {
		if match(m) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.markers = kept
	return removed
}

// Markers returns a copy of the device markers.
func (s *Scene) Markers() []Marker {
	return append([]Marker(nil), s.markers...)
}

// DeviceIDs returns the ids of devices with markers.
func (s *Scene) DeviceIDs() []string {
	ids := make([]string, 0, len(s.markers))
	for _, m := range s.markers {
		ids = append(ids, m.DeviceID)
	}
	return ids
}

// ClearRoomsAndDevices drops every shape and marker.
func (s *Scene) ClearRoomsAndDevices() {
	s.rooms = make(map[string]*RoomShape)
	s.order = nil
	s.markers = nil
}
