package engine

import (
	"floorplan-mapper/pkg/colorutil"

	"go.uber.org/zap"
)

// Highlight alphas and stroke widths.
const (
	alphaTarget    = 0.32
	alphaSameType  = 0.16
	alphaDropped   = 0.28
	alphaSelected  = 0.42
	alphaPulsePeak = 0.6

	strokeTarget   = 4.0
	strokeSelected = 4.0
	strokePulseAdd = 4.0
)

func pulseKey(id string) string    { return "pulse:" + id }
func feedbackKey(id string) string { return "feedback:" + id }

// styleFor returns the palette style for a room type.
func (e *Engine) styleFor(roomType string, alpha, width float64) Style {
	hex := e.cfg.Palette.ColorFor(roomType)
	return Style{
		Fill:        colorutil.MustWithAlpha(hex, alpha, colorutil.Coral),
		Stroke:      colorutil.MustWithAlpha(hex, 1, colorutil.Coral),
		StrokeWidth: width,
	}
}

func (e *Engine) baseStyle(roomType string) Style {
	return e.styleFor(roomType, roomFillAlpha, roomStrokeBase)
}

// resetStyles restores every shape to its base appearance.
func (e *Engine) resetStyles() {
	for _, shape := range e.scene.Rooms() {
		shape.Style = e.baseStyle(shape.Type)
	}
}

// DragOver updates hover feedback for a device carried over screen point
// (px, py) and returns the room under it, if any. Styling only changes when
// the room under the pointer changes.
func (e *Engine) DragOver(px, py float64) string {
	if e.selectedRoomID != "" {
		e.resetStyles()
		e.selectedRoomID = ""
		e.hoveredRoomID = ""
	}

	p := e.view.ScreenToScene(px, py)
	target := e.scene.RoomAt(p.X, p.Y)
	id := ""
	if target != nil {
		id = target.ID
	}
	if id == e.hoveredRoomID {
		return id
	}

	e.resetStyles()
	if target != nil {
		target.Style = e.styleFor(target.Type, alphaTarget, strokeTarget)
		if target.Type != "" {
			hex := e.cfg.Palette.ColorFor(target.Type)
			for _, other := range e.scene.Rooms() {
				if other.ID != target.ID && other.Type == target.Type {
					other.Style.Fill = colorutil.MustWithAlpha(hex, alphaSameType, colorutil.Coral)
				}
			}
		}
	}
	e.hoveredRoomID = id
	return id
}

// HoveredRoom returns the room currently under a carried device.
func (e *Engine) HoveredRoom() string {
	return e.hoveredRoomID
}

// DragLeave clears hover feedback when the carried device leaves the canvas.
func (e *Engine) DragLeave() {
	if e.hoveredRoomID == "" {
		return
	}
	e.resetStyles()
	e.hoveredRoomID = ""
}

// Drop releases a carried device at screen point (px, py). The room is the
// one resolved by the last DragOver; the drop position is reported in scene
// coordinates either way.
func (e *Engine) Drop(px, py float64) DropResult {
	p := e.view.ScreenToScene(px, py)
	result := DropResult{X: p.X, Y: p.Y}

	hovered := e.hoveredRoomID
	e.resetStyles()
	e.hoveredRoomID = ""

	if shape, ok := e.scene.Room(hovered); ok {
		result.RoomID = hovered
		feedback := colorutil.MustWithAlpha(e.cfg.Palette.ColorFor(shape.Type), alphaDropped, colorutil.Coral)
		shape.Style.Fill = feedback
		e.anim.Start(feedbackKey(hovered), e.cfg.Animation.DropFeedback, nil, func() {
			if s, ok := e.scene.Room(hovered); ok && s.Style.Fill == feedback {
				s.Style = e.baseStyle(s.Type)
			}
		})
	}

	e.log.Debug("Device dropped",
		zap.Float64("x", result.X), zap.Float64("y", result.Y),
		zap.String("room_id", result.RoomID))
	if e.events.DeviceDropped != nil {
		e.events.DeviceDropped(result)
	}
	return result
}

// HighlightRoom gives a room the selection style and clears any other
// highlight. An unknown id just clears.
func (e *Engine) HighlightRoom(id string) {
	e.resetStyles()
	e.hoveredRoomID = ""
	e.selectedRoomID = ""

	shape, ok := e.scene.Room(id)
	if !ok {
		return
	}
	shape.Style = e.styleFor(shape.Type, alphaSelected, strokeSelected)
	e.selectedRoomID = id
}

// SelectedRoom returns the highlighted room id.
func (e *Engine) SelectedRoom() string {
	return e.selectedRoomID
}

// ClearHighlight restores every room to its base style.
func (e *Engine) ClearHighlight() {
	e.resetStyles()
	e.hoveredRoomID = ""
	e.selectedRoomID = ""
}

// UpdateRoomAppearance sets a room's type and restyles it from the palette.
func (e *Engine) UpdateRoomAppearance(id, roomType string) bool {
	shape, ok := e.scene.Room(id)
	if !ok {
		return false
	}
	shape.Type = roomType
	shape.Style = e.baseStyle(roomType)
	return true
}

// PulseRoom briefly emphasises a room, then restores the style it had when
// the pulse began. Pulsing a room that is already pulsing restarts the
// animation but keeps the original restore target.
func (e *Engine) PulseRoom(id string) {
	shape, ok := e.scene.Room(id)
	if !ok {
		e.log.Debug("Pulse skipped for unknown room", zap.String("room_id", id))
		return
	}

	origin, pulsing := e.pulseOrigins[id]
	if !pulsing {
		origin = shape.Style
		e.pulseOrigins[id] = origin
	}
	peak := Style{
		Fill:        colorutil.MustWithAlpha(e.cfg.Palette.ColorFor(shape.Type), alphaPulsePeak, colorutil.Coral),
		Stroke:      origin.Stroke,
		StrokeWidth: origin.StrokeWidth + strokePulseAdd,
	}
	from := shape.Style
	key := pulseKey(id)

	apply := func(s Style) {
		if shape, ok := e.scene.Room(id); ok {
			shape.Style = s
		}
	}
	e.anim.Start(key, e.cfg.Animation.PulseIn, func(t float64) {
		apply(lerpStyle(from, peak, t))
	}, func() {
		e.anim.Start(key, e.cfg.Animation.PulseOut, func(t float64) {
			apply(lerpStyle(peak, origin, t))
		}, func() {
			apply(origin)
			delete(e.pulseOrigins, id)
		})
	})
}
