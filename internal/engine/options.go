package engine

import (
	"time"

	"floorplan-mapper/internal/config"
	"floorplan-mapper/internal/layout"
	"floorplan-mapper/pkg/geometry"

	"go.uber.org/zap"
)

// Dispatcher runs fn on the engine's event context. Background work posts
// its completion through it.
type Dispatcher func(fn func())

// DropResult reports where a carried device was released.
type DropResult struct {
	X, Y   float64 // Scene coordinates
	RoomID string  // Empty when released outside every room
}

// HasRoom reports whether the drop resolved to a room.
func (d DropResult) HasRoom() bool {
	return d.RoomID != ""
}

// Events are the engine's outputs. Nil callbacks are skipped.
type Events struct {
	// RoomFinalized fires when a drawing gesture completes. The room stays
	// pending until ConfirmRoom or CancelRoom is called with its id.
	RoomFinalized func(room layout.Room)

	// RoomClicked fires when a room polygon is clicked outside drawing mode.
	RoomClicked func(id string)

	DeviceDropped    func(result DropResult)
	BackgroundLoaded func(size geometry.Size)
	BackgroundFailed func(err error)
}

// Options configure a new Engine.
type Options struct {
	Config config.Config
	Logger *zap.Logger
	Events Events

	// Dispatch defaults to an internal queue drained by RunPending.
	Dispatch Dispatcher

	// Clock defaults to time.Now.
	Clock func() time.Time

	// NewID generates room ids; defaults to random UUIDs.
	NewID func() string

	// StageSize is the initial size of the rendering surface.
	StageSize geometry.Size
}
