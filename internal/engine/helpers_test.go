package engine

import (
	"fmt"
	"testing"
	"time"

	"floorplan-mapper/internal/config"
	"floorplan-mapper/internal/layout"
	"floorplan-mapper/pkg/geometry"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Add(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

type recorder struct {
	finalized []layout.Room
	clicked   []string
	dropped   []DropResult
	loaded    []geometry.Size
	failed    []error
}

func (r *recorder) events() Events {
	return Events{
		RoomFinalized:    func(room layout.Room) { r.finalized = append(r.finalized, room) },
		RoomClicked:      func(id string) { r.clicked = append(r.clicked, id) },
		DeviceDropped:    func(res DropResult) { r.dropped = append(r.dropped, res) },
		BackgroundLoaded: func(size geometry.Size) { r.loaded = append(r.loaded, size) },
		BackgroundFailed: func(err error) { r.failed = append(r.failed, err) },
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock, *recorder) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	n := 0
	e := New(Options{
		Config:    config.Default(),
		Events:    rec.events(),
		Clock:     clock.Now,
		NewID:     func() string { n++; return fmt.Sprintf("room-%d", n) },
		StageSize: geometry.NewSize(800, 600),
	})
	return e, clock, rec
}

func square(id, roomType string, x, y, size float64) layout.Room {
	return layout.Room{
		ID:     id,
		Type:   roomType,
		Points: []float64{x, y, x + size, y, x + size, y + size, x, y + size},
	}
}

func alphaOf(v float64) uint8 {
	return uint8(v*255 + 0.5)
}
