// Package app ties the layout store to the canvas engine and carries the
// application-level workflows: naming drawn rooms, placing devices, and
// loading and saving layouts.
package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"floorplan-mapper/internal/config"
	"floorplan-mapper/internal/engine"
	bgimage "floorplan-mapper/internal/image"
	"floorplan-mapper/internal/layout"
	"floorplan-mapper/pkg/geometry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventType identifies application events.
type EventType int

const (
	EventLayoutLoaded EventType = iota // data: path string
	EventLayoutSaved                   // data: path string
	EventModified                      // data: bool
	EventLayoutChanged                 // data: layout.Event
	EventRoomSelected                  // data: room id string
	EventStatus                        // data: string
	EventError                         // data: error
	EventRedraw                        // data: nil
	EventCarryChanged                  // data: device type string, "" when cleared
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// RoomPrompt asks the user to name a freshly drawn room. It must call done
// exactly once; ok=false discards the room.
type RoomPrompt func(room layout.Room, done func(name, roomType string, ok bool))

// AssignPrompt asks where a dropped device goes when other rooms share the
// target room's type. sameType excludes target. It must call done exactly
// once with the chosen room ids; ok=false places nothing.
type AssignPrompt func(target layout.Room, sameType []layout.Room, done func(roomIDs []string, ok bool))

// Options configure a new State.
type Options struct {
	Config    config.Config
	Logger    *zap.Logger
	StageSize geometry.Size

	// Prompt defaults to confirming rooms without a name or type.
	Prompt RoomPrompt
	// Assign defaults to placing the device in the target room only.
	Assign AssignPrompt
}

// State owns the layout store and the engine. Engine access is serialized
// through Do; engine callbacks are deferred until the engine lock is released
// so they may touch the store freely.
type State struct {
	Config config.Config
	Store  *layout.Store

	log    *zap.Logger
	prompt RoomPrompt
	assign AssignPrompt

	engineMu sync.Mutex
	engine   *engine.Engine
	after    []func()

	mu         sync.RWMutex
	listeners  map[EventType][]EventListener
	layoutPath string
	modified   bool
	carrying   string
	placed     map[string]int
}

// NewState creates the application state.
func NewState(opts Options) *State {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &State{
		Config:    opts.Config,
		Store:     layout.NewStore(log),
		log:       log.Named("app"),
		prompt:    opts.Prompt,
		assign:    opts.Assign,
		listeners: make(map[EventType][]EventListener),
		placed:    make(map[string]int),
	}
	if s.prompt == nil {
		s.prompt = func(_ layout.Room, done func(string, string, bool)) { done("", "", true) }
	}
	if s.assign == nil {
		s.assign = func(target layout.Room, _ []layout.Room, done func([]string, bool)) {
			done([]string{target.ID}, true)
		}
	}

	s.engine = engine.New(engine.Options{
		Config:    opts.Config,
		Logger:    log,
		StageSize: opts.StageSize,
		Dispatch:  s.dispatch,
		Events: engine.Events{
			RoomFinalized:    func(room layout.Room) { s.later(func() { s.onRoomFinalized(room) }) },
			RoomClicked:      func(id string) { s.later(func() { s.Emit(EventRoomSelected, id) }) },
			DeviceDropped:    func(res engine.DropResult) { s.later(func() { s.onDeviceDropped(res) }) },
			BackgroundLoaded: func(size geometry.Size) { s.later(func() { s.onBackgroundLoaded(size) }) },
			BackgroundFailed: func(err error) { s.later(func() { s.Emit(EventError, err) }) },
		},
	})

	s.Store.Subscribe(func(ev layout.Event) {
		s.Do(func(e *engine.Engine) { e.Apply(ev) })
		s.Emit(EventLayoutChanged, ev)
		s.Emit(EventRedraw, nil)
	})
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Do runs fn with exclusive access to the engine. Engine callbacks raised
// inside fn run after the lock is released.
func (s *State) Do(fn func(e *engine.Engine)) {
	s.engineMu.Lock()
	fn(s.engine)
	after := s.after
	s.after = nil
	s.engineMu.Unlock()

	for _, f := range after {
		f()
	}
}

// later queues fn until the current Do returns. Callers hold engineMu.
func (s *State) later(fn func()) {
	s.after = append(s.after, fn)
}

// dispatch is the engine's Dispatcher: background work completes under the
// engine lock and triggers a redraw.
func (s *State) dispatch(fn func()) {
	s.Do(func(*engine.Engine) { fn() })
	s.Emit(EventRedraw, nil)
}

// SetModified records unsaved changes and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// Modified reports whether there are unsaved changes.
func (s *State) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// LayoutPath returns the path of the last opened or saved layout.
func (s *State) LayoutPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layoutPath
}

func (s *State) status(format string, args ...interface{}) {
	s.Emit(EventStatus, fmt.Sprintf(format, args...))
}

// SetPrompt replaces the room naming prompt.
func (s *State) SetPrompt(prompt RoomPrompt) {
	s.mu.Lock()
	s.prompt = prompt
	s.mu.Unlock()
}

// SetAssignPrompt replaces the prompt used when a drop has same-type rooms.
func (s *State) SetAssignPrompt(prompt AssignPrompt) {
	s.mu.Lock()
	s.assign = prompt
	s.mu.Unlock()
}

func (s *State) onRoomFinalized(room layout.Room) {
	s.mu.RLock()
	prompt := s.prompt
	s.mu.RUnlock()
	prompt(room, func(name, roomType string, ok bool) {
		if !ok {
			s.Do(func(e *engine.Engine) { e.CancelRoom(room.ID) })
			s.Emit(EventRedraw, nil)
			s.status("Room discarded")
			return
		}
		if err := s.ConfirmRoom(room.ID, name, roomType); err != nil {
			s.Emit(EventError, err)
		}
	})
}

// ConfirmRoom names a drawn room and stores it.
func (s *State) ConfirmRoom(id, name, roomType string) error {
	var (
		room layout.Room
		err  error
	)
	s.Do(func(e *engine.Engine) { room, err = e.ConfirmRoom(id, name, roomType) })
	if err != nil {
		return err
	}
	s.Store.AddRoom(room)
	s.SetModified(true)
	s.log.Info("Room added", zap.String("room_id", id), zap.String("name", name), zap.String("type", roomType))
	s.status("Added room %s", displayName(name, id))
	return nil
}

// UpdateRoom renames or retypes a stored room.
func (s *State) UpdateRoom(id, name, roomType string) error {
	if !s.Store.UpdateRoom(id, name, roomType) {
		return fmt.Errorf("update %q: %w", id, engine.ErrUnknownRoom)
	}
	s.SetModified(true)
	return nil
}

// DeleteRoom removes a room and the devices placed in it.
func (s *State) DeleteRoom(id string) error {
	if !s.Store.RemoveRoom(id) {
		return fmt.Errorf("delete %q: %w", id, engine.ErrUnknownRoom)
	}
	s.SetModified(true)
	return nil
}

// DeleteDevice removes a placed device.
func (s *State) DeleteDevice(id string) bool {
	if !s.Store.RemoveDevice(id) {
		return false
	}
	s.SetModified(true)
	return true
}

// FocusRoom selects a room and pans to it.
func (s *State) FocusRoom(id string) error {
	var err error
	s.Do(func(e *engine.Engine) { err = e.FocusRoom(id) })
	s.Emit(EventRedraw, nil)
	return err
}

// StartCarry arms placement of a device of the given type.
func (s *State) StartCarry(deviceType string) {
	s.mu.Lock()
	s.carrying = deviceType
	s.mu.Unlock()
	s.Emit(EventCarryChanged, deviceType)
}

// CancelCarry disarms device placement.
func (s *State) CancelCarry() {
	s.mu.Lock()
	was := s.carrying
	s.carrying = ""
	s.mu.Unlock()
	if was == "" {
		return
	}
	s.Do(func(e *engine.Engine) { e.DragLeave() })
	s.Emit(EventCarryChanged, "")
	s.Emit(EventRedraw, nil)
}

// Carrying returns the device type being placed, or "".
func (s *State) Carrying() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carrying
}

func (s *State) onDeviceDropped(res engine.DropResult) {
	s.mu.Lock()
	deviceType := s.carrying
	s.carrying = ""
	assign := s.assign
	s.mu.Unlock()

	if deviceType == "" {
		return
	}
	s.Emit(EventCarryChanged, "")
	if !res.HasRoom() {
		s.status("Devices must be dropped inside a room")
		return
	}

	target, ok := s.Store.Room(res.RoomID)
	sameType := s.sameTypeRooms(target)
	if !ok || len(sameType) == 0 {
		s.placeDevices(deviceType, res, []string{res.RoomID})
		return
	}
	assign(target, sameType, func(roomIDs []string, ok bool) {
		if !ok || len(roomIDs) == 0 {
			s.status("Placement of %s cancelled", deviceType)
			return
		}
		s.placeDevices(deviceType, res, roomIDs)
	})
}

// sameTypeRooms lists the stored rooms other than target sharing its type.
// Untyped rooms have no peers.
func (s *State) sameTypeRooms(target layout.Room) []layout.Room {
	if target.Type == "" {
		return nil
	}
	var rooms []layout.Room
	for _, room := range s.Store.Rooms() {
		if room.ID != target.ID && room.Type == target.Type {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

// placeDevices adds one device of deviceType to each room. The drop room gets
// the device at the drop point; the others at their centroid.
func (s *State) placeDevices(deviceType string, res engine.DropResult, roomIDs []string) {
	seen := make(map[string]bool, len(roomIDs))
	var names []string
	for _, id := range roomIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		x, y := res.X, res.Y
		if id != res.RoomID {
			room, ok := s.Store.Room(id)
			if !ok {
				s.log.Warn("Skipping unknown room for device", zap.String("room_id", id))
				continue
			}
			c := geometry.PolygonCentroid(room.Points)
			x, y = c.X, c.Y
		}

		s.mu.Lock()
		s.placed[deviceType]++
		n := s.placed[deviceType]
		s.mu.Unlock()

		device := layout.Device{
			ID:     uuid.NewString(),
			Name:   fmt.Sprintf("%s %d", deviceType, n),
			Type:   deviceType,
			RoomID: id,
		}.At(x, y)
		s.Store.AddDevice(device)
		names = append(names, device.Name)
	}
	if len(names) == 0 {
		return
	}
	s.SetModified(true)
	if len(names) == 1 {
		s.status("Placed %s", names[0])
		return
	}
	s.status("Placed %d %s devices", len(names), deviceType)
}

func (s *State) onBackgroundLoaded(size geometry.Size) {
	s.Do(func(e *engine.Engine) { e.ResetView() })
	s.Emit(EventRedraw, nil)
	s.status("Background %gx%g", size.Width, size.Height)
}

// LoadBackgroundFile stores an image file as the layout background. The
// engine decodes it asynchronously.
func (s *State) LoadBackgroundFile(path string) error {
	if !bgimage.IsSupportedFormat(path) {
		return fmt.Errorf("unsupported image format: %s", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read background: %w", err)
	}
	s.Store.SetBackground(data)
	s.SetModified(true)
	return nil
}

// LoadLayout replaces the current layout with a layout file.
func (s *State) LoadLayout(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read layout: %w", err)
	}
	if err := s.Store.Import(bytes.NewReader(data)); err != nil {
		return err
	}

	s.mu.Lock()
	s.layoutPath = path
	s.modified = false
	s.mu.Unlock()

	s.log.Info("Layout loaded", zap.String("path", path), zap.Int("rooms", len(s.Store.Rooms())))
	s.Emit(EventLayoutLoaded, path)
	return nil
}

// SaveLayout writes the current layout to path.
func (s *State) SaveLayout(path string) error {
	var buf bytes.Buffer
	if err := s.Store.Export(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}

	s.mu.Lock()
	s.layoutPath = path
	s.modified = false
	s.mu.Unlock()

	s.Emit(EventLayoutSaved, path)
	s.Emit(EventModified, false)
	return nil
}

// NewLayout clears rooms, devices and the background.
func (s *State) NewLayout() {
	s.Store.Reset()
	s.mu.Lock()
	s.layoutPath = ""
	s.mu.Unlock()
	s.SetModified(false)
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
