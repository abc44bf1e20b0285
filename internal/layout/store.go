package layout

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// EventType identifies store change notifications.
type EventType int

const (
	EventRoomAdded EventType = iota
	EventRoomUpdated
	EventRoomRemoved
	EventDeviceAdded
	EventDeviceRemoved
	EventBackgroundChanged
	EventLayoutReplaced
)

func (t EventType) String() string {
	switch t {
	case EventRoomAdded:
		return "room_added"
	case EventRoomUpdated:
		return "room_updated"
	case EventRoomRemoved:
		return "room_removed"
	case EventDeviceAdded:
		return "device_added"
	case EventDeviceRemoved:
		return "device_removed"
	case EventBackgroundChanged:
		return "background_changed"
	case EventLayoutReplaced:
		return "layout_replaced"
	default:
		return "unknown"
	}
}

// Event describes one change to the store. Only the fields relevant to the
// event type are set.
type Event struct {
	Type       EventType
	Room       *Room
	Device     *Device
	ID         string
	Rooms      []Room
	Devices    []Device
	Background []byte
}

// Listener receives store events. Listeners run synchronously on the
// goroutine that mutated the store, after the store lock is released.
type Listener func(Event)

// Store is the authoritative room/device list. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	rooms      []Room
	devices    []Device
	background []byte

	listeners map[int]Listener
	nextID    int
	log       *zap.Logger
}

// NewStore creates an empty store.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		listeners: make(map[int]Listener),
		log:       log.Named("layout"),
	}
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit(ev Event) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	listeners := make([]Listener, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.RUnlock()

	s.log.Debug("store event", zap.Stringer("type", ev.Type), zap.String("id", ev.ID))
	for _, l := range listeners {
		l(ev)
	}
}

// Rooms returns a copy of the room list.
func (s *Store) Rooms() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Room, len(s.rooms))
	for i, r := range s.rooms {
		out[i] = r.Clone()
	}
	return out
}

// Room returns the room with the given id.
func (s *Store) Room(id string) (Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rooms {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return Room{}, false
}

// Devices returns a copy of the device list.
func (s *Store) Devices() []Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Device, len(s.devices))
	for i, d := range s.devices {
		out[i] = d.Clone()
	}
	return out
}

// DevicesInRoom returns the devices assigned to roomID.
func (s *Store) DevicesInRoom(roomID string) []Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Device
	for _, d := range s.devices {
		if d.RoomID == roomID {
			out = append(out, d.Clone())
		}
	}
	return out
}

// Background returns the encoded background image, or nil.
func (s *Store) Background() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

// AddRoom appends a room. An existing room with the same id is replaced.
func (s *Store) AddRoom(room Room) {
	room = room.Clone()
	s.mu.Lock()
	replaced := false
	for i, r := range s.rooms {
		if r.ID == room.ID {
			s.rooms[i] = room
			replaced = true
			break
		}
	}
	if !replaced {
		s.rooms = append(s.rooms, room)
	}
	s.mu.Unlock()

	evType := EventRoomAdded
	if replaced {
		evType = EventRoomUpdated
	}
	s.emit(Event{Type: evType, ID: room.ID, Room: &room})
}

// UpdateRoom sets a room's name and type. Returns false for an unknown id.
func (s *Store) UpdateRoom(id, name, roomType string) bool {
	s.mu.Lock()
	var updated *Room
	for i := range s.rooms {
		if s.rooms[i].ID == id {
			s.rooms[i].Name = name
			s.rooms[i].Type = roomType
			c := s.rooms[i].Clone()
			updated = &c
			break
		}
	}
	s.mu.Unlock()

	if updated == nil {
		return false
	}
	s.emit(Event{Type: EventRoomUpdated, ID: id, Room: updated})
	return true
}

// RemoveRoom deletes a room and every device assigned to it.
func (s *Store) RemoveRoom(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, r := range s.rooms {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.rooms = append(s.rooms[:idx], s.rooms[idx+1:]...)
	kept := s.devices[:0]
	for _, d := range s.devices {
		if d.RoomID != id {
			kept = append(kept, d)
		}
	}
	s.devices = kept
	s.mu.Unlock()

	s.emit(Event{Type: EventRoomRemoved, ID: id})
	return true
}

// AddDevice appends a device and records it on its room, if any.
func (s *Store) AddDevice(device Device) {
	device = device.Clone()
	s.mu.Lock()
	s.devices = append(s.devices, device)
	if device.RoomID != "" {
		for i := range s.rooms {
			if s.rooms[i].ID == device.RoomID {
				s.rooms[i].Devices = append(s.rooms[i].Devices, device.Clone())
				break
			}
		}
	}
	s.mu.Unlock()

	s.emit(Event{Type: EventDeviceAdded, ID: device.ID, Device: &device})
}

// RemoveDevice deletes a device from the device list and from its room.
func (s *Store) RemoveDevice(id string) bool {
	s.mu.Lock()
	found := false
	kept := s.devices[:0]
	for _, d := range s.devices {
		if d.ID == id {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	s.devices = kept
	for i := range s.rooms {
		devs := s.rooms[i].Devices[:0]
		for _, d := range s.rooms[i].Devices {
			if d.ID != id {
				devs = append(devs, d)
			}
		}
		s.rooms[i].Devices = devs
	}
	s.mu.Unlock()

	if found {
		s.emit(Event{Type: EventDeviceRemoved, ID: id})
	}
	return found
}

// SetBackground stores the encoded background image; nil clears it.
func (s *Store) SetBackground(data []byte) {
	s.mu.Lock()
	s.background = data
	s.mu.Unlock()
	s.emit(Event{Type: EventBackgroundChanged, Background: data})
}

// Replace swaps the whole layout in one step.
func (s *Store) Replace(rooms []Room, devices []Device, background []byte) {
	s.mu.Lock()
	s.rooms = make([]Room, len(rooms))
	for i, r := range rooms {
		s.rooms[i] = r.Clone()
	}
	s.devices = make([]Device, len(devices))
	for i, d := range devices {
		s.devices[i] = d.Clone()
	}
	s.background = background
	s.mu.Unlock()

	s.emit(Event{Type: EventLayoutReplaced, Rooms: s.Rooms(), Devices: s.Devices(), Background: background})
}

// Reset empties the store.
func (s *Store) Reset() {
	s.Replace(nil, nil, nil)
}
