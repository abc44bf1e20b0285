// Package layout holds the authoritative floorplan records: rooms, devices
// and the background image.
package layout

// Room is a closed polygon region. Points is a flat x0,y0,x1,y1,... list in
// scene coordinates.
type Room struct {
	ID          string    `json:"id"`
	Points      []float64 `json:"points"`
	Devices     []Device  `json:"devices"`
	FillColor   string    `json:"fillColor"`
	StrokeColor string    `json:"strokeColor"`
	Name        string    `json:"name,omitempty"`
	Type        string    `json:"type,omitempty"`
}

// Device is a point placement, optionally inside a room.
type Device struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	RoomID string   `json:"roomId,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
}

// Positioned reports whether the device has both coordinates.
func (d Device) Positioned() bool {
	return d.X != nil && d.Y != nil
}

// Position returns the device coordinates; ok is false when unplaced.
func (d Device) Position() (x, y float64, ok bool) {
	if !d.Positioned() {
		return 0, 0, false
	}
	return *d.X, *d.Y, true
}

// At returns a copy of d placed at (x, y).
func (d Device) At(x, y float64) Device {
	d.X = &x
	d.Y = &y
	return d
}

// Clone returns a deep copy of the room.
func (r Room) Clone() Room {
	c := r
	c.Points = append([]float64(nil), r.Points...)
	c.Devices = make([]Device, len(r.Devices))
	for i, d := range r.Devices {
		c.Devices[i] = d.Clone()
	}
	return c
}

// Clone returns a deep copy of the device.
func (d Device) Clone() Device {
	c := d
	if d.X != nil {
		x := *d.X
		c.X = &x
	}
	if d.Y != nil {
		y := *d.Y
		c.Y = &y
	}
	return c
}
