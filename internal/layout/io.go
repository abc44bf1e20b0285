package layout

import (
	"encoding/json"
	"fmt"
	"io"

	bgimage "floorplan-mapper/internal/image"
)

// File is the JSON document exchanged by Import and Export.
type File struct {
	Rooms           []Room   `json:"rooms"`
	Devices         []Device `json:"devices"`
	BackgroundImage *string  `json:"backgroundImage"`
}

// Decode parses a layout document. Devices listed on rooms are merged into
// the top-level list, de-duplicated by id; top-level entries win.
func Decode(r io.Reader) (rooms []Room, devices []Device, background []byte, err error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	rooms = f.Rooms
	if rooms == nil {
		rooms = []Room{}
	}
	for i := range rooms {
		if rooms[i].Devices == nil {
			rooms[i].Devices = []Device{}
		}
	}

	seen := make(map[string]bool)
	for _, d := range f.Devices {
		if d.ID == "" || seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		devices = append(devices, d)
	}
	for _, room := range rooms {
		for _, d := range room.Devices {
			if d.ID == "" || seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			devices = append(devices, d)
		}
	}

	if f.BackgroundImage != nil && *f.BackgroundImage != "" {
		background, err = bgimage.DataURLBytes(*f.BackgroundImage)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to read background image: %w", err)
		}
	}
	return rooms, devices, background, nil
}

// Import replaces the store contents with the document read from r.
func (s *Store) Import(r io.Reader) error {
	rooms, devices, background, err := Decode(r)
	if err != nil {
		return err
	}
	s.Replace(rooms, devices, background)
	return nil
}

// Export writes the store contents as an indented JSON document.
func (s *Store) Export(w io.Writer) error {
	f := File{Rooms: s.Rooms(), Devices: s.Devices()}
	if bg := s.Background(); len(bg) > 0 {
		url := bgimage.EncodeDataURL(bg)
		f.BackgroundImage = &url
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	return nil
}
