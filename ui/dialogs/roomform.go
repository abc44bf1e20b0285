// Package dialogs provides application dialogs.
package dialogs

import (
	"errors"
	"strings"

	"floorplan-mapper/internal/app"
	"floorplan-mapper/internal/layout"
	"floorplan-mapper/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// RoomForm edits a room's name and type.
type RoomForm struct {
	window fyne.Window
	title  string
	types  []string

	nameEntry  *widget.Entry
	typeSelect *widget.Select
	dialog     dialog.Dialog

	onDone func(name, roomType string, ok bool)
}

// NewRoomForm creates a form for the given room. types lists the selectable
// room types; the room's current type is preselected when present.
func NewRoomForm(window fyne.Window, title string, room layout.Room, types []string, onDone func(name, roomType string, ok bool)) *RoomForm {
	f := &RoomForm{
		window: window,
		title:  title,
		types:  types,
		onDone: onDone,
	}

	f.nameEntry = widget.NewEntry()
	f.nameEntry.SetPlaceHolder("e.g. Kitchen")
	f.nameEntry.SetText(room.Name)
	f.nameEntry.Validator = validateName

	f.typeSelect = widget.NewSelect(types, nil)
	f.typeSelect.PlaceHolder = "(no type)"
	if room.Type != "" {
		f.typeSelect.SetSelected(room.Type)
	}
	return f
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("room name is required")
	}
	return nil
}

// Show displays the form.
func (f *RoomForm) Show() {
	items := []*widget.FormItem{
		widget.NewFormItem("Name", f.nameEntry),
		widget.NewFormItem("Type", f.typeSelect),
	}
	f.dialog = dialog.NewForm(f.title, "Save", "Cancel", items, f.submit, f.window)
	f.dialog.Resize(fyne.NewSize(360, 0))
	f.dialog.Show()
	f.window.Canvas().Focus(f.nameEntry)
}

// submit reports the form result. Dismissing the form reports ok=false.
func (f *RoomForm) submit(ok bool) {
	if f.onDone == nil {
		return
	}
	if !ok {
		f.onDone("", "", false)
		return
	}
	f.onDone(strings.TrimSpace(f.nameEntry.Text), f.typeSelect.Selected, true)
}

// RoomPrompt returns an app.RoomPrompt that asks for a drawn room's name and
// type with a RoomForm. The last confirmed type is remembered in p.
func RoomPrompt(window fyne.Window, types []string, p *prefs.Prefs) app.RoomPrompt {
	return func(room layout.Room, done func(name, roomType string, ok bool)) {
		newPromptForm(window, types, p, room, done).Show()
	}
}

func newPromptForm(window fyne.Window, types []string, p *prefs.Prefs, room layout.Room, done func(string, string, bool)) *RoomForm {
	if room.Type == "" {
		room.Type = p.String(prefs.KeyRoomType)
	}
	return NewRoomForm(window, "New Room", room, types, func(name, roomType string, ok bool) {
		if ok && roomType != "" {
			p.SetString(prefs.KeyRoomType, roomType)
		}
		done(name, roomType, ok)
	})
}
