package panels

import (
	"fmt"
	"sync"

	"floorplan-mapper/internal/app"
	"floorplan-mapper/internal/layout"
	"floorplan-mapper/ui/dialogs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fynelayout "fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// RoomList shows the stored rooms. Selecting a row focuses the room on the
// canvas.
type RoomList struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	list       *widget.List
	countLabel *widget.Label
	editBtn    *widget.Button
	deleteBtn  *widget.Button

	mu       sync.Mutex
	rooms    []layout.Room
	devices  map[string]int
	selected string
	syncing  bool
}

// NewRoomList creates a room list panel.
func NewRoomList(state *app.State) *RoomList {
	rl := &RoomList{
		state:   state,
		devices: make(map[string]int),
	}

	rl.countLabel = widget.NewLabel("")
	rl.list = widget.NewList(
		rl.length,
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewLabel("room"), fynelayout.NewSpacer(), widget.NewLabel("0"))
		},
		rl.updateItem,
	)
	rl.list.OnSelected = rl.onSelected
	rl.list.OnUnselected = func(widget.ListItemID) { rl.setSelected("") }

	rl.editBtn = widget.NewButton("Edit...", rl.onEdit)
	rl.deleteBtn = widget.NewButton("Delete", rl.onDelete)

	buttons := container.NewGridWithColumns(2, rl.editBtn, rl.deleteBtn)
	rl.container = container.NewBorder(rl.countLabel, buttons, nil, nil, rl.list)

	state.On(app.EventLayoutChanged, func(interface{}) { rl.Reload() })
	state.On(app.EventLayoutLoaded, func(interface{}) { rl.Reload() })
	state.On(app.EventRoomSelected, func(data interface{}) {
		if id, ok := data.(string); ok {
			rl.Select(id)
		}
	})

	rl.Reload()
	return rl
}

// Container returns the panel container.
func (rl *RoomList) Container() fyne.CanvasObject {
	return rl.container
}

// SetWindow sets the parent window for dialogs.
func (rl *RoomList) SetWindow(w fyne.Window) {
	rl.window = w
}

// Reload re-reads rooms from the store.
func (rl *RoomList) Reload() {
	rooms := rl.state.Store.Rooms()
	sortRooms(rooms)
	devices := make(map[string]int)
	for _, d := range rl.state.Store.Devices() {
		if d.RoomID != "" {
			devices[d.RoomID]++
		}
	}

	rl.mu.Lock()
	rl.rooms = rooms
	rl.devices = devices
	selected := rl.selected
	idx := -1
	for i, r := range rooms {
		if r.ID == selected {
			idx = i
			break
		}
	}
	if idx < 0 {
		rl.selected = ""
	}
	rl.mu.Unlock()

	rl.countLabel.SetText(fmt.Sprintf("%d rooms", len(rooms)))
	switch {
	case idx >= 0:
		// Rows may have moved; keep the same room selected without refocusing.
		rl.mu.Lock()
		rl.syncing = true
		rl.mu.Unlock()
		rl.list.Select(idx)
		rl.mu.Lock()
		rl.syncing = false
		rl.mu.Unlock()
	case selected != "":
		rl.list.UnselectAll()
	}
	rl.list.Refresh()
	rl.updateButtons()
}

// Select highlights the row for a room id, focusing it on the canvas.
func (rl *RoomList) Select(id string) {
	if idx := rl.indexOf(id); idx >= 0 {
		rl.list.Select(idx)
	}
}

// Selected returns the selected room id, or "".
func (rl *RoomList) Selected() string {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.selected
}

func (rl *RoomList) length() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.rooms)
}

func (rl *RoomList) room(id widget.ListItemID) (layout.Room, int, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if id < 0 || id >= len(rl.rooms) {
		return layout.Room{}, 0, false
	}
	r := rl.rooms[id]
	return r, rl.devices[r.ID], true
}

func (rl *RoomList) indexOf(roomID string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for i, r := range rl.rooms {
		if r.ID == roomID {
			return i
		}
	}
	return -1
}

func (rl *RoomList) updateItem(id widget.ListItemID, obj fyne.CanvasObject) {
	r, n, ok := rl.room(id)
	if !ok {
		return
	}
	row := obj.(*fyne.Container)
	row.Objects[0].(*widget.Label).SetText(roomLabel(r))
	row.Objects[2].(*widget.Label).SetText(fmt.Sprintf("%d", n))
}

func (rl *RoomList) setSelected(id string) {
	rl.mu.Lock()
	rl.selected = id
	rl.mu.Unlock()
	rl.updateButtons()
}

func (rl *RoomList) updateButtons() {
	if rl.Selected() == "" {
		rl.editBtn.Disable()
		rl.deleteBtn.Disable()
		return
	}
	rl.editBtn.Enable()
	rl.deleteBtn.Enable()
}

func (rl *RoomList) onSelected(id widget.ListItemID) {
	r, _, ok := rl.room(id)
	if !ok {
		return
	}
	rl.setSelected(r.ID)
	rl.mu.Lock()
	syncing := rl.syncing
	rl.mu.Unlock()
	if syncing {
		return
	}
	if err := rl.state.FocusRoom(r.ID); err != nil {
		rl.state.Emit(app.EventError, err)
	}
}

func (rl *RoomList) onEdit() {
	id := rl.Selected()
	room, ok := rl.state.Store.Room(id)
	if !ok || rl.window == nil {
		return
	}
	dialogs.NewRoomForm(rl.window, "Edit Room", room, rl.state.Config.Palette.TypeNames(), func(name, roomType string, ok bool) {
		if !ok {
			return
		}
		if err := rl.state.UpdateRoom(id, name, roomType); err != nil {
			rl.showError(err)
		}
	}).Show()
}

func (rl *RoomList) onDelete() {
	id := rl.Selected()
	if id == "" {
		return
	}
	if rl.window == nil {
		rl.deleteRoom(id)
		return
	}
	room, _ := rl.state.Store.Room(id)
	msg := fmt.Sprintf("Delete %s and the devices placed in it?", roomLabel(room))
	dialog.ShowConfirm("Delete Room", msg, func(ok bool) {
		if ok {
			rl.deleteRoom(id)
		}
	}, rl.window)
}

func (rl *RoomList) deleteRoom(id string) {
	if err := rl.state.DeleteRoom(id); err != nil {
		rl.showError(err)
	}
}

func (rl *RoomList) showError(err error) {
	if rl.window != nil {
		dialog.ShowError(err, rl.window)
		return
	}
	rl.state.Emit(app.EventError, err)
}
