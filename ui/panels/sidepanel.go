// Package panels provides UI panels for the application.
package panels

import (
	"floorplan-mapper/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	roomList *RoomList
	palette  *DevicePalette
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state}

	sp.roomList = NewRoomList(state)
	sp.palette = NewDevicePalette(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Rooms", sp.roomList.Container()),
		container.NewTabItem("Devices", sp.palette.Container()),
	)

	// Switch to the palette when placement is armed from elsewhere.
	state.On(app.EventCarryChanged, func(data interface{}) {
		if t, _ := data.(string); t != "" {
			sp.container.SelectIndex(1)
		}
	})
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// RoomList returns the rooms tab.
func (sp *SidePanel) RoomList() *RoomList {
	return sp.roomList
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.roomList.SetWindow(w)
}
