package panels

import (
	"floorplan-mapper/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const paletteHint = "Pick a device type, then click inside a room to place it."

// DevicePalette lists the configured device types. Picking one arms the
// canvas to place a device of that type.
type DevicePalette struct {
	state     *app.State
	container fyne.CanvasObject

	types     []string
	list      *widget.List
	status    *widget.Label
	cancelBtn *widget.Button
}

// NewDevicePalette creates the palette for state.Config.DeviceTypes.
func NewDevicePalette(state *app.State) *DevicePalette {
	dp := &DevicePalette{
		state: state,
		types: append([]string(nil), state.Config.DeviceTypes...),
	}

	dp.list = widget.NewList(
		func() int { return len(dp.types) },
		func() fyne.CanvasObject { return widget.NewLabel("device") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(dp.types[id])
		},
	)
	dp.list.OnSelected = func(id widget.ListItemID) {
		if id >= 0 && id < len(dp.types) && state.Carrying() != dp.types[id] {
			state.StartCarry(dp.types[id])
		}
	}

	dp.status = widget.NewLabel(paletteHint)
	dp.status.Wrapping = fyne.TextWrapWord
	dp.cancelBtn = widget.NewButton("Cancel Placement", state.CancelCarry)
	dp.cancelBtn.Disable()

	dp.container = container.NewBorder(nil, container.NewVBox(dp.status, dp.cancelBtn), nil, nil, dp.list)

	state.On(app.EventCarryChanged, func(data interface{}) {
		deviceType, _ := data.(string)
		dp.carryChanged(deviceType)
	})
	return dp
}

// Container returns the panel container.
func (dp *DevicePalette) Container() fyne.CanvasObject {
	return dp.container
}

func (dp *DevicePalette) carryChanged(deviceType string) {
	if deviceType == "" {
		dp.list.UnselectAll()
		dp.status.SetText(paletteHint)
		dp.cancelBtn.Disable()
		return
	}
	dp.status.SetText("Placing " + deviceType + ": click inside a room.")
	dp.cancelBtn.Enable()
}
