package dialogs

import (
	"fmt"

	"floorplan-mapper/internal/app"
	"floorplan-mapper/internal/layout"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// AssignForm asks where a dropped device goes when other rooms share the
// drop room's type: the drop room only, or a picked set of same-type rooms.
type AssignForm struct {
	window fyne.Window
	target layout.Room

	ids    map[string]string // label -> room id
	labels []string

	choice *dialog.CustomDialog
	picker *widget.CheckGroup
	form   dialog.Dialog

	onDone func(roomIDs []string, ok bool)
	done   bool
}

// NewAssignForm creates the form. The picker lists target first and starts
// with every room checked.
func NewAssignForm(window fyne.Window, target layout.Room, sameType []layout.Room, onDone func(roomIDs []string, ok bool)) *AssignForm {
	f := &AssignForm{
		window: window,
		target: target,
		ids:    make(map[string]string, len(sameType)+1),
		onDone: onDone,
	}
	for _, room := range append([]layout.Room{target}, sameType...) {
		label := uniqueLabel(f.ids, roomName(room))
		f.ids[label] = room.ID
		f.labels = append(f.labels, label)
	}
	f.picker = widget.NewCheckGroup(f.labels, nil)
	f.picker.SetSelected(f.labels)
	return f
}

func roomName(room layout.Room) string {
	if room.Name != "" {
		return room.Name
	}
	return "Unnamed room"
}

func uniqueLabel(used map[string]string, label string) string {
	if _, taken := used[label]; !taken {
		return label
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", label, n)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

// Show displays the choice between the drop room and all same-type rooms.
func (f *AssignForm) Show() {
	msg := widget.NewLabel(fmt.Sprintf("Place the device in this room only, or in other %s rooms too?", f.target.Type))
	f.choice = dialog.NewCustomWithoutButtons("Assign Device", msg, f.window)
	f.choice.SetButtons([]fyne.CanvasObject{
		widget.NewButton("Cancel", func() { f.finish(nil, false) }),
		widget.NewButton("All "+f.target.Type+" rooms…", f.chooseAll),
		widget.NewButton("This room", f.chooseTarget),
	})
	f.choice.SetOnClosed(func() { f.finish(nil, false) })
	f.choice.Show()
}

func (f *AssignForm) chooseTarget() {
	f.finish([]string{f.target.ID}, true)
}

// chooseAll swaps the choice for the room picker.
func (f *AssignForm) chooseAll() {
	if f.choice != nil {
		f.choice.SetOnClosed(nil)
		f.choice.Hide()
	}
	items := []*widget.FormItem{
		widget.NewFormItem("Rooms", container.NewVScroll(f.picker)),
	}
	f.form = dialog.NewForm("Assign to Rooms", "Assign", "Cancel", items, f.submitPicker, f.window)
	f.form.Resize(fyne.NewSize(360, 320))
	f.form.Show()
}

// submitPicker reports the checked rooms in list order. An empty pick is a
// cancel.
func (f *AssignForm) submitPicker(ok bool) {
	if !ok {
		f.finish(nil, false)
		return
	}
	checked := make(map[string]bool, len(f.picker.Selected))
	for _, label := range f.picker.Selected {
		checked[label] = true
	}
	var ids []string
	for _, label := range f.labels {
		if checked[label] {
			ids = append(ids, f.ids[label])
		}
	}
	f.finish(ids, len(ids) > 0)
}

// finish reports once and closes the choice dialog.
func (f *AssignForm) finish(ids []string, ok bool) {
	if f.done {
		return
	}
	f.done = true
	if f.choice != nil {
		f.choice.SetOnClosed(nil)
		f.choice.Hide()
	}
	if f.onDone != nil {
		f.onDone(ids, ok)
	}
}

// AssignPrompt returns an app.AssignPrompt backed by an AssignForm.
func AssignPrompt(window fyne.Window) app.AssignPrompt {
	return func(target layout.Room, sameType []layout.Room, done func([]string, bool)) {
		NewAssignForm(window, target, sameType, done).Show()
	}
}
