package dialogs

import (
	"path/filepath"
	"testing"

	"floorplan-mapper/internal/layout"
	"floorplan-mapper/ui/prefs"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	name, roomType string
	ok             bool
	calls          int
}

func (r *result) done(name, roomType string, ok bool) {
	r.name, r.roomType, r.ok = name, roomType, ok
	r.calls++
}

func TestRoomFormSubmit(t *testing.T) {
	test.NewTempApp(t)
	w := test.NewWindow(nil)
	defer w.Close()

	var res result
	f := NewRoomForm(w, "New Room", layout.Room{ID: "r1"}, []string{"Lounge", "Office"}, res.done)
	f.Show()

	f.nameEntry.SetText("  Kitchen ")
	f.typeSelect.SetSelected("Office")
	f.submit(true)

	assert.Equal(t, 1, res.calls)
	assert.True(t, res.ok)
	assert.Equal(t, "Kitchen", res.name)
	assert.Equal(t, "Office", res.roomType)
}

func TestRoomFormCancel(t *testing.T) {
	test.NewTempApp(t)
	w := test.NewWindow(nil)
	defer w.Close()

	var res result
	f := NewRoomForm(w, "New Room", layout.Room{ID: "r1", Name: "Old"}, nil, res.done)
	f.submit(false)

	assert.Equal(t, 1, res.calls)
	assert.False(t, res.ok)
	assert.Empty(t, res.name)
}

func TestRoomFormPrefills(t *testing.T) {
	test.NewTempApp(t)
	w := test.NewWindow(nil)
	defer w.Close()

	f := NewRoomForm(w, "Edit Room", layout.Room{ID: "r1", Name: "Lab", Type: "Office"}, []string{"Lounge", "Office"}, nil)
	assert.Equal(t, "Lab", f.nameEntry.Text)
	assert.Equal(t, "Office", f.typeSelect.Selected)
	f.submit(true)
}

func TestValidateName(t *testing.T) {
	require.Error(t, validateName("   "))
	require.NoError(t, validateName("Hall"))
}

func TestRoomPromptRemembersType(t *testing.T) {
	test.NewTempApp(t)
	w := test.NewWindow(nil)
	defer w.Close()

	p := prefs.LoadFrom(filepath.Join(t.TempDir(), "prefs.json"))
	p.SetString(prefs.KeyRoomType, "Lounge")

	var res result
	f := newPromptForm(w, []string{"Lounge", "Office"}, p, layout.Room{ID: "r1"}, res.done)
	assert.Equal(t, "Lounge", f.typeSelect.Selected)

	f.nameEntry.SetText("Den")
	f.typeSelect.SetSelected("Office")
	f.submit(true)

	assert.Equal(t, "Den", res.name)
	assert.Equal(t, "Office", p.String(prefs.KeyRoomType))

	f = newPromptForm(w, []string{"Lounge", "Office"}, p, layout.Room{ID: "r2"}, res.done)
	f.submit(false)
	assert.False(t, res.ok)
	assert.Equal(t, "Office", p.String(prefs.KeyRoomType))
}
