package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"floorplan-mapper/internal/config"
	"floorplan-mapper/internal/engine"
	"floorplan-mapper/internal/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sample = `{
  "rooms": [
    {"id": "r1", "name": "Hall", "type": "Lounge",
     "points": [100, 100, 300, 100, 300, 300, 100, 300],
     "fillColor": "#4A90E2", "strokeColor": "#4A90E2",
     "devices": [{"id": "d1", "name": "Light 1", "type": "Light", "roomId": "r1", "x": 150, "y": 150}]}
  ],
  "devices": []
}`

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestRender(t *testing.T) {
	opts := options{width: 400, height: 300}
	out, err := render(strings.NewReader(sample), config.Default(), zaptest.NewLogger(t), opts)
	require.NoError(t, err)

	img := decodePNG(t, out)
	assert.Equal(t, image.Rect(0, 0, 400, 300), img.Bounds())
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "outside rooms is white")
	// Rooms are centred: scene (200, 200) lands on the stage centre.
	r, _, b, _ = img.At(150, 100).RGBA()
	assert.Greater(t, b, r, "device marker is blue")
}

func TestRenderWithBackground(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			bg.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, bg))

	s := layout.NewStore(nil)
	s.SetBackground(buf.Bytes())
	var doc bytes.Buffer
	require.NoError(t, s.Export(&doc))

	out, err := render(&doc, config.Default(), zaptest.NewLogger(t), options{width: 400, height: 300})
	require.NoError(t, err)

	// The background is centred on the stage.
	img := decodePNG(t, out)
	r, g, _, _ := img.At(200, 150).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
}

func TestContentCenter(t *testing.T) {
	e := engine.New(engine.Options{Config: config.Default()})
	_, ok := contentCenter(e.Scene())
	assert.False(t, ok)

	require.NoError(t, e.UpsertRoom(layout.Room{ID: "a", Points: []float64{0, 0, 10, 0, 10, 10, 0, 10}}))
	require.NoError(t, e.UpsertRoom(layout.Room{ID: "b", Points: []float64{90, 40, 100, 40, 100, 50}}))
	c, ok := contentCenter(e.Scene())
	require.True(t, ok)
	assert.Equal(t, 50.0, c.X)
	assert.Equal(t, 25.0, c.Y)
}

func TestRenderUnknownRoom(t *testing.T) {
	_, err := render(strings.NewReader(sample), config.Default(), zaptest.NewLogger(t), options{width: 100, height: 100, room: "nope"})
	assert.ErrorIs(t, err, engine.ErrUnknownRoom)
}

func TestRunWritesFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "layout.json")
	out := filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(in, []byte(sample), 0o644))

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-in", in, "-out", out, "-width", "200", "-height", "100", "-zoom", "2", "-room", "r1"}, &stdout))
	assert.Contains(t, stdout.String(), "200x100")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), decodePNG(t, data).Bounds())
}

func TestRunRequiresInput(t *testing.T) {
	assert.EqualError(t, run(nil, &bytes.Buffer{}), "missing -in layout file")
}
