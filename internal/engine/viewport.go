package engine

import (
	"math"

	"floorplan-mapper/internal/config"
	"floorplan-mapper/pkg/geometry"

	"gonum.org/v1/gonum/spatial/r2"
)

// Viewport maps scene coordinates to screen coordinates:
// screen = scene*scale + offset.
type Viewport struct {
	scale  float64
	offset r2.Vec
	stage  geometry.Size

	minScale   float64
	maxScale   float64
	zoomFactor float64
}

// NewViewport creates a viewport at scale 1 with a zero offset.
func NewViewport(cfg config.ViewportConfig, stage geometry.Size) *Viewport {
	return &Viewport{
		scale:      1,
		stage:      stage,
		minScale:   cfg.MinScale,
		maxScale:   cfg.MaxScale,
		zoomFactor: cfg.ZoomFactor,
	}
}

// Scale returns the current zoom scale.
func (v *Viewport) Scale() float64 {
	return v.scale
}

// Offset returns the current pan offset in screen pixels.
func (v *Viewport) Offset() geometry.Point2D {
	return geometry.FromVec(v.offset)
}

// StageSize returns the size of the rendering surface.
func (v *Viewport) StageSize() geometry.Size {
	return v.stage
}

// Transform returns the scene-to-screen transform.
func (v *Viewport) Transform() geometry.AffineTransform {
	return geometry.Translation(v.offset.X, v.offset.Y).Compose(geometry.Scale(v.scale, v.scale))
}

// ScreenToScene converts screen coordinates to scene coordinates.
func (v *Viewport) ScreenToScene(px, py float64) geometry.Point2D {
	return geometry.FromVec(r2.Scale(1/v.scale, r2.Sub(r2.Vec{X: px, Y: py}, v.offset)))
}

// SceneToScreen converts scene coordinates to screen coordinates.
func (v *Viewport) SceneToScreen(x, y float64) geometry.Point2D {
	return geometry.FromVec(r2.Add(r2.Scale(v.scale, r2.Vec{X: x, Y: y}), v.offset))
}

// ZoomAt zooms around a screen anchor. A positive direction zooms out
// (scale/zoomFactor), a negative one zooms in, zero is a no-op. The scene
// point under the anchor stays fixed on screen.
func (v *Viewport) ZoomAt(anchor geometry.Point2D, direction int) {
	switch {
	case direction > 0:
		v.zoomTo(anchor, v.scale/v.zoomFactor)
	case direction < 0:
		v.zoomTo(anchor, v.scale*v.zoomFactor)
	}
}

// ZoomIn zooms in around the stage centre.
func (v *Viewport) ZoomIn() {
	v.ZoomAt(v.stage.Center(), -1)
}

// ZoomOut zooms out around the stage centre.
func (v *Viewport) ZoomOut() {
	v.ZoomAt(v.stage.Center(), 1)
}

func (v *Viewport) zoomTo(anchor geometry.Point2D, scale float64) {
	scenePoint := v.ScreenToScene(anchor.X, anchor.Y)
	v.scale = v.clamp(scale)
	v.offset = r2.Sub(anchor.Vec(), r2.Scale(v.scale, scenePoint.Vec()))
}

// ResetView restores scale 1 and centres the background, or the scene
// origin when there is none.
func (v *Viewport) ResetView(background *geometry.Size) {
	v.scale = 1
	if background != nil && !background.IsZero() {
		v.offset = r2.Vec{
			X: (v.stage.Width - background.Width) / 2,
			Y: (v.stage.Height - background.Height) / 2,
		}
		return
	}
	v.offset = v.stage.Center().Vec()
}

// Resize updates the stage size without touching scale or offset.
func (v *Viewport) Resize(size geometry.Size) {
	v.stage = size
}

// CenterTarget returns the offset that puts scene point (x, y) at the stage centre.
func (v *Viewport) CenterTarget(x, y float64) geometry.Point2D {
	return geometry.FromVec(r2.Sub(v.stage.Center().Vec(), r2.Scale(v.scale, r2.Vec{X: x, Y: y})))
}

// SetOffset moves the pan offset.
func (v *Viewport) SetOffset(p geometry.Point2D) {
	v.offset = p.Vec()
}

// Pan shifts the offset by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.offset = r2.Add(v.offset, r2.Vec{X: dx, Y: dy})
}

func (v *Viewport) clamp(scale float64) float64 {
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return v.scale
	}
	return math.Max(v.minScale, math.Min(v.maxScale, scale))
}
