package engine

import (
	"image"
	"math"

	"floorplan-mapper/pkg/colorutil"

	"github.com/gogpu/gg"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

const (
	previewStrokeWidth = 2.0
	markerLabelOffset  = 8.0
	labelScale         = 2
)

// Render rasterizes the current frame at width x height pixels. When the
// pixel size differs from the stage size the frame is scaled uniformly by
// width/stageWidth, which covers high-density displays.
func (e *Engine) Render(width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	ratio := e.pixelRatio(width)

	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.ClearWithColor(gg.FromColor(colorutil.White))

	off := e.view.Offset()
	scale := e.view.Scale()

	dc.Push()
	dc.Scale(ratio, ratio)
	dc.Translate(off.X, off.Y)
	dc.Scale(scale, scale)

	if e.backgroundBuf != nil {
		dc.DrawImage(e.backgroundBuf, 0, 0)
	}

	for _, shape := range e.scene.Rooms() {
		tracePath(dc, shape.Points, true)
		dc.SetColor(shape.Style.Fill)
		e.paint(dc.FillPreserve())
		dc.SetColor(shape.Style.Stroke)
		dc.SetLineWidth(shape.Style.StrokeWidth)
		e.paint(dc.Stroke())
	}

	if guide := e.draw.preview(); len(guide) >= 4 {
		tracePath(dc, guide, false)
		dc.SetColor(colorutil.Red)
		dc.SetLineWidth(previewStrokeWidth)
		e.paint(dc.Stroke())
	}

	marker := e.cfg.Marker
	markerFill := colorutil.MustWithAlpha(marker.Fill, 1, colorutil.Blue)
	markerStroke := colorutil.MustWithAlpha(marker.Stroke, 1, colorutil.White)
	for _, m := range e.scene.Markers() {
		dc.DrawCircle(m.X, m.Y, marker.Radius)
		dc.SetColor(markerFill)
		e.paint(dc.FillPreserve())
		dc.SetColor(markerStroke)
		dc.SetLineWidth(marker.StrokeWidth)
		e.paint(dc.Stroke())
	}
	dc.Pop()

	out := toRGBA(dc.Image())
	e.drawLabels(out, ratio)
	return out
}

// drawLabels paints room names at their centroids and device names beside
// their markers, in device pixels.
func (e *Engine) drawLabels(out *image.RGBA, ratio float64) {
	for _, shape := range e.scene.Rooms() {
		if shape.Name == "" {
			continue
		}
		c := shape.Centroid()
		p := e.view.SceneToScreen(c.X, c.Y)
		drawCenteredLabel(out, shape.Name, round(p.X*ratio), round(p.Y*ratio), labelScale, colorutil.Black)
	}
	for _, m := range e.scene.Markers() {
		if m.Name == "" {
			continue
		}
		p := e.view.SceneToScreen(m.X, m.Y)
		x := (p.X + markerLabelOffset) * ratio
		y := (p.Y - markerLabelOffset) * ratio
		drawLabel(out, m.Name, round(x), round(y)-5*labelScale, labelScale, colorutil.Black)
	}
}

func (e *Engine) pixelRatio(width int) float64 {
	stage := e.view.StageSize()
	if stage.Width <= 0 {
		return 1
	}
	return float64(width) / stage.Width
}

func (e *Engine) paint(err error) {
	if err != nil {
		e.log.Debug("Paint failed", zap.Error(err))
	}
}

// tracePath adds a flat coordinate list to the current path.
func tracePath(dc *gg.Context, flat []float64, closed bool) {
	if len(flat) < 4 {
		return
	}
	dc.MoveTo(flat[0], flat[1])
	for i := 2; i+1 < len(flat); i += 2 {
		dc.LineTo(flat[i], flat[i+1])
	}
	if closed {
		dc.ClosePath()
	}
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	xdraw.Draw(out, b, img, b.Min, xdraw.Src)
	return out
}

func round(v float64) int {
	return int(math.Round(v))
}
