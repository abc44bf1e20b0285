package engine

import (
	"context"
	"image"
	"io"

	bgimage "floorplan-mapper/internal/image"
	"floorplan-mapper/pkg/geometry"

	"github.com/gogpu/gg"
	"go.uber.org/zap"
)

// SetBackground replaces the background image immediately; nil clears it.
// Any decode still in flight is superseded.
func (e *Engine) SetBackground(img image.Image) {
	e.bgGeneration++
	if img == nil {
		e.background = nil
		e.backgroundBuf = nil
		return
	}
	e.installBackground(bgimage.NewLayer(img))
}

// LoadBackground decodes r on a worker goroutine and installs the result on
// the event context through the Dispatcher. Only the most recent request
// takes effect. A failed decode keeps the previous background and reports
// BackgroundFailed. r must not be used by the caller afterwards.
func (e *Engine) LoadBackground(ctx context.Context, r io.Reader) uint64 {
	e.bgGeneration++
	gen := e.bgGeneration
	dispatch := e.dispatch

	go func() {
		layer, err := bgimage.Decode(r)
		if err == nil {
			err = ctx.Err()
		}
		dispatch(func() { e.finishBackground(gen, layer, err) })
	}()
	return gen
}

func (e *Engine) finishBackground(gen uint64, layer *bgimage.Layer, err error) {
	if gen != e.bgGeneration {
		e.log.Debug("Discarding background", zap.Uint64("generation", gen), zap.Error(ErrDecodeSuperseded))
		return
	}
	if err != nil {
		e.log.Warn("Background decode failed", zap.Error(err))
		if e.events.BackgroundFailed != nil {
			e.events.BackgroundFailed(err)
		}
		return
	}
	e.installBackground(layer)
	e.log.Info("Background loaded",
		zap.String("format", layer.Format),
		zap.Int("width", layer.Width()),
		zap.Int("height", layer.Height()))
	if e.events.BackgroundLoaded != nil {
		e.events.BackgroundLoaded(layer.Size())
	}
}

func (e *Engine) installBackground(layer *bgimage.Layer) {
	e.background = layer
	e.backgroundBuf = gg.ImageBufFromImage(layer.Image)
}

// Background returns the current background layer, or nil.
func (e *Engine) Background() *bgimage.Layer {
	return e.background
}

// BackgroundGeneration returns the id of the most recent background request.
func (e *Engine) BackgroundGeneration() uint64 {
	return e.bgGeneration
}

// BackgroundSize returns the background's natural size, or nil.
func (e *Engine) BackgroundSize() *geometry.Size {
	if e.background == nil {
		return nil
	}
	size := e.background.Size()
	return &size
}
