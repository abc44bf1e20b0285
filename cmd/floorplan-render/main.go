// Command floorplan-render renders a saved layout to a PNG without a display.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"

	"floorplan-mapper/internal/config"
	"floorplan-mapper/internal/engine"
	bgimage "floorplan-mapper/internal/image"
	"floorplan-mapper/internal/layout"
	"floorplan-mapper/internal/logging"
	"floorplan-mapper/internal/version"
	"floorplan-mapper/pkg/geometry"

	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "floorplan-render: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	in, out    string
	width      int
	height     int
	configPath string
	zoom       int
	room       string
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("floorplan-render", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.in, "in", "", "layout JSON file")
	fs.StringVar(&opts.out, "out", "floorplan.png", "output PNG file")
	fs.IntVar(&opts.width, "width", 1024, "output width in pixels")
	fs.IntVar(&opts.height, "height", 768, "output height in pixels")
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.IntVar(&opts.zoom, "zoom", 0, "zoom steps after fitting; positive zooms in")
	fs.StringVar(&opts.room, "room", "", "centre on and highlight this room id")
	showVersion := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, "floorplan-render", version.String())
		return nil
	}
	if opts.in == "" {
		return errors.New("missing -in layout file")
	}
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("invalid size %dx%d", opts.width, opts.height)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, "floorplan-render")
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, err := os.ReadFile(opts.in)
	if err != nil {
		return fmt.Errorf("failed to read layout: %w", err)
	}
	out, err := render(bytes.NewReader(data), cfg, logger, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, out, 0o644); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %s (%dx%d)\n", opts.out, opts.width, opts.height)
	return nil
}

// render draws the layout read from r and returns the encoded PNG.
func render(r io.Reader, cfg config.Config, logger *zap.Logger, opts options) ([]byte, error) {
	rooms, devices, background, err := layout.Decode(r)
	if err != nil {
		return nil, err
	}

	e := engine.New(engine.Options{
		Config:    cfg,
		Logger:    logger,
		StageSize: geometry.NewSize(float64(opts.width), float64(opts.height)),
	})
	e.LoadFromLayout(rooms, devices)

	if len(background) > 0 {
		layer, err := bgimage.Decode(bytes.NewReader(background))
		if err != nil {
			return nil, fmt.Errorf("failed to decode background: %w", err)
		}
		e.SetBackground(layer.Image)
	}
	e.ResetView()
	if len(background) == 0 {
		if c, ok := contentCenter(e.Scene()); ok {
			e.CenterOn(c.X, c.Y, false)
		}
	}

	for i := 0; i < opts.zoom; i++ {
		e.ZoomIn()
	}
	for i := 0; i > opts.zoom; i-- {
		e.ZoomOut()
	}

	if opts.room != "" {
		shape, ok := e.Scene().Room(opts.room)
		if !ok {
			return nil, fmt.Errorf("room %q: %w", opts.room, engine.ErrUnknownRoom)
		}
		c := shape.Centroid()
		e.HighlightRoom(opts.room)
		e.CenterOn(c.X, c.Y, false)
	}

	logger.Info("Rendering layout",
		zap.Int("rooms", len(e.RoomIDs())),
		zap.Int("devices", len(e.DeviceIDs())),
		zap.Float64("scale", e.Viewport().Scale()))

	var buf bytes.Buffer
	if err := png.Encode(&buf, e.Render(opts.width, opts.height)); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// contentCenter returns the centre of the rooms' bounding box.
func contentCenter(scene *engine.Scene) (geometry.Point2D, bool) {
	var points []geometry.Point2D
	for _, r := range scene.Rooms() {
		points = append(points, geometry.FlatToPoints(r.Points)...)
	}
	if len(points) == 0 {
		return geometry.Point2D{}, false
	}
	return geometry.BoundingBox(points).Center(), true
}
