// Package config loads the floorplan engine and application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"floorplan-mapper/pkg/colorutil"

	"gopkg.in/yaml.v3"
)

// Palette maps room types to their display colors.
type Palette struct {
	Types   map[string]string `yaml:"types"`
	Default string            `yaml:"default"`
}

// ColorFor returns the color for a room type, or the default color when the
// type is empty or unknown.
func (p Palette) ColorFor(roomType string) string {
	if roomType != "" {
		if c, ok := p.Types[roomType]; ok {
			return c
		}
	}
	return p.Default
}

// TypeNames returns the configured room types in sorted order.
func (p Palette) TypeNames() []string {
	names := make([]string, 0, len(p.Types))
	for name := range p.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ViewportConfig holds zoom bounds and step.
type ViewportConfig struct {
	MinScale   float64 `yaml:"min_scale"`
	MaxScale   float64 `yaml:"max_scale"`
	ZoomFactor float64 `yaml:"zoom_factor"`
}

// AnimationConfig holds animation durations.
type AnimationConfig struct {
	CenterOn     time.Duration `yaml:"center_on"`
	PulseIn      time.Duration `yaml:"pulse_in"`
	PulseOut     time.Duration `yaml:"pulse_out"`
	DropFeedback time.Duration `yaml:"drop_feedback"`
}

// MarkerConfig holds device marker appearance.
type MarkerConfig struct {
	Radius      float64 `yaml:"radius"`
	Fill        string  `yaml:"fill"`
	Stroke      string  `yaml:"stroke"`
	StrokeWidth float64 `yaml:"stroke_width"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the complete application configuration.
type Config struct {
	Palette     Palette         `yaml:"palette"`
	Viewport    ViewportConfig  `yaml:"viewport"`
	Animation   AnimationConfig `yaml:"animation"`
	Marker      MarkerConfig    `yaml:"marker"`
	DeviceTypes []string        `yaml:"device_types"`
	Log         LogConfig       `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Palette: Palette{
			Types: map[string]string{
				"Lounge":       "#4A90E2",
				"Meeting Room": "#7B61FF",
				"Office":       "#F5A623",
				"Washroom":     "#50E3C2",
			},
			Default: "#FF6F61",
		},
		Viewport: ViewportConfig{
			MinScale:   0.5,
			MaxScale:   3.0,
			ZoomFactor: 1.05,
		},
		Animation: AnimationConfig{
			CenterOn:     300 * time.Millisecond,
			PulseIn:      180 * time.Millisecond,
			PulseOut:     280 * time.Millisecond,
			DropFeedback: 400 * time.Millisecond,
		},
		Marker: MarkerConfig{
			Radius:      6,
			Fill:        "#0000FF",
			Stroke:      "#FFFFFF",
			StrokeWidth: 2,
		},
		DeviceTypes: []string{"Light", "Sensor", "Camera", "Thermostat"},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// WithDefaults fills every zero field of c from Default, leaving the fields
// the caller set untouched.
func (c Config) WithDefaults() Config {
	def := Default()
	if c.Palette.Types == nil {
		c.Palette.Types = def.Palette.Types
	}
	if c.Palette.Default == "" {
		c.Palette.Default = def.Palette.Default
	}

	if c.Viewport.MinScale == 0 {
		c.Viewport.MinScale = def.Viewport.MinScale
	}
	if c.Viewport.MaxScale == 0 {
		c.Viewport.MaxScale = def.Viewport.MaxScale
	}
	if c.Viewport.ZoomFactor == 0 {
		c.Viewport.ZoomFactor = def.Viewport.ZoomFactor
	}

	if c.Animation.CenterOn == 0 {
		c.Animation.CenterOn = def.Animation.CenterOn
	}
	if c.Animation.PulseIn == 0 {
		c.Animation.PulseIn = def.Animation.PulseIn
	}
	if c.Animation.PulseOut == 0 {
		c.Animation.PulseOut = def.Animation.PulseOut
	}
	if c.Animation.DropFeedback == 0 {
		c.Animation.DropFeedback = def.Animation.DropFeedback
	}

	if c.Marker.Radius == 0 {
		c.Marker.Radius = def.Marker.Radius
	}
	if c.Marker.Fill == "" {
		c.Marker.Fill = def.Marker.Fill
	}
	if c.Marker.Stroke == "" {
		c.Marker.Stroke = def.Marker.Stroke
	}
	if c.Marker.StrokeWidth == 0 {
		c.Marker.StrokeWidth = def.Marker.StrokeWidth
	}

	if len(c.DeviceTypes) == 0 {
		c.DeviceTypes = def.DeviceTypes
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	return c
}

// Load reads a YAML configuration file on top of the defaults and applies
// environment overrides. A missing path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.LoadFromEnv("FLOORPLAN")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromEnv overrides log settings from <prefix>_LOG_LEVEL and <prefix>_LOG_FORMAT.
func (c *Config) LoadFromEnv(prefix string) {
	if level := os.Getenv(prefix + "_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv(prefix + "_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
}

// Validate checks zoom bounds and palette colors.
func (c Config) Validate() error {
	var errs []error
	v := c.Viewport
	if v.MinScale <= 0 || v.MaxScale < v.MinScale {
		errs = append(errs, fmt.Errorf("viewport: scale bounds [%g, %g] are invalid", v.MinScale, v.MaxScale))
	}
	if v.ZoomFactor <= 1 {
		errs = append(errs, fmt.Errorf("viewport: zoom factor %g must be greater than 1", v.ZoomFactor))
	}
	if _, err := colorutil.ParseHex(c.Palette.Default); err != nil {
		errs = append(errs, fmt.Errorf("palette default: %w", err))
	}
	for _, name := range c.Palette.TypeNames() {
		if _, err := colorutil.ParseHex(c.Palette.Types[name]); err != nil {
			errs = append(errs, fmt.Errorf("palette type %q: %w", name, err))
		}
	}
	if c.Marker.Radius <= 0 {
		errs = append(errs, fmt.Errorf("marker: radius %g must be positive", c.Marker.Radius))
	}
	return errors.Join(errs...)
}
