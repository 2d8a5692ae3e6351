// Package config loads photobooth settings from defaults, a TOML file and
// PHOTOBOOTH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photobooth/internal/capture"
	"photobooth/internal/session"
	"photobooth/pkg/colorutil"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

const (
	appDir     = "photobooth"
	configFile = "config.toml"
	envPrefix  = "PHOTOBOOTH_"
)

// Duration reads and writes as "1.5s" in TOML and the environment.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds every tunable of a run.
type Config struct {
	PhotoCount int    `toml:"photo_count" env:"PHOTO_COUNT"`
	Layout     string `toml:"layout" env:"LAYOUT"`
	Camera     string `toml:"camera" env:"CAMERA"` // device index, or "dir:<path>"

	Countdown int      `toml:"countdown" env:"COUNTDOWN"`
	Tick      Duration `toml:"tick" env:"TICK"`
	Settle    Duration `toml:"settle" env:"SETTLE"`
	Pause     Duration `toml:"pause" env:"PAUSE"`

	OutputDir   string  `toml:"output_dir" env:"OUTPUT_DIR"`
	FilePrefix  string  `toml:"file_prefix" env:"FILE_PREFIX"`
	ExportScale float64 `toml:"export_scale" env:"EXPORT_SCALE"`
	Label       string  `toml:"label" env:"LABEL"`

	FrameColor   string `toml:"frame_color" env:"FRAME_COLOR"`
	TextColor    string `toml:"text_color" env:"TEXT_COLOR"`
	DrawingColor string `toml:"drawing_color" env:"DRAWING_COLOR"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		PhotoCount:   session.DefaultPhotoCount,
		Layout:       session.LayoutVertical.String(),
		Camera:       "0",
		Countdown:    capture.DefaultTiming.Countdown,
		Tick:         Duration(capture.DefaultTiming.Tick),
		Settle:       Duration(capture.DefaultTiming.Settle),
		Pause:        Duration(capture.DefaultTiming.Pause),
		OutputDir:    ".",
		FilePrefix:   "myts-photobooth",
		ExportScale:  2,
		Label:        "Myts Studio",
		FrameColor:   string(colorutil.DefaultFrame),
		TextColor:    string(colorutil.DefaultText),
		DrawingColor: string(colorutil.DefaultDrawing),
	}
}

// DefaultPath returns <user config dir>/photobooth/config.toml.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, configFile)
}

// Load reads path (DefaultPath when empty) over the defaults, then applies
// the environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Save writes cfg as TOML to path, creating its directory.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.PhotoCount < session.MinPhotoCount || c.PhotoCount > session.MaxPhotoCount {
		return fmt.Errorf("photo_count %d: %w", c.PhotoCount, session.ErrInvalidPhotoCount)
	}
	if _, err := session.ParseLayout(c.Layout); err != nil {
		return err
	}
	if c.Countdown < 1 {
		return fmt.Errorf("countdown must be at least 1, got %d", c.Countdown)
	}
	if c.ExportScale <= 0 {
		return fmt.Errorf("export_scale must be positive, got %g", c.ExportScale)
	}
	for name, hex := range map[string]string{
		"frame_color":   c.FrameColor,
		"text_color":    c.TextColor,
		"drawing_color": c.DrawingColor,
	} {
		if _, err := colorutil.ParseHex(hex); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Timing returns the capture delays.
func (c Config) Timing() capture.Timing {
	return capture.Timing{
		Countdown: c.Countdown,
		Tick:      time.Duration(c.Tick),
		Settle:    time.Duration(c.Settle),
		Pause:     time.Duration(c.Pause),
	}
}

// SessionOptions returns the session options the settings imply.
func (c Config) SessionOptions() []session.Option {
	return []session.Option{
		session.WithColors(
			colorutil.MustHex(c.FrameColor),
			colorutil.MustHex(c.TextColor),
			colorutil.MustHex(c.DrawingColor),
		),
	}
}
