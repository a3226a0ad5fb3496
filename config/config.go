package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PadConfig defines one pad of the controller
type PadConfig struct {
	Name string `json:"name"`
	Note uint8  `json:"note"`
	Aux  bool   `json:"aux,omitempty"`
}

// CanvasConfig sets the drawing surface size in cells
type CanvasConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Config is the main configuration structure
type Config struct {
	Pads      []PadConfig  `json:"pads"`
	InputPort string       `json:"inputPort"`         // substring match, case-insensitive
	Channel   int          `json:"channel,omitempty"` // 1-16, 0 = any
	FPS       int          `json:"fps"`
	Mode      string       `json:"mode,omitempty"`
	Canvas    CanvasConfig `json:"canvas"`
	Launchpad bool         `json:"launchpad,omitempty"` // mirror canvas to Launchpad LEDs
	Palette   string       `json:"palette,omitempty"`   // GIMP .gpl file, empty = built-in
	Debug     bool         `json:"debug,omitempty"`
}

// DefaultConfig returns the four-pad sensor rig layout
func DefaultConfig() *Config {
	return &Config{
		// Pad order: bottom-left, top-left, top-right, bottom-right.
		// Bottom-left is the clocking pad.
		Pads: []PadConfig{
			{Name: "BottomLeft", Note: 82, Aux: true},
			{Name: "TopLeft", Note: 84},
			{Name: "TopRight", Note: 80},
			{Name: "BottomRight", Note: 85},
		},
		InputPort: "",
		Channel:   1,
		FPS:       30,
		Mode:      "splash",
		Canvas:    CanvasConfig{Width: 48, Height: 24},
	}
}

// Validate checks ranges the rest of the program relies on
func (c *Config) Validate() error {
	var errs []error
	for i, p := range c.Pads {
		if p.Note > 127 {
			errs = append(errs, fmt.Errorf("pad %d (%s): note %d out of range 0-127", i, p.Name, p.Note))
		}
	}
	if c.Channel < 0 || c.Channel > 16 {
		errs = append(errs, fmt.Errorf("channel %d out of range 0-16", c.Channel))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drawpad"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default location, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields defaults.
// Fields absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the default location
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating the directory if needed
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
