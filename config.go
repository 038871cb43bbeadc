package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type RenderConfig struct {
	Scale  int    `toml:"scale"`
	Layout string `toml:"layout"`
	Cols   int    `toml:"cols"`
}

type ExportConfig struct {
	Frames bool `toml:"frames"`
	GIF    bool `toml:"gif"`
	PDF    bool `toml:"pdf"`
	SVG    bool `toml:"svg"`
}

type WatchConfig struct {
	InputDirs  []string `toml:"input_dirs"`
	Location   string   `toml:"location"`
	DebounceMs int      `toml:"debounce_ms"`
}

func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMs > 0 {
		return time.Duration(w.DebounceMs) * time.Millisecond
	}
	return 500 * time.Millisecond
}

type Config struct {
	Strict bool         `toml:"strict"`
	Render RenderConfig `toml:"render"`
	Export ExportConfig `toml:"export"`
	Watch  WatchConfig  `toml:"watch"`
}

func defaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Scale:  1,
			Layout: "horizontal",
			Cols:   4,
		},
	}
}

// LoadConfig reads a TOML config file, treating a missing file as defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// exportOptions folds the config into the option set ExportSprite consumes.
func (c *Config) exportOptions() ExportOptions {
	return ExportOptions{
		Scale:  c.Render.Scale,
		Layout: c.Render.Layout,
		Cols:   c.Render.Cols,
		Frames: c.Export.Frames,
		GIF:    c.Export.GIF,
		PDF:    c.Export.PDF,
		SVG:    c.Export.SVG,
	}
}
