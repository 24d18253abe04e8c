// Package config loads the editor configuration from a YAML file,
// falling back to defaults when no file exists.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds everything the editor reads at startup.
type Config struct {
	// DatabasePath locates the workspace SQLite database.
	DatabasePath string `yaml:"database_path"`

	Editor EditorConfig `yaml:"editor"`

	// Labels offered in the label panel, in display order.
	Labels []LabelPreset `yaml:"labels"`

	OCR OCRConfig `yaml:"ocr"`
}

// EditorConfig tunes canvas interaction.
type EditorConfig struct {
	// MinDragPixels is the smallest screen drag treated as a box,
	// filtering accidental clicks.
	MinDragPixels float64 `yaml:"min_drag_pixels"`
	// HandleHitRadius is the pointer distance, in screen pixels, at
	// which a resize handle is grabbed.
	HandleHitRadius float64 `yaml:"handle_hit_radius"`
	ZoomStep        float64 `yaml:"zoom_step"`
}

// LabelPreset is a label class the annotator can apply with one click.
type LabelPreset struct {
	Text string   `yaml:"text"`
	Tags []string `yaml:"tags"`
}

// OCRConfig controls label prefill.
type OCRConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Whitelist string `yaml:"whitelist"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DatabasePath: "satin.db",
		Editor: EditorConfig{
			MinDragPixels:   5,
			HandleHitRadius: 6,
			ZoomStep:        1.25,
		},
	}
}

// Load reads the config at path. A missing file yields the defaults;
// a malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	def := Default()
	if c.DatabasePath == "" {
		c.DatabasePath = def.DatabasePath
	}
	if c.Editor.MinDragPixels <= 0 {
		c.Editor.MinDragPixels = def.Editor.MinDragPixels
	}
	if c.Editor.HandleHitRadius <= 0 {
		c.Editor.HandleHitRadius = def.Editor.HandleHitRadius
	}
	if c.Editor.ZoomStep <= 1 {
		c.Editor.ZoomStep = def.Editor.ZoomStep
	}
}
