package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.DatabasePath != "satin.db" || cfg.Editor.MinDragPixels != 5 {
			t.Errorf("defaults = %+v", cfg)
		}
	})

	t.Run("partial file keeps defaults for omitted fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "satin.yaml")
		content := `
database_path: /var/lib/satin/work.db
editor:
  min_drag_pixels: 8
labels:
  - text: resistor
    tags: [smd]
  - text: capacitor
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.DatabasePath != "/var/lib/satin/work.db" {
			t.Errorf("DatabasePath = %q", cfg.DatabasePath)
		}
		if cfg.Editor.MinDragPixels != 8 {
			t.Errorf("MinDragPixels = %v, want 8", cfg.Editor.MinDragPixels)
		}
		if cfg.Editor.HandleHitRadius != 6 {
			t.Errorf("HandleHitRadius = %v, want default 6", cfg.Editor.HandleHitRadius)
		}
		if len(cfg.Labels) != 2 || cfg.Labels[0].Text != "resistor" {
			t.Errorf("Labels = %+v", cfg.Labels)
		}
	})

	t.Run("malformed yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("editor: [broken"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "satin.yaml")

	cfg := Default()
	cfg.DatabasePath = "elsewhere.db"
	cfg.OCR.Enabled = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DatabasePath != "elsewhere.db" || !loaded.OCR.Enabled {
		t.Errorf("round-trip lost data: %+v", loaded)
	}
}
