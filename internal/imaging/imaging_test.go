package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ilbumi/satin/pkg/geometry"
)

// writeTestPNG writes a w x h image with a red pixel at (markX, markY).
func writeTestPNG(t *testing.T, dir string, w, h, markX, markY int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 10, B: 10, A: 255})
		}
	}
	img.Set(markX, markY, color.RGBA{R: 255, A: 255})

	path := filepath.Join(dir, "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("decodes a png with its natural dimensions", func(t *testing.T) {
		path := writeTestPNG(t, t.TempDir(), 64, 48, 0, 0)
		src, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if src.Width() != 64 || src.Height() != 48 {
			t.Errorf("size = %dx%d, want 64x48", src.Width(), src.Height())
		}
		if src.Format != "png" {
			t.Errorf("Format = %q, want png", src.Format)
		}
		if len(src.Checksum) != 64 {
			t.Errorf("Checksum length = %d, want 64 hex chars", len(src.Checksum))
		}
	})

	t.Run("identical files produce identical checksums", func(t *testing.T) {
		dir := t.TempDir()
		path := writeTestPNG(t, dir, 16, 16, 3, 3)
		a, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		b, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if a.Checksum != b.Checksum {
			t.Error("checksums differ for the same file")
		}
	})

	t.Run("missing file returns an error", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("non-image bytes return an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bogus.png")
		if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected a decode error")
		}
	})
}

func TestThumbnail(t *testing.T) {
	t.Run("shrinks the longer edge preserving aspect", func(t *testing.T) {
		path := writeTestPNG(t, t.TempDir(), 200, 100, 0, 0)
		src, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		thumb := src.Thumbnail(50)
		if got := thumb.Bounds(); got.Dx() != 50 || got.Dy() != 25 {
			t.Errorf("thumbnail = %dx%d, want 50x25", got.Dx(), got.Dy())
		}
	})

	t.Run("small images keep their size", func(t *testing.T) {
		path := writeTestPNG(t, t.TempDir(), 20, 10, 0, 0)
		src, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		thumb := src.Thumbnail(50)
		if got := thumb.Bounds(); got.Dx() != 20 || got.Dy() != 10 {
			t.Errorf("thumbnail = %dx%d, want 20x10", got.Dx(), got.Dy())
		}
	})
}

func TestCrop(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	red := color.RGBA{R: 255, A: 255}
	img.Set(30, 40, red)

	t.Run("extracts the requested pixel region", func(t *testing.T) {
		out := Crop(img, geometry.RectInt{X: 20, Y: 30, Width: 20, Height: 20})
		if got := out.Bounds(); got.Dx() != 20 || got.Dy() != 20 {
			t.Fatalf("crop size = %v", got)
		}
		if got := out.RGBAAt(10, 10); got != red {
			t.Errorf("marker pixel = %v, want red", got)
		}
	})

	t.Run("clips regions that overflow the image", func(t *testing.T) {
		out := Crop(img, geometry.RectInt{X: 90, Y: 90, Width: 50, Height: 50})
		if got := out.Bounds(); got.Dx() != 10 || got.Dy() != 10 {
			t.Errorf("crop size = %v, want 10x10", got)
		}
	})

	t.Run("normalized crop converts to pixels", func(t *testing.T) {
		out := CropNormalized(img, geometry.NewRect(0.2, 0.3, 0.2, 0.2))
		if got := out.Bounds(); got.Dx() != 20 || got.Dy() != 20 {
			t.Fatalf("crop size = %v", got)
		}
		if got := out.RGBAAt(10, 10); got != red {
			t.Errorf("marker pixel = %v, want red", got)
		}
	})
}

func TestIsSupportedFormat(t *testing.T) {
	for _, path := range []string{"a.png", "b.JPG", "c.tiff", "d.tif", "e.jpeg"} {
		if !IsSupportedFormat(path) {
			t.Errorf("IsSupportedFormat(%q) = false", path)
		}
	}
	for _, path := range []string{"a.gif", "b.bmp", "c.txt", "noext"} {
		if IsSupportedFormat(path) {
			t.Errorf("IsSupportedFormat(%q) = true", path)
		}
	}
}
