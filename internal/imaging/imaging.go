// Package imaging loads source images for annotation and derives
// thumbnails and crops from them.
package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/ilbumi/satin/pkg/geometry"
)

// Source is a decoded image file together with its identity metadata.
type Source struct {
	Path     string
	Image    image.Image
	Format   string // decoder name: "png", "jpeg", "tiff"
	Checksum string // hex sha256 of the file bytes
}

// Load reads and decodes the image at path. The whole file is read up
// front so the checksum covers exactly the bytes on disk.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	sum := sha256.Sum256(data)
	return &Source{
		Path:     path,
		Image:    img,
		Format:   format,
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

// Width returns the image width in pixels.
func (s *Source) Width() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Source) Height() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (s *Source) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(s.Width()),
		Height: float64(s.Height()),
	}
}

// Thumbnail scales the image down so its longer edge is maxEdge pixels,
// preserving aspect ratio. Images already within the limit are returned
// at their natural size.
func (s *Source) Thumbnail(maxEdge int) *image.RGBA {
	w, h := s.Width(), s.Height()
	if w == 0 || h == 0 || maxEdge <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}

	tw, th := w, h
	if w > maxEdge || h > maxEdge {
		if w >= h {
			tw = maxEdge
			th = h * maxEdge / w
		} else {
			th = maxEdge
			tw = w * maxEdge / h
		}
		if tw < 1 {
			tw = 1
		}
		if th < 1 {
			th = 1
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), s.Image, s.Image.Bounds(), xdraw.Src, nil)
	return out
}

// Crop copies the pixel region r out of img. The region is clipped to
// the image; an empty intersection yields an empty image.
func Crop(img image.Image, r geometry.RectInt) *image.RGBA {
	area := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height).Intersect(img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	xdraw.Draw(out, out.Bounds(), img, area.Min, xdraw.Src)
	return out
}

// CropNormalized crops the normalized region of img, converting to
// pixel coordinates against the image's own bounds.
func CropNormalized(img image.Image, r geometry.Rect) *image.RGBA {
	b := img.Bounds()
	return Crop(img, geometry.RectInt{
		X:      b.Min.X + int(r.X*float64(b.Dx())),
		Y:      b.Min.Y + int(r.Y*float64(b.Dy())),
		Width:  int(r.Width * float64(b.Dx())),
		Height: int(r.Height * float64(b.Dy())),
	})
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*.tiff, *.tif, *.png, *.jpg, *.jpeg)"
}
