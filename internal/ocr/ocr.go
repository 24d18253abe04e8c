// Package ocr reads printed text out of annotated image regions so the
// editor can prefill label text for a freshly drawn box.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/ilbumi/satin/internal/imaging"
	"github.com/ilbumi/satin/pkg/geometry"
)

// minRegionEdge is the smallest crop edge fed to Tesseract; smaller
// regions are upscaled first.
const minRegionEdge = 150

// Engine provides OCR functionality using Tesseract.
type Engine struct {
	client    *gosseract.Client
	whitelist string
}

// NewEngine creates a new OCR engine for English text.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// SetWhitelist restricts recognition to the given characters. An empty
// string removes the restriction.
func (e *Engine) SetWhitelist(chars string) {
	e.whitelist = chars
}

// RecognizeRegion performs OCR on the normalized region of img and
// returns the cleaned-up text, which may be empty.
func (e *Engine) RecognizeRegion(img image.Image, bounds geometry.Rect) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}
	if !bounds.InUnitSquare() {
		return "", fmt.Errorf("invalid region bounds %+v", bounds)
	}

	crop := imaging.Crop(img, regionPixels(img, bounds))
	if crop.Bounds().Empty() {
		return "", fmt.Errorf("empty region")
	}

	prepared := upscaleSmall(crop)
	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return "", fmt.Errorf("failed to encode region: %w", err)
	}

	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetWhitelist(e.whitelist); err != nil && e.whitelist != "" {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return cleanText(text), nil
}

// regionPixels converts normalized bounds to pixel bounds of img.
func regionPixels(img image.Image, bounds geometry.Rect) geometry.RectInt {
	b := img.Bounds()
	return geometry.RectInt{
		X:      b.Min.X + int(bounds.X*float64(b.Dx())),
		Y:      b.Min.Y + int(bounds.Y*float64(b.Dy())),
		Width:  int(bounds.Width * float64(b.Dx())),
		Height: int(bounds.Height * float64(b.Dy())),
	}
}

// upscaleSmall enlarges crops whose shorter edge is below minRegionEdge.
// Tesseract performs poorly on tiny type.
func upscaleSmall(crop *image.RGBA) *image.RGBA {
	w, h := crop.Bounds().Dx(), crop.Bounds().Dy()
	short := w
	if h < short {
		short = h
	}
	if short == 0 || short >= minRegionEdge {
		return crop
	}

	factor := float64(minRegionEdge) / float64(short)
	out := image.NewRGBA(image.Rect(0, 0, int(float64(w)*factor), int(float64(h)*factor)))
	xdraw.CatmullRom.Scale(out, out.Bounds(), crop, crop.Bounds(), xdraw.Src, nil)
	return out
}

// cleanText collapses whitespace runs and trims the result.
func cleanText(text string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(text)), " ")
}
