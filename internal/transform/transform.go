// Package transform converts between normalized image coordinates and
// screen coordinates for the annotation canvas.
//
// Three coordinate spaces are involved: normalized image space ([0,1]
// fractions of the image, what annotations are stored in), natural
// image-pixel space, and screen space (the rendering surface, after
// the fit scale, zoom, and pan are applied). All functions here are
// pure over a Viewport snapshot so they can be recomputed every frame.
package transform

import (
	"github.com/ilbumi/satin/pkg/geometry"
)

// Zoom clamp range for the canvas.
const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// Viewport is a snapshot of the editing surface: the natural image
// dimensions, the on-screen canvas dimensions, and the current
// zoom/pan. It is plain data; the Store owns the live copy.
type Viewport struct {
	ImageWidth   float64
	ImageHeight  float64
	CanvasWidth  float64
	CanvasHeight float64
	Zoom         float64
	PanX         float64
	PanY         float64
}

// Fit describes how an image is scaled and positioned to be fully
// visible and centered inside a canvas.
type Fit struct {
	Scale float64
	X     float64
	Y     float64
}

// CalculateImageFit returns the uniform scale and centering offset
// that fit an imageW x imageH image inside a canvasW x canvasH canvas
// without clipping. Degenerate dimensions yield the identity fit
// rather than a division by zero.
func CalculateImageFit(imageW, imageH, canvasW, canvasH float64) Fit {
	if imageW <= 0 || imageH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return Fit{Scale: 1}
	}

	scale := canvasW / imageW
	if other := canvasH / imageH; other < scale {
		scale = other
	}

	return Fit{
		Scale: scale,
		X:     (canvasW - imageW*scale) / 2,
		Y:     (canvasH - imageH*scale) / 2,
	}
}

// Matrix returns the affine transform taking normalized image
// coordinates to screen coordinates for the viewport: normalized ->
// image pixels -> fit -> zoom -> pan.
func Matrix(vp Viewport) geometry.AffineTransform {
	fit := CalculateImageFit(vp.ImageWidth, vp.ImageHeight, vp.CanvasWidth, vp.CanvasHeight)
	zoom := vp.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	toPixels := geometry.Scale(vp.ImageWidth, vp.ImageHeight)
	if vp.ImageWidth <= 0 || vp.ImageHeight <= 0 {
		toPixels = geometry.Identity()
	}

	fitted := geometry.Translation(fit.X, fit.Y).Compose(geometry.Scale(fit.Scale, fit.Scale))
	zoomed := geometry.Translation(vp.PanX, vp.PanY).Compose(geometry.Scale(zoom, zoom))
	return zoomed.Compose(fitted).Compose(toPixels)
}

// ImageToScreen maps a point in normalized image space to screen
// coordinates under the viewport.
func ImageToScreen(vp Viewport, p geometry.Point2D) geometry.Point2D {
	return Matrix(vp).Apply(p)
}

// ScreenToImage maps a screen coordinate back to normalized image
// space. It is the exact inverse of ImageToScreen; when the viewport
// is degenerate the point is returned unchanged.
func ScreenToImage(vp Viewport, p geometry.Point2D) geometry.Point2D {
	inv, ok := Matrix(vp).Inverse()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// ScreenDeltaToImage converts a screen-space displacement to a
// normalized image-space displacement. Only the scale components of
// the transform apply to a delta, not the pan/fit offsets.
func ScreenDeltaToImage(vp Viewport, dx, dy float64) (float64, float64) {
	origin := ScreenToImage(vp, geometry.Point2D{})
	moved := ScreenToImage(vp, geometry.Point2D{X: dx, Y: dy})
	return moved.X - origin.X, moved.Y - origin.Y
}

// RectToScreen maps a normalized-space rectangle to a screen-space
// rectangle under the viewport.
func RectToScreen(vp Viewport, r geometry.Rect) geometry.Rect {
	tl := ImageToScreen(vp, r.TopLeft())
	br := ImageToScreen(vp, r.BottomRight())
	return geometry.RectFromPoints(tl, br)
}

// ClampZoom restricts a zoom factor to the supported range.
func ClampZoom(zoom float64) float64 {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}
