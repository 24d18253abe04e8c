// Package render composes annotation scenes into RGBA frames. The same
// renderer backs the interactive canvas and headless export.
package render

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/ilbumi/satin/internal/annotation"
	"github.com/ilbumi/satin/internal/tool"
	"github.com/ilbumi/satin/internal/transform"
	"github.com/ilbumi/satin/pkg/colorutil"
	"github.com/ilbumi/satin/pkg/geometry"
)

// Style controls the colors and stroke widths of a rendered frame.
type Style struct {
	Backdrop     color.RGBA
	Selection    color.RGBA
	Hover        color.RGBA
	Preview      color.RGBA
	HandleFill   color.RGBA
	HandleStroke color.RGBA
	StrokeWidth  int
	HandleSize   int
	LabelScale   int
}

// DefaultStyle returns the editor's standard look.
func DefaultStyle() Style {
	return Style{
		Backdrop:     color.RGBA{R: 34, G: 34, B: 38, A: 255},
		Selection:    colorutil.Yellow,
		Hover:        colorutil.Cyan,
		Preview:      colorutil.Magenta,
		HandleFill:   colorutil.White,
		HandleStroke: colorutil.Black,
		StrokeWidth:  2,
		HandleSize:   7,
		LabelScale:   2,
	}
}

// Frame is everything needed to draw one view of an annotated image.
// Annotations carry committed geometry; WorkBounds substitutes the
// in-flight gesture geometry of WorkID so the store stays untouched
// until the gesture commits.
type Frame struct {
	Background  image.Image
	Viewport    transform.Viewport
	Annotations []annotation.Annotation
	SelectedID  string
	HoveredID   string

	WorkID     string
	WorkBounds geometry.Rect
	HasWork    bool

	// Drawing is the rubber-band box of an in-progress draw gesture,
	// in normalized coordinates.
	Drawing    geometry.Rect
	HasDrawing bool
}

// Scene renders one frame into a caller-provided buffer. Renderer
// draws the full overlay; ImageRenderer only the background image.
type Scene interface {
	Render(dst *image.RGBA, f Frame)
}

// Renderer draws frames into caller-provided RGBA buffers.
type Renderer struct {
	style Style
}

func New(style Style) *Renderer {
	if style.StrokeWidth < 1 {
		style.StrokeWidth = 1
	}
	if style.HandleSize < 3 {
		style.HandleSize = 3
	}
	if style.LabelScale < 1 {
		style.LabelScale = 1
	}
	return &Renderer{style: style}
}

// Render clears dst and draws the frame into it. A nil background is
// tolerated; annotations are drawn over the bare backdrop.
func (r *Renderer) Render(dst *image.RGBA, f Frame) {
	fill(dst, dst.Bounds(), r.style.Backdrop)

	if f.Background != nil {
		r.drawBackground(dst, f)
	}

	for _, a := range f.Annotations {
		bounds := a.Bounds
		if f.HasWork && a.ID == f.WorkID {
			bounds = f.WorkBounds
		}
		screen := transform.RectToScreen(f.Viewport, bounds)

		col := colorutil.ForLabel(a.Label.Text)
		switch a.ID {
		case f.SelectedID:
			col = r.style.Selection
		case f.HoveredID:
			col = r.style.Hover
		}

		strokeRect(dst, screen, col, r.style.StrokeWidth)
		r.drawLabelText(dst, a.Label.Text, screen, col)

		if a.ID == f.SelectedID {
			r.drawHandles(dst, f.Viewport, bounds)
		}
	}

	if f.HasDrawing {
		screen := transform.RectToScreen(f.Viewport, f.Drawing)
		dashRect(dst, screen, r.style.Preview)
	}
}

// ImageRenderer draws the background image alone, skipping every
// overlay. Swapping it in lets the user inspect pixels the boxes
// would otherwise cover.
type ImageRenderer struct {
	inner *Renderer
}

func NewImageRenderer(style Style) *ImageRenderer {
	return &ImageRenderer{inner: New(style)}
}

func (r *ImageRenderer) Render(dst *image.RGBA, f Frame) {
	fill(dst, dst.Bounds(), r.inner.style.Backdrop)
	if f.Background != nil {
		r.inner.drawBackground(dst, f)
	}
}

// RenderAnnotated draws committed annotations over src at its natural
// resolution, for export. Selection state is not drawn.
func RenderAnnotated(src image.Image, list []annotation.Annotation, style Style) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), src, b.Min, xdraw.Src)

	vp := transform.Viewport{
		ImageWidth:   float64(b.Dx()),
		ImageHeight:  float64(b.Dy()),
		CanvasWidth:  float64(b.Dx()),
		CanvasHeight: float64(b.Dy()),
		Zoom:         1,
	}
	r := New(style)
	for _, a := range list {
		screen := transform.RectToScreen(vp, a.Bounds)
		col := colorutil.ForLabel(a.Label.Text)
		strokeRect(out, screen, col, style.StrokeWidth)
		r.drawLabelText(out, a.Label.Text, screen, col)
	}
	return out
}

func (r *Renderer) drawBackground(dst *image.RGBA, f Frame) {
	m := transform.Matrix(f.Viewport)
	topLeft := m.Apply(geometry.NewPoint2D(0, 0))
	bottomRight := m.Apply(geometry.NewPoint2D(1, 1))
	target := image.Rect(int(topLeft.X), int(topLeft.Y), int(bottomRight.X), int(bottomRight.Y))
	if target.Empty() {
		return
	}

	src := f.Background.Bounds()
	// Bilinear when shrinking, nearest when magnifying so individual
	// pixels stay inspectable at high zoom.
	var scaler xdraw.Scaler = xdraw.NearestNeighbor
	if target.Dx() < src.Dx() || target.Dy() < src.Dy() {
		scaler = xdraw.ApproxBiLinear
	}
	scaler.Scale(dst, target, f.Background, src, xdraw.Src, nil)
}

func (r *Renderer) drawLabelText(dst *image.RGBA, text string, screen geometry.Rect, col color.RGBA) {
	if text == "" {
		return
	}
	scale := r.style.LabelScale
	x := int(screen.X)
	y := int(screen.Y) - 5*scale - 3
	if y < dst.Bounds().Min.Y {
		y = int(screen.Y) + r.style.StrokeWidth + 2
	}
	drawText(dst, text, x, y, scale, col)
}

func (r *Renderer) drawHandles(dst *image.RGBA, vp transform.Viewport, bounds geometry.Rect) {
	half := r.style.HandleSize / 2
	for _, p := range tool.HandlePositions(vp, bounds) {
		x1, y1 := int(p.X)-half, int(p.Y)-half
		x2, y2 := int(p.X)+half, int(p.Y)+half
		fill(dst, image.Rect(x1, y1, x2+1, y2+1), r.style.HandleFill)
		strokeRect(dst, geometry.NewRect(float64(x1), float64(y1), float64(x2-x1), float64(y2-y1)),
			r.style.HandleStroke, 1)
	}
}

func fill(dst *image.RGBA, area image.Rectangle, col color.RGBA) {
	area = area.Intersect(dst.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			dst.Set(x, y, col)
		}
	}
}

// strokeRect draws a rectangle outline of the given width, clipped to dst.
func strokeRect(dst *image.RGBA, screen geometry.Rect, col color.RGBA, width int) {
	x1 := int(screen.X)
	y1 := int(screen.Y)
	x2 := int(screen.X + screen.Width)
	y2 := int(screen.Y + screen.Height)
	bounds := dst.Bounds()

	for t := 0; t < width; t++ {
		for x := x1; x <= x2; x++ {
			if x >= bounds.Min.X && x < bounds.Max.X {
				if y1+t >= bounds.Min.Y && y1+t < bounds.Max.Y {
					dst.Set(x, y1+t, col)
				}
				if y2-t >= bounds.Min.Y && y2-t < bounds.Max.Y {
					dst.Set(x, y2-t, col)
				}
			}
		}
		for y := y1; y <= y2; y++ {
			if y >= bounds.Min.Y && y < bounds.Max.Y {
				if x1+t >= bounds.Min.X && x1+t < bounds.Max.X {
					dst.Set(x1+t, y, col)
				}
				if x2-t >= bounds.Min.X && x2-t < bounds.Max.X {
					dst.Set(x2-t, y, col)
				}
			}
		}
	}
}

// dashRect draws a dashed outline, alternating pixels on and off.
func dashRect(dst *image.RGBA, screen geometry.Rect, col color.RGBA) {
	x1 := int(screen.X)
	y1 := int(screen.Y)
	x2 := int(screen.X + screen.Width)
	y2 := int(screen.Y + screen.Height)
	bounds := dst.Bounds()

	for x := x1; x <= x2; x++ {
		if x < bounds.Min.X || x >= bounds.Max.X {
			continue
		}
		if (x+y1)%4 < 2 && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			dst.Set(x, y1, col)
		}
		if (x+y2)%4 < 2 && y2 >= bounds.Min.Y && y2 < bounds.Max.Y {
			dst.Set(x, y2, col)
		}
	}
	for y := y1; y <= y2; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		if (x1+y)%4 < 2 && x1 >= bounds.Min.X && x1 < bounds.Max.X {
			dst.Set(x1, y, col)
		}
		if (x2+y)%4 < 2 && x2 >= bounds.Min.X && x2 < bounds.Max.X {
			dst.Set(x2, y, col)
		}
	}
}
