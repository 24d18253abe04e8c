package tool

import (
	"github.com/ilbumi/satin/internal/transform"
	"github.com/ilbumi/satin/pkg/geometry"
)

// HandlePositions returns the screen positions of the eight resize
// handles for a normalized-space rectangle under the viewport,
// clockwise from the top-left corner.
func HandlePositions(vp transform.Viewport, bounds geometry.Rect) [8]geometry.Point2D {
	r := transform.RectToScreen(vp, bounds)
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	return [8]geometry.Point2D{
		{X: r.X, Y: r.Y},                       // nw
		{X: cx, Y: r.Y},                        // n
		{X: r.X + r.Width, Y: r.Y},             // ne
		{X: r.X + r.Width, Y: cy},              // e
		{X: r.X + r.Width, Y: r.Y + r.Height},  // se
		{X: cx, Y: r.Y + r.Height},             // s
		{X: r.X, Y: r.Y + r.Height},            // sw
		{X: r.X, Y: cy},                        // w
	}
}

var handleOrder = [8]Handle{
	HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW,
}

// hitHandle returns the handle under a screen position, using a fixed
// pixel hit radius independent of zoom.
func hitHandle(vp transform.Viewport, bounds geometry.Rect, pos geometry.Point2D, radius float64) Handle {
	for i, hp := range HandlePositions(vp, bounds) {
		if pos.Distance(hp) <= radius {
			return handleOrder[i]
		}
	}
	return HandleNone
}

// resize returns the bounds that result from dragging the given
// handle to the normalized-space point p. The one or two edges
// implied by the handle move; opposite edges stay anchored. Each
// dimension is floored at minSize instead of inverting, and edges are
// kept inside the unit square.
func resize(bounds geometry.Rect, h Handle, p geometry.Point2D, minSize float64) geometry.Rect {
	left := bounds.X
	top := bounds.Y
	right := bounds.X + bounds.Width
	bottom := bounds.Y + bounds.Height

	px := clamp(p.X, 0, 1)
	py := clamp(p.Y, 0, 1)

	switch h {
	case HandleNW:
		left = min(px, right-minSize)
		top = min(py, bottom-minSize)
	case HandleN:
		top = min(py, bottom-minSize)
	case HandleNE:
		right = max(px, left+minSize)
		top = min(py, bottom-minSize)
	case HandleE:
		right = max(px, left+minSize)
	case HandleSE:
		right = max(px, left+minSize)
		bottom = max(py, top+minSize)
	case HandleS:
		bottom = max(py, top+minSize)
	case HandleSW:
		left = min(px, right-minSize)
		bottom = max(py, top+minSize)
	case HandleW:
		left = min(px, right-minSize)
	}

	left = clamp(left, 0, 1)
	top = clamp(top, 0, 1)
	right = clamp(right, 0, 1)
	bottom = clamp(bottom, 0, 1)

	return geometry.Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
