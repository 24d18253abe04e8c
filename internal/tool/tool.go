package tool

import (
	"github.com/ilbumi/satin/internal/annotation"
	"github.com/ilbumi/satin/internal/transform"
	"github.com/ilbumi/satin/pkg/geometry"
)

// Config holds the tunable interaction parameters.
type Config struct {
	// MinDragPixels is the minimum draw size, in screen pixels, below
	// which a draw gesture is discarded as an accidental click.
	MinDragPixels float64
	// HandleHitRadius is the pixel radius around a resize handle that
	// counts as grabbing it, independent of zoom.
	HandleHitRadius float64
	// MinSizeNorm is the smallest normalized width/height a resize
	// may produce.
	MinSizeNorm float64
	// ZoomStep is the wheel zoom factor per notch.
	ZoomStep float64
}

// DefaultConfig returns the default interaction parameters.
func DefaultConfig() Config {
	return Config{
		MinDragPixels:   5,
		HandleHitRadius: 6,
		MinSizeNorm:     0.001,
		ZoomStep:        1.25,
	}
}

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDraw
	gestureMove
	gestureResize
	gesturePan
)

// Tool interprets pointer and keyboard events against the store's
// active tool and mode. One gesture is in flight at a time; a new
// pointer-down while a gesture is active is ignored.
type Tool struct {
	store *annotation.Store
	cfg   Config

	gesture gestureKind

	// Pan gesture.
	panStartScreen geometry.Point2D
	panOriginX     float64
	panOriginY     float64

	// Move/resize gesture. workBounds is the live preview geometry;
	// the store is only mutated at pointer-up.
	targetID   string
	preBounds  geometry.Rect
	workBounds geometry.Rect
	grabHandle Handle
	grabOffset geometry.Point2D

	previewListeners []func()
}

// New creates a tool bound to a store.
func New(store *annotation.Store, cfg Config) *Tool {
	if cfg.MinDragPixels <= 0 {
		cfg.MinDragPixels = DefaultConfig().MinDragPixels
	}
	if cfg.HandleHitRadius <= 0 {
		cfg.HandleHitRadius = DefaultConfig().HandleHitRadius
	}
	if cfg.MinSizeNorm <= 0 {
		cfg.MinSizeNorm = DefaultConfig().MinSizeNorm
	}
	if cfg.ZoomStep <= 1 {
		cfg.ZoomStep = DefaultConfig().ZoomStep
	}
	return &Tool{store: store, cfg: cfg}
}

// OnPreviewChanged registers a callback fired whenever the live
// move/resize preview geometry changes, so the renderer can redraw
// without the store being committed to yet.
func (t *Tool) OnPreviewChanged(fn func()) {
	t.previewListeners = append(t.previewListeners, fn)
}

func (t *Tool) notifyPreview() {
	for _, fn := range t.previewListeners {
		fn()
	}
}

// ActiveGeometry reports the in-flight preview bounds of a move or
// resize gesture. The renderer draws these instead of the committed
// bounds for the affected annotation.
func (t *Tool) ActiveGeometry() (id string, bounds geometry.Rect, ok bool) {
	if t.gesture != gestureMove && t.gesture != gestureResize {
		return "", geometry.Rect{}, false
	}
	return t.targetID, t.workBounds, true
}

// GestureActive reports whether any gesture is in flight.
func (t *Tool) GestureActive() bool {
	return t.gesture != gestureNone
}

// PointerDown starts a gesture according to the active tool and mode.
func (t *Tool) PointerDown(ev PointerEvent) {
	if t.gesture != gestureNone {
		return
	}

	vp := t.store.Viewport()

	// Middle button, or primary plus the pan modifier, always pans.
	if ev.Button == ButtonMiddle || (ev.Button == ButtonPrimary && ev.Mods.Space) {
		t.gesture = gesturePan
		t.panStartScreen = ev.Pos
		t.panOriginX = vp.PanX
		t.panOriginY = vp.PanY
		return
	}
	if ev.Button != ButtonPrimary {
		return
	}

	switch t.store.ActiveTool() {
	case annotation.ToolBBox:
		if t.store.CurrentMode() != annotation.ModeEdit {
			return
		}
		start := clampToUnit(transform.ScreenToImage(vp, ev.Pos))
		t.gesture = gestureDraw
		t.store.BeginDrawing(start)

	case annotation.ToolSelect:
		t.pointerDownSelect(vp, ev)
	}
}

func (t *Tool) pointerDownSelect(vp transform.Viewport, ev PointerEvent) {
	editable := t.store.CurrentMode() == annotation.ModeEdit

	// A handle of the current selection wins over plain hit-testing.
	if editable {
		if sel, ok := t.store.Selected(); ok {
			if h := hitHandle(vp, sel.Bounds, ev.Pos, t.cfg.HandleHitRadius); h != HandleNone {
				t.gesture = gestureResize
				t.targetID = sel.ID
				t.preBounds = sel.Bounds
				t.workBounds = sel.Bounds
				t.grabHandle = h
				t.notifyPreview()
				return
			}
		}
	}

	imgPos := transform.ScreenToImage(vp, ev.Pos)
	hit := t.hitTest(imgPos)
	if hit == nil {
		t.store.SelectAnnotation("")
		return
	}

	t.store.SelectAnnotation(hit.ID)
	if !editable {
		return
	}

	t.gesture = gestureMove
	t.targetID = hit.ID
	t.preBounds = hit.Bounds
	t.workBounds = hit.Bounds
	t.grabOffset = imgPos.Sub(hit.Bounds.TopLeft())
	t.notifyPreview()
}

// hitTest returns the topmost annotation containing the normalized
// point. Later entries render on top, so iteration runs back to
// front and the last-created annotation wins ties.
func (t *Tool) hitTest(p geometry.Point2D) *annotation.Annotation {
	list := t.store.Annotations()
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Bounds.Contains(p) {
			return list[i]
		}
	}
	return nil
}

// PointerMove advances the gesture in flight, updating only transient
// preview state.
func (t *Tool) PointerMove(ev PointerEvent) {
	vp := t.store.Viewport()

	switch t.gesture {
	case gestureNone:
		t.updateHover(vp, ev)

	case gesturePan:
		vp.PanX = t.panOriginX + ev.Pos.X - t.panStartScreen.X
		vp.PanY = t.panOriginY + ev.Pos.Y - t.panStartScreen.Y
		t.store.SetViewport(vp)

	case gestureDraw:
		t.store.UpdateDrawing(clampToUnit(transform.ScreenToImage(vp, ev.Pos)))

	case gestureMove:
		imgPos := transform.ScreenToImage(vp, ev.Pos)
		moved := t.preBounds
		moved.X = imgPos.X - t.grabOffset.X
		moved.Y = imgPos.Y - t.grabOffset.Y
		t.workBounds = moved.ClampToUnit()
		t.notifyPreview()

	case gestureResize:
		imgPos := transform.ScreenToImage(vp, ev.Pos)
		t.workBounds = resize(t.preBounds, t.grabHandle, imgPos, t.cfg.MinSizeNorm)
		t.notifyPreview()
	}
}

func (t *Tool) updateHover(vp transform.Viewport, ev PointerEvent) {
	hit := t.hitTest(transform.ScreenToImage(vp, ev.Pos))
	if hit == nil {
		t.store.SetHoveredAnnotation("")
		return
	}
	t.store.SetHoveredAnnotation(hit.ID)
}

// PointerUp completes the gesture in flight. This is the only point
// at which move/resize geometry is committed to the store.
func (t *Tool) PointerUp(ev PointerEvent) {
	gesture := t.gesture
	t.gesture = gestureNone

	switch gesture {
	case gestureDraw:
		t.finishDraw(ev)

	case gestureMove, gestureResize:
		target := t.targetID
		final := t.workBounds
		t.targetID = ""
		t.grabHandle = HandleNone
		if final != t.preBounds {
			t.store.UpdateAnnotation(target, annotation.Update{Bounds: &final})
		}
		t.notifyPreview()

	case gesturePan:
		// Pan is already applied; nothing to commit.
	}
}

func (t *Tool) finishDraw(ev PointerEvent) {
	vp := t.store.Viewport()
	active, start, _ := t.store.DrawingState()
	t.store.ClearDrawing()
	if !active {
		return
	}

	end := clampToUnit(transform.ScreenToImage(vp, ev.Pos))
	bounds := geometry.RectFromPoints(start, end)

	// Discard accidental clicks: the box must span a minimum number
	// of screen pixels in both dimensions.
	screenRect := transform.RectToScreen(vp, bounds)
	if screenRect.Width < t.cfg.MinDragPixels || screenRect.Height < t.cfg.MinDragPixels {
		return
	}

	t.store.AddAnnotation(bounds, annotation.Label{})
}

// Wheel zooms around the pointer position, keeping the image point
// under the cursor fixed.
func (t *Tool) Wheel(ev WheelEvent) {
	vp := t.store.Viewport()
	oldZoom := vp.Zoom
	if oldZoom <= 0 {
		oldZoom = 1
	}

	newZoom := oldZoom * t.cfg.ZoomStep
	if ev.DeltaY < 0 {
		newZoom = oldZoom / t.cfg.ZoomStep
	}
	newZoom = transform.ClampZoom(newZoom)

	ratio := newZoom / oldZoom
	vp.PanX = ev.Pos.X - (ev.Pos.X-vp.PanX)*ratio
	vp.PanY = ev.Pos.Y - (ev.Pos.Y-vp.PanY)*ratio
	vp.Zoom = newZoom
	t.store.SetViewport(vp)
}

// KeyDown handles Escape (cancel the gesture in flight, reverting to
// pre-gesture state) and Delete/Backspace (delete the selection).
func (t *Tool) KeyDown(key Key) {
	switch key {
	case KeyEscape:
		t.Cancel()

	case KeyDelete, KeyBackspace:
		if t.gesture != gestureNone {
			return
		}
		if id := t.store.SelectedID(); id != "" {
			t.store.DeleteAnnotation(id)
		}
	}
}

// Cancel aborts any gesture in flight without committing geometry.
// The pre-gesture state is restored exactly.
func (t *Tool) Cancel() {
	gesture := t.gesture
	t.gesture = gestureNone

	switch gesture {
	case gestureDraw:
		t.store.ClearDrawing()

	case gestureMove, gestureResize:
		t.targetID = ""
		t.grabHandle = HandleNone
		t.notifyPreview()

	case gesturePan:
		vp := t.store.Viewport()
		vp.PanX = t.panOriginX
		vp.PanY = t.panOriginY
		t.store.SetViewport(vp)
	}
}

func clampToUnit(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: clamp(p.X, 0, 1), Y: clamp(p.Y, 0, 1)}
}
