package editor

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/ilbumi/satin/internal/annotation"
	"github.com/ilbumi/satin/internal/render"
	"github.com/ilbumi/satin/internal/tool"
	"github.com/ilbumi/satin/pkg/geometry"
)

// AnnotationCanvas displays the task image and feeds pointer and key
// events into the editing tool. All drawing happens in the raster
// callback; the widget itself holds no geometry.
type AnnotationCanvas struct {
	widget.BaseWidget

	store    *annotation.Store
	tool     *tool.Tool
	renderer render.Scene

	raster     *fynecanvas.Raster
	background image.Image

	dragging    bool
	lastDragPos fyne.Position
	buffer      *image.RGBA

	// Desktop drivers deliver MouseDown/MouseUp with real button and
	// modifier state; once seen, the synthesized Dragged/Tapped
	// fallbacks stand down.
	mouseDriven  bool
	pressed      bool
	activeButton tool.Button
	spaceHeld    bool
}

// NewAnnotationCanvas builds the canvas over a shared store and tool.
func NewAnnotationCanvas(store *annotation.Store, tl *tool.Tool) *AnnotationCanvas {
	ac := &AnnotationCanvas{
		store:    store,
		tool:     tl,
		renderer: render.New(render.DefaultStyle()),
	}
	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels
	ac.raster.SetMinSize(fyne.NewSize(400, 300))
	ac.ExtendBaseWidget(ac)

	for _, ev := range []annotation.EventType{
		annotation.EventAnnotationsChanged,
		annotation.EventSelectionChanged,
		annotation.EventHoverChanged,
		annotation.EventViewportChanged,
		annotation.EventDrawingChanged,
	} {
		store.On(ev, func(interface{}) { ac.Refresh() })
	}
	tl.OnPreviewChanged(func() { ac.Refresh() })

	return ac
}

// SetBackground swaps the task image shown under the annotations.
func (ac *AnnotationCanvas) SetBackground(img image.Image) {
	ac.background = img
	ac.Refresh()
}

// SetScene swaps the renderer, e.g. to hide the overlay while
// inspecting pixels under the boxes.
func (ac *AnnotationCanvas) SetScene(s render.Scene) {
	ac.renderer = s
	ac.Refresh()
}

func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.raster)
}

// draw is the raster callback. w and h track the widget size, so the
// viewport follows window resizes for free.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	vp := ac.store.Viewport()
	if vp.CanvasWidth != float64(w) || vp.CanvasHeight != float64(h) {
		ac.store.SetCanvasSize(float64(w), float64(h))
		vp = ac.store.Viewport()
	}

	if ac.buffer == nil || ac.buffer.Bounds().Dx() != w || ac.buffer.Bounds().Dy() != h {
		ac.buffer = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	frame := render.Frame{
		Background:  ac.background,
		Viewport:    vp,
		Annotations: ac.store.Snapshot(),
		SelectedID:  ac.store.SelectedID(),
		HoveredID:   ac.store.HoveredID(),
	}
	if id, work, ok := ac.tool.ActiveGeometry(); ok {
		frame.WorkID = id
		frame.WorkBounds = work
		frame.HasWork = true
	}
	if active, start, current := ac.store.DrawingState(); active {
		frame.Drawing = geometry.RectFromPoints(start, current)
		frame.HasDrawing = frame.Drawing.Width > 0 && frame.Drawing.Height > 0
	}

	ac.renderer.Render(ac.buffer, frame)
	return ac.buffer
}

func (ac *AnnotationCanvas) Refresh() {
	ac.raster.Refresh()
	ac.BaseWidget.Refresh()
}

func buttonFor(b desktop.MouseButton) tool.Button {
	switch b {
	case desktop.MouseButtonTertiary:
		return tool.ButtonMiddle
	case desktop.MouseButtonSecondary:
		return tool.ButtonSecondary
	default:
		return tool.ButtonPrimary
	}
}

func (ac *AnnotationCanvas) pointerEvent(pos fyne.Position, button tool.Button) tool.PointerEvent {
	return tool.PointerEvent{
		Pos:    geometry.NewPoint2D(float64(pos.X), float64(pos.Y)),
		Button: button,
		Mods:   tool.Modifiers{Space: ac.spaceHeld},
	}
}

// MouseDown starts gestures with the real button and modifier state:
// the middle button, or primary while space is held, pans.
func (ac *AnnotationCanvas) MouseDown(ev *desktop.MouseEvent) {
	ac.mouseDriven = true
	ac.pressed = true
	ac.activeButton = buttonFor(ev.Button)
	ac.lastDragPos = ev.Position

	if c := fyne.CurrentApp().Driver().CanvasForObject(ac); c != nil {
		c.Focus(ac)
	}

	pe := ac.pointerEvent(ev.Position, ac.activeButton)
	pe.Mods.Shift = ev.Modifier&fyne.KeyModifierShift != 0
	pe.Mods.Ctrl = ev.Modifier&fyne.KeyModifierControl != 0
	pe.Mods.Alt = ev.Modifier&fyne.KeyModifierAlt != 0
	ac.tool.PointerDown(pe)
}

func (ac *AnnotationCanvas) MouseUp(ev *desktop.MouseEvent) {
	if !ac.pressed {
		return
	}
	ac.pressed = false
	ac.dragging = false
	ac.tool.PointerUp(ac.pointerEvent(ev.Position, buttonFor(ev.Button)))
}

// Dragged drives gestures on drivers without mouse button events; the
// first drag callback doubles as a primary-button pointer-down there.
// Under a desktop driver it only relays movement.
func (ac *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	if !ac.dragging && !ac.pressed {
		start := fyne.Position{
			X: ev.Position.X - ev.Dragged.DX,
			Y: ev.Position.Y - ev.Dragged.DY,
		}
		ac.tool.PointerDown(ac.pointerEvent(start, tool.ButtonPrimary))
	}
	ac.dragging = true
	ac.lastDragPos = ev.Position

	button := tool.ButtonPrimary
	if ac.pressed {
		button = ac.activeButton
	}
	ac.tool.PointerMove(ac.pointerEvent(ev.Position, button))
}

func (ac *AnnotationCanvas) DragEnd() {
	if !ac.dragging {
		return
	}
	ac.dragging = false
	if ac.mouseDriven {
		return // MouseUp completes the gesture
	}
	ac.tool.PointerUp(ac.pointerEvent(ac.lastDragPos, tool.ButtonPrimary))
}

// Tapped selects (or clears the selection) without a drag, on drivers
// that report no mouse button events.
func (ac *AnnotationCanvas) Tapped(ev *fyne.PointEvent) {
	if ac.dragging || ac.mouseDriven {
		return
	}
	ac.tool.PointerDown(ac.pointerEvent(ev.Position, tool.ButtonPrimary))
	ac.tool.PointerUp(ac.pointerEvent(ev.Position, tool.ButtonPrimary))
}

// Scrolled zooms around the cursor.
func (ac *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	ac.tool.Wheel(tool.WheelEvent{
		Pos:    geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y)),
		DeltaY: float64(ev.Scrolled.DY),
	})
}

// MouseMoved keeps hover highlighting live between gestures and
// relays movement of non-primary drags, which produce no Dragged
// callbacks.
func (ac *AnnotationCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if ac.dragging {
		return
	}
	button := tool.ButtonPrimary
	if ac.pressed {
		button = ac.activeButton
		ac.lastDragPos = ev.Position
	}
	ac.tool.PointerMove(ac.pointerEvent(ev.Position, button))
}

func (ac *AnnotationCanvas) MouseIn(*desktop.MouseEvent) {}

func (ac *AnnotationCanvas) MouseOut() {
	ac.store.SetHoveredAnnotation("")
}

// TypedKey routes editing keys while the canvas has focus.
func (ac *AnnotationCanvas) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyEscape:
		ac.tool.KeyDown(tool.KeyEscape)
	case fyne.KeyDelete:
		ac.tool.KeyDown(tool.KeyDelete)
	case fyne.KeyBackspace:
		ac.tool.KeyDown(tool.KeyBackspace)
	}
}

// KeyDown and KeyUp track the space bar so a primary-button drag can
// pan while it is held.
func (ac *AnnotationCanvas) KeyDown(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeySpace {
		ac.spaceHeld = true
	}
}

func (ac *AnnotationCanvas) KeyUp(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeySpace {
		ac.spaceHeld = false
	}
}

func (ac *AnnotationCanvas) TypedRune(rune) {}

func (ac *AnnotationCanvas) FocusGained() {}

// FocusLost drops the held-key state; a key release while unfocused
// would otherwise leave the pan modifier stuck.
func (ac *AnnotationCanvas) FocusLost() {
	ac.spaceHeld = false
}

var (
	_ fyne.Draggable    = (*AnnotationCanvas)(nil)
	_ fyne.Tappable     = (*AnnotationCanvas)(nil)
	_ fyne.Scrollable   = (*AnnotationCanvas)(nil)
	_ fyne.Focusable    = (*AnnotationCanvas)(nil)
	_ desktop.Hoverable = (*AnnotationCanvas)(nil)
	_ desktop.Mouseable = (*AnnotationCanvas)(nil)
	_ desktop.Keyable   = (*AnnotationCanvas)(nil)
)
