package annotation

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ilbumi/satin/internal/transform"
	"github.com/ilbumi/satin/pkg/geometry"
)

// Mode is the canvas interaction mode.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "view"
}

// ToolKind is the active canvas tool.
type ToolKind int

const (
	ToolSelect ToolKind = iota
	ToolBBox
)

func (t ToolKind) String() string {
	if t == ToolBBox {
		return "bbox"
	}
	return "select"
}

// EventType identifies store change notifications.
type EventType int

const (
	EventAnnotationsChanged EventType = iota
	EventSelectionChanged
	EventHoverChanged
	EventViewportChanged
	EventToolChanged
	EventModeChanged
	EventDrawingChanged
	EventDirtyChanged
)

// EventListener is called when a store event occurs. Listeners run
// synchronously inside the mutating call, after the new state is
// visible.
type EventListener func(data interface{})

// Store owns the authoritative annotation list for the open task plus
// the per-session canvas state. The tool and renderer read and mutate
// only through its operations.
type Store struct {
	mu sync.RWMutex

	taskID  string
	imageID string
	bound   bool

	annotations []*Annotation

	viewport   transform.Viewport
	mode       Mode
	activeTool ToolKind

	selectedID string
	hoveredID  string

	// Drawing transients, populated only between a qualifying
	// pointer-down and the matching pointer-up.
	drawing     bool
	drawStart   geometry.Point2D
	drawCurrent geometry.Point2D

	dirty bool

	listeners map[EventType][]EventListener
}

// NewStore creates an empty, unbound store.
func NewStore() *Store {
	return &Store{
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Store) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// emit triggers all listeners for the specified event type.
func (s *Store) emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Initialize binds the store to a task and resets all transient
// state. It must be called once per editing session before any
// mutation.
func (s *Store) Initialize(taskID, imageID string, imageW, imageH float64) {
	s.mu.Lock()
	s.taskID = taskID
	s.imageID = imageID
	s.bound = true
	s.annotations = nil
	s.selectedID = ""
	s.hoveredID = ""
	s.drawing = false
	s.drawStart = geometry.Point2D{}
	s.drawCurrent = geometry.Point2D{}
	s.dirty = false
	s.mode = ModeEdit
	s.activeTool = ToolSelect
	s.viewport = transform.Viewport{
		ImageWidth:  imageW,
		ImageHeight: imageH,
		Zoom:        1,
	}
	s.mu.Unlock()

	s.emit(EventAnnotationsChanged, nil)
	s.emit(EventViewportChanged, s.Viewport())
}

// TaskID returns the bound task id.
func (s *Store) TaskID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskID
}

// ImageID returns the bound image id.
func (s *Store) ImageID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.imageID
}

// LoadAnnotations replaces the current annotation set wholesale and
// marks the store clean. Used on initial load from the service.
func (s *Store) LoadAnnotations(list []*Annotation) {
	s.mu.Lock()
	if !s.bound {
		s.mu.Unlock()
		log.Printf("annotation: load into unbound store ignored")
		return
	}
	s.annotations = make([]*Annotation, 0, len(list))
	for _, a := range list {
		if a == nil {
			continue
		}
		s.annotations = append(s.annotations, a.Clone())
	}
	s.selectedID = ""
	s.hoveredID = ""
	s.dirty = false
	s.mu.Unlock()

	s.emit(EventAnnotationsChanged, nil)
	s.emit(EventDirtyChanged, false)
}

// Annotations returns the annotation list in z-order (oldest first,
// topmost last). The returned slice is a copy; the records are live
// and must be treated as read-only.
func (s *Store) Annotations() []*Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Annotation, len(s.annotations))
	copy(out, s.annotations)
	return out
}

// Get looks up an annotation by id.
func (s *Store) Get(id string) (*Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id)
}

// find must be called with the lock held.
func (s *Store) find(id string) (*Annotation, bool) {
	if id == "" {
		return nil, false
	}
	for _, a := range s.annotations {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// AddAnnotation validates bounds, then appends a new selected
// annotation. Invalid bounds are rejected without inserting anything
// and the method returns false.
func (s *Store) AddAnnotation(bounds geometry.Rect, label Label) (*Annotation, bool) {
	if !bounds.InUnitSquare() {
		log.Printf("annotation: rejected invalid bounds %+v", bounds)
		return nil, false
	}

	now := time.Now()
	a := &Annotation{
		ID:        uuid.NewString(),
		Kind:      KindBBox,
		Bounds:    bounds,
		Label:     label.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
		Selected:  true,
	}
	if a.Label.Tags == nil {
		a.Label.Tags = []string{}
	}

	s.mu.Lock()
	if !s.bound {
		s.mu.Unlock()
		log.Printf("annotation: add to unbound store ignored")
		return nil, false
	}
	for _, other := range s.annotations {
		other.Selected = false
	}
	s.annotations = append(s.annotations, a)
	s.selectedID = a.ID
	wasDirty := s.dirty
	s.dirty = true
	s.mu.Unlock()

	s.emit(EventAnnotationsChanged, a.ID)
	s.emit(EventSelectionChanged, a.ID)
	if !wasDirty {
		s.emit(EventDirtyChanged, true)
	}
	return a, true
}

// UpdateAnnotation merges a partial change into the annotation with
// the given id. Unknown ids and invalid geometry are no-ops returning
// false; the prior valid bounds are retained.
func (s *Store) UpdateAnnotation(id string, upd Update) bool {
	if upd.Bounds != nil && !upd.Bounds.InUnitSquare() {
		log.Printf("annotation: rejected invalid bounds %+v for %s", *upd.Bounds, id)
		return false
	}

	s.mu.Lock()
	a, ok := s.find(id)
	if !ok {
		s.mu.Unlock()
		log.Printf("annotation: update of unknown id %s ignored", id)
		return false
	}

	if upd.Bounds != nil {
		a.Bounds = *upd.Bounds
	}
	if upd.Text != nil {
		a.Label.Text = *upd.Text
	}
	if upd.Tags != nil {
		a.Label.Tags = make([]string, len(upd.Tags))
		copy(a.Label.Tags, upd.Tags)
	}
	a.UpdatedAt = time.Now()
	wasDirty := s.dirty
	s.dirty = true
	s.mu.Unlock()

	s.emit(EventAnnotationsChanged, id)
	if !wasDirty {
		s.emit(EventDirtyChanged, true)
	}
	return true
}

// DeleteAnnotation removes an annotation by id, clearing selection if
// it was selected. Deleting an unknown id is a no-op.
func (s *Store) DeleteAnnotation(id string) {
	s.mu.Lock()
	idx := -1
	for i, a := range s.annotations {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.annotations = append(s.annotations[:idx], s.annotations[idx+1:]...)
	selectionCleared := s.selectedID == id
	if selectionCleared {
		s.selectedID = ""
	}
	if s.hoveredID == id {
		s.hoveredID = ""
	}
	wasDirty := s.dirty
	s.dirty = true
	s.mu.Unlock()

	s.emit(EventAnnotationsChanged, id)
	if selectionCleared {
		s.emit(EventSelectionChanged, "")
	}
	if !wasDirty {
		s.emit(EventDirtyChanged, true)
	}
}

// SelectAnnotation marks exactly the given id as selected, or clears
// the selection when id is empty. Single-select is enforced here.
func (s *Store) SelectAnnotation(id string) {
	s.mu.Lock()
	if id != "" {
		if _, ok := s.find(id); !ok {
			id = ""
		}
	}
	changed := s.selectedID != id
	s.selectedID = id
	for _, a := range s.annotations {
		a.Selected = a.ID == id
	}
	s.mu.Unlock()

	if changed {
		s.emit(EventSelectionChanged, id)
	}
}

// SelectedID returns the selected annotation id, or "".
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// Selected resolves the current selection, if any. A stale id (for
// example after deletion) simply yields no selection.
func (s *Store) Selected() (*Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(s.selectedID)
}

// SetHoveredAnnotation records the annotation under the pointer.
func (s *Store) SetHoveredAnnotation(id string) {
	s.mu.Lock()
	changed := s.hoveredID != id
	s.hoveredID = id
	s.mu.Unlock()

	if changed {
		s.emit(EventHoverChanged, id)
	}
}

// HoveredID returns the hovered annotation id, or "".
func (s *Store) HoveredID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hoveredID
}

// SetActiveTool switches the canvas tool. Switching to the bbox tool
// clears the selection: drawing a new box and editing an old one are
// mutually exclusive.
func (s *Store) SetActiveTool(tool ToolKind) {
	s.mu.Lock()
	changed := s.activeTool != tool
	s.activeTool = tool
	s.mu.Unlock()

	if changed {
		s.emit(EventToolChanged, tool)
		if tool == ToolBBox {
			s.SelectAnnotation("")
		}
	}
}

// ActiveTool returns the current tool.
func (s *Store) ActiveTool() ToolKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTool
}

// SetMode switches between view and edit mode.
func (s *Store) SetMode(mode Mode) {
	s.mu.Lock()
	changed := s.mode != mode
	s.mode = mode
	s.mu.Unlock()

	if changed {
		s.emit(EventModeChanged, mode)
	}
}

// CurrentMode returns the canvas mode.
func (s *Store) CurrentMode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Viewport returns a snapshot of the viewport state.
func (s *Store) Viewport() transform.Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// SetViewport replaces the viewport state, clamping zoom.
func (s *Store) SetViewport(vp transform.Viewport) {
	vp.Zoom = transform.ClampZoom(vp.Zoom)
	s.mu.Lock()
	s.viewport = vp
	s.mu.Unlock()

	s.emit(EventViewportChanged, vp)
}

// SetCanvasSize records the rendering surface size after a container
// resize, preserving the rest of the viewport.
func (s *Store) SetCanvasSize(w, h float64) {
	s.mu.Lock()
	s.viewport.CanvasWidth = w
	s.viewport.CanvasHeight = h
	vp := s.viewport
	s.mu.Unlock()

	s.emit(EventViewportChanged, vp)
}

// BeginDrawing records the start of a draw gesture in normalized
// image coordinates.
func (s *Store) BeginDrawing(start geometry.Point2D) {
	s.mu.Lock()
	s.drawing = true
	s.drawStart = start
	s.drawCurrent = start
	s.mu.Unlock()

	s.emit(EventDrawingChanged, true)
}

// UpdateDrawing moves the live corner of the in-progress gesture.
func (s *Store) UpdateDrawing(current geometry.Point2D) {
	s.mu.Lock()
	if !s.drawing {
		s.mu.Unlock()
		return
	}
	s.drawCurrent = current
	s.mu.Unlock()

	s.emit(EventDrawingChanged, true)
}

// ClearDrawing ends the draw gesture, committed or not.
func (s *Store) ClearDrawing() {
	s.mu.Lock()
	wasDrawing := s.drawing
	s.drawing = false
	s.drawStart = geometry.Point2D{}
	s.drawCurrent = geometry.Point2D{}
	s.mu.Unlock()

	if wasDrawing {
		s.emit(EventDrawingChanged, false)
	}
}

// DrawingState returns the live draw gesture, if one is in progress.
func (s *Store) DrawingState() (active bool, start, current geometry.Point2D) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawing, s.drawStart, s.drawCurrent
}

// HasUnsavedChanges reports whether any add, update, or delete has
// happened since the last load or successful save.
func (s *Store) HasUnsavedChanges() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// MarkSaved clears the dirty flag after a successful save.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	changed := s.dirty
	s.dirty = false
	s.mu.Unlock()

	if changed {
		s.emit(EventDirtyChanged, false)
	}
}

// Snapshot returns value copies of all annotations, suitable for
// handing to the persistence boundary. The store keeps no reference
// to the returned slice.
func (s *Store) Snapshot() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Annotation, 0, len(s.annotations))
	for _, a := range s.annotations {
		c := a.Clone()
		c.Selected = false
		out = append(out, *c)
	}
	return out
}

// Reset clears all annotations and session state. Idempotent.
func (s *Store) Reset() {
	s.mu.Lock()
	s.taskID = ""
	s.imageID = ""
	s.bound = false
	s.annotations = nil
	s.selectedID = ""
	s.hoveredID = ""
	s.drawing = false
	s.drawStart = geometry.Point2D{}
	s.drawCurrent = geometry.Point2D{}
	s.dirty = false
	s.viewport = transform.Viewport{}
	s.mu.Unlock()

	s.emit(EventAnnotationsChanged, nil)
}

// Cleanup releases listeners in addition to resetting state, for use
// when the editor closes. Idempotent.
func (s *Store) Cleanup() {
	s.Reset()

	s.mu.Lock()
	s.listeners = make(map[EventType][]EventListener)
	s.mu.Unlock()
}
