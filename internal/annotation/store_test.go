package annotation

import (
	"testing"

	"github.com/ilbumi/satin/pkg/geometry"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.Initialize("task-1", "image-1", 800, 600)
	return s
}

func mustAdd(t *testing.T, s *Store, bounds geometry.Rect) *Annotation {
	t.Helper()
	a, ok := s.AddAnnotation(bounds, Label{})
	if !ok {
		t.Fatalf("AddAnnotation(%+v) rejected valid bounds", bounds)
	}
	return a
}

func TestStoreAddAnnotation(t *testing.T) {
	t.Run("accepts valid bounds and selects the new annotation", func(t *testing.T) {
		s := newTestStore(t)
		a := mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.3, 0.3))

		if a.ID == "" {
			t.Error("expected generated id")
		}
		if a.Kind != KindBBox {
			t.Errorf("Kind = %v, want %v", a.Kind, KindBBox)
		}
		if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
			t.Error("timestamps must be set on creation")
		}
		if s.SelectedID() != a.ID {
			t.Errorf("SelectedID = %q, want %q", s.SelectedID(), a.ID)
		}
		if !s.HasUnsavedChanges() {
			t.Error("add must mark the store dirty")
		}
	})

	t.Run("rejects invalid bounds without inserting", func(t *testing.T) {
		s := newTestStore(t)
		invalid := []geometry.Rect{
			geometry.NewRect(0.1, 0.1, 0, 0.3),      // zero width
			geometry.NewRect(0.1, 0.1, 0.3, 0),      // zero height
			geometry.NewRect(-0.1, 0.1, 0.3, 0.3),   // negative origin
			geometry.NewRect(0.9, 0.1, 0.2, 0.3),    // x+width > 1
			geometry.NewRect(0.1, 0.95, 0.3, 0.1),   // y+height > 1
		}
		for _, b := range invalid {
			if _, ok := s.AddAnnotation(b, Label{}); ok {
				t.Errorf("AddAnnotation(%+v) accepted invalid bounds", b)
			}
		}
		if n := len(s.Annotations()); n != 0 {
			t.Errorf("store has %d annotations after rejected adds, want 0", n)
		}
		if s.HasUnsavedChanges() {
			t.Error("rejected adds must not mark the store dirty")
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		s := newTestStore(t)
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			a := mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.2, 0.2))
			if seen[a.ID] {
				t.Fatalf("duplicate id %s", a.ID)
			}
			seen[a.ID] = true
		}
	})
}

func TestStoreUnbound(t *testing.T) {
	t.Run("rejects mutations before Initialize", func(t *testing.T) {
		s := NewStore()
		if _, ok := s.AddAnnotation(geometry.NewRect(0.1, 0.1, 0.3, 0.3), Label{}); ok {
			t.Error("AddAnnotation succeeded on an unbound store")
		}
		s.LoadAnnotations([]*Annotation{{ID: "a", Bounds: geometry.NewRect(0.1, 0.1, 0.3, 0.3)}})
		if got := len(s.Annotations()); got != 0 {
			t.Errorf("unbound store holds %d annotations, want 0", got)
		}
	})

	t.Run("Reset unbinds again", func(t *testing.T) {
		s := newTestStore(t)
		mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.3, 0.3))
		s.Reset()
		if _, ok := s.AddAnnotation(geometry.NewRect(0.1, 0.1, 0.3, 0.3), Label{}); ok {
			t.Error("AddAnnotation succeeded after Reset")
		}
	})
}

func TestStoreUpdateAnnotation(t *testing.T) {
	t.Run("merges geometry and metadata", func(t *testing.T) {
		s := newTestStore(t)
		a := mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.2, 0.2))
		s.MarkSaved()

		newBounds := geometry.NewRect(0.2, 0.2, 0.3, 0.3)
		text := "resistor"
		if !s.UpdateAnnotation(a.ID, Update{Bounds: &newBounds, Text: &text, Tags: []string{"r", "smd"}}) {
			t.Fatal("update rejected")
		}

		got, _ := s.Get(a.ID)
		if got.Bounds != newBounds {
			t.Errorf("Bounds = %+v, want %+v", got.Bounds, newBounds)
		}
		if got.Label.Text != "resistor" || len(got.Label.Tags) != 2 {
			t.Errorf("Label = %+v", got.Label)
		}
		if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
			t.Error("UpdatedAt must be bumped")
		}
		if !s.HasUnsavedChanges() {
			t.Error("update must mark dirty")
		}
	})

	t.Run("invalid bounds retain prior geometry", func(t *testing.T) {
		s := newTestStore(t)
		a := mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.2, 0.2))

		bad := geometry.NewRect(0.5, 0.5, 0.9, 0.9)
		if s.UpdateAnnotation(a.ID, Update{Bounds: &bad}) {
			t.Fatal("update accepted out-of-range bounds")
		}
		got, _ := s.Get(a.ID)
		if got.Bounds != geometry.NewRect(0.1, 0.1, 0.2, 0.2) {
			t.Errorf("prior bounds not retained: %+v", got.Bounds)
		}
	})

	t.Run("unknown id is a no-op, not a crash", func(t *testing.T) {
		s := newTestStore(t)
		if s.UpdateAnnotation("missing", Update{}) {
			t.Error("update of unknown id must return false")
		}
	})
}

func TestStoreDeleteAnnotation(t *testing.T) {
	t.Run("delete clears selection of the deleted id", func(t *testing.T) {
		s := newTestStore(t)
		a := mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.2, 0.2))

		s.DeleteAnnotation(a.ID)
		if s.SelectedID() != "" {
			t.Errorf("SelectedID = %q after deleting selection, want empty", s.SelectedID())
		}
		if _, ok := s.Get(a.ID); ok {
			t.Error("annotation still present after delete")
		}
	})

	t.Run("deleting an unknown id is a no-op", func(t *testing.T) {
		s := newTestStore(t)
		mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.2, 0.2))
		s.MarkSaved()

		s.DeleteAnnotation("missing")
		if len(s.Annotations()) != 1 {
			t.Error("unrelated annotation removed")
		}
		if s.HasUnsavedChanges() {
			t.Error("no-op delete must not mark dirty")
		}
	})
}

func TestStoreSingleSelection(t *testing.T) {
	s := newTestStore(t)
	a := mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.2, 0.2))
	b := mustAdd(t, s, geometry.NewRect(0.4, 0.4, 0.2, 0.2))

	s.SelectAnnotation(a.ID)
	s.SelectAnnotation(b.ID)

	for _, ann := range s.Annotations() {
		want := ann.ID == b.ID
		if ann.Selected != want {
			t.Errorf("annotation %s Selected = %v, want %v", ann.ID, ann.Selected, want)
		}
	}
	if s.SelectedID() != b.ID {
		t.Errorf("SelectedID = %q, want %q", s.SelectedID(), b.ID)
	}

	s.SelectAnnotation("")
	for _, ann := range s.Annotations() {
		if ann.Selected {
			t.Errorf("annotation %s still selected after clear", ann.ID)
		}
	}

	// Selecting an id that does not exist yields no selection.
	s.SelectAnnotation("missing")
	if s.SelectedID() != "" {
		t.Errorf("SelectedID = %q for stale id, want empty", s.SelectedID())
	}
}

func TestStoreToolSwitch(t *testing.T) {
	s := newTestStore(t)
	a := mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.2, 0.2))
	s.SelectAnnotation(a.ID)

	s.SetActiveTool(ToolBBox)
	if s.SelectedID() != "" {
		t.Error("switching to the bbox tool must clear the selection")
	}
	if s.ActiveTool() != ToolBBox {
		t.Errorf("ActiveTool = %v, want %v", s.ActiveTool(), ToolBBox)
	}
}

func TestStoreDirtyTracking(t *testing.T) {
	s := newTestStore(t)

	loaded := []*Annotation{
		{ID: "x", Kind: KindBBox, Bounds: geometry.NewRect(0.1, 0.1, 0.3, 0.3)},
	}
	s.LoadAnnotations(loaded)
	if s.HasUnsavedChanges() {
		t.Fatal("store must be clean immediately after load")
	}

	text := "chip"
	s.UpdateAnnotation("x", Update{Text: &text})
	if !s.HasUnsavedChanges() {
		t.Fatal("store must be dirty after an update")
	}

	s.MarkSaved()
	if s.HasUnsavedChanges() {
		t.Fatal("store must be clean after MarkSaved")
	}

	s.DeleteAnnotation("x")
	if !s.HasUnsavedChanges() {
		t.Fatal("store must be dirty after a delete")
	}
}

func TestStoreSnapshotStripsSelection(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.2, 0.2))

	snap := s.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot has %d annotations, want 1", len(snap))
	}
	if snap[0].Selected {
		t.Error("snapshot must strip transient selection state")
	}

	// The snapshot is detached from the store.
	snap[0].Label.Text = "mutated"
	got, _ := s.Get(snap[0].ID)
	if got.Label.Text == "mutated" {
		t.Error("mutating the snapshot leaked into the store")
	}
}

func TestStoreResetAndCleanup(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.2, 0.2))
	s.BeginDrawing(geometry.NewPoint2D(0.5, 0.5))

	s.Cleanup()
	s.Cleanup() // must be idempotent

	if len(s.Annotations()) != 0 {
		t.Error("annotations survive cleanup")
	}
	if s.HasUnsavedChanges() {
		t.Error("dirty flag survives cleanup")
	}
	if active, _, _ := s.DrawingState(); active {
		t.Error("drawing transient survives cleanup")
	}
	if s.TaskID() != "" {
		t.Error("task binding survives cleanup")
	}
}

func TestStoreSynchronousNotification(t *testing.T) {
	s := newTestStore(t)

	var observed int
	s.On(EventAnnotationsChanged, func(interface{}) {
		// The new state must already be visible to subscribers.
		observed = len(s.Annotations())
	})

	mustAdd(t, s, geometry.NewRect(0.1, 0.1, 0.2, 0.2))
	if observed != 1 {
		t.Errorf("listener observed %d annotations, want 1", observed)
	}
}
