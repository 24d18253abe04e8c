package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ilbumi/satin/internal/annotation"
	"github.com/ilbumi/satin/internal/project"
	"github.com/ilbumi/satin/pkg/geometry"
)

// seedTask creates a project, image and task to hang annotations off.
func seedTask(t *testing.T, db *sql.DB) (taskID, imageID string) {
	t.Helper()
	ctx := context.Background()

	p, err := project.NewProjectRepository(db).Create(ctx, "test")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	img, err := project.NewImageRepository(db).Create(ctx, &project.Image{
		ProjectID: p.ID, Path: "/img/a.png", Checksum: "c1",
	})
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	task, err := project.NewTaskRepository(db).Create(ctx, p.ID, img.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task.ID, img.ID
}

func someAnnotation(x float64, text string) annotation.Annotation {
	now := time.Now().UTC()
	return annotation.Annotation{
		ID:        uuid.NewString(),
		Kind:      annotation.KindBBox,
		Bounds:    geometry.NewRect(x, 0.1, 0.2, 0.2),
		Label:     annotation.Label{Text: text, Tags: []string{"review"}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSaveLoad(t *testing.T) {
	db := project.SetupTestDB(t)
	taskID, imageID := seedTask(t, db)
	svc := NewSQLiteAnnotations(db)
	ctx := context.Background()

	t.Run("round-trips bounds, label and tags", func(t *testing.T) {
		in := someAnnotation(0.1, "resistor")
		if err := svc.Save(ctx, taskID, imageID, []annotation.Annotation{in}); err != nil {
			t.Fatalf("Save: %v", err)
		}

		out, err := svc.Load(ctx, taskID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("loaded %d annotations, want 1", len(out))
		}
		got := out[0]
		if got.ID != in.ID || got.Bounds != in.Bounds || got.Label.Text != "resistor" {
			t.Errorf("loaded %+v, want %+v", got, in)
		}
		if len(got.Label.Tags) != 1 || got.Label.Tags[0] != "review" {
			t.Errorf("Tags = %v, want [review]", got.Label.Tags)
		}
		if got.Selected {
			t.Error("Selected must never come back from storage")
		}
	})

	t.Run("save replaces the previous set", func(t *testing.T) {
		first := []annotation.Annotation{someAnnotation(0.1, "a"), someAnnotation(0.4, "b")}
		if err := svc.Save(ctx, taskID, imageID, first); err != nil {
			t.Fatalf("Save: %v", err)
		}
		second := []annotation.Annotation{someAnnotation(0.7, "c")}
		if err := svc.Save(ctx, taskID, imageID, second); err != nil {
			t.Fatalf("Save: %v", err)
		}

		out, err := svc.Load(ctx, taskID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(out) != 1 || out[0].Label.Text != "c" {
			t.Errorf("loaded %d annotations, want just the replacement", len(out))
		}
	})

	t.Run("an empty save clears the task", func(t *testing.T) {
		if err := svc.Save(ctx, taskID, imageID, nil); err != nil {
			t.Fatalf("Save: %v", err)
		}
		out, err := svc.Load(ctx, taskID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("loaded %d annotations, want 0", len(out))
		}
	})

	t.Run("unknown task loads empty", func(t *testing.T) {
		out, err := svc.Load(ctx, "unknown")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("loaded %d annotations, want 0", len(out))
		}
	})
}

func TestSaveValidation(t *testing.T) {
	db := project.SetupTestDB(t)
	taskID, imageID := seedTask(t, db)
	svc := NewSQLiteAnnotations(db)
	ctx := context.Background()

	keep := someAnnotation(0.1, "keep")
	if err := svc.Save(ctx, taskID, imageID, []annotation.Annotation{keep}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Run("invalid bounds reject the whole save", func(t *testing.T) {
		bad := someAnnotation(0.1, "bad")
		bad.Bounds = geometry.NewRect(0.9, 0.9, 0.5, 0.5)
		err := svc.Save(ctx, taskID, imageID, []annotation.Annotation{bad})
		if err == nil {
			t.Fatal("expected a validation error")
		}

		// The stored set survives the failed save.
		out, err := svc.Load(ctx, taskID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(out) != 1 || out[0].Label.Text != "keep" {
			t.Errorf("previous set not intact: %+v", out)
		}
	})

	t.Run("saving against a missing task errors", func(t *testing.T) {
		err := svc.Save(ctx, "missing-task", imageID, []annotation.Annotation{someAnnotation(0.1, "x")})
		if err == nil {
			t.Error("expected a foreign key error")
		}
	})
}

func TestLoadSkipsCorruptRows(t *testing.T) {
	db := project.SetupTestDB(t)
	taskID, imageID := seedTask(t, db)
	svc := NewSQLiteAnnotations(db)
	ctx := context.Background()

	good := someAnnotation(0.1, "good")
	if err := svc.Save(ctx, taskID, imageID, []annotation.Annotation{good}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Simulate a row written by a buggy or older build.
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, `
INSERT INTO annotations (id, task_id, image_id, kind, x, y, width, height, label_text, tags, created_at, updated_at)
VALUES (?, ?, ?, 'bbox', 0.5, 0.5, 0.9, 0.9, 'overflow', '[]', ?, ?)`,
		uuid.NewString(), taskID, imageID, now, now)
	if err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}
	_, err = db.ExecContext(ctx, `
INSERT INTO annotations (id, task_id, image_id, kind, x, y, width, height, label_text, tags, created_at, updated_at)
VALUES (?, ?, ?, 'bbox', 0.3, 0.3, 0.1, 0.1, 'badtags', 'not-json', ?, ?)`,
		uuid.NewString(), taskID, imageID, now, now)
	if err != nil {
		t.Fatalf("insert malformed tags row: %v", err)
	}

	out, err := svc.Load(ctx, taskID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("loaded %d annotations, want 2 (invalid bounds dropped)", len(out))
	}
	for _, a := range out {
		if a.Label.Text == "overflow" {
			t.Error("out-of-bounds row was not dropped")
		}
		if a.Label.Text == "badtags" && a.Label.Tags != nil {
			t.Errorf("malformed tags not cleared: %v", a.Label.Tags)
		}
	}
}
