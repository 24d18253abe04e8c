// Package annotation provides the annotation data model and the
// in-memory store for the task being edited.
package annotation

import (
	"time"

	"github.com/ilbumi/satin/pkg/geometry"
)

// Kind identifies the shape of an annotation. Only bounding boxes are
// implemented; the identity/position contract leaves room for other
// kinds (polygons) later.
type Kind string

const (
	KindBBox Kind = "bbox"
)

// Label holds the free-form metadata attached to an annotation,
// independent of its geometry.
type Label struct {
	Text string   `json:"text,omitempty"`
	Tags []string `json:"tags"`
}

// Clone returns a deep copy of the label.
func (l Label) Clone() Label {
	out := Label{Text: l.Text}
	if l.Tags != nil {
		out.Tags = make([]string, len(l.Tags))
		copy(out.Tags, l.Tags)
	}
	return out
}

// Annotation is a single bounding-box annotation on a task's image.
// Bounds are stored in normalized image space: every coordinate is a
// fraction of the image dimension in [0,1].
type Annotation struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Bounds    geometry.Rect `json:"bounds"`
	Label     Label         `json:"label"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Selected is editor session state, never persisted.
	Selected bool `json:"-"`
}

// Clone returns a deep copy of the annotation.
func (a *Annotation) Clone() *Annotation {
	out := *a
	out.Label = a.Label.Clone()
	return &out
}

// Update describes a partial change to an annotation. Nil fields are
// left untouched.
type Update struct {
	Bounds *geometry.Rect
	Text   *string
	Tags   []string
}
