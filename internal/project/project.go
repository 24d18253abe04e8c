// Package project holds the persistent entities of the annotation
// workspace and their storage interfaces.
package project

import (
	"context"
	"time"
)

// Project groups the images of one labeling effort.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Image is an ingested source image. Checksum identifies the file
// content; re-ingesting the same bytes is a no-op.
type Image struct {
	ID         string
	ProjectID  string
	Path       string
	Checksum   string
	Format     string
	Width      int
	Height     int
	IngestedAt time.Time
}

// TaskStatus tracks how far a task has progressed.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Task is one unit of annotation work: a single image to label.
type Task struct {
	ID        string
	ProjectID string
	ImageID   string
	Status    TaskStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats summarizes a workspace database.
type Stats struct {
	Projects    int64
	Images      int64
	Tasks       int64
	DoneTasks   int64
	Annotations int64
}

// ProjectRepository defines storage operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, name string) (*Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	GetByName(ctx context.Context, name string) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Delete(ctx context.Context, id string) error
}

// ImageRepository defines storage operations for ingested images.
type ImageRepository interface {
	Create(ctx context.Context, img *Image) (*Image, error)
	Get(ctx context.Context, id string) (*Image, error)
	GetByChecksum(ctx context.Context, projectID, checksum string) (*Image, error)
	ListByProject(ctx context.Context, projectID string) ([]*Image, error)
	Delete(ctx context.Context, id string) error
}

// TaskRepository defines storage operations for annotation tasks.
type TaskRepository interface {
	Create(ctx context.Context, projectID, imageID string) (*Task, error)
	Get(ctx context.Context, id string) (*Task, error)
	GetByImage(ctx context.Context, imageID string) (*Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*Task, error)
	ListByStatus(ctx context.Context, projectID string, status TaskStatus) ([]*Task, error)
	SetStatus(ctx context.Context, id string, status TaskStatus) error
	Delete(ctx context.Context, id string) error
}
