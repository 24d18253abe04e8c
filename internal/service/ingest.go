package service

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/ilbumi/satin/internal/imaging"
	"github.com/ilbumi/satin/internal/project"
)

// IngestResult counts what a directory ingest did.
type IngestResult struct {
	Added   int
	Skipped int
	Failed  int
}

// Ingestor registers image files as annotation tasks. Files already
// known by checksum are skipped, so re-running an ingest is safe.
type Ingestor struct {
	images project.ImageRepository
	tasks  project.TaskRepository
}

func NewIngestor(images project.ImageRepository, tasks project.TaskRepository) *Ingestor {
	return &Ingestor{images: images, tasks: tasks}
}

// IngestFile loads a single image and creates its image and task
// records. The second return is false when the file was already known.
func (in *Ingestor) IngestFile(ctx context.Context, projectID, path string) (*project.Image, bool, error) {
	src, err := imaging.Load(path)
	if err != nil {
		return nil, false, fmt.Errorf("while ingesting '%s': %w", path, err)
	}

	existing, err := in.images.GetByChecksum(ctx, projectID, src.Checksum)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	img, err := in.images.Create(ctx, &project.Image{
		ProjectID: projectID,
		Path:      path,
		Checksum:  src.Checksum,
		Format:    src.Format,
		Width:     src.Width(),
		Height:    src.Height(),
	})
	if err != nil {
		return nil, false, err
	}
	if _, err := in.tasks.Create(ctx, projectID, img.ID); err != nil {
		return nil, false, err
	}
	return img, true, nil
}

// IngestDir walks dir recursively and ingests every supported image.
// Individual file failures are logged and counted, not fatal.
func (in *Ingestor) IngestDir(ctx context.Context, projectID, dir string) (*IngestResult, error) {
	result := &IngestResult{}
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !imaging.IsSupportedFormat(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		_, added, err := in.IngestFile(ctx, projectID, path)
		switch {
		case err != nil:
			log.Printf("ingest: %v", err)
			result.Failed++
		case added:
			log.Printf("ingest: added %s", path)
			result.Added++
		default:
			result.Skipped++
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("while walking '%s': %w", dir, err)
	}
	return result, nil
}
