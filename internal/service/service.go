// Package service is the persistence boundary of the annotation editor.
// The editor store hands it plain annotation values; nothing about
// selection or other view state crosses this boundary.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ilbumi/satin/internal/annotation"
)

// Annotations loads and saves the annotation set of a task.
type Annotations interface {
	// Load returns the stored annotations of a task in creation order,
	// oldest first. Unknown tasks yield an empty set.
	Load(ctx context.Context, taskID string) ([]*annotation.Annotation, error)

	// Save replaces the stored annotation set of a task atomically.
	// On error the previous set is left intact.
	Save(ctx context.Context, taskID, imageID string, list []annotation.Annotation) error
}

// SQLiteAnnotations implements Annotations on a workspace database
// opened by the project package.
type SQLiteAnnotations struct {
	db *sql.DB
}

func NewSQLiteAnnotations(db *sql.DB) *SQLiteAnnotations {
	return &SQLiteAnnotations{db: db}
}

func (s *SQLiteAnnotations) Load(ctx context.Context, taskID string) ([]*annotation.Annotation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, x, y, width, height, label_text, tags, created_at, updated_at
FROM annotations WHERE task_id = ? ORDER BY created_at, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load annotations for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var result []*annotation.Annotation
	for rows.Next() {
		var a annotation.Annotation
		var tags string
		err := rows.Scan(&a.ID, &a.Kind, &a.Bounds.X, &a.Bounds.Y,
			&a.Bounds.Width, &a.Bounds.Height, &a.Label.Text, &tags,
			&a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if !a.Bounds.InUnitSquare() {
			log.Printf("service: dropping annotation %s with invalid bounds %+v", a.ID, a.Bounds)
			continue
		}
		if err := json.Unmarshal([]byte(tags), &a.Label.Tags); err != nil {
			log.Printf("service: annotation %s has malformed tags, clearing: %v", a.ID, err)
			a.Label.Tags = nil
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}

func (s *SQLiteAnnotations) Save(ctx context.Context, taskID, imageID string, list []annotation.Annotation) error {
	for _, a := range list {
		if !a.Bounds.InUnitSquare() {
			return fmt.Errorf("annotation %s has invalid bounds %+v", a.ID, a.Bounds)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM annotations WHERE task_id = ?", taskID); err != nil {
		return fmt.Errorf("failed to clear previous annotations: %w", err)
	}

	for _, a := range list {
		tags, err := tagsJSON(a.Label.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags of annotation %s: %w", a.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO annotations (id, task_id, image_id, kind, x, y, width, height, label_text, tags, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, taskID, imageID, a.Kind,
			a.Bounds.X, a.Bounds.Y, a.Bounds.Width, a.Bounds.Height,
			a.Label.Text, tags, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to store annotation %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit annotation save: %w", err)
	}
	return nil
}

func tagsJSON(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
