package project

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteProjectRepository implements ProjectRepository on a workspace DB.
type SQLiteProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *SQLiteProjectRepository {
	return &SQLiteProjectRepository{db: db}
}

func (r *SQLiteProjectRepository) Create(ctx context.Context, name string) (*Project, error) {
	p := &Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)",
		p.ID, p.Name, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create project %q: %w", name, err)
	}
	return p, nil
}

func (r *SQLiteProjectRepository) Get(ctx context.Context, id string) (*Project, error) {
	return scanProject(r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM projects WHERE id = ?", id))
}

func (r *SQLiteProjectRepository) GetByName(ctx context.Context, name string) (*Project, error) {
	return scanProject(r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM projects WHERE name = ?", name))
}

func (r *SQLiteProjectRepository) List(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM projects ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

func (r *SQLiteProjectRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func scanProject(row *sql.Row) (*Project, error) {
	var p Project
	if err := row.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// SQLiteImageRepository implements ImageRepository on a workspace DB.
type SQLiteImageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) *SQLiteImageRepository {
	return &SQLiteImageRepository{db: db}
}

func (r *SQLiteImageRepository) Create(ctx context.Context, img *Image) (*Image, error) {
	created := *img
	created.ID = uuid.NewString()
	created.IngestedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO images (id, project_id, path, checksum, format, width, height, ingested_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.ProjectID, created.Path, created.Checksum,
		created.Format, created.Width, created.Height, created.IngestedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create image record for %q: %w", img.Path, err)
	}
	return &created, nil
}

func (r *SQLiteImageRepository) Get(ctx context.Context, id string) (*Image, error) {
	return scanImage(r.db.QueryRowContext(ctx,
		selectImage+" WHERE id = ?", id))
}

func (r *SQLiteImageRepository) GetByChecksum(ctx context.Context, projectID, checksum string) (*Image, error) {
	return scanImage(r.db.QueryRowContext(ctx,
		selectImage+" WHERE project_id = ? AND checksum = ?", projectID, checksum))
}

func (r *SQLiteImageRepository) ListByProject(ctx context.Context, projectID string) ([]*Image, error) {
	rows, err := r.db.QueryContext(ctx,
		selectImage+" WHERE project_id = ? ORDER BY ingested_at", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ProjectID, &img.Path, &img.Checksum,
			&img.Format, &img.Width, &img.Height, &img.IngestedAt); err != nil {
			return nil, err
		}
		result = append(result, &img)
	}
	return result, rows.Err()
}

func (r *SQLiteImageRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM images WHERE id = ?", id)
	return err
}

const selectImage = "SELECT id, project_id, path, checksum, format, width, height, ingested_at FROM images"

func scanImage(row *sql.Row) (*Image, error) {
	var img Image
	err := row.Scan(&img.ID, &img.ProjectID, &img.Path, &img.Checksum,
		&img.Format, &img.Width, &img.Height, &img.IngestedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

// SQLiteTaskRepository implements TaskRepository on a workspace DB.
type SQLiteTaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{db: db}
}

func (r *SQLiteTaskRepository) Create(ctx context.Context, projectID, imageID string) (*Task, error) {
	now := time.Now().UTC()
	t := &Task{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		ImageID:   imageID,
		Status:    TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (id, project_id, image_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.ImageID, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task for image %s: %w", imageID, err)
	}
	return t, nil
}

func (r *SQLiteTaskRepository) Get(ctx context.Context, id string) (*Task, error) {
	return scanTask(r.db.QueryRowContext(ctx, selectTask+" WHERE id = ?", id))
}

func (r *SQLiteTaskRepository) GetByImage(ctx context.Context, imageID string) (*Task, error) {
	return scanTask(r.db.QueryRowContext(ctx, selectTask+" WHERE image_id = ?", imageID))
}

func (r *SQLiteTaskRepository) ListByProject(ctx context.Context, projectID string) ([]*Task, error) {
	return r.list(ctx, selectTask+" WHERE project_id = ? ORDER BY created_at", projectID)
}

func (r *SQLiteTaskRepository) ListByStatus(ctx context.Context, projectID string, status TaskStatus) ([]*Task, error) {
	return r.list(ctx, selectTask+" WHERE project_id = ? AND status = ? ORDER BY created_at",
		projectID, status)
}

func (r *SQLiteTaskRepository) list(ctx context.Context, query string, args ...interface{}) ([]*Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.ImageID, &t.Status,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

func (r *SQLiteTaskRepository) SetStatus(ctx context.Context, id string, status TaskStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

func (r *SQLiteTaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	return err
}

const selectTask = "SELECT id, project_id, image_id, status, created_at, updated_at FROM tasks"

func scanTask(row *sql.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.ImageID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// GatherStats counts workspace contents for reporting.
func GatherStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	var s Stats
	queries := []struct {
		query string
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM projects", &s.Projects},
		{"SELECT COUNT(*) FROM images", &s.Images},
		{"SELECT COUNT(*) FROM tasks", &s.Tasks},
		{"SELECT COUNT(*) FROM tasks WHERE status = 'done'", &s.DoneTasks},
		{"SELECT COUNT(*) FROM annotations", &s.Annotations},
	}
	for _, q := range queries {
		if err := db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return nil, fmt.Errorf("failed to gather stats: %w", err)
		}
	}
	return &s, nil
}
