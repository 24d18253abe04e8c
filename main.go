// Package main provides the entry point for the Satin annotation editor.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"

	fyneapp "fyne.io/fyne/v2/app"

	"github.com/ilbumi/satin/internal/config"
	"github.com/ilbumi/satin/internal/project"
	"github.com/ilbumi/satin/internal/service"
	"github.com/ilbumi/satin/internal/version"
	"github.com/ilbumi/satin/ui/editor"
)

const appTitle = "Satin"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	configPath := flag.String("config", "satin.yaml", "config file path")
	taskID := flag.String("task", "", "task to open (default: first unfinished task)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := project.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", cfg.DatabasePath, err)
	}
	defer db.Close()

	fyneApp := fyneapp.NewWithID("com.ilbumi.satin")
	win := editor.New(fyneApp, cfg, editor.Deps{
		Annotations: service.NewSQLiteAnnotations(db),
		Tasks:       project.NewTaskRepository(db),
		Images:      project.NewImageRepository(db),
	})
	win.SetTitle(appTitle)

	ctx := context.Background()
	id := *taskID
	if id == "" {
		id, err = firstOpenTask(ctx, db)
		if err != nil {
			log.Fatalf("Failed to pick a task: %v", err)
		}
	}
	if id == "" {
		log.Printf("No unfinished tasks; ingest images with satinctl first")
	} else if err := win.OpenTask(ctx, id); err != nil {
		log.Fatalf("Failed to open task %s: %v", id, err)
	}

	win.ShowAndRun()
}

// firstOpenTask returns the oldest task that is not done yet, across
// all projects. Empty when everything is finished.
func firstOpenTask(ctx context.Context, db *sql.DB) (string, error) {
	projects, err := project.NewProjectRepository(db).List(ctx)
	if err != nil {
		return "", err
	}
	tasks := project.NewTaskRepository(db)
	for _, p := range projects {
		list, err := tasks.ListByProject(ctx, p.ID)
		if err != nil {
			return "", err
		}
		for _, t := range list {
			if t.Status != project.TaskDone {
				return t.ID, nil
			}
		}
	}
	return "", nil
}
